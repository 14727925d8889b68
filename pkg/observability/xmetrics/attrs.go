package xmetrics

// 存储操作通用属性键
const (
	AttrStoreKey  = "store.key"
	AttrKeyCount  = "store.key_count"
	AttrBatchSize = "store.batch_size"
	AttrBatches   = "store.batches"
	AttrTTL       = "store.ttl_seconds"
)

// String 创建字符串属性。
func String(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

// Int 创建整数属性。
func Int(key string, value int) Attr {
	return Attr{Key: key, Value: value}
}

// Int64 创建 int64 属性。
func Int64(key string, value int64) Attr {
	return Attr{Key: key, Value: value}
}

// Bool 创建布尔属性。
func Bool(key string, value bool) Attr {
	return Attr{Key: key, Value: value}
}

// StoreKey 记录操作涉及的业务 key。
func StoreKey(key string) Attr {
	return String(AttrStoreKey, key)
}

// KeyCount 记录批量操作的 key 数量。
func KeyCount(n int) Attr {
	return Int(AttrKeyCount, n)
}
