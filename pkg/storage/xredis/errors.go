package xredis

import (
	"errors"
	"fmt"
)

var (
	// ErrNilClient 客户端为空。
	ErrNilClient = errors.New("xredis: client is nil")

	// ErrClosed 包装器已关闭。
	ErrClosed = errors.New("xredis: client is closed")

	// ErrEmptyKey key 为空。
	ErrEmptyKey = errors.New("xredis: key must not be empty")

	// ErrInvalidBatchSize 批大小小于 1。
	ErrInvalidBatchSize = errors.New("xredis: batch size must be at least 1")

	// ErrInconsistent 批量结果的数量或形状与请求不一致。
	ErrInconsistent = errors.New("xredis: inconsistent batch result")

	// ErrEmptyList 列表或集合写入没有提供任何元素。
	ErrEmptyList = errors.New("xredis: no elements to write")

	// ErrNoAddrs 配置中没有地址。
	ErrNoAddrs = errors.New("xredis: no addresses configured")
)

// StoreError 批量读取中某个条目返回了 Redis 错误。
type StoreError struct {
	// Key 出错条目对应的 key。
	Key string
	// Msg 条目错误信息。
	Msg string
	// Err 原始错误。
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("xredis: store error on key %q: %s", e.Key, e.Msg)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
