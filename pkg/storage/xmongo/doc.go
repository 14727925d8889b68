// Package xmongo 包装 mongo-driver v2 客户端。
//
// 除健康检查和统计外，提供可选的文档锁：构造时通过 WithLock 指定锁集合，
// 再调用 EnableLock 建立 TTL 索引后，Lock/Unlock 才可用；未启用时返回 xdlock.ErrDisabled。
//
//	m, _ := xmongo.New(client, xmongo.WithLock("app", "locks"))
//	if err := m.EnableLock(ctx); err != nil {
//	    return err
//	}
//	ok, err := m.Lock(ctx, "job:42", nil)
package xmongo
