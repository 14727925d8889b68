// Package xdlock 提供基于存储原子性的分布式锁原语。
//
// 两种实现共享 [Locker] 接口：
//
//   - [RedisLocker]：SET <prefix><key> <value> EX <ttl> NX，过期由 Redis 负责。
//   - [MongoLocker]：以 key 作为 _id 插入文档，唯一索引保证互斥，
//     createdAt 上的 TTL 索引负责过期（Mongo 后台每 60 秒左右清理一次，不要依赖秒级精度）。
//
// 锁被他人持有时 TryLock 返回 (false, nil)，这是正常结果而不是错误；
// 只有参数错误、存储故障和存储响应异常才返回 error。
//
// 原语内部不做重试，重试策略由调用方决定。Redis 获取失败后会尽力删除锁 key，
// 清理本身的错误被丢弃，不会覆盖原始错误。
//
// 解锁按 key 删除，不校验持有者，重复解锁或解锁不存在的 key 都不是错误。
//
// 基本用法：
//
//	locker, err := xdlock.NewRedisLocker(rdb, xdlock.WithLogger(logger))
//	ok, err := locker.TryLock(ctx, "job:42", xdlock.WithTTL(5*time.Second))
//	if err != nil {
//	    return err
//	}
//	if !ok {
//	    return nil // 其他实例正在处理
//	}
//	defer locker.Unlock(ctx, "job:42")
package xdlock
