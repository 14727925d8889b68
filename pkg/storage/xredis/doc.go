// Package xredis 包装 go-redis 客户端，提供原生客户端不具备的增值功能。
//
// 主要功能：
//   - MultiGet：批量读取。默认一次 MGET；集群模式下跨 slot 的 MGET 会被拒绝，
//     此时用 WithBatchSize 按组发送 pipeline GET，并严格校验每组结果的数量与形状，
//     避免返回值与 key 错位。
//   - Lock/Unlock：委托给 xdlock.RedisLocker。
//   - 常用命令的便捷封装（Set/HSet/RPush/SAdd/Incr 等），ttl > 0 时在同一 pipeline 中设置过期。
//   - Health/Stats：健康检查与调用计数。
//
// 其他操作直接使用 Client() 返回的 redis.UniversalClient。
package xredis
