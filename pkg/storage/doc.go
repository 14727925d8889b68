// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xredis: Redis 客户端封装，含分布式锁与分批 MultiGet
//   - xmongo: MongoDB 客户端封装，含基于唯一索引的分布式锁
//
// 所有封装共享 internal/storeopt 中的超时、计数与连接重试逻辑。
package storage
