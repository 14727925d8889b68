// Package distributed 提供分布式协调相关的子包。
//
// 子包列表：
//   - xdlock: 分布式锁，支持 Redis（SET NX EX）与 MongoDB（唯一 _id + TTL 索引）后端
//
// 锁不续期、不重试；竞争返回 false 而不是错误，过期由存储端负责。
package distributed
