// Package storeopt 提供 storage/distributed 子包共享的超时、计数与连接工具。
//
// 本包是 internal 包，仅供 xredis、xmongo、xdlock 使用。
//
// 主要功能：
//   - 健康检查超时与单次调用超时（CallContext）
//   - 原子统计计数器（HealthCounter、OpCounter）
//   - 启动期带重试的连通性检查（PingWithRetry，基于 avast/retry-go）
package storeopt
