// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展
//   - xmetrics: 存储调用的 span 与指标接口，默认空实现，可接 OpenTelemetry
//   - xrotate: 日志文件轮转
package observability
