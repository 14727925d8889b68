// Package xmetrics 为存储客户端调用提供统一的观测接口。
//
// 锁和批量读取等操作通过 [Start] 打开一个跨度，结束时调用 Span.End 记录结果。
// 默认使用 [NoopObserver]；需要链路和指标时注入 [NewOTelObserver] 创建的实现，
// 它同时输出 trace span 和 store.operation.* 指标。
package xmetrics
