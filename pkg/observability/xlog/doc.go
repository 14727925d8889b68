// Package xlog 基于 log/slog 的结构化日志库。
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，后续 Set 操作被跳过）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevel(xlog.LevelDebug).
//		SetFormat("json").
//		SetRotation("/var/log/app.log").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// # 注入约定
//
// 所有存储包装器（xredis、xmongo、xdlock）通过 WithLogger 选项接收 Logger，
// 未注入时使用 [Nop]，不依赖任何隐藏的全局 Logger。
//
// 级别与旧版 out/debug/error 三元组的对应关系：out → Info，debug → Debug，error → Error。
// 仅输出错误的场景使用 SetLevel(LevelError)。
package xlog
