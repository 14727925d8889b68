package xmetrics

import "context"

// Kind 跨度类型。存储客户端只区分内部操作和对远端的调用。
type Kind int

const (
	// KindInternal 进程内操作。
	KindInternal Kind = iota
	// KindClient 对存储服务端的调用。
	KindClient
)

// String 返回 Kind 的可读表示。
func (k Kind) String() string {
	if k == KindClient {
		return "Client"
	}
	return "Internal"
}

// Outcome 操作结果。
type Outcome string

const (
	// OutcomeOK 操作成功。
	OutcomeOK Outcome = "ok"
	// OutcomeContended 锁已被他人持有，不属于错误。
	OutcomeContended Outcome = "contended"
	// OutcomeError 操作失败。
	OutcomeError Outcome = "error"
)

// Attr 观测属性。
type Attr struct {
	Key   string
	Value any
}

// SpanOptions 跨度创建参数。
type SpanOptions struct {
	Component string
	Operation string
	Kind      Kind
	Attrs     []Attr
}

// Result 跨度结束时的结果。Outcome 为空时由 Err 推导。
type Result struct {
	Outcome Outcome
	Err     error
	Attrs   []Attr
}

// Span 一次观测跨度。
type Span interface {
	End(result Result)
}

// Observer 观测接口。
type Observer interface {
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
}

// NoopObserver 空实现。
type NoopObserver struct{}

// Start 原样返回 ctx 和空跨度。
func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 空跨度。
type NoopSpan struct{}

// End 空实现。
func (NoopSpan) End(Result) {}

// Start 使用 observer 开始观测。
//
// 返回值保证非 nil：nil ctx 替换为 context.Background()，
// nil observer 或自定义实现返回的 nil Span 均兜底为 [NoopSpan]。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	retCtx, span := observer.Start(ctx, opts)
	if retCtx == nil {
		retCtx = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return retCtx, span
}

// OrNoop 在 observer 为 nil 时返回 [NoopObserver]。
func OrNoop(observer Observer) Observer {
	if observer == nil {
		return NoopObserver{}
	}
	return observer
}

func resolveOutcome(result Result) Outcome {
	if result.Outcome != "" {
		return result.Outcome
	}
	if result.Err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
