package xlog

import (
	"context"
	"log/slog"
)

var _ Logger = nopLogger{}

// nopLogger 丢弃所有日志。
type nopLogger struct{}

// Nop 返回不输出任何内容的 Logger。
func Nop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(context.Context, string, ...slog.Attr) {}
func (nopLogger) Info(context.Context, string, ...slog.Attr)  {}
func (nopLogger) Warn(context.Context, string, ...slog.Attr)  {}
func (nopLogger) Error(context.Context, string, ...slog.Attr) {}

func (n nopLogger) With(...slog.Attr) Logger { return n }
