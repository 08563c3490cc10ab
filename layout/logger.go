package layout

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler 丢弃所有日志记录；Enabled 返回 false，调用方不会格式化消息。
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger 设置 layout 包使用的日志器，默认不输出任何日志。传入 nil 恢复静默。
//
// 使用的级别：
//   - [slog.LevelDebug]: 每次排版的摘要（策略、分组数、行数）
//   - [slog.LevelWarn]: 测量服务失败或返回非有限值（按 0 宽度继续排版）
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger 返回当前日志器。
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
