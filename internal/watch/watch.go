// Package watch 在源文件变化时重复执行一次构建。
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce 是最后一次写入事件之后到重新执行的等待时间。
var Debounce = 100 * time.Millisecond

// Run 先调用一次 fn，之后每当 path 被写入或重新创建时再次调用，直到 ctx 取消。
// 监听所在目录并按路径过滤事件；fn 的错误只记录日志。
func Run(ctx context.Context, path string, fn func() error) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("解析监听路径失败: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("监听 %s 失败: %w", filepath.Dir(target), err)
	}

	runOnce(fn)

	timer := time.NewTimer(Debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				timer.Reset(Debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("文件监听出错", slog.Any("err", err))
		case <-timer.C:
			slog.Info("检测到文件变化，重新生成", slog.String("path", path))
			runOnce(fn)
		}
	}
}

func runOnce(fn func() error) {
	if err := fn(); err != nil {
		slog.Error("生成失败", slog.Any("err", err))
	}
}
