package logger

import (
	"context"
	"io"
	"log/slog"

	"github.com/dep2p/go-wlansta/pkg/lib/log"
)

// Setup 按配置构建全局 logger 并设置为 slog 默认值
//
// 组件级别依赖 LazyLogger 写入的 "component" 属性生效。
func Setup(w io.Writer, cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = ConfigFromEnv()
	}
	opts := &slog.HandlerOptions{Level: cfg.minLevel()}

	var inner slog.Handler
	if cfg.Format == FormatJSON {
		inner = slog.NewJSONHandler(w, opts)
	} else {
		inner = slog.NewTextHandler(w, opts)
	}

	l := slog.New(&componentHandler{inner: inner, cfg: cfg, level: cfg.DefaultLevel})
	log.SetDefault(l)
	return l
}

// componentHandler 按 "component" 属性选择级别
type componentHandler struct {
	inner slog.Handler
	cfg   *Config
	level slog.Level
}

func (h *componentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.inner.Enabled(ctx, level)
}

func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	level := h.level
	for _, a := range attrs {
		if a.Key == "component" {
			level = h.cfg.LevelFor(a.Value.String())
		}
	}
	return &componentHandler{inner: h.inner.WithAttrs(attrs), cfg: h.cfg, level: level}
}

func (h *componentHandler) WithGroup(name string) slog.Handler {
	return &componentHandler{inner: h.inner.WithGroup(name), cfg: h.cfg, level: h.level}
}
