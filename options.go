package wlansta

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-wlansta/config"
	"github.com/dep2p/go-wlansta/internal/core/reorder"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config *config.Config

	clock      clock.Clock
	registerer prometheus.Registerer
	flush      reorder.FlushFunc
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// WithConfig 使用完整配置替换默认配置
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithPreset 应用预设（"station" 或 "ibss"）
//
// 预设作用于当前配置，应放在 WithConfig 之后。
func WithPreset(name string) Option {
	return func(o *options) error {
		return config.ApplyPreset(o.config, name)
	}
}

// WithTableSize 设置站点槽位数量
func WithTableSize(n int) Option {
	return func(o *options) error {
		if n <= 0 || n > config.MaxTableSize {
			return fmt.Errorf("table size must be in [1, %d], got %d", config.MaxTableSize, n)
		}
		o.config.Table.Size = n
		return nil
	}
}

// WithClock 注入时钟（测试中使用 clock.NewMock()）
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithRegisterer 指定指标注册表
//
// 未指定时使用独立的 Registry。
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithFlushFunc 设置重排序刷新回调
//
// 回调在持有上下文锁时执行。
func WithFlushFunc(fn reorder.FlushFunc) Option {
	return func(o *options) error {
		o.flush = fn
		return nil
	}
}
