package reclaim

import (
	"time"

	"github.com/dep2p/go-wlansta/config"
)

// Config 回收域配置
type Config struct {
	// PollInterval 等待读者退出时的初始轮询间隔
	PollInterval time.Duration

	// MaxPollInterval 轮询退避的上限
	MaxPollInterval time.Duration

	// SpinRounds 进入睡眠退避前的让出次数
	SpinRounds int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		PollInterval:    10 * time.Microsecond,
		MaxPollInterval: 5 * time.Millisecond,
		SpinRounds:      64,
	}
}

// ConfigFromUnified 从统一配置创建回收域配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.Reclaim.PollInterval > 0 {
		c.PollInterval = cfg.Reclaim.PollInterval.Duration()
	}
	if cfg.Reclaim.MaxPollInterval > 0 {
		c.MaxPollInterval = cfg.Reclaim.MaxPollInterval.Duration()
	}
	if cfg.Reclaim.SpinRounds > 0 {
		c.SpinRounds = cfg.Reclaim.SpinRounds
	}
	return c
}
