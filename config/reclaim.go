package config

import (
	"fmt"
	"time"
)

// ReclaimConfig 延迟回收域配置
type ReclaimConfig struct {
	// PollInterval 宽限期等待读者时的初始轮询间隔
	PollInterval Duration `json:"poll_interval"`

	// MaxPollInterval 轮询退避上限
	MaxPollInterval Duration `json:"max_poll_interval"`

	// SpinRounds 进入睡眠退避前的让出次数
	SpinRounds int `json:"spin_rounds"`
}

// DefaultReclaimConfig 返回默认的回收配置
func DefaultReclaimConfig() ReclaimConfig {
	return ReclaimConfig{
		PollInterval:    Duration(10 * time.Microsecond),
		MaxPollInterval: Duration(5 * time.Millisecond),
		SpinRounds:      64,
	}
}

// Validate 验证回收配置
func (c *ReclaimConfig) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("reclaim: poll_interval must be positive")
	}
	if c.MaxPollInterval < c.PollInterval {
		return fmt.Errorf("reclaim: max_poll_interval (%s) < poll_interval (%s)", c.MaxPollInterval, c.PollInterval)
	}
	if c.SpinRounds < 0 {
		return fmt.Errorf("reclaim: spin_rounds cannot be negative")
	}
	return nil
}
