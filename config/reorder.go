package config

import (
	"fmt"
	"time"
)

// ReorderConfig 接收重排序配置
//
// 窗口大小固定为 32，不可配置。
type ReorderConfig struct {
	// FlushTimeout 重排序窗口等待缺失帧的超时
	// 默认值: 100ms
	FlushTimeout Duration `json:"flush_timeout"`
}

// DefaultReorderConfig 返回默认的重排序配置
func DefaultReorderConfig() ReorderConfig {
	return ReorderConfig{
		FlushTimeout: Duration(100 * time.Millisecond),
	}
}

// Validate 验证重排序配置
func (c *ReorderConfig) Validate() error {
	if c.FlushTimeout <= 0 {
		return fmt.Errorf("reorder: flush_timeout must be positive, got %s", c.FlushTimeout)
	}
	return nil
}
