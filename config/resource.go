package config

import "fmt"

// ResourceConfig 资源预算配置
//
// 所有上限 0 表示不限制。预算在对象被真正回收（宽限期之后）时才归还。
type ResourceConfig struct {
	// MaxStations 同时存活的站点记录上限
	MaxStations int `json:"max_stations"`

	// MaxReorderContexts 同时存活的重排序上下文上限
	MaxReorderContexts int `json:"max_reorder_contexts"`

	// MaxKeys 同时存活的密钥上限
	MaxKeys int `json:"max_keys"`
}

// DefaultResourceConfig 返回默认的资源配置（不限制）
func DefaultResourceConfig() ResourceConfig {
	return ResourceConfig{}
}

// Validate 验证资源配置
func (c *ResourceConfig) Validate() error {
	if c.MaxStations < 0 || c.MaxReorderContexts < 0 || c.MaxKeys < 0 {
		return fmt.Errorf("resource: limits cannot be negative")
	}
	return nil
}
