// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//   - 支持预设配置（station/ibss）
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Table.Size = 8
//
//	// 应用预设
//	config.ApplyPreset(cfg, "ibss")
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Config 是 wlansta 的完整配置结构
//
// 配置按照功能模块组织：
//   - Table: 站点表容量
//   - Reorder: 接收重排序
//   - Reclaim: 延迟回收域
//   - Resource: 资源预算
//   - Metrics: 指标导出
type Config struct {
	// Table 站点表配置
	Table TableConfig `json:"table"`

	// Reorder 接收重排序配置
	Reorder ReorderConfig `json:"reorder"`

	// Reclaim 延迟回收配置
	Reclaim ReclaimConfig `json:"reclaim"`

	// Resource 资源预算配置
	Resource ResourceConfig `json:"resource"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Table:    DefaultTableConfig(),
		Reorder:  DefaultReorderConfig(),
		Reclaim:  DefaultReclaimConfig(),
		Resource: DefaultResourceConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Table.Validate(); err != nil {
		return err
	}
	if err := c.Reorder.Validate(); err != nil {
		return err
	}
	if err := c.Reclaim.Validate(); err != nil {
		return err
	}
	if err := c.Resource.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保持默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// LoadFile 从文件加载并验证配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "station": 客户端模式，表中只有 AP 一项
//   - "ibss": IBSS 模式，参与站点从中断上下文动态加入
//   - "": 不做任何修改
func ApplyPreset(cfg *Config, name string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch name {
	case "station":
		cfg.Resource.MaxStations = 1
	case "ibss":
		cfg.Resource.MaxStations = cfg.Table.Size
		cfg.Resource.MaxReorderContexts = cfg.Table.Size * 4
	case "":
	default:
		return fmt.Errorf("unknown preset: %s", name)
	}
	return nil
}
