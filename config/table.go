package config

import "fmt"

// TableConfig 站点表配置
type TableConfig struct {
	// Size 站点槽位数量（mac_id 取模的模数）
	// 构造后固定，不会扩容
	// 默认值: 32
	Size int `json:"size"`
}

// MaxTableSize 槽位数量上限
const MaxTableSize = 256

// DefaultTableConfig 返回默认的站点表配置
func DefaultTableConfig() TableConfig {
	return TableConfig{
		Size: 32,
	}
}

// Validate 验证站点表配置
func (c *TableConfig) Validate() error {
	if c.Size <= 0 || c.Size > MaxTableSize {
		return fmt.Errorf("table: size must be in [1, %d], got %d", MaxTableSize, c.Size)
	}
	return nil
}
