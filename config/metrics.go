package config

import (
	"fmt"
	"regexp"
)

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否导出 Prometheus 指标
	Enabled bool `json:"enabled"`

	// Namespace 指标名前缀
	// 默认值: "wlansta"
	Namespace string `json:"namespace"`
}

var metricNameRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// DefaultMetricsConfig 返回默认的指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "wlansta",
	}
}

// Validate 验证指标配置
func (c *MetricsConfig) Validate() error {
	if c.Enabled && !metricNameRE.MatchString(c.Namespace) {
		return fmt.Errorf("metrics: invalid namespace %q", c.Namespace)
	}
	return nil
}
