package sta

import (
	"time"

	"github.com/dep2p/go-wlansta/config"
)

// Config 站点表配置
type Config struct {
	// Size 槽位数量
	Size int

	// FlushTimeout 重排序刷新定时器的默认超时
	FlushTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Size:         config.DefaultTableConfig().Size,
		FlushTimeout: config.DefaultReorderConfig().FlushTimeout.Duration(),
	}
}

// ConfigFromUnified 从统一配置创建站点表配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.Table.Size > 0 {
		c.Size = cfg.Table.Size
	}
	if cfg.Reorder.FlushTimeout > 0 {
		c.FlushTimeout = cfg.Reorder.FlushTimeout.Duration()
	}
	return c
}
