package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-wlansta/config"
	"github.com/dep2p/go-wlansta/internal/core/reclaim"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config         `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(
		NewFromParams,
		provideObserver,
	),
)

// NewFromParams 从参数创建 Metrics
//
// 指标关闭时返回 nil，所有方法退化为空操作。未注入 Registerer 时使用
// 独立的 Registry，避免与进程全局注册表冲突。
func NewFromParams(p Params) (*Metrics, error) {
	cfg := config.DefaultMetricsConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Metrics
	}
	if !cfg.Enabled {
		return nil, nil
	}

	reg := p.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return New(cfg.Namespace, reg)
}

// provideObserver 将 Metrics 作为回收域观察者提供
func provideObserver(m *Metrics) reclaim.Observer {
	if m == nil {
		return nil
	}
	return m
}
