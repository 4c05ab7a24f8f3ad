package sta

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-wlansta/config"
	"github.com/dep2p/go-wlansta/internal/core/cipherkey"
	"github.com/dep2p/go-wlansta/internal/core/metrics"
	"github.com/dep2p/go-wlansta/internal/core/reclaim"
	"github.com/dep2p/go-wlansta/internal/core/reorder"
	"github.com/dep2p/go-wlansta/internal/core/resourcemgr"
)

// Params 站点表依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Domain     *reclaim.Domain
	Keys       *cipherkey.Store
	Resources  *resourcemgr.Manager `optional:"true"`
	Metrics    *metrics.Metrics     `optional:"true"`
	Clock      clock.Clock          `optional:"true"`
	Flush      reorder.FlushFunc    `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("sta",
		fx.Provide(
			ProvideConfig,
			ProvideTable,
		),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideConfig 从统一配置提供站点表配置
func ProvideConfig(p Params) Config {
	return ConfigFromUnified(p.UnifiedCfg)
}

// ProvideTable 提供站点表实例
func ProvideTable(cfg Config, p Params) *Table {
	return New(cfg, p.Domain,
		WithResources(p.Resources),
		WithMetrics(p.Metrics),
		WithKeyStore(p.Keys),
		WithClock(p.Clock),
		WithFlushFunc(p.Flush),
	)
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, t *Table) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return t.Close()
		},
	})
}
