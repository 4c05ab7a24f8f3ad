package reclaim

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-wlansta/config"
)

// Params 回收域依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Observer   Observer       `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("reclaim",
		fx.Provide(
			ProvideConfig,
			ProvideDomain,
		),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideConfig 从统一配置提供回收域配置
func ProvideConfig(p Params) Config {
	return ConfigFromUnified(p.UnifiedCfg)
}

// ProvideDomain 提供回收域实例
func ProvideDomain(cfg Config, p Params) *Domain {
	var opts []Option
	if p.Observer != nil {
		opts = append(opts, WithObserver(p.Observer))
	}
	return New(cfg, opts...)
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, d *Domain) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// 先等待已登记的析构完成，再停止后台 goroutine
			if err := d.Quiesce(ctx); err != nil {
				logger.Warn("reclaim quiesce interrupted", "err", err)
			}
			return d.Close()
		},
	})
}
