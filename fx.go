package wlansta

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-wlansta/internal/core/cipherkey"
	"github.com/dep2p/go-wlansta/internal/core/metrics"
	"github.com/dep2p/go-wlansta/internal/core/reclaim"
	"github.com/dep2p/go-wlansta/internal/core/reorder"
	"github.com/dep2p/go-wlansta/internal/core/resourcemgr"
	"github.com/dep2p/go-wlansta/internal/core/sta"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置与外部注入（时钟、注册表、刷新回调）
//  2. Resource → Metrics → Reclaim → CipherKey → Sta
//
// Reclaim 的停止钩子先于 Sta 注册，因此关闭时站点表先退役全部对象，
// 回收域再排空析构。
func buildFxApp(o *options, c *Core) (*fx.App, error) {
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(o.config),
	}

	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}
	if o.flush != nil {
		fn := o.flush
		modules = append(modules, fx.Provide(func() reorder.FlushFunc { return fn }))
	}

	modules = append(modules,
		resourcemgr.Module,
		metrics.Module,
		reclaim.Module(),
		cipherkey.Module,
		sta.Module(),

		fx.Populate(
			&c.table,
			&c.domain,
			&c.keys,
			&c.resources,
		),

		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...), nil
}
