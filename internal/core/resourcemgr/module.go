package resourcemgr

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-wlansta/config"
)

// Params 资源管理器依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Module 是 resourcemgr 的 Fx 模块
var Module = fx.Module("resourcemgr",
	fx.Provide(NewFromParams),
)

// NewFromParams 从统一配置创建资源管理器
func NewFromParams(p Params) *Manager {
	if p.UnifiedCfg == nil {
		return New(config.DefaultResourceConfig())
	}
	return New(p.UnifiedCfg.Resource)
}
