package cipherkey

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-wlansta/internal/core/metrics"
	"github.com/dep2p/go-wlansta/internal/core/reclaim"
	"github.com/dep2p/go-wlansta/internal/core/resourcemgr"
)

// Params 密钥存储依赖参数
type Params struct {
	fx.In

	Domain    *reclaim.Domain
	Resources *resourcemgr.Manager `optional:"true"`
	Metrics   *metrics.Metrics     `optional:"true"`
}

// Module 是 cipherkey 的 Fx 模块
var Module = fx.Module("cipherkey",
	fx.Provide(NewFromParams),
)

// NewFromParams 从参数创建密钥存储
func NewFromParams(p Params) *Store {
	return NewStore(p.Domain, p.Resources, p.Metrics)
}
