package wlansta

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-wlansta/internal/core/cipherkey"
	"github.com/dep2p/go-wlansta/internal/core/reclaim"
	"github.com/dep2p/go-wlansta/internal/core/resourcemgr"
	"github.com/dep2p/go-wlansta/internal/core/sta"
	"github.com/dep2p/go-wlansta/pkg/lib/log"
)

var logger = log.Logger("wlansta")

// stopTimeout 关闭时等待析构完成的上限
const stopTimeout = 10 * time.Second

// Core 站点核心实例
type Core struct {
	id  string
	app *fx.App

	table     *sta.Table
	domain    *reclaim.Domain
	keys      *cipherkey.Store
	resources *resourcemgr.Manager

	mu      sync.Mutex
	started bool
	closed  bool
}

// Stats 核心统计快照
type Stats struct {
	// Stations 当前成员数量
	Stations int

	// Resources 各类对象的预算占用（包含待回收的对象）
	Resources resourcemgr.Stat

	// Reclaim 回收域统计
	Reclaim reclaim.Stats
}

// New 创建站点核心
//
// 创建但不启动，需要调用 Start。
func New(opts ...Option) (*Core, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	c := &Core{id: uuid.New().String()}

	var err error
	c.app, err = buildFxApp(o, c)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	if err := c.app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return c, nil
}

// Start 启动核心
func (c *Core) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}
	if err := c.app.Start(ctx); err != nil {
		return fmt.Errorf("start core: %w", err)
	}
	c.started = true
	logger.Info("station core started", "id", c.id, "slots", c.table.Size())
	return nil
}

// Close 关闭核心
//
// 退役全部站点与组密钥，并等待所有析构完成。重复调用为空操作。
func (c *Core) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var errs error
	if c.table != nil {
		errs = multierr.Append(errs, c.table.Close())
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if c.started {
		errs = multierr.Append(errs, c.app.Stop(ctx))
	} else {
		// 未启动时生命周期钩子不会执行，直接排空并关闭回收域
		errs = multierr.Append(errs, c.domain.Quiesce(ctx))
		errs = multierr.Append(errs, c.domain.Close())
	}

	if errs != nil {
		logger.Warn("station core closed with errors", "id", c.id, "err", errs)
	} else {
		logger.Info("station core closed", "id", c.id)
	}
	return errs
}

// ID 实例标识
func (c *Core) ID() string { return c.id }

// Table 站点表
func (c *Core) Table() *sta.Table { return c.table }

// Keys 密钥存储
func (c *Core) Keys() *cipherkey.Store { return c.keys }

// Domain 回收域
func (c *Core) Domain() *reclaim.Domain { return c.domain }

// Stats 返回统计快照
func (c *Core) Stats() Stats {
	return Stats{
		Stations:  c.table.Len(),
		Resources: c.resources.Stat(),
		Reclaim:   c.domain.Stats(),
	}
}

// Quiesce 等待所有已退役对象析构完成
//
// 未启动时返回 ErrNotStarted，关闭后返回 ErrClosed（Close 已排空回收域）。
func (c *Core) Quiesce(ctx context.Context) error {
	c.mu.Lock()
	started, closed := c.started, c.closed
	c.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if !started {
		return ErrNotStarted
	}
	return c.domain.Quiesce(ctx)
}
