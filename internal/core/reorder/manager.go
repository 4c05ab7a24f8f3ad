package reorder

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-wlansta/internal/core/metrics"
	"github.com/dep2p/go-wlansta/internal/core/reclaim"
	"github.com/dep2p/go-wlansta/internal/core/resourcemgr"
	"github.com/dep2p/go-wlansta/pkg/lib/log"
	"github.com/dep2p/go-wlansta/pkg/types"
)

var logger = log.Logger("core/reorder")

// Manager 重排序上下文的分配与退役
type Manager struct {
	dom     *reclaim.Domain
	rm      *resourcemgr.Manager
	metrics *metrics.Metrics
	clk     clock.Clock
	timeout time.Duration
	flush   FlushFunc
}

// NewManager 创建上下文管理器
//
// clk 为 nil 时使用系统时钟；rm、m、flush 可以为 nil。
func NewManager(dom *reclaim.Domain, rm *resourcemgr.Manager, m *metrics.Metrics,
	clk clock.Clock, timeout time.Duration, flush FlushFunc) *Manager {
	if clk == nil {
		clk = clock.New()
	}
	return &Manager{
		dom:     dom,
		rm:      rm,
		metrics: m,
		clk:     clk,
		timeout: timeout,
		flush:   flush,
	}
}

// Alloc 分配一个上下文
//
// ssn 为 802.11 起始序号控制字段，低 4 位是分片号，窗口头取 ssn >> 4。
// 定时器只准备不启动。预算耗尽时返回 ErrResourceExhausted。
func (m *Manager) Alloc(owner Owner, tid types.TID, ssn uint16) (*Context, error) {
	return m.Renew(nil, owner, tid, ssn)
}

// Renew 分配一个用于替换 prev 的上下文
//
// prev 仍持有预算时由新上下文接管，不再预留；prev 之后应由调用方退役，
// 其销毁不再归还预算。prev 为 nil 时等同于 Alloc。
func (m *Manager) Renew(prev *Context, owner Owner, tid types.TID, ssn uint16) (*Context, error) {
	if prev == nil || !prev.budget.CompareAndSwap(true, false) {
		if err := m.rm.Reserve(resourcemgr.ClassReorder); err != nil {
			return nil, fmt.Errorf("alloc reorder context tid=%d: %w", tid, err)
		}
	}
	c := newContext(m.clk, owner, tid, ssn, m.timeout, m.flush)
	c.budget.Store(true)
	c.release = func() {
		if c.budget.CompareAndSwap(true, false) {
			m.rm.Release(resourcemgr.ClassReorder)
		}
		m.metrics.Freed(resourcemgr.ClassReorder)
	}
	m.metrics.Allocated(resourcemgr.ClassReorder)
	return c, nil
}

// Retire 断开反向引用并交给回收域销毁
//
// c 为 nil 时为空操作。
func (m *Manager) Retire(c *Context) {
	if c == nil {
		return
	}
	c.detach()
	m.metrics.Retired(resourcemgr.ClassReorder)
	m.dom.Retire(func() {
		if n := c.destroy(); n > 0 {
			logger.Debug("reorder context purged", "tid", c.tid, "frames", n)
		}
	})
}

// Replace 发布新上下文（可以为 nil）并退役旧上下文
func (m *Manager) Replace(slot *reclaim.Slot[Context], c *Context) *Context {
	old := slot.Swap(c)
	m.Retire(old)
	return old
}
