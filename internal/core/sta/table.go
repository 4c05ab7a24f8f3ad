package sta

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-wlansta/internal/core/cipherkey"
	"github.com/dep2p/go-wlansta/internal/core/defrag"
	"github.com/dep2p/go-wlansta/internal/core/metrics"
	"github.com/dep2p/go-wlansta/internal/core/reclaim"
	"github.com/dep2p/go-wlansta/internal/core/reorder"
	"github.com/dep2p/go-wlansta/internal/core/resourcemgr"
	"github.com/dep2p/go-wlansta/pkg/lib/log"
	"github.com/dep2p/go-wlansta/pkg/types"
)

var logger = log.Logger("core/sta")

// Option 站点表选项
type Option func(*Table)

// WithResources 设置资源预算
func WithResources(rm *resourcemgr.Manager) Option {
	return func(t *Table) { t.rm = rm }
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Table) { t.metrics = m }
}

// WithKeyStore 设置密钥存储
func WithKeyStore(ks *cipherkey.Store) Option {
	return func(t *Table) { t.keys = ks }
}

// WithClock 设置时钟（测试中注入 clock.Mock）
func WithClock(clk clock.Clock) Option {
	return func(t *Table) { t.clk = clk }
}

// WithFlushFunc 设置重排序刷新回调
func WithFlushFunc(fn reorder.FlushFunc) Option {
	return func(t *Table) { t.flush = fn }
}

// Table 站点表
type Table struct {
	slots   []reclaim.Slot[Station]
	members atomic.Pointer[[]*Station]

	groupKeys [types.MaxGroupKeys]reclaim.Slot[cipherkey.Key]

	// mu 串行化所有控制路径写操作
	mu     sync.Mutex
	closed bool

	dom     *reclaim.Domain
	rm      *resourcemgr.Manager
	metrics *metrics.Metrics
	keys    *cipherkey.Store
	tids    *reorder.Manager
	clk     clock.Clock
	flush   reorder.FlushFunc
}

// New 创建站点表
func New(cfg Config, dom *reclaim.Domain, opts ...Option) *Table {
	if cfg.Size <= 0 {
		cfg.Size = DefaultConfig().Size
	}
	t := &Table{
		slots: make([]reclaim.Slot[Station], cfg.Size),
		dom:   dom,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.clk == nil {
		t.clk = clock.New()
	}
	if t.keys == nil {
		t.keys = cipherkey.NewStore(dom, t.rm, t.metrics)
	}
	t.tids = reorder.NewManager(dom, t.rm, t.metrics, t.clk, cfg.FlushTimeout, t.flush)

	empty := make([]*Station, 0)
	t.members.Store(&empty)
	return t
}

// Size 槽位数量
func (t *Table) Size() int { return len(t.slots) }

// Keys 密钥存储
func (t *Table) Keys() *cipherkey.Store { return t.keys }

// Enter 进入读侧临界区
func (t *Table) Enter() reclaim.Guard { return t.dom.Enter() }

// ============================================================================
//                              读侧
// ============================================================================

// LookupByMAC 按硬件地址查找站点
//
// 线性扫描全部槽位。需在读侧临界区内调用。
func (t *Table) LookupByMAC(addr types.MACAddr) *Station {
	for i := range t.slots {
		if st := t.slots[i].Load(); st != nil && st.mac == addr {
			return st
		}
	}
	return nil
}

// LookupByID 按槽位编号查找站点
//
// id 超出范围属于调用方错误：记录错误日志并返回 nil。
// 需在读侧临界区内调用。
func (t *Table) LookupByID(id types.MacID) *Station {
	if uint(id) >= uint(len(t.slots)) {
		logger.Error("mac_id out of range", "mac_id", id, "size", len(t.slots))
		return nil
	}
	return t.slots[id].Load()
}

// LookupByPosition 返回插入顺序中的第 idx 个站点
//
// idx 越界时返回 nil。需在读侧临界区内调用。
func (t *Table) LookupByPosition(idx int) *Station {
	members := *t.members.Load()
	if idx < 0 || idx >= len(members) {
		return nil
	}
	return members[idx]
}

// Len 成员数量
func (t *Table) Len() int {
	return len(*t.members.Load())
}

// Range 按插入顺序遍历成员，fn 返回 false 时停止
//
// 遍历的是调用时刻的快照。需在读侧临界区内调用。
func (t *Table) Range(fn func(*Station) bool) {
	for _, st := range *t.members.Load() {
		if !fn(st) {
			return
		}
	}
}

// GroupKey 第 idx 个组密钥，没有时返回 nil
//
// 需在读侧临界区内调用。
func (t *Table) GroupKey(idx uint8) *cipherkey.Key {
	if int(idx) >= types.MaxGroupKeys {
		return nil
	}
	return t.groupKeys[idx].Load()
}

// ============================================================================
//                              控制路径
// ============================================================================

// Alloc 创建站点并发布到表中
//
// 新站点替换同一槽位上的旧站点，并追加到成员列表末尾。槽位已被占用时
// 新站点接管旧站点的预算，重新关联不受预算上限影响。
// 预算耗尽时返回 ErrResourceExhausted，表保持不变。
func (t *Table) Alloc(mac types.MACAddr, macID types.MacID, aid types.AID) (*Station, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrTableClosed
	}

	prev := t.slots[t.slotIndex(macID)].Load()
	if prev == nil || !prev.budget.CompareAndSwap(true, false) {
		if err := t.rm.Reserve(resourcemgr.ClassStation); err != nil {
			logger.Warn("station alloc failed", "mac", mac, "mac_id", macID, "err", err)
			return nil, fmt.Errorf("alloc station %s: %w", mac, err)
		}
	}

	st := &Station{
		mac:            mac,
		macID:          macID,
		aid:            aid,
		connectedSince: t.clk.Now(),
		defrag:         defrag.NewSet(),
		table:          t,
	}
	st.budget.Store(true)

	t.metrics.Allocated(resourcemgr.ClassStation)
	t.insertLocked(st)
	t.appendMemberLocked(st)

	logger.Debug("station allocated", "mac", mac, "mac_id", macID, "aid", aid)
	return st, nil
}

// InsertOrReplace 把站点发布到 mac_id 对应的槽位
//
// 先发布新站点，再把旧占用者移出成员列表并退役。
// 已被移除的站点不能重新发布，返回 ErrStationRetired。
func (t *Table) InsertOrReplace(st *Station) error {
	if st == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTableClosed
	}
	if st.retired.Load() {
		return ErrStationRetired
	}
	t.insertLocked(st)
	return nil
}

// Free 移除站点
//
// 站点若仍在槽位上则清空该槽位；移出成员列表后交给回收域。
// st 为 nil 或已被移除时为空操作。
func (t *Table) Free(st *Station) {
	if st == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.slots[t.slotIndex(st.macID)].CompareAndSwap(st, nil)
	t.removeMemberLocked(st)
	t.retireLocked(st)
}

// Remove 清空 id 对应的槽位并退役原占用者
//
// 槽位为空时为空操作。id 超出范围属于调用方错误，直接 panic。
func (t *Table) Remove(id types.MacID) {
	if uint(id) >= uint(len(t.slots)) {
		panic(fmt.Errorf("remove mac_id %d from table of size %d: %w",
			id, len(t.slots), types.ErrContractViolation))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	old := t.slots[id].Swap(nil)
	if old == nil {
		return
	}
	t.removeMemberLocked(old)
	t.retireLocked(old)
	logger.Debug("station removed", "mac", old.mac, "mac_id", id)
}

// AllocTID 为站点的 tid 创建新的重排序上下文
//
// 已有上下文时新上下文接管其预算，随后旧上下文被退役。预算耗尽时槽位
// 发布为空并返回 ErrResourceExhausted，该 TID 的帧按未缓存处理。
// st 为 nil 或 tid 超出 0–15 属于调用方错误，直接 panic。
func (t *Table) AllocTID(st *Station, tid types.TID, ssn uint16) error {
	if st == nil {
		panic(fmt.Errorf("alloc tid %d for nil station: %w", tid, types.ErrContractViolation))
	}
	if !tid.Valid() {
		panic(fmt.Errorf("alloc tid %d: %w", tid, types.ErrContractViolation))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if st.retired.Load() {
		return ErrStationRetired
	}

	c, err := t.tids.Renew(st.reorder[tid].Load(), st, tid, ssn)
	if err != nil {
		logger.Warn("reorder context alloc failed", "mac", st.mac, "tid", tid, "err", err)
	}
	t.tids.Replace(&st.reorder[tid], c)
	return err
}

// SetGroupKey 发布第 idx 个组密钥并退役旧密钥
//
// k 为 nil 时清除。idx 超出 0–3 属于调用方错误，直接 panic。
func (t *Table) SetGroupKey(idx uint8, k *cipherkey.Key) error {
	if int(idx) >= types.MaxGroupKeys {
		panic(fmt.Errorf("set group key %d: %w", idx, types.ErrContractViolation))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		t.keys.Free(k)
		return ErrTableClosed
	}
	t.keys.Replace(&t.groupKeys[idx], k)
	return nil
}

// Close 移除全部站点与组密钥
//
// 之后的 Alloc 返回 ErrTableClosed。析构仍由回收域异步完成。
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true

	n := 0
	for i := range t.slots {
		if st := t.slots[i].Swap(nil); st != nil {
			t.retireLocked(st)
			n++
		}
	}
	// 重复退役为空操作
	for _, st := range *t.members.Load() {
		t.retireLocked(st)
	}
	empty := make([]*Station, 0)
	t.members.Store(&empty)

	for i := range t.groupKeys {
		t.keys.Replace(&t.groupKeys[i], nil)
	}
	logger.Info("station table closed", "stations", n)
	return nil
}

// ============================================================================
//                              内部
// ============================================================================

func (t *Table) slotIndex(id types.MacID) int {
	return int(uint(id) % uint(len(t.slots)))
}

// insertLocked 发布站点并退役旧占用者
func (t *Table) insertLocked(st *Station) {
	idx := t.slotIndex(st.macID)
	if uint(st.macID) != uint(idx) {
		logger.Warn("mac_id wrapped into slot", "mac_id", st.macID, "slot", idx, "size", len(t.slots))
		t.metrics.SlotWrapped()
	}

	old := t.slots[idx].Swap(st)
	if old == nil || old == st {
		return
	}
	t.removeMemberLocked(old)
	t.retireLocked(old)
}

func (t *Table) appendMemberLocked(st *Station) {
	cur := *t.members.Load()
	next := make([]*Station, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, st)
	t.members.Store(&next)
}

func (t *Table) removeMemberLocked(st *Station) {
	cur := *t.members.Load()
	for i, m := range cur {
		if m != st {
			continue
		}
		next := make([]*Station, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		t.members.Store(&next)
		return
	}
}

// retireLocked 把站点交给回收域，重复调用为空操作
//
// 析构时清空分片队列，级联退役重排序上下文与密钥，最后归还仍持有的预算。
func (t *Table) retireLocked(st *Station) {
	if !st.retired.CompareAndSwap(false, true) {
		return
	}
	t.metrics.Retired(resourcemgr.ClassStation)
	t.dom.Retire(func() {
		if n := st.defrag.Purge(); n > 0 {
			logger.Debug("station fragments purged", "mac", st.mac, "frames", n)
		}
		for i := range st.reorder {
			t.tids.Replace(&st.reorder[i], nil)
		}
		t.keys.Replace(&st.key, nil)
		if st.budget.CompareAndSwap(true, false) {
			t.rm.Release(resourcemgr.ClassStation)
		}
		t.metrics.Freed(resourcemgr.ClassStation)
	})
}

func (t *Table) setKey(st *Station, k *cipherkey.Key) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st.retired.Load() {
		t.keys.Free(k)
		return ErrStationRetired
	}
	t.keys.Replace(&st.key, k)
	return nil
}
