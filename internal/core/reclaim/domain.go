package reclaim

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-wlansta/pkg/lib/log"
)

var logger = log.Logger("core/reclaim")

// Observer 回收域事件观察者（由 metrics 实现）
type Observer interface {
	// GracePeriod 一个宽限期完成，d 为等待读者的耗时
	GracePeriod(d time.Duration)

	// Reclaimed 一个析构函数执行完毕
	Reclaimed()

	// Pending 待执行析构函数数量变化
	Pending(n int64)
}

// Option 回收域选项
type Option func(*Domain)

// WithObserver 设置事件观察者
func WithObserver(o Observer) Option {
	return func(d *Domain) {
		d.observer = o
	}
}

// Domain 延迟回收域
type Domain struct {
	cfg Config

	// 读侧状态
	epoch   atomic.Uint64
	readers [2]atomic.Int64

	// gpMu 串行化宽限期；stale 记录被取消的宽限期遗留的奇偶组
	gpMu     sync.Mutex
	stale    bool
	staleBit uint64

	// mu 保护 pending 与 closed
	mu      sync.Mutex
	pending []func()
	closed  bool

	npending     atomic.Int64
	gracePeriods atomic.Uint64
	reclaimed    atomic.Uint64

	kick      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	observer Observer
}

// New 创建回收域并启动后台回收 goroutine
func New(cfg Config, opts ...Option) *Domain {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.MaxPollInterval < cfg.PollInterval {
		cfg.MaxPollInterval = cfg.PollInterval
	}

	d := &Domain{
		cfg:  cfg,
		kick: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	go d.loop()
	return d
}

// ============================================================================
//                              读侧
// ============================================================================

// Guard 读侧临界区
//
// 零值无效，必须由 Domain.Enter 获得，并且只能 Exit 一次。
type Guard struct {
	d      *Domain
	parity uint64
}

// Enter 进入读侧临界区
//
// 永不阻塞、永不失败，可以嵌套。临界区内通过 Slot.Load 获得的对象在
// Exit 之前不会被析构。
func (d *Domain) Enter() Guard {
	for {
		e := d.epoch.Load()
		p := e & 1
		d.readers[p].Add(1)
		if d.epoch.Load() == e {
			return Guard{d: d, parity: p}
		}
		// 与宽限期翻转交错，撤销后按新 epoch 重试
		d.readers[p].Add(-1)
	}
}

// Exit 退出读侧临界区
func (g Guard) Exit() {
	g.d.readers[g.parity].Add(-1)
}

// Read 在读侧临界区内执行 fn
func (d *Domain) Read(fn func()) {
	g := d.Enter()
	defer g.Exit()
	fn()
}

// ============================================================================
//                              写侧
// ============================================================================

// Retire 登记一个析构函数
//
// fn 在所有于本次调用之前开始的读侧临界区结束后执行。Retire 本身不等待
// 读者，析构在后台 goroutine 上异步完成；同一回收域内析构按登记顺序执行。
// 回收域关闭后仍可调用，此时析构由独立 goroutine 在宽限期后执行。
func (d *Domain) Retire(fn func()) {
	if fn == nil {
		return
	}
	d.notePending(d.npending.Add(1))

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		go func() {
			d.synchronize(context.Background())
			d.run(fn)
		}()
		return
	}
	d.pending = append(d.pending, fn)
	d.mu.Unlock()

	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// Synchronize 等待一个完整的宽限期
//
// 返回时，所有在调用之前开始的读侧临界区都已结束。调用方不能持有 Guard。
func (d *Domain) Synchronize(ctx context.Context) error {
	return d.synchronize(ctx)
}

// Barrier 等待调用之前登记的所有析构函数执行完毕
//
// 析构函数在执行过程中再次登记的析构不在等待范围内，需要完全静默时
// 使用 Quiesce。
func (d *Domain) Barrier(ctx context.Context) error {
	ch := make(chan struct{})
	d.Retire(func() { close(ch) })

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Quiesce 等待回收域完全静默（没有任何待执行的析构函数）
func (d *Domain) Quiesce(ctx context.Context) error {
	for {
		if err := d.Barrier(ctx); err != nil {
			return err
		}
		if d.npending.Load() == 0 {
			return nil
		}
	}
}

// Close 停止后台 goroutine
//
// 关闭前会执行完所有已登记（包括级联登记）的析构函数。
func (d *Domain) Close() error {
	d.closeOnce.Do(func() {
		close(d.stop)
	})
	<-d.done
	return nil
}

// ============================================================================
//                              统计
// ============================================================================

// Stats 回收域统计
type Stats struct {
	Epoch        uint64
	Readers      int64
	Pending      int64
	GracePeriods uint64
	Reclaimed    uint64
}

// Stats 返回当前统计快照
func (d *Domain) Stats() Stats {
	return Stats{
		Epoch:        d.epoch.Load(),
		Readers:      d.readers[0].Load() + d.readers[1].Load(),
		Pending:      d.npending.Load(),
		GracePeriods: d.gracePeriods.Load(),
		Reclaimed:    d.reclaimed.Load(),
	}
}

// ============================================================================
//                              内部实现
// ============================================================================

// loop 后台回收循环
func (d *Domain) loop() {
	defer close(d.done)

	for {
		select {
		case <-d.kick:
			d.reclaimPending()
		case <-d.stop:
			d.drain()
			return
		}
	}
}

// drain 执行全部待回收项并标记关闭
func (d *Domain) drain() {
	for {
		d.mu.Lock()
		if len(d.pending) == 0 {
			d.closed = true
			d.mu.Unlock()
			logger.Debug("reclaim domain closed", "grace_periods", d.gracePeriods.Load())
			return
		}
		d.mu.Unlock()
		d.reclaimPending()
	}
}

// reclaimPending 取出当前批次，等待宽限期后执行
func (d *Domain) reclaimPending() {
	d.mu.Lock()
	batch := d.pending
	d.pending = nil
	d.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	d.synchronize(context.Background())
	for _, fn := range batch {
		d.run(fn)
	}
}

// run 执行单个析构函数
func (d *Domain) run(fn func()) {
	d.notePending(d.npending.Add(-1))
	fn()
	d.reclaimed.Add(1)
	if d.observer != nil {
		d.observer.Reclaimed()
	}
}

func (d *Domain) notePending(n int64) {
	if d.observer != nil {
		d.observer.Pending(n)
	}
}

// synchronize 翻转 epoch 并等待旧奇偶组的读者全部退出
func (d *Domain) synchronize(ctx context.Context) error {
	d.gpMu.Lock()
	defer d.gpMu.Unlock()

	start := time.Now()
	if d.stale {
		// 上一次等待被取消，该奇偶组已不再接收新读者，先把它等空
		if err := d.waitReaders(ctx, d.staleBit); err != nil {
			return err
		}
		d.stale = false
	}

	old := d.epoch.Add(1) - 1
	if err := d.waitReaders(ctx, old&1); err != nil {
		d.stale, d.staleBit = true, old&1
		return err
	}

	d.gracePeriods.Add(1)
	if d.observer != nil {
		d.observer.GracePeriod(time.Since(start))
	}
	return nil
}

// waitReaders 以退避方式等待指定奇偶组计数归零
func (d *Domain) waitReaders(ctx context.Context, parity uint64) error {
	interval := d.cfg.PollInterval
	for i := 0; d.readers[parity].Load() != 0; i++ {
		if i < d.cfg.SpinRounds {
			runtime.Gosched()
			continue
		}

		t := time.NewTimer(interval)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
		if interval *= 2; interval > d.cfg.MaxPollInterval {
			interval = d.cfg.MaxPollInterval
		}
	}
	return nil
}
