package reorder

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-wlansta/pkg/types"
)

const (
	// WindowSize 重排序窗口大小
	WindowSize = 32

	// seqMask 12 位序号空间
	seqMask = 0x0FFF
)

// FlushFunc 刷新定时器到期时调用
//
// 调用时已持有上下文锁，实现不得再调用 Lock。
type FlushFunc func(*Context)

// Owner 上下文所属站点（非拥有引用）
type Owner interface {
	MAC() types.MACAddr
	MacID() types.MacID
}

// Context 一个 TID 的重排序上下文
//
// tid、ssn、size 在发布后不变；其余字段由上下文锁保护。
type Context struct {
	tid  types.TID
	ssn  uint16
	size int

	mu      sync.Mutex
	headSeq uint16
	buf     [WindowSize]types.Frame
	n       int
	dead    bool
	owner   Owner

	clk     clock.Clock
	timer   *clock.Timer
	timeout time.Duration
	flush   FlushFunc

	// release 销毁完成后归还预算
	release func()
	// budget 是否仍持有预算
	budget atomic.Bool
}

func newContext(clk clock.Clock, owner Owner, tid types.TID, ssn uint16, timeout time.Duration, flush FlushFunc) *Context {
	start := ssn >> 4
	return &Context{
		tid:     tid,
		ssn:     start,
		size:    WindowSize,
		headSeq: start,
		owner:   owner,
		clk:     clk,
		timeout: timeout,
		flush:   flush,
	}
}

// TID 业务标识
func (c *Context) TID() types.TID { return c.tid }

// SSN 起始序号（已去掉分片号）
func (c *Context) SSN() uint16 { return c.ssn }

// Size 窗口大小
func (c *Context) Size() int { return c.size }

// Lock 获取上下文锁
func (c *Context) Lock() { c.mu.Lock() }

// Unlock 释放上下文锁
func (c *Context) Unlock() { c.mu.Unlock() }

// ============================================================================
//                              以下方法需持有上下文锁
// ============================================================================

// HeadSeq 下一个期望的序号
func (c *Context) HeadSeq() uint16 { return c.headSeq }

// SetHeadSeq 推进窗口头
func (c *Context) SetHeadSeq(seq uint16) { c.headSeq = seq & seqMask }

// Len 当前缓存的帧数
func (c *Context) Len() int { return c.n }

// Dead 上下文是否已被销毁
func (c *Context) Dead() bool { return c.dead }

// Owner 所属站点，销毁后为 nil
func (c *Context) Owner() Owner { return c.owner }

// Offset 序号相对窗口头的距离（模 4096）
func (c *Context) Offset(seq uint16) int {
	return int((seq - c.headSeq) & seqMask)
}

// Store 缓存一帧
//
// 成功时帧的所有权转移给上下文。
func (c *Context) Store(seq uint16, f types.Frame) error {
	if c.dead {
		return ErrDead
	}
	if c.Offset(seq) >= c.size {
		return ErrOutOfWindow
	}
	idx := int(seq&seqMask) % c.size
	if c.buf[idx] != nil {
		return ErrDuplicate
	}
	c.buf[idx] = f
	c.n++
	return nil
}

// Take 取出序号对应位置的帧，空位返回 nil
//
// 所有权转移给调用方。
func (c *Context) Take(seq uint16) types.Frame {
	idx := int(seq&seqMask) % c.size
	f := c.buf[idx]
	if f != nil {
		c.buf[idx] = nil
		c.n--
	}
	return f
}

// ArmFlush 启动（或重置）刷新定时器
//
// d <= 0 时使用默认超时。已销毁的上下文忽略该调用。
func (c *Context) ArmFlush(d time.Duration) {
	if c.dead {
		return
	}
	if d <= 0 {
		d = c.timeout
	}
	if c.timer == nil {
		c.timer = c.clk.AfterFunc(d, c.onTimer)
		return
	}
	c.timer.Reset(d)
}

// StopFlush 停止刷新定时器
func (c *Context) StopFlush() {
	if c.timer != nil {
		c.timer.Stop()
	}
}

// ============================================================================
//                              内部
// ============================================================================

func (c *Context) onTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dead || c.flush == nil {
		return
	}
	c.flush(c)
}

// detach 断开与站点的反向引用
func (c *Context) detach() {
	c.mu.Lock()
	c.owner = nil
	c.mu.Unlock()
}

// destroy 销毁上下文
//
// 加锁会等待正在执行的定时器回调结束；标记 dead 后，
// 之后才触发的回调不会再访问缓存。返回释放的帧数。
func (c *Context) destroy() int {
	c.mu.Lock()
	c.dead = true
	c.StopFlush()
	c.owner = nil
	purged := 0
	for i, f := range c.buf {
		if f != nil {
			f.Release()
			c.buf[i] = nil
			purged++
		}
	}
	c.n = 0
	c.mu.Unlock()

	if c.release != nil {
		c.release()
	}
	return purged
}
