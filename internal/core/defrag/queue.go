package defrag

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/dep2p/go-wlansta/pkg/types"
)

// NumQueues 每个站点的分片队列数
const NumQueues = 4

// Queue 分片队列，并发安全
//
// 队列持有放入的帧，直到被 Pop/Drain 取走或被 Purge 释放。
type Queue struct {
	mu    sync.Mutex
	q     *queue.Queue
	bytes int
}

// New 创建空队列
func New() *Queue {
	return &Queue{q: queue.New()}
}

// Push 追加一个分片
func (q *Queue) Push(f types.Frame) {
	if f == nil {
		return
	}
	q.mu.Lock()
	q.q.Add(f)
	q.bytes += f.Len()
	q.mu.Unlock()
}

// Peek 返回队首分片但不取出，空队列返回 nil
func (q *Queue) Peek() types.Frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.q.Length() == 0 {
		return nil
	}
	return q.q.Peek().(types.Frame)
}

// Pop 取出队首分片，空队列返回 nil
func (q *Queue) Pop() types.Frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.q.Length() == 0 {
		return nil
	}
	f := q.q.Remove().(types.Frame)
	q.bytes -= f.Len()
	return f
}

// Drain 按到达顺序取出全部分片，所有权转移给调用方
func (q *Queue) Drain() []types.Frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.q.Length()
	if n == 0 {
		return nil
	}
	out := make([]types.Frame, 0, n)
	for q.q.Length() > 0 {
		out = append(out, q.q.Remove().(types.Frame))
	}
	q.bytes = 0
	return out
}

// Len 分片数
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.q.Length()
}

// Bytes 缓存的总字节数
func (q *Queue) Bytes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.bytes
}

// Purge 释放全部分片，返回释放的数量
func (q *Queue) Purge() int {
	frames := q.Drain()
	for _, f := range frames {
		f.Release()
	}
	return len(frames)
}

// Set 一个站点的全部分片队列
type Set [NumQueues]*Queue

// NewSet 创建初始化好的队列组
func NewSet() Set {
	var s Set
	for i := range s {
		s[i] = New()
	}
	return s
}

// Purge 释放全部队列中的分片
func (s *Set) Purge() int {
	n := 0
	for _, q := range s {
		if q != nil {
			n += q.Purge()
		}
	}
	return n
}
