package reclaim

import "sync/atomic"

// Slot 可原子发布的指针槽位
//
// 写侧必须在对象完全初始化之后才 Store/Swap；读侧在 Guard 内 Load。
// 零值为空槽位。
type Slot[T any] struct {
	p atomic.Pointer[T]
}

// Load 读取当前对象，空槽位返回 nil
func (s *Slot[T]) Load() *T {
	return s.p.Load()
}

// Store 发布对象（不处理旧对象）
func (s *Slot[T]) Store(v *T) {
	s.p.Store(v)
}

// Swap 发布对象并返回旧对象
func (s *Slot[T]) Swap(v *T) *T {
	return s.p.Swap(v)
}

// CompareAndSwap 仅当槽位仍持有 old 时发布 v
func (s *Slot[T]) CompareAndSwap(old, v *T) bool {
	return s.p.CompareAndSwap(old, v)
}

// Replace 向槽位发布 v，并在宽限期后对旧对象执行 destroy
//
// 并发读者要么看到旧对象，要么看到新对象，不会看到空槽位（除非 v 为 nil）。
// 返回被退役的旧对象（可能为 nil），调用方不得再释放它。
func Replace[T any](d *Domain, s *Slot[T], v *T, destroy func(*T)) *T {
	old := s.Swap(v)
	if old != nil && destroy != nil {
		d.Retire(func() { destroy(old) })
	}
	return old
}
