// Package reclaim 实现延迟回收域（RCU 风格的宽限期机制）。
//
// 接收路径在不加锁的情况下读取共享对象；控制路径原子地发布新对象并
// 退役旧对象。被退役对象的析构函数只会在所有可能仍引用它的读侧临界区
// 结束之后才执行。
//
// # 核心概念
//
//   - Domain: 回收域，持有全局 epoch、读者计数和待执行的析构队列
//   - Guard:  读侧临界区标记，Enter 获取、Exit 释放，永不阻塞
//   - Slot:   可原子发布的指针槽位
//
// # 使用示例
//
//	d := reclaim.New(reclaim.DefaultConfig())
//	defer d.Close()
//
//	// 读侧（接收路径）
//	g := d.Enter()
//	if obj := slot.Load(); obj != nil {
//	    use(obj)
//	}
//	g.Exit()
//
//	// 写侧（控制路径）：先发布新对象，再退役旧对象
//	reclaim.Replace(d, &slot, newObj, func(old *Obj) { old.destroy() })
//
// # 宽限期算法
//
// 读者计数按 epoch 奇偶分为两组。读者先递增当前奇偶组的计数，再复核
// epoch 未变化，否则撤销后重试；写侧翻转 epoch 后等待旧奇偶组归零，
// 即完成一个宽限期。宽限期由后台 goroutine 串行执行，析构函数按退役
// 顺序批量运行。
//
// # 并发安全
//
// Enter/Exit/Load 可在任意 goroutine 中调用且不会阻塞。Retire 不等待读者。
// Synchronize 与 Barrier 会阻塞，只能在控制路径上调用，且调用方不能持有
// Guard，否则会等待自身。
package reclaim
