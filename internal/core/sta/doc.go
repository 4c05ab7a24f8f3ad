// Package sta 实现站点表与站点记录
//
// # 结构
//
// Table 持有固定长度的槽位数组，每个槽位最多发布一个 Station，
// 槽位下标 = mac_id % Size。另有一份按插入顺序排列的成员快照，
// 用于枚举（copy-on-write，读侧无锁）。
//
// Station 持有 16 个 TID 的重排序上下文槽位、一个成对密钥槽位和
// 一组分片队列；Table 另外持有 4 个组密钥槽位。
//
// # 并发模型
//
// 接收路径只做读：在 reclaim.Guard 内调用 Lookup* / Station.TID /
// Station.Key，不加锁、不阻塞。控制路径的所有写操作由表的控制锁串行化，
// 遵循"先发布新对象，再退役旧对象"：
//
//	g := table.Enter()
//	st := table.LookupByMAC(addr)
//	if st != nil {
//	    if rx := st.TID(tid); rx != nil {
//	        rx.Lock()
//	        // 重排序
//	        rx.Unlock()
//	    }
//	}
//	g.Exit()
//
// 退役站点会级联退役它拥有的重排序上下文与密钥；读者在 Guard 内拿到的
// 任何对象在 Exit 之前都不会被析构。
//
// 单个槽位的发布是原子的；不同槽位之间没有原子性保证。
package sta
