// Package wlansta 是 802.11 站点核心的入口
//
// 站点核心管理一条无线链路上已知的对端站点，以及每个站点的接收重排序
// 状态和密钥。接收路径只做无锁读取；控制路径在一把锁下发布与替换对象，
// 被替换的对象在宽限期之后才由回收域析构。
//
// # 快速开始
//
//	c, err := wlansta.New(
//	    wlansta.WithPreset("ibss"),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := c.Start(ctx); err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	table := c.Table()
//	st, err := table.Alloc(mac, macID, aid)
//
// # 接收路径
//
//	g := table.Enter()
//	if st := table.LookupByMAC(addr); st != nil {
//	    key := st.Key()
//	    rx := st.TID(tid)
//	    // ...
//	}
//	g.Exit()
//
// # 组件
//
//   - internal/core/reclaim: 基于 epoch 的延迟回收域
//   - internal/core/sta: 站点表与站点记录
//   - internal/core/reorder: 每个 TID 的重排序上下文
//   - internal/core/cipherkey: 密钥存储
//   - internal/core/defrag: 分片队列
//   - internal/core/resourcemgr: 资源预算
//   - internal/core/metrics: Prometheus 指标
package wlansta
