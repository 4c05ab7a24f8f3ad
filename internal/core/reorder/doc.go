// Package reorder 实现每个 TID 的接收重排序上下文
//
// 本包只负责上下文的生命周期与窗口约束：
//
//   - 窗口大小固定为 WindowSize，缓存位置 = 序号 % WindowSize
//   - 刷新定时器由注入的 clock 驱动，回调在上下文锁内检查 dead 标记
//   - 销毁时先加锁并标记 dead，再停止定时器，最后释放缓存的帧
//
// 缺口检测、按序投递与超时刷新算法属于接收路径协作方，通过
// Lock/Store/Take/SetHeadSeq 与 FlushFunc 接入。
package reorder
