// Package metrics 导出站点核心的 Prometheus 指标
//
// 指标分为三组：
//
//   - 存活对象: stations / reorder_contexts / keys（分配时加一，回收时减一）
//   - 退役与回收: retired_total{class}、reclaim_pending、reclaimed_total、
//     grace_period_seconds
//   - 异常: invalid_cipher_total、slot_wraps_total
//
// *Metrics 为 nil 时所有方法都是空操作，关闭指标不需要在调用方判断。
package metrics
