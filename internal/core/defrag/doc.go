// Package defrag 提供站点的分片缓存队列
//
// 每个站点持有 NumQueues 个队列，接收路径把同一 MSDU 的分片依次放入，
// 重组由外部协作方完成。本包只负责持有分片并在站点回收时释放它们。
package defrag
