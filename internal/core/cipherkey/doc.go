// Package cipherkey 实现密钥存储：密钥的分配、序列号初始化与延迟释放。
//
// 本包只负责密钥的生命周期，不做任何加解密运算。
//
// # 序列号状态
//
// 序列号状态是按加密类型区分的标签联合：
//
//	WEP40/WEP104  单个 32 位计数器，随机初始化（只要求不易重复）
//	TKIP          独立的 tx/rx 48 位计数器，初始值 1
//	CCMP          独立的 tx/rx 48 位计数器，初始值 0
//
// 密钥字节与序列号状态的形态在构造时由加密类型唯一确定，之后不变；
// 计数器只由外部加密引擎推进。
//
// # 释放
//
// Store.Free 把密钥交给回收域，宽限期后擦除密钥字节并归还预算，
// 因此接收路径在读侧临界区内拿到的密钥始终完整可用。
package cipherkey
