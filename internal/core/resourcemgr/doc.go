// Package resourcemgr 实现站点核心的资源预算
//
// 预算按对象类别计数：站点记录、重排序上下文、密钥。分配前 Reserve，
// 对象在宽限期后真正回收时 Release。预算耗尽对应 ResourceExhaustion：
// 调用方让对应槽位保持为空并继续运行。
//
// nil *Manager 表示不限制，所有方法都可以在 nil 上调用。
package resourcemgr
