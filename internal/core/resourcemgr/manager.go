package resourcemgr

import (
	"sync/atomic"

	"github.com/dep2p/go-wlansta/config"
	"github.com/dep2p/go-wlansta/pkg/lib/log"
)

var logger = log.Logger("core/resourcemgr")

// Class 资源类别
type Class int

const (
	// ClassStation 站点记录
	ClassStation Class = iota
	// ClassReorder 重排序上下文
	ClassReorder
	// ClassKey 密钥
	ClassKey

	numClasses
)

// String 返回类别名称
func (c Class) String() string {
	switch c {
	case ClassStation:
		return "station"
	case ClassReorder:
		return "reorder"
	case ClassKey:
		return "key"
	default:
		return "unknown"
	}
}

// Stat 资源使用统计
type Stat struct {
	Stations        int
	ReorderContexts int
	Keys            int
}

// Manager 资源预算管理器
type Manager struct {
	limits [numClasses]int64 // 0 表示无限制
	used   [numClasses]atomic.Int64
}

// New 按资源配置创建管理器
func New(cfg config.ResourceConfig) *Manager {
	m := &Manager{}
	m.limits[ClassStation] = int64(cfg.MaxStations)
	m.limits[ClassReorder] = int64(cfg.MaxReorderContexts)
	m.limits[ClassKey] = int64(cfg.MaxKeys)
	return m
}

// Reserve 预留一个单位
//
// 不阻塞；超出限制时返回 ErrResourceLimitExceeded。
func (m *Manager) Reserve(c Class) error {
	if m == nil {
		return nil
	}

	limit := m.limits[c]
	for {
		cur := m.used[c].Load()
		if err := checkLimit(cur+1, limit); err != nil {
			logger.Debug("reservation denied", "class", c, "used", cur, "limit", limit)
			return err
		}
		if m.used[c].CompareAndSwap(cur, cur+1) {
			return nil
		}
	}
}

// Release 归还一个单位
func (m *Manager) Release(c Class) {
	if m == nil {
		return
	}
	if m.used[c].Add(-1) < 0 {
		// 重复归还属于调用方错误，计数回正以免放大影响
		m.used[c].Add(1)
		logger.Error("resource released more than reserved", "class", c)
	}
}

// Used 返回某类别当前占用量
func (m *Manager) Used(c Class) int {
	if m == nil {
		return 0
	}
	return int(m.used[c].Load())
}

// Stat 返回当前资源使用统计
func (m *Manager) Stat() Stat {
	return Stat{
		Stations:        m.Used(ClassStation),
		ReorderContexts: m.Used(ClassReorder),
		Keys:            m.Used(ClassKey),
	}
}

// checkLimit 检查当前值是否超过限制
// limit: 限制值（0 表示无限制）
func checkLimit(current, limit int64) error {
	if limit > 0 && current > limit {
		return ErrResourceLimitExceeded
	}
	return nil
}
