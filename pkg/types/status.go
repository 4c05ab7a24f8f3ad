package types

import "time"

// StationStatus 站点状态快照
//
// 对应上层 station_info 中的 connected_time 与 signal 两项。
type StationStatus struct {
	// Connected 自关联以来经过的时间
	Connected time.Duration

	// Signal 最近一次观测到的信号强度（dBm）
	Signal int
}
