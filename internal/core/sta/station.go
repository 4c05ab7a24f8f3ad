package sta

import (
	"sync/atomic"
	"time"

	"github.com/dep2p/go-wlansta/internal/core/cipherkey"
	"github.com/dep2p/go-wlansta/internal/core/defrag"
	"github.com/dep2p/go-wlansta/internal/core/reclaim"
	"github.com/dep2p/go-wlansta/internal/core/reorder"
	"github.com/dep2p/go-wlansta/pkg/types"
)

// 确保 Station 可以作为重排序上下文的所属站点
var _ reorder.Owner = (*Station)(nil)

// Station 一个对端站点的记录
//
// mac、macID、aid 在发布后不变。发布后只有 signal、重排序槽位和
// 密钥槽位会被原地修改。
type Station struct {
	mac            types.MACAddr
	macID          types.MacID
	aid            types.AID
	connectedSince time.Time

	signal atomic.Int32

	reorder [types.NumTIDs]reclaim.Slot[reorder.Context]
	key     reclaim.Slot[cipherkey.Key]
	defrag  defrag.Set

	// table 非拥有引用
	table   *Table
	retired atomic.Bool
	// budget 是否仍持有站点预算；替换同槽位时转交给新站点
	budget atomic.Bool
}

// MAC 硬件地址
func (s *Station) MAC() types.MACAddr { return s.mac }

// MacID 固件槽位编号
func (s *Station) MacID() types.MacID { return s.macID }

// AID 关联 ID
func (s *Station) AID() types.AID { return s.aid }

// ConnectedSince 关联时间
func (s *Station) ConnectedSince() time.Time { return s.connectedSince }

// Signal 最近的信号强度（dBm）
func (s *Station) Signal() int { return int(s.signal.Load()) }

// SetSignal 记录信号强度，最后写入者生效
func (s *Station) SetSignal(dbm int) { s.signal.Store(int32(dbm)) }

// Status 状态快照
func (s *Station) Status() types.StationStatus {
	return types.StationStatus{
		Connected: s.table.clk.Since(s.connectedSince),
		Signal:    s.Signal(),
	}
}

// TID 返回 tid 的重排序上下文，没有时返回 nil
//
// 需在读侧临界区内调用。
func (s *Station) TID(tid types.TID) *reorder.Context {
	if !tid.Valid() {
		return nil
	}
	return s.reorder[tid].Load()
}

// Key 成对密钥，没有时返回 nil
//
// 需在读侧临界区内调用。
func (s *Station) Key() *cipherkey.Key {
	return s.key.Load()
}

// SetKey 发布成对密钥并退役旧密钥
//
// k 为 nil 时清除密钥。站点已被移除时 k 会被直接释放并返回
// ErrStationRetired。
func (s *Station) SetKey(k *cipherkey.Key) error {
	return s.table.setKey(s, k)
}

// Defrag 第 i 个分片队列
func (s *Station) Defrag(i int) *defrag.Queue {
	if i < 0 || i >= defrag.NumQueues {
		return nil
	}
	return s.defrag[i]
}

// Retired 站点是否已被移除
func (s *Station) Retired() bool { return s.retired.Load() }
