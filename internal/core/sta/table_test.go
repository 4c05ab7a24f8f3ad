package sta

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-wlansta/config"
	"github.com/dep2p/go-wlansta/internal/core/reclaim"
	"github.com/dep2p/go-wlansta/internal/core/reorder"
	"github.com/dep2p/go-wlansta/internal/core/resourcemgr"
	"github.com/dep2p/go-wlansta/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

type fixture struct {
	dom   *reclaim.Domain
	rm    *resourcemgr.Manager
	mock  *clock.Mock
	table *Table
}

func newFixture(t *testing.T, size int, res config.ResourceConfig, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		dom:  reclaim.New(reclaim.DefaultConfig()),
		rm:   resourcemgr.New(res),
		mock: clock.NewMock(),
	}
	t.Cleanup(func() { _ = f.dom.Close() })

	opts = append([]Option{WithResources(f.rm), WithClock(f.mock)}, opts...)
	f.table = New(Config{Size: size, FlushTimeout: 100 * time.Millisecond}, f.dom, opts...)
	return f
}

func (f *fixture) quiesce(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.dom.Quiesce(ctx))
}

func mac(b byte) types.MACAddr {
	return types.MACAddr{0x02, 0x00, 0x00, 0x00, 0x00, b}
}

type testFrame struct {
	released atomic.Int32
}

func (f *testFrame) Len() int  { return 64 }
func (f *testFrame) Release() { f.released.Add(1) }

// contractPanic 执行 fn 并返回其 panic 值（若为 error）
func contractPanic(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
			if err == nil {
				err = errors.New("non-error panic")
			}
		}
	}()
	fn()
	return nil
}

// checkMembership 成员快照与非空槽位一致
func checkMembership(t *testing.T, tb *Table) {
	t.Helper()
	g := tb.Enter()
	defer g.Exit()

	inSlots := make(map[*Station]bool)
	for i := 0; i < tb.Size(); i++ {
		if st := tb.LookupByID(types.MacID(i)); st != nil {
			inSlots[st] = true
		}
	}
	var members []*Station
	tb.Range(func(st *Station) bool {
		members = append(members, st)
		return true
	})
	assert.Len(t, members, len(inSlots))
	for _, st := range members {
		assert.True(t, inSlots[st], "member %s not in any slot", st.MAC())
	}
}

// ============================================================================
//                              查找
// ============================================================================

func TestScenarioA_ReplaceSameSlot(t *testing.T) {
	f := newFixture(t, 32, config.ResourceConfig{})

	m1, err := f.table.Alloc(mac(1), 3, 1)
	require.NoError(t, err)

	g := f.table.Enter()
	assert.Same(t, m1, f.table.LookupByID(3))
	g.Exit()

	m2, err := f.table.Alloc(mac(2), 3, 2)
	require.NoError(t, err)

	g = f.table.Enter()
	assert.Same(t, m2, f.table.LookupByID(3))
	assert.Nil(t, f.table.LookupByMAC(mac(1)))
	assert.Same(t, m2, f.table.LookupByMAC(mac(2)))
	g.Exit()

	assert.True(t, m1.Retired())
	assert.False(t, m2.Retired())
	assert.Equal(t, 1, f.table.Len())
	assert.Same(t, m2, f.table.LookupByPosition(0))
	checkMembership(t, f.table)
}

func TestScenarioA_StationPresetReassociates(t *testing.T) {
	cfg := config.NewConfig()
	require.NoError(t, config.ApplyPreset(cfg, "station"))
	require.Equal(t, 1, cfg.Resource.MaxStations)
	f := newFixture(t, 32, cfg.Resource)

	m1, err := f.table.Alloc(mac(1), 3, 1)
	require.NoError(t, err)

	// 同一槽位重新关联时接管旧站点的预算
	m2, err := f.table.Alloc(mac(2), 3, 1)
	require.NoError(t, err)

	g := f.table.Enter()
	assert.Same(t, m2, f.table.LookupByID(3))
	assert.Nil(t, f.table.LookupByMAC(mac(1)))
	g.Exit()
	assert.True(t, m1.Retired())

	f.quiesce(t)
	assert.Equal(t, 1, f.rm.Used(resourcemgr.ClassStation))

	// 其他槽位仍受上限约束
	_, err = f.table.Alloc(mac(3), 4, 2)
	assert.ErrorIs(t, err, types.ErrResourceExhausted)

	f.table.Remove(3)
	f.quiesce(t)
	assert.Equal(t, 0, f.rm.Used(resourcemgr.ClassStation))
}

func TestScenarioE_LookupByPosition(t *testing.T) {
	f := newFixture(t, 32, config.ResourceConfig{})

	for _, idx := range []int{0, 1, 5, 100} {
		assert.Nil(t, f.table.LookupByPosition(idx))
	}

	var want []*Station
	for i, id := range []types.MacID{7, 2, 11} {
		st, err := f.table.Alloc(mac(byte(i)), id, types.AID(i))
		require.NoError(t, err)
		want = append(want, st)
	}

	g := f.table.Enter()
	defer g.Exit()
	for i, st := range want {
		assert.Same(t, st, f.table.LookupByPosition(i))
	}
	assert.Nil(t, f.table.LookupByPosition(3))
	assert.Nil(t, f.table.LookupByPosition(-1))
}

func TestLookupByID_OutOfRange(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})
	assert.Nil(t, f.table.LookupByID(8))
	assert.Nil(t, f.table.LookupByID(1000))
}

func TestLookupByMAC_Missing(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})
	_, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)
	assert.Nil(t, f.table.LookupByMAC(mac(9)))
}

func TestInsert_WrapsModuloSize(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	st, err := f.table.Alloc(mac(1), 8+3, 1)
	require.NoError(t, err)

	g := f.table.Enter()
	assert.Same(t, st, f.table.LookupByID(3))
	g.Exit()
	assert.Equal(t, types.MacID(11), st.MacID())
}

// ============================================================================
//                              控制路径
// ============================================================================

func TestRemove(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	st, err := f.table.Alloc(mac(1), 4, 1)
	require.NoError(t, err)

	f.table.Remove(5)
	assert.Equal(t, 1, f.table.Len())

	f.table.Remove(4)
	assert.Nil(t, f.table.LookupByID(4))
	assert.Equal(t, 0, f.table.Len())
	assert.True(t, st.Retired())

	f.quiesce(t)
	assert.Equal(t, 0, f.rm.Used(resourcemgr.ClassStation))
}

func TestRemove_OutOfRangePanics(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	err := contractPanic(func() { f.table.Remove(8) })
	assert.ErrorIs(t, err, types.ErrContractViolation)

	err = contractPanic(func() { f.table.Remove(7) })
	assert.NoError(t, err)
}

func TestFree(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	st, err := f.table.Alloc(mac(1), 2, 1)
	require.NoError(t, err)

	f.table.Free(st)
	assert.Nil(t, f.table.LookupByID(2))
	assert.Equal(t, 0, f.table.Len())

	// 重复释放与 nil 都是空操作
	f.table.Free(st)
	f.table.Free(nil)

	f.quiesce(t)
	assert.Equal(t, 0, f.rm.Used(resourcemgr.ClassStation))
}

func TestFree_ReplacedStationKeepsSuccessor(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	old, err := f.table.Alloc(mac(1), 2, 1)
	require.NoError(t, err)
	cur, err := f.table.Alloc(mac(2), 2, 2)
	require.NoError(t, err)

	f.table.Free(old)
	assert.Same(t, cur, f.table.LookupByID(2))
	assert.Equal(t, 1, f.table.Len())
}

func TestInsertOrReplace_Retired(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)
	require.NoError(t, f.table.InsertOrReplace(st))
	assert.Equal(t, 1, f.table.Len())

	f.table.Free(st)
	assert.ErrorIs(t, f.table.InsertOrReplace(st), ErrStationRetired)
	assert.Nil(t, f.table.LookupByID(1))
}

func TestAlloc_Exhausted(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{MaxStations: 1})

	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)

	_, err = f.table.Alloc(mac(2), 2, 2)
	assert.ErrorIs(t, err, types.ErrResourceExhausted)
	assert.Nil(t, f.table.LookupByID(2))
	assert.Equal(t, 1, f.table.Len())

	// 释放并经过宽限期后预算可以复用
	f.table.Free(st)
	f.quiesce(t)
	_, err = f.table.Alloc(mac(2), 2, 2)
	assert.NoError(t, err)
}

func TestStatus(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)
	st.SetSignal(-42)

	f.mock.Add(5 * time.Second)

	s := st.Status()
	assert.Equal(t, 5*time.Second, s.Connected)
	assert.Equal(t, -42, s.Signal)
	assert.Equal(t, types.AID(1), st.AID())
	assert.Equal(t, mac(1), st.MAC())
}

// ============================================================================
//                              重排序上下文
// ============================================================================

func TestScenarioD_AllocTID(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)
	require.NoError(t, f.table.AllocTID(st, 5, 16))

	g := f.table.Enter()
	defer g.Exit()
	rx := st.TID(5)
	require.NotNil(t, rx)

	rx.Lock()
	defer rx.Unlock()
	assert.Equal(t, uint16(1), rx.HeadSeq())
	assert.Equal(t, reorder.WindowSize, rx.Size())
	assert.Same(t, st, rx.Owner())
	assert.Nil(t, st.TID(4))
	assert.Nil(t, st.TID(16))
}

func TestAllocTID_ReplaceRetiresFrames(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)
	require.NoError(t, f.table.AllocTID(st, 0, 0))

	old := st.TID(0)
	frames := []*testFrame{{}, {}}
	old.Lock()
	for i, fr := range frames {
		require.NoError(t, old.Store(uint16(i), fr))
	}
	old.Unlock()

	require.NoError(t, f.table.AllocTID(st, 0, 32<<4))
	assert.NotSame(t, old, st.TID(0))

	f.quiesce(t)
	for _, fr := range frames {
		assert.Equal(t, int32(1), fr.released.Load())
	}
	assert.Equal(t, 1, f.rm.Used(resourcemgr.ClassReorder))
}

func TestAllocTID_ReplaceAtLimit(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{MaxReorderContexts: 1})

	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)
	require.NoError(t, f.table.AllocTID(st, 0, 0))
	old := st.TID(0)
	require.NotNil(t, old)

	// 替换同一 TID 时新上下文接管旧上下文的预算
	require.NoError(t, f.table.AllocTID(st, 0, 16<<4))
	cur := st.TID(0)
	require.NotNil(t, cur)
	assert.NotSame(t, old, cur)

	f.quiesce(t)
	old.Lock()
	assert.True(t, old.Dead())
	old.Unlock()
	assert.Equal(t, 1, f.rm.Used(resourcemgr.ClassReorder))

	f.table.Free(st)
	f.quiesce(t)
	assert.Equal(t, 0, f.rm.Used(resourcemgr.ClassReorder))
}

func TestAllocTID_ExhaustedPublishesEmpty(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{MaxReorderContexts: 1})

	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)
	require.NoError(t, f.table.AllocTID(st, 0, 0))
	require.NotNil(t, st.TID(0))

	err = f.table.AllocTID(st, 1, 0)
	assert.ErrorIs(t, err, types.ErrResourceExhausted)
	assert.Nil(t, st.TID(1))
	assert.NotNil(t, st.TID(0))

	f.table.Free(st)
	f.quiesce(t)
	assert.Equal(t, 0, f.rm.Used(resourcemgr.ClassReorder))
}

func TestAllocTID_NilStationPanics(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	err := contractPanic(func() { _ = f.table.AllocTID(nil, 0, 0) })
	assert.ErrorIs(t, err, types.ErrContractViolation)
}

func TestAllocTID_InvalidTIDPanics(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})
	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)

	err = contractPanic(func() { _ = f.table.AllocTID(st, 16, 0) })
	assert.ErrorIs(t, err, types.ErrContractViolation)
}

func TestAllocTID_RetiredStation(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})
	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)
	f.table.Free(st)

	assert.ErrorIs(t, f.table.AllocTID(st, 0, 0), ErrStationRetired)
	assert.Equal(t, 0, f.rm.Used(resourcemgr.ClassReorder))
}

func TestFlushFunc(t *testing.T) {
	var flushed atomic.Int32
	f := newFixture(t, 8, config.ResourceConfig{}, WithFlushFunc(func(c *reorder.Context) {
		flushed.Add(1)
	}))

	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)
	require.NoError(t, f.table.AllocTID(st, 2, 0))

	rx := st.TID(2)
	rx.Lock()
	rx.ArmFlush(0)
	rx.Unlock()

	f.mock.Add(100 * time.Millisecond)
	assert.Eventually(t, func() bool { return flushed.Load() == 1 }, time.Second, time.Millisecond)
}

// ============================================================================
//                              密钥
// ============================================================================

func TestSetKey(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})
	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)

	material := bytes.Repeat([]byte{0x11}, 32)
	k1, err := f.table.Keys().Alloc(types.CipherSuiteTKIP, 0, st.MAC(), true, material)
	require.NoError(t, err)
	k2, err := f.table.Keys().Alloc(types.CipherSuiteCCMP, 0, st.MAC(), true, material)
	require.NoError(t, err)

	require.NoError(t, st.SetKey(k1))
	assert.Same(t, k1, st.Key())
	require.NoError(t, st.SetKey(k2))
	assert.Same(t, k2, st.Key())

	f.quiesce(t)
	assert.True(t, k1.Wiped())
	assert.False(t, k2.Wiped())
	assert.Equal(t, 1, f.rm.Used(resourcemgr.ClassKey))
}

func TestSetKey_SameKeyStaysLive(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})
	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)

	k, err := f.table.Keys().Alloc(types.CipherSuiteCCMP, 0, st.MAC(), true, bytes.Repeat([]byte{9}, 16))
	require.NoError(t, err)
	require.NoError(t, st.SetKey(k))
	require.NoError(t, st.SetKey(k))

	f.quiesce(t)
	assert.Same(t, k, st.Key())
	assert.False(t, k.Wiped())
	assert.Equal(t, byte(9), k.Material()[0])
	assert.Equal(t, 1, f.rm.Used(resourcemgr.ClassKey))

	gk, err := f.table.Keys().Alloc(types.CipherSuiteCCMP, 2, types.MACAddr{}, false, make([]byte, 16))
	require.NoError(t, err)
	require.NoError(t, f.table.SetGroupKey(2, gk))
	require.NoError(t, f.table.SetGroupKey(2, gk))
	f.quiesce(t)
	assert.Same(t, gk, f.table.GroupKey(2))
	assert.False(t, gk.Wiped())
	assert.Equal(t, 2, f.rm.Used(resourcemgr.ClassKey))
}

func TestSetKey_RetiredStationFreesKey(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})
	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)
	f.table.Free(st)

	k, err := f.table.Keys().Alloc(types.CipherSuiteCCMP, 0, st.MAC(), true, make([]byte, 16))
	require.NoError(t, err)
	assert.ErrorIs(t, st.SetKey(k), ErrStationRetired)

	f.quiesce(t)
	assert.True(t, k.Wiped())
	assert.Equal(t, 0, f.rm.Used(resourcemgr.ClassKey))
}

func TestGroupKeys(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	k, err := f.table.Keys().Alloc(types.CipherSuiteCCMP, 1, types.MACAddr{}, false, make([]byte, 16))
	require.NoError(t, err)
	require.NoError(t, f.table.SetGroupKey(1, k))
	assert.Same(t, k, f.table.GroupKey(1))
	assert.Nil(t, f.table.GroupKey(0))
	assert.Nil(t, f.table.GroupKey(9))

	require.NoError(t, f.table.SetGroupKey(1, nil))
	assert.Nil(t, f.table.GroupKey(1))
	f.quiesce(t)
	assert.True(t, k.Wiped())

	err = contractPanic(func() { _ = f.table.SetGroupKey(4, nil) })
	assert.ErrorIs(t, err, types.ErrContractViolation)
}

// ============================================================================
//                              级联回收
// ============================================================================

func TestFree_CascadesToOwnedObjects(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	st, err := f.table.Alloc(mac(1), 1, 1)
	require.NoError(t, err)
	require.NoError(t, f.table.AllocTID(st, 0, 0))
	require.NoError(t, f.table.AllocTID(st, 7, 0))

	k, err := f.table.Keys().Alloc(types.CipherSuiteCCMP, 0, st.MAC(), true, make([]byte, 16))
	require.NoError(t, err)
	require.NoError(t, st.SetKey(k))

	rxFrame, fragFrame := &testFrame{}, &testFrame{}
	rx := st.TID(7)
	rx.Lock()
	require.NoError(t, rx.Store(0, rxFrame))
	rx.Unlock()
	st.Defrag(0).Push(fragFrame)

	// 读者持有 Guard 期间所有对象保持完整
	g := f.table.Enter()
	f.table.Free(st)
	time.Sleep(10 * time.Millisecond)
	assert.False(t, k.Wiped())
	assert.Equal(t, int32(0), rxFrame.released.Load())
	assert.Equal(t, int32(0), fragFrame.released.Load())
	g.Exit()

	f.quiesce(t)
	assert.True(t, k.Wiped())
	assert.Equal(t, int32(1), rxFrame.released.Load())
	assert.Equal(t, int32(1), fragFrame.released.Load())
	assert.Equal(t, resourcemgr.Stat{}, f.rm.Stat())
}

func TestClose(t *testing.T) {
	f := newFixture(t, 8, config.ResourceConfig{})

	for i := 0; i < 3; i++ {
		_, err := f.table.Alloc(mac(byte(i)), types.MacID(i), types.AID(i))
		require.NoError(t, err)
	}
	k, err := f.table.Keys().Alloc(types.CipherSuiteWEP40, 0, types.MACAddr{}, false, make([]byte, 5))
	require.NoError(t, err)
	require.NoError(t, f.table.SetGroupKey(0, k))

	require.NoError(t, f.table.Close())
	require.NoError(t, f.table.Close())
	assert.Equal(t, 0, f.table.Len())
	assert.Nil(t, f.table.GroupKey(0))

	_, err = f.table.Alloc(mac(9), 1, 1)
	assert.ErrorIs(t, err, ErrTableClosed)

	f.quiesce(t)
	assert.Equal(t, resourcemgr.Stat{}, f.rm.Stat())
}

// ============================================================================
//                              并发
// ============================================================================

func TestConcurrent_SlotExclusivity(t *testing.T) {
	f := newFixture(t, 4, config.ResourceConfig{})

	var eg errgroup.Group
	for w := 0; w < 8; w++ {
		w := w
		eg.Go(func() error {
			for i := 0; i < 200; i++ {
				id := types.MacID((w + i) % 6)
				if _, err := f.table.Alloc(mac(byte(w)), id, types.AID(i)); err != nil {
					return err
				}
				if i%5 == 0 {
					f.table.Remove(types.MacID(i % 4))
				}
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	checkMembership(t, f.table)
	assert.LessOrEqual(t, f.table.Len(), 4)

	g := f.table.Enter()
	for i := 0; i < 4; i++ {
		if st := f.table.LookupByID(types.MacID(i)); st != nil {
			assert.Equal(t, i, int(st.MacID())%4)
			assert.False(t, st.Retired())
		}
	}
	g.Exit()

	f.quiesce(t)
	assert.Equal(t, f.table.Len(), f.rm.Used(resourcemgr.ClassStation))
}

func TestConcurrent_NoUseAfterRetire(t *testing.T) {
	f := newFixture(t, 4, config.ResourceConfig{})
	material := make([]byte, 16)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	var violations atomic.Int32
	for r := 0; r < 4; r++ {
		eg.Go(func() error {
			for ctx.Err() == nil {
				g := f.table.Enter()
				for i := 0; i < 4; i++ {
					st := f.table.LookupByID(types.MacID(i))
					if st == nil {
						continue
					}
					if k := st.Key(); k != nil && k.Wiped() {
						violations.Add(1)
					}
					if rx := st.TID(0); rx != nil {
						rx.Lock()
						if rx.Dead() {
							violations.Add(1)
						}
						rx.Unlock()
					}
				}
				g.Exit()
			}
			return nil
		})
	}

	eg.Go(func() error {
		for i := 0; ctx.Err() == nil; i++ {
			st, err := f.table.Alloc(mac(byte(i)), types.MacID(i%4), 1)
			if err != nil {
				return err
			}
			if err := f.table.AllocTID(st, 0, uint16(i)); err != nil {
				return err
			}
			k, err := f.table.Keys().Alloc(types.CipherSuiteCCMP, 0, st.MAC(), true, material)
			if err != nil {
				return err
			}
			if err := st.SetKey(k); err != nil {
				return err
			}
			if i%3 == 0 {
				f.table.Free(st)
			}
		}
		return nil
	})

	require.NoError(t, eg.Wait())
	assert.Equal(t, int32(0), violations.Load())

	require.NoError(t, f.table.Close())
	f.quiesce(t)
	assert.Equal(t, resourcemgr.Stat{}, f.rm.Stat())
}
