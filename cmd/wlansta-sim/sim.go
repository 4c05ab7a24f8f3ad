package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	wlansta "github.com/dep2p/go-wlansta"
	"github.com/dep2p/go-wlansta/internal/core/reorder"
	"github.com/dep2p/go-wlansta/pkg/types"
)

// simFrame 模拟的接收帧
type simFrame struct {
	n        int
	released *atomic.Int64
}

func (f *simFrame) Len() int  { return f.n }
func (f *simFrame) Release() { f.released.Add(1) }

var suites = []types.CipherSuite{
	types.CipherSuiteCCMP,
	types.CipherSuiteTKIP,
	types.CipherSuiteWEP104,
	types.CipherSuiteWEP40,
	types.CipherSuite(0x000FAC03), // 非法套件
}

type simulator struct {
	core   *wlansta.Core
	macIDs int

	lookups   atomic.Int64
	hits      atomic.Int64
	buffered  atomic.Int64
	released  atomic.Int64
	allocs    atomic.Int64
	removes   atomic.Int64
	exhausted atomic.Int64
	rejected  atomic.Int64
}

func newSimulator(core *wlansta.Core, macIDs int) *simulator {
	if macIDs <= 0 {
		macIDs = core.Table().Size()
	}
	return &simulator{core: core, macIDs: macIDs}
}

// flushInOrder 刷新定时器回调：按序投递窗口头部连续的帧
func flushInOrder(rx *reorder.Context) {
	head := rx.HeadSeq()
	for {
		f := rx.Take(head)
		if f == nil {
			break
		}
		f.Release()
		head++
	}
	rx.SetHeadSeq(head)
}

func (s *simulator) run(ctx context.Context, readers int) error {
	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < readers; i++ {
		eg.Go(func() error {
			s.readLoop(ctx)
			return nil
		})
	}
	eg.Go(func() error {
		return s.writeLoop(ctx)
	})
	return eg.Wait()
}

// readLoop 接收路径：无锁查找站点并把帧放入重排序窗口
func (s *simulator) readLoop(ctx context.Context) {
	table := s.core.Table()
	for ctx.Err() == nil {
		id := types.MacID(rand.IntN(table.Size()))
		tid := types.TID(rand.IntN(types.NumTIDs))

		g := table.Enter()
		s.lookups.Add(1)
		if st := table.LookupByID(id); st != nil {
			s.hits.Add(1)
			if k := st.Key(); k != nil {
				_ = k.Material()
			}
			if rx := st.TID(tid); rx != nil {
				rx.Lock()
				f := &simFrame{n: 1500, released: &s.released}
				seq := rx.HeadSeq() + uint16(rand.IntN(reorder.WindowSize))
				if err := rx.Store(seq, f); err == nil {
					s.buffered.Add(1)
					rx.ArmFlush(0)
				}
				rx.Unlock()
			}
		}
		g.Exit()
	}
}

// writeLoop 控制路径：关联、建立 BA 会话、安装密钥、移除站点
func (s *simulator) writeLoop(ctx context.Context) error {
	table := s.core.Table()
	keys := s.core.Keys()
	material := make([]byte, 32)

	for i := 0; ctx.Err() == nil; i++ {
		id := types.MacID(rand.IntN(s.macIDs))
		mac := types.MACAddr{0x02, 0, 0, 0, byte(i >> 8), byte(i)}

		st, err := table.Alloc(mac, id, types.AID(i%2008+1))
		if errors.Is(err, wlansta.ErrResourceExhausted) {
			// 目标槽位为空且预算用尽：驱逐任意一个槽位，宽限期后预算归还
			s.exhausted.Add(1)
			table.Remove(types.MacID(rand.IntN(table.Size())))
			continue
		}
		if err != nil {
			return err
		}
		s.allocs.Add(1)

		if err := table.AllocTID(st, types.TID(rand.IntN(types.NumTIDs)), uint16(rand.IntN(4096))<<4); err != nil {
			if !errors.Is(err, wlansta.ErrResourceExhausted) {
				return err
			}
			s.exhausted.Add(1)
		}

		suite := suites[rand.IntN(len(suites))]
		k, err := keys.Alloc(suite, 0, mac, true, material)
		switch {
		case errors.Is(err, wlansta.ErrInvalidCipher):
			s.rejected.Add(1)
		case errors.Is(err, wlansta.ErrResourceExhausted):
			s.exhausted.Add(1)
		case err != nil:
			return err
		default:
			if err := st.SetKey(k); err != nil {
				return err
			}
		}

		if i%64 == 0 {
			gk, err := keys.Alloc(types.CipherSuiteCCMP, uint8(i/64%types.MaxGroupKeys), types.MACAddr{}, false, material)
			if err == nil {
				if err := table.SetGroupKey(gk.Index(), gk); err != nil {
					return err
				}
			}
		}

		if rand.IntN(4) == 0 {
			table.Free(st)
			s.removes.Add(1)
		}
	}
	return nil
}

func (s *simulator) report(w io.Writer, stats wlansta.Stats) {
	fmt.Fprintln(w, "── 接收路径 ──")
	fmt.Fprintf(w, "  lookups   %d (hits %d)\n", s.lookups.Load(), s.hits.Load())
	fmt.Fprintf(w, "  buffered  %d (released %d)\n", s.buffered.Load(), s.released.Load())
	fmt.Fprintln(w, "── 控制路径 ──")
	fmt.Fprintf(w, "  allocs    %d\n", s.allocs.Load())
	fmt.Fprintf(w, "  frees     %d\n", s.removes.Load())
	fmt.Fprintf(w, "  exhausted %d\n", s.exhausted.Load())
	fmt.Fprintf(w, "  rejected  %d\n", s.rejected.Load())
	fmt.Fprintln(w, "── 回收域 ──")
	fmt.Fprintf(w, "  grace periods %d\n", stats.Reclaim.GracePeriods)
	fmt.Fprintf(w, "  reclaimed     %d\n", stats.Reclaim.Reclaimed)
	fmt.Fprintf(w, "  pending       %d\n", stats.Reclaim.Pending)
	fmt.Fprintf(w, "  live          stations=%d reorder=%d keys=%d\n",
		stats.Resources.Stations, stats.Resources.ReorderContexts, stats.Resources.Keys)
}
