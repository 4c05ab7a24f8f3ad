package cipherkey

import (
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/dep2p/go-wlansta/internal/core/metrics"
	"github.com/dep2p/go-wlansta/internal/core/reclaim"
	"github.com/dep2p/go-wlansta/internal/core/resourcemgr"
	"github.com/dep2p/go-wlansta/pkg/lib/log"
	"github.com/dep2p/go-wlansta/pkg/types"
)

var logger = log.Logger("core/cipherkey")

// Store 密钥存储
type Store struct {
	dom     *reclaim.Domain
	rm      *resourcemgr.Manager
	metrics *metrics.Metrics

	// invalidWarn 限制非法套件告警频率
	invalidWarn rate.Sometimes
}

// NewStore 创建密钥存储
//
// rm 与 m 可以为 nil。
func NewStore(dom *reclaim.Domain, rm *resourcemgr.Manager, m *metrics.Metrics) *Store {
	return &Store{
		dom:         dom,
		rm:          rm,
		metrics:     m,
		invalidWarn: rate.Sometimes{Interval: 10 * time.Second},
	}
}

// Alloc 分配并初始化一个密钥
//
// 检查顺序：
//  1. 套件必须属于 {WEP40, WEP104, TKIP, CCMP}，否则返回 ErrInvalidCipher
//  2. 组密钥的 idx 必须小于 MaxGroupKeys，否则返回 ErrInvalidKeyIndex
//  3. material 至少包含该类型的固定长度，只拷贝固定长度部分
//  4. 预留密钥预算，耗尽时返回 ErrResourceExhausted
//
// 失败时不保留任何资源。
func (s *Store) Alloc(suite types.CipherSuite, idx uint8, mac types.MACAddr, pairwise bool, material []byte) (*Key, error) {
	kind, ok := suite.Kind()
	if !ok {
		s.metrics.InvalidCipher()
		s.invalidWarn.Do(func() {
			logger.Warn("invalid cipher suite", "suite", suite, "idx", idx, "peer", mac)
		})
		return nil, fmt.Errorf("alloc key: %w: %s", types.ErrInvalidCipher, suite)
	}

	if !pairwise && int(idx) >= types.MaxGroupKeys {
		return nil, fmt.Errorf("alloc key: %w: group index %d", types.ErrInvalidKeyIndex, idx)
	}

	keyLen := kind.KeyLen()
	if len(material) < keyLen {
		return nil, fmt.Errorf("alloc key: %w: %s needs %d bytes, got %d",
			types.ErrInvalidKeyLength, kind, keyLen, len(material))
	}

	if err := s.rm.Reserve(resourcemgr.ClassKey); err != nil {
		return nil, fmt.Errorf("alloc key: %w", err)
	}

	k := &Key{
		suite:    suite,
		kind:     kind,
		index:    idx,
		pairwise: pairwise,
		mac:      mac,
	}
	copy(k.material[:], material[:keyLen])

	switch kind {
	case types.CipherWEP40, types.CipherWEP104:
		ws := &WEPSeq{kind: kind}
		ws.seq.Store(randomWEPSeq())
		k.seq = ws
	case types.CipherTKIP:
		ts := &TKIPSeq{}
		ts.init(1)
		k.seq = ts
	case types.CipherCCMP:
		cs := &CCMPSeq{}
		cs.init(0)
		k.seq = cs
	}

	s.metrics.Allocated(resourcemgr.ClassKey)
	logger.Debug("key allocated", "key", k)
	return k, nil
}

// Free 把密钥交给回收域
//
// 宽限期后擦除密钥字节并归还预算。k 为 nil 时为空操作。
func (s *Store) Free(k *Key) {
	if k == nil {
		return
	}
	s.metrics.Retired(resourcemgr.ClassKey)
	s.dom.Retire(func() {
		k.wipe()
		s.rm.Release(resourcemgr.ClassKey)
		s.metrics.Freed(resourcemgr.ClassKey)
	})
}

// Replace 向槽位发布新密钥并释放旧密钥
//
// k 为 nil 时清空槽位。返回被退役的旧密钥；k 已发布在该槽位时为空操作，
// 返回 nil。
func (s *Store) Replace(slot *reclaim.Slot[Key], k *Key) *Key {
	old := slot.Swap(k)
	if old == k {
		return nil
	}
	s.Free(old)
	return old
}

// randomWEPSeq 随机初始化 WEP IV，只要求重新加密钥后不易与旧值重复
func randomWEPSeq() uint32 {
	return rand.Uint32()
}
