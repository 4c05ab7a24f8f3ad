package cipherkey

import (
	"fmt"
	"sync/atomic"

	"github.com/dep2p/go-wlansta/pkg/types"
)

// pnMask 48 位分组序号掩码
const pnMask = 1<<48 - 1

// maxKeyLen 最长密钥（TKIP）
const maxKeyLen = types.KeyLenTKIP

// SeqState 按加密类型区分的序列号状态
//
// 具体类型为 *WEPSeq、*TKIPSeq、*CCMPSeq 之一，使用类型 switch 区分。
type SeqState interface {
	// Cipher 返回状态所属的加密类型族
	Cipher() types.CipherKind
}

// WEPSeq WEP 的 IV 计数器
type WEPSeq struct {
	kind types.CipherKind
	seq  atomic.Uint32
}

// Cipher 实现 SeqState
func (s *WEPSeq) Cipher() types.CipherKind { return s.kind }

// Value 当前计数值
func (s *WEPSeq) Value() uint32 { return s.seq.Load() }

// Next 推进并返回新的计数值
func (s *WEPSeq) Next() uint32 { return s.seq.Add(1) }

// pnCounters 独立的发送/接收分组序号
type pnCounters struct {
	tx atomic.Uint64
	rx atomic.Uint64
}

func (c *pnCounters) init(v uint64) {
	c.tx.Store(v)
	c.rx.Store(v)
}

// TxSeq 当前发送序号
func (c *pnCounters) TxSeq() uint64 { return c.tx.Load() }

// RxSeq 最近接受的接收序号
func (c *pnCounters) RxSeq() uint64 { return c.rx.Load() }

// AdvanceTx 推进发送序号并返回新值（48 位回绕）
func (c *pnCounters) AdvanceTx() uint64 {
	for {
		cur := c.tx.Load()
		next := (cur + 1) & pnMask
		if c.tx.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// ObserveRx 记录最近接受的接收序号
func (c *pnCounters) ObserveRx(v uint64) { c.rx.Store(v & pnMask) }

// TKIPSeq TKIP 的 TSC 计数器
type TKIPSeq struct{ pnCounters }

// Cipher 实现 SeqState
func (*TKIPSeq) Cipher() types.CipherKind { return types.CipherTKIP }

// CCMPSeq CCMP 的 PN 计数器
type CCMPSeq struct{ pnCounters }

// Cipher 实现 SeqState
func (*CCMPSeq) Cipher() types.CipherKind { return types.CipherCCMP }

// Key 一个密钥槽位的记录
//
// 除序列号计数器外不可变。
type Key struct {
	suite    types.CipherSuite
	kind     types.CipherKind
	index    uint8
	pairwise bool
	mac      types.MACAddr

	material [maxKeyLen]byte
	seq      SeqState

	wiped atomic.Bool
}

// Suite 密码套件选择子
func (k *Key) Suite() types.CipherSuite { return k.suite }

// Kind 固件加密类型
func (k *Key) Kind() types.CipherKind { return k.kind }

// Index 密钥索引（组密钥 0–3）
func (k *Key) Index() uint8 { return k.index }

// Pairwise 是否为成对密钥
func (k *Key) Pairwise() bool { return k.pairwise }

// MAC 成对密钥对应的对端地址
func (k *Key) MAC() types.MACAddr { return k.mac }

// KeyLen 密钥长度，由加密类型唯一确定
func (k *Key) KeyLen() int { return k.kind.KeyLen() }

// Material 密钥字节
//
// 返回的切片只读，且只在读侧临界区内有效：密钥退役并经过宽限期后会被擦除。
func (k *Key) Material() []byte { return k.material[:k.kind.KeyLen()] }

// Seq 序列号状态
func (k *Key) Seq() SeqState { return k.seq }

// Wiped 密钥字节是否已被擦除（仅在回收之后为 true）
func (k *Key) Wiped() bool { return k.wiped.Load() }

// String 日志用描述，不包含密钥字节
func (k *Key) String() string {
	if k.pairwise {
		return fmt.Sprintf("%s pairwise idx=%d peer=%s", k.kind, k.index, k.mac)
	}
	return fmt.Sprintf("%s group idx=%d", k.kind, k.index)
}

// wipe 擦除密钥字节
func (k *Key) wipe() {
	clear(k.material[:])
	k.wiped.Store(true)
}
