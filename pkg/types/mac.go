package types

import (
	"fmt"
	"net"
)

// MACAddr 48 位硬件地址
//
// 使用定长数组而不是 net.HardwareAddr，便于作为值比较和在接收路径上
// 零分配传递。
type MACAddr [6]byte

// BroadcastMAC 广播地址
var BroadcastMAC = MACAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// ParseMAC 解析 "aa:bb:cc:dd:ee:ff" 形式的地址
func ParseMAC(s string) (MACAddr, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return MACAddr{}, fmt.Errorf("%w: %v", ErrInvalidMAC, err)
	}
	return MACAddrFromBytes(hw)
}

// MACAddrFromBytes 从 6 字节切片构造地址
func MACAddrFromBytes(b []byte) (MACAddr, error) {
	var m MACAddr
	if len(b) != len(m) {
		return m, fmt.Errorf("%w: length %d", ErrInvalidMAC, len(b))
	}
	copy(m[:], b)
	return m, nil
}

// String 返回冒号分隔的小写十六进制形式
func (m MACAddr) String() string {
	return net.HardwareAddr(m[:]).String()
}

// IsZero 判断是否为全零地址
func (m MACAddr) IsZero() bool {
	return m == MACAddr{}
}

// IsMulticast 判断是否为组播地址（含广播）
func (m MACAddr) IsMulticast() bool {
	return m[0]&0x01 != 0
}
