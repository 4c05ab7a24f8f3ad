package types

import "fmt"

// CipherSuite IEEE 802.11 密码套件选择子（OUI 00-0F-AC + 类型）
type CipherSuite uint32

// 支持的密码套件
const (
	CipherSuiteWEP40  CipherSuite = 0x000FAC01
	CipherSuiteTKIP   CipherSuite = 0x000FAC02
	CipherSuiteCCMP   CipherSuite = 0x000FAC04
	CipherSuiteWEP104 CipherSuite = 0x000FAC05
)

// String 返回套件名称
func (s CipherSuite) String() string {
	if k, ok := s.Kind(); ok {
		return k.String()
	}
	return fmt.Sprintf("unknown(0x%08x)", uint32(s))
}

// Kind 将套件映射为固件加密类型，未知套件返回 false
func (s CipherSuite) Kind() (CipherKind, bool) {
	switch s {
	case CipherSuiteWEP40:
		return CipherWEP40, true
	case CipherSuiteWEP104:
		return CipherWEP104, true
	case CipherSuiteTKIP:
		return CipherTKIP, true
	case CipherSuiteCCMP:
		return CipherCCMP, true
	default:
		return CipherNone, false
	}
}

// CipherKind 固件侧的加密类型
type CipherKind uint8

const (
	// CipherNone 无加密
	CipherNone CipherKind = iota
	// CipherWEP40 WEP-40
	CipherWEP40
	// CipherTKIP TKIP
	CipherTKIP
	// CipherCCMP AES-CCMP
	CipherCCMP
	// CipherWEP104 WEP-104
	CipherWEP104
)

// 各加密类型的固定密钥长度（字节）
const (
	KeyLenWEP40  = 5
	KeyLenWEP104 = 13
	KeyLenTKIP   = 32
	KeyLenCCMP   = 16
)

// String 返回加密类型名称
func (k CipherKind) String() string {
	switch k {
	case CipherWEP40:
		return "WEP40"
	case CipherWEP104:
		return "WEP104"
	case CipherTKIP:
		return "TKIP"
	case CipherCCMP:
		return "CCMP"
	default:
		return "none"
	}
}

// KeyLen 返回加密类型的固定密钥长度，CipherNone 返回 0
func (k CipherKind) KeyLen() int {
	switch k {
	case CipherWEP40:
		return KeyLenWEP40
	case CipherWEP104:
		return KeyLenWEP104
	case CipherTKIP:
		return KeyLenTKIP
	case CipherCCMP:
		return KeyLenCCMP
	default:
		return 0
	}
}

// IsWEP 判断是否为 WEP 族
func (k CipherKind) IsWEP() bool {
	return k == CipherWEP40 || k == CipherWEP104
}

// MaxGroupKeys 组密钥索引数量（key_index 0–3）
const MaxGroupKeys = 4
