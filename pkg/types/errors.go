package types

import "errors"

// ============================================================================
//                              资源与参数错误
// ============================================================================

var (
	// ErrResourceExhausted 资源预算耗尽，对应槽位保持为空
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrInvalidCipher 不支持的密码套件
	ErrInvalidCipher = errors.New("invalid cipher suite")

	// ErrInvalidKeyLength 密钥长度与套件不符
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrInvalidKeyIndex 组密钥索引超出 0–3
	ErrInvalidKeyIndex = errors.New("invalid key index")

	// ErrInvalidMAC 无效的硬件地址
	ErrInvalidMAC = errors.New("invalid MAC address")
)

// ============================================================================
//                              契约错误
// ============================================================================

var (
	// ErrContractViolation 受信任的内部调用方违反调用契约
	//
	// 该错误只作为 panic 值出现，不属于正常的错误恢复路径。
	ErrContractViolation = errors.New("contract violation")
)
