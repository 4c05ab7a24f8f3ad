package wlansta

import (
	"errors"

	"github.com/dep2p/go-wlansta/internal/core/sta"
	"github.com/dep2p/go-wlansta/pkg/types"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 核心未启动
	ErrNotStarted = errors.New("core not started")

	// ErrAlreadyStarted 核心已启动
	ErrAlreadyStarted = errors.New("core already started")

	// ErrClosed 核心已关闭
	ErrClosed = errors.New("core closed")

	// ────────────────────────────────────────────────────────────────────────
	// 站点与密钥错误（从内部包导出）
	// ────────────────────────────────────────────────────────────────────────

	// ErrResourceExhausted 资源预算耗尽
	ErrResourceExhausted = types.ErrResourceExhausted

	// ErrInvalidCipher 不支持的密码套件
	ErrInvalidCipher = types.ErrInvalidCipher

	// ErrInvalidKeyLength 密钥长度与套件不符
	ErrInvalidKeyLength = types.ErrInvalidKeyLength

	// ErrInvalidKeyIndex 组密钥索引超出 0–3
	ErrInvalidKeyIndex = types.ErrInvalidKeyIndex

	// ErrContractViolation 内部调用方违反契约（只作为 panic 值出现）
	ErrContractViolation = types.ErrContractViolation

	// ErrStationRetired 站点已被移除
	ErrStationRetired = sta.ErrStationRetired

	// ErrTableClosed 站点表已关闭
	ErrTableClosed = sta.ErrTableClosed
)
