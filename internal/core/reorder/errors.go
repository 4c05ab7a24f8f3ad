package reorder

import "errors"

var (
	// ErrOutOfWindow 序号不在 [head, head+WindowSize) 范围内
	ErrOutOfWindow = errors.New("sequence number outside reorder window")

	// ErrDuplicate 对应窗口位置已缓存一帧
	ErrDuplicate = errors.New("reorder slot already occupied")

	// ErrDead 上下文已被销毁
	ErrDead = errors.New("reorder context destroyed")
)
