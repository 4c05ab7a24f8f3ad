package types

//go:generate mockgen -source=frame.go -destination=mocks/frame.go -package=mocks

// Frame 接收路径缓存的一帧
//
// 帧的所有权随缓存位置转移：放入重排序窗口或分片队列后由其持有，
// 被清除时调用 Release 归还底层缓冲区。Release 只会被调用一次。
type Frame interface {
	// Len 帧长度（字节）
	Len() int

	// Release 归还帧占用的缓冲区
	Release()
}
