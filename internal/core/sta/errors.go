package sta

import "errors"

var (
	// ErrStationRetired 站点已从表中移除，不能再向其发布对象
	ErrStationRetired = errors.New("station retired")

	// ErrTableClosed 站点表已关闭
	ErrTableClosed = errors.New("station table closed")
)
