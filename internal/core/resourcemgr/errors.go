package resourcemgr

import (
	"fmt"

	"github.com/dep2p/go-wlansta/pkg/types"
)

var (
	// ErrResourceLimitExceeded 资源限制超出错误
	ErrResourceLimitExceeded = fmt.Errorf("resource limit exceeded: %w", types.ErrResourceExhausted)
)
