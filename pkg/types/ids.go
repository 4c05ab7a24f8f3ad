package types

import "strconv"

// MacID 固件分配的站点槽位编号
//
// 站点表按 MacID 取模定位槽位，见 core/sta。
type MacID uint

// String 返回十进制表示
func (id MacID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// AID 802.11 关联 ID
type AID uint16

// TID 802.11 业务标识（Traffic Identifier），取值 0–15
type TID uint8

// NumTIDs TID 数量，每个站点对应一个等长的重排序上下文数组
const NumTIDs = 16

// Valid 判断 TID 是否在 0–15 范围内
func (t TID) Valid() bool {
	return t < NumTIDs
}
