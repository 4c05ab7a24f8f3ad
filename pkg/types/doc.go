// Package types 定义 wlansta 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 wlansta 内部包。
// 所有类型都是纯值类型，用于在接收路径、控制路径和各核心组件之间传递数据。
//
// # 文件组织
//
//   - ids.go     - MacID, TID, AID 及其取值范围
//   - mac.go     - MACAddr 硬件地址
//   - cipher.go  - CipherSuite 套件选择子, CipherKind 及固定密钥长度
//   - frame.go   - Frame 接收帧抽象（由接收路径提供实现）
//   - status.go  - StationStatus 站点状态快照
//   - errors.go  - 公共错误定义
package types
