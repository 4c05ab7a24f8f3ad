// Package lib 包含基础设施工具库
//
// 本目录包含与站点核心无关的通用工具库：
//
//   - log: 日志封装（懒加载 slog，带 component 属性）
//
// # 与 pkg/ 其他目录的关系
//
//   - types/: 公共类型定义（MAC 地址、TID、密码套件、错误）
//   - lib/: 基础设施工具库（本目录）
package lib
