// Package logger 根据环境变量配置 wlansta 的全局日志
//
// 支持通过环境变量配置日志级别：
//   - WLANSTA_LOG_LEVEL: 设置日志级别，支持按组件配置
//     格式: 组件=级别,组件=级别,默认级别
//     示例: core/sta=debug,core/reclaim=warn,info
//   - WLANSTA_LOG_FORMAT: 日志格式 (text 或 json)
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// LogFormat 日志输出格式
type LogFormat int

const (
	// FormatText 文本格式（默认）
	FormatText LogFormat = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// 环境变量名
const (
	EnvLevel  = "WLANSTA_LOG_LEVEL"
	EnvFormat = "WLANSTA_LOG_FORMAT"
)

// Config 日志配置
type Config struct {
	// DefaultLevel 默认日志级别
	DefaultLevel slog.Level

	// ComponentLevels 各组件的日志级别
	ComponentLevels map[string]slog.Level

	// Format 输出格式
	Format LogFormat
}

// LevelFor 获取指定组件的日志级别
func (c *Config) LevelFor(component string) slog.Level {
	if level, ok := c.ComponentLevels[component]; ok {
		return level
	}
	return c.DefaultLevel
}

// minLevel 返回所有配置中最低的级别
func (c *Config) minLevel() slog.Level {
	lowest := c.DefaultLevel
	for _, l := range c.ComponentLevels {
		if l < lowest {
			lowest = l
		}
	}
	return lowest
}

// ConfigFromEnv 从环境变量解析配置
func ConfigFromEnv() *Config {
	return Parse(os.Getenv(EnvLevel), os.Getenv(EnvFormat))
}

// Parse 解析级别与格式字符串
func Parse(levelStr, formatStr string) *Config {
	cfg := &Config{
		DefaultLevel:    slog.LevelInfo,
		ComponentLevels: make(map[string]slog.Level),
		Format:          FormatText,
	}
	if levelStr != "" {
		parseLevelConfig(cfg, levelStr)
	}
	if strings.EqualFold(strings.TrimSpace(formatStr), "json") {
		cfg.Format = FormatJSON
	}
	return cfg
}

// parseLevelConfig 解析日志级别配置字符串
// 格式: component=level,component=level,defaultLevel
func parseLevelConfig(cfg *Config, levelStr string) {
	for _, part := range strings.Split(levelStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if name, lvl, ok := strings.Cut(part, "="); ok {
			if level, ok := parseLevel(strings.TrimSpace(lvl)); ok {
				cfg.ComponentLevels[strings.TrimSpace(name)] = level
			}
			continue
		}
		if level, ok := parseLevel(part); ok {
			cfg.DefaultLevel = level
		}
	}
}

// parseLevel 解析日志级别名称
func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
