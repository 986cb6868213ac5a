package log

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// current 全局 logger，默认开发模式（彩色、带时间戳、Debug 级别），serve 启动时按配置重建
var current atomic.Pointer[zap.Logger]

// Fields 类型别名，方便调用方构造字段
// 示例: log.Infof(log.Fields{"slug": "hello"}, "博客已创建: %s", title)
type Fields = map[string]any

func init() {
	current.Store(newLogger("debug", true))
}

// newLogger 初始化 zap.Logger
func newLogger(level string, dev bool) *zap.Logger {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(level); err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		// 时间格式调整为 yyyy/MM/dd HH:mm:ss
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
		cfg.DisableStacktrace = true
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

// Setup 按配置重建全局 logger
func Setup(level string, dev bool) {
	SetLogger(newLogger(level, dev))
}

// SetLogger 替换全局 logger 并返回原来的 logger（测试中可传入 zap.NewNop()）
func SetLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return current.Swap(logger)
}

// Sync 刷新缓冲日志，退出前调用
func Sync() {
	_ = current.Load().Sync()
}

// convert Fields 到 zap 字段 slice
func toFields(fields Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}

// Debugf 调试级别日志
func Debugf(fields Fields, format string, args ...interface{}) {
	current.Load().Debug(fmt.Sprintf(format, args...), toFields(fields)...)
}

// Infof 信息级别日志
func Infof(fields Fields, format string, args ...interface{}) {
	current.Load().Info(fmt.Sprintf(format, args...), toFields(fields)...)
}

// Warnf 警告级别日志
func Warnf(fields Fields, format string, args ...interface{}) {
	current.Load().Warn(fmt.Sprintf(format, args...), toFields(fields)...)
}

// Errorf 错误级别日志
func Errorf(fields Fields, format string, args ...interface{}) {
	current.Load().Error(fmt.Sprintf(format, args...), toFields(fields)...)
}
