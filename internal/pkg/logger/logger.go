package logger

import (
	"os"

	"github.com/Yat-Muk/syncup/internal/pkg/sanitizer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config 日誌配置
type Config struct {
	Level      string // debug, info, warn, error
	OutputPath string // 日誌文件路徑
	MaxSize    int    // 單個文件最大大小（MB）
	MaxBackups int    // 保留的舊日誌文件數量
	MaxAge     int    // 保留的天數
	Compress   bool   // 是否壓縮
	Console    bool   // 是否輸出到控制台
}

// DefaultConfig 返回默認配置
// OutputPath 由調用方在路徑集確定後填入
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
		Console:    false,
	}
}

// New 創建新的日誌記錄器
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core

	// 文件輸出
	if cfg.OutputPath != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.OutputPath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})

		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			fileWriter,
			level,
		))
	}

	// 控制台輸出
	if cfg.Console {
		consoleEncoder := encoderConfig
		consoleEncoder.EncodeLevel = zapcore.CapitalLevelEncoder

		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoder),
			zapcore.AddSync(os.Stderr),
			level,
		))
	}

	core := zapcore.NewTee(cores...)

	return zap.New(
		core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// — 脫敏日誌字段 —

// SanitizedAPIKey 脫敏 API 密鑰字段
func SanitizedAPIKey(key, val string) zap.Field {
	return zap.String(key, sanitizer.APIKey(val))
}

// SanitizedDeviceID 脫敏設備 ID 字段
func SanitizedDeviceID(key, val string) zap.Field {
	return zap.String(key, sanitizer.DeviceID(val))
}
