package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSize    = 20 // megabytes per log file
	maxBackups = 5
	maxAge     = 14 // days
)

// Setup builds the process logger. mode "release" logs JSON at info level,
// anything else logs human-readable output at debug level. When logFile is
// set, entries are also written as JSON to a rotating file.
func Setup(logFile, mode string) (*zap.Logger, error) {
	var c zap.Config
	if mode == "release" {
		c = zap.NewProductionConfig()
		c.DisableCaller = true
		c.DisableStacktrace = true
	} else {
		c = zap.NewDevelopmentConfig()
	}
	c.OutputPaths = []string{"stderr"}

	if logFile == "" {
		return c.Build()
	}

	level := c.Level
	encoderCfg := c.EncoderConfig
	return c.Build(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			rotateWriteSyncer(logFile),
			level,
		)
		return zapcore.NewTee(core, fileCore)
	}))
}

func rotateWriteSyncer(logFile string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
	})
}
