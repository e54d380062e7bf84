// Package logging builds the zap loggers shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"linkedin-scraper/internal/models"
)

// Plugin is one log destination
type Plugin = zapcore.Core

// EncoderConfig is the production encoder with capital levels and ISO8601
// timestamps
func EncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// Options adds caller information and stack traces from DPanic up
func Options() []zap.Option {
	var stackTraceLevel zap.LevelEnablerFunc = func(level zapcore.Level) bool {
		return level >= zapcore.DPanicLevel
	}
	return []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(stackTraceLevel),
	}
}

// NewPlugin writes JSON entries at or above enabler to writer
func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(zapcore.NewJSONEncoder(EncoderConfig()), writer, enabler)
}

// NewStderrPlugin logs to stderr. Stdout is left for command output.
func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

// NewFilePlugin logs to a rotating file. lumberjack has no Sync, so the
// returned closer must be closed before exit to flush it.
func NewFilePlugin(path string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	writer := &lumberjack.Logger{
		Filename:  path,
		MaxSize:   100,
		LocalTime: true,
		Compress:  true,
	}
	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the process logger from cfg: stderr always, plus a rotating
// file when LogFile is set
func New(cfg models.Config) (*zap.Logger, io.Closer, error) {
	level := zapcore.InfoLevel
	if cfg.LogLevel != "" {
		parsed, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid log level %q", models.ErrConfiguration, cfg.LogLevel)
		}
		level = parsed
	}

	plugins := []Plugin{NewStderrPlugin(level)}
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		plugin, c := NewFilePlugin(cfg.LogFile, level)
		plugins = append(plugins, plugin)
		closer = c
	}

	return zap.New(zapcore.NewTee(plugins...), Options()...), closer, nil
}
