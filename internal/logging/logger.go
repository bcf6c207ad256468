package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Oniqq60/task_system_control/taskclient/internal/cfg"
)

// New строит логгер по конфигурации. Без LOG_FILE пишет в stderr, чтобы
// stdout оставался за выводом команд.
func New(conf cfg.LogConfig) (*zap.Logger, error) {
	level, err := parseLevel(conf.Level)
	if err != nil {
		return nil, err
	}

	var sink zapcore.WriteSyncer
	if conf.File != "" {
		writer, err := fileWriter(conf)
		if err != nil {
			return nil, err
		}
		sink = zapcore.AddSync(writer)
	} else {
		sink = zapcore.Lock(os.Stderr)
	}

	return NewWithSink(conf.Format, level, sink), nil
}

// NewWithSink is New with an explicit destination.
func NewWithSink(format string, level zapcore.Level, sink zapcore.WriteSyncer) *zap.Logger {
	core := zapcore.NewCore(buildEncoder(format), sink, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func buildEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if strings.EqualFold(format, "json") {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func fileWriter(conf cfg.LogConfig) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(conf.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   conf.File,
		MaxSize:    conf.MaxSizeMB,
		MaxBackups: conf.MaxBackups,
		Compress:   false,
	}, nil
}

func parseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	return l, nil
}
