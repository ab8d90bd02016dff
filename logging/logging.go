// Package logging builds the zap logger shared by the server and the CLI.
// Console output is always on; a rotating JSON file sink is added when
// Config.File is set.
package logging

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for the file sink.
const (
	DefaultMaxSizeMB  = 50
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
)

// Config selects the encoder, level and sinks.
type Config struct {
	Development bool   // console encoder with colours at debug level
	File        string // optional path of a rotated JSON log
	Level       string // overrides the level implied by Development
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
}

func (c *Config) setDefaults() {
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = DefaultMaxSizeMB
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = DefaultMaxBackups
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = DefaultMaxAgeDays
	}
}

// New returns a logger for cfg. Callers should Sync it before exit.
func New(cfg Config) (*zap.Logger, error) {
	cfg.setDefaults()
	level := zapcore.InfoLevel
	if cfg.Development {
		level = zapcore.DebugLevel
	}
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}

	consoleEnc := zapcore.NewJSONEncoder(encoderConfig())
	if cfg.Development {
		consoleEnc = zapcore.NewConsoleEncoder(consoleEncoderConfig())
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stdout), level),
	}
	if cfg.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig()),
			FileWriter(cfg),
			level,
		))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// FileWriter returns a size-rotated sink for cfg.File.
func FileWriter(cfg Config) zapcore.WriteSyncer {
	cfg.setDefaults()
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	})
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "source",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	ec := encoderConfig()
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder
	ec.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("15:04:05.000"))
	}
	return ec
}
