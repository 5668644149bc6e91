// Package logging builds the process-wide zap logger. Lines look like
//
//	2026-01-04 05:30:12 [INFO    ] - Reporting PRESENT
//
// and go to stderr and, optionally, to a size-rotated file that the web
// panel can serve back.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	timeLayout    = "2006-01-02 15:04:05"
	maxFileSizeMb = 5
	maxBackups    = 3
)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeLevel:      bracketLevel,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

func bracketLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("[%-8s] -", l.CapitalString()))
}

// NewWriter returns a logger that writes every line at level or above to w.
func NewWriter(w io.Writer, level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}

// New returns a logger writing to stderr and, when logFile is not empty, to
// a rotating file at that path.
func New(logFile string) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(encoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapcore.InfoLevel),
	}
	if logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    maxFileSizeMb,
			MaxBackups: maxBackups,
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(rotator), zapcore.InfoLevel))
	}
	return zap.New(zapcore.NewTee(cores...))
}

// Setup installs New(logFile) as the global logger. The returned func
// flushes it and restores the previous globals.
func Setup(logFile string) func() {
	l := New(logFile)
	undo := zap.ReplaceGlobals(l)
	return func() {
		_ = l.Sync()
		undo()
	}
}
