// Package logger provides opinionated logging capabilities for voicechat
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a console logger writing to stderr, leaving stdout to the
// console conversation.
func NewLogger(debug bool) *zap.Logger {
	return NewLoggerTo(os.Stderr, debug, true)
}

// NewLoggerTo builds the same logger on an arbitrary writer. Colour level encoding
// is only useful on a terminal.
func NewLoggerTo(w io.Writer, debug, color bool) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core, zap.AddCaller())
}

// Truncate shortens s for log previews, flattening newlines.
func Truncate(s string, maxLen int) string {
	out := []rune(s)
	for i, r := range out {
		if r == '\n' || r == '\r' {
			out[i] = ' '
		}
	}
	if len(out) <= maxLen {
		return string(out)
	}
	return string(out[:maxLen]) + "..."
}
