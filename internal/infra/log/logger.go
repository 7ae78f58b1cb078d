package log

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func New(level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(levelOrDebug(level))
	return cfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func levelOrDebug(level string) zapcore.Level {
	if level == "" {
		return zapcore.DebugLevel
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		fmt.Fprintf(os.Stderr, "bad LOG_LEVEL=%s, fallback to debug\n", level)
		return zapcore.DebugLevel
	}
	return lvl
}

func Must(level string) *zap.Logger {
	l, err := New(level)
	if err != nil {
		panic(err)
	}
	return l
}

// Email never puts the address itself in a log line.
func Email(email string) zap.Field {
	sum := sha256.Sum256([]byte(email))
	return zap.String("user", hex.EncodeToString(sum[:]))
}
