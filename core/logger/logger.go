// Package logger builds the zap loggers used by the command line tool
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LevelNone disables logging
	LevelNone = "none"

	// LevelInfo logs at info level
	LevelInfo = "info"

	// LevelDebug logs at debug level
	LevelDebug = "debug"
)

// Get returns a console logger writing to stderr at the given level
func Get(level string) (*zap.Logger, error) {
	if level == LevelNone || level == "" {
		return zap.NewNop(), nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Must returns a logger for level or panics
func Must(level string) *zap.Logger {
	l, err := Get(level)
	if err != nil {
		panic(err)
	}
	return l
}
