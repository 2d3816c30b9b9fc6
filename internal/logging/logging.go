// Package logging owns the process-wide zap logger. The terminal belongs to
// the UI, so records go to a file.
package logging

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem; it becomes the logger name.
type Category string

const (
	CatUI      Category = "ui"
	CatListing Category = "listing"
	CatFeedAPI Category = "feedapi"
	CatDB      Category = "db"
	CatConfig  Category = "config"
	CatBus     Category = "bus"
	CatCache   Category = "cache"
	CatFixture Category = "fixture"
)

var base atomic.Pointer[zap.Logger]

func init() {
	base.Store(zap.NewNop())
}

// Init opens path for appending and installs a logger writing to it. The
// returned function flushes and closes the file.
func Init(path string, debug bool) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return func() {}, fmt.Errorf("open log file: %w", err)
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	logger := New(zapcore.AddSync(f), level)
	Set(logger)

	return func() {
		_ = logger.Sync()
		_ = f.Close()
		Set(zap.NewNop())
	}, nil
}

// New builds a console-encoded logger on w.
func New(w zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), w, level)
	return zap.New(core, zap.AddCaller())
}

// Set replaces the process-wide logger and zap's globals.
func Set(l *zap.Logger) {
	base.Store(l)
	zap.ReplaceGlobals(l)
}

// L returns the logger for cat. Before Init it discards everything.
func L(cat Category) *zap.Logger {
	return base.Load().Named(string(cat))
}
