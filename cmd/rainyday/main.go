package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"RainyDay/internal/config"
	"RainyDay/internal/engine"
	"RainyDay/internal/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GLFW must run on the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "rainyday:", err)
		os.Exit(1)
	}
	path := findConfig(config.DefaultPath)
	cfg, err := config.Load(path)
	if err != nil {
		logger.Log.Error("Failed to load settings", zap.String("path", path), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	if cfg.App.Debug {
		if err := logger.InitWithLevel(zapcore.DebugLevel); err != nil {
			logger.Log.Warn("Debug logging unavailable", zap.Error(err))
		}
	}
	logger.Log.Info("Rainy day starting",
		zap.String("settings", path),
		zap.String("shading", cfg.App.Shading),
		zap.Int("drops", cfg.Params.Rain.Count))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Run(ctx, cfg); err != nil {
		logger.Log.Error("Rainy day stopped", zap.Error(err))
		logger.Sync()
		stop()
		os.Exit(1)
	}
	logger.Sync()
}

// findConfig returns the first existing candidate for name, or name itself
// so a missing file falls back to the defaults.
func findConfig(name string) string {
	var paths []string
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), name))
	}
	paths = append(paths, name)

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return name
}
