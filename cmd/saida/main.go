package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	_ "time/tzdata"

	"github.com/roteirods-byte/Saida-Posicional/internal/app"
	"github.com/roteirods-byte/Saida-Posicional/internal/config"
	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := config.PathFromEnv()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if f, err := setupLogOutput(cfg.App.LogPath); err != nil {
		log.Fatalf("open log file failed: %v", err)
	} else if f != nil {
		defer f.Close()
	}
	defer logger.Sync()
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("✓ config loaded (env=%s, path=%s)", cfg.App.Env, cfgPath)

	panel, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	if err := panel.Run(ctx); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

// setupLogOutput mirrors every log line to path as well as stdout. An empty
// path keeps stdout only.
func setupLogOutput(path string) (*os.File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	tee := io.MultiWriter(os.Stdout, f)
	log.SetOutput(tee)
	logger.SetOutput(tee)
	return f, nil
}
