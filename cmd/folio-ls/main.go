package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jwtly10/folio/internal/config"
	"github.com/jwtly10/folio/internal/lsp/server"
)

// getLogFile returns a log file for the lsp server to write to.
//
// During development (-debug flag) uses persistent log for easy access.
func getLogFile(debug bool) (*os.File, error) {
	if debug {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		logDir := filepath.Join(homeDir, ".folio")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, err
		}
		return os.OpenFile(filepath.Join(logDir, "folio-ls.log"),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	}

	return os.CreateTemp("", "folio-ls-*.log")
}

func main() {
	var debug bool
	var shadowRoot, configPath string
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&shadowRoot, "shadow-root", "", "Directory for preview files (default a temp dir)")
	flag.StringVar(&configPath, "config", "", "Path to folio.yaml")
	flag.Parse()

	logFile, err := getLogFile(debug)
	if err != nil {
		slog.Error("failed to setup logging", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	// stdout carries the protocol, so logs never go there
	var handler slog.Handler
	if debug {
		handler = slog.NewTextHandler(io.MultiWriter(os.Stderr, logFile), &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		})
	} else {
		handler = slog.NewTextHandler(io.MultiWriter(os.Stderr, logFile), &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: true,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("starting folio-ls", "logfile", logFile.Name())

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	o := server.DefaultServerOptions
	o.HighlightStyle = cfg.HighlightStyle
	if shadowRoot != "" {
		o.ShadowRoot = shadowRoot
	} else if err := os.MkdirAll(o.ShadowRoot, 0755); err != nil {
		slog.Error("failed to create shadow root", "path", o.ShadowRoot, "error", err)
		os.Exit(1)
	}

	s, err := server.NewServer(o)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	<-s.Serve(context.Background(), server.Stdio{}).DisconnectNotify()
}
