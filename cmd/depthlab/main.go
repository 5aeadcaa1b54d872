// Package main is the batch entry point: it renders a depth map and exports
// its mesh as described by the config file and flags.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/depthlab/internal/config"
	"github.com/Faultbox/depthlab/internal/logger"
	"github.com/Faultbox/depthlab/internal/pipeline"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== DepthLab ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	if res.ImagePath != "" {
		fmt.Println(res.ImagePath)
	}
	for _, p := range res.ModelPaths {
		fmt.Println(p)
	}
}
