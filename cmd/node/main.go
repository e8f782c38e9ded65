package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gitlab.com/camfleet.net/internal/adapter/camera"
	"gitlab.com/camfleet.net/internal/adapter/imagestore"
	"gitlab.com/camfleet.net/internal/adapter/s3"
	"gitlab.com/camfleet.net/internal/config"
	"gitlab.com/camfleet.net/internal/core/services/agent"
	logger2 "gitlab.com/camfleet.net/internal/global/logger"
	"gitlab.com/camfleet.net/internal/tcp"
	"gitlab.com/camfleet.net/internal/tcp/defs"
)

// Usage: node <controller_host> [controller_port] [command_port]
func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: node <controller_host> [controller_port] [command_port]")
		os.Exit(1)
	}
	controllerHost := os.Args[1]
	controllerPort := intArg(2, defs.DefaultDiscoveryPort)
	commandPort := intArg(3, defs.DefaultCommandPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger := logger2.Logger

	hostname, err := os.Hostname()
	if err != nil {
		logger.Error("Failed to resolve hostname", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting camera node",
		"hostname", hostname,
		"controller", fmt.Sprintf("%s:%d", controllerHost, controllerPort),
		"commandPort", commandPort,
	)

	sysCfg := config.NewNodeConfig()
	ctxBg := context.Background()

	// collaborators
	images := imagestore.NewManager(sysCfg.ImageDir)
	if err := images.EnsureDir(); err != nil {
		logger.Error("Failed to create image directory", "dir", sysCfg.ImageDir, "error", err)
		os.Exit(1)
	}
	cam := camera.NewLibcameraStill(sysCfg.CaptureBinary, sysCfg.ImageDir, hostname, sysCfg.CaptureTimeout, logger)
	uploader, err := s3.NewUploader(ctxBg, sysCfg.AwsConfig, sysCfg.ImageDir, logger)
	if err != nil {
		logger.Error("Failed to set up S3 uploader", "error", err)
		os.Exit(1)
	}

	// Register with the controller; exhausting the retry budget is
	// fatal and the command server never starts.
	nodeAgent := agent.NewAgent(
		hostname,
		agent.ControllerAddress(controllerHost, controllerPort),
		commandPort,
		logger,
		agent.WithRetryPolicy(sysCfg.Registration),
		agent.WithHeartbeatInterval(sysCfg.HeartbeatInterval),
	)
	if err := nodeAgent.Register(ctxBg); err != nil {
		logger.Error("Registration failed, shutting down", "error", err)
		os.Exit(1)
	}

	heartbeatCtx, stopHeartbeat := context.WithCancel(ctxBg)
	go nodeAgent.RunHeartbeat(heartbeatCtx)

	commandServer := tcp.NewCommandServer(hostname, cam, images, uploader, logger,
		tcp.WithListenAddress(fmt.Sprintf(":%d", commandPort)),
	)
	if err := commandServer.Start(); err != nil {
		logger.Error("Failed to start command server", "error", err)
		os.Exit(1)
	}

	<-quit
	logger.Info("Shutting down node...", "hostname", hostname)

	stopHeartbeat()
	ctx, cancel := context.WithTimeout(ctxBg, 5*time.Second)
	defer cancel()
	_ = commandServer.Stop(ctx)

	logger.Info("Node shutdown complete", "hostname", hostname)
}

func intArg(index, fallback int) int {
	if len(os.Args) <= index {
		return fallback
	}
	value, err := strconv.Atoi(os.Args[index])
	if err != nil {
		return fallback
	}
	return value
}
