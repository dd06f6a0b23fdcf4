package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hdwhdw/webpath/pkg/config"
	"github.com/hdwhdw/webpath/pkg/gnoi/server"
	"k8s.io/klog/v2"
)

func main() {
	// Command line flags
	var (
		fallbackAddress = flag.String("address", "localhost:8080", "Fallback gRPC server address if Redis config unavailable")
		webRoot         = flag.String("web-root", "/tmp/webpath", "Directory that web-relative ~/ paths resolve under")
	)

	// Initialize klog
	klog.InitFlags(nil)
	flag.Parse()

	// Try to read configuration from Redis first
	serverAddress := *fallbackAddress
	root := *webRoot

	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	webpathConfig, err := config.GetWebPathConfigFromRedis(redisCtx)
	redisCancel()
	if err != nil {
		klog.InfoS("Failed to read webpath config from Redis, using fallback",
			"error", err,
			"fallbackAddress", *fallbackAddress)
	} else {
		serverAddress = webpathConfig.GetEndpoint()
		if webpathConfig.WebRoot != "" {
			root = webpathConfig.WebRoot
		}
		klog.InfoS("Read webpath configuration from Redis",
			"address", serverAddress,
			"port", webpathConfig.Port,
			"webRoot", root)
	}

	// Log startup
	klog.InfoS("Starting webpath gNOI server",
		"version", "0.1.0",
		"address", serverAddress,
		"webRoot", root)

	// Create server
	cfg := server.Config{
		Address: serverAddress,
		WebRoot: root,
		Logger:  klog.Background().WithName("webpath"),
	}
	srv, err := server.NewServer(cfg)
	if err != nil {
		klog.ErrorS(err, "Failed to create server")
		os.Exit(1)
	}

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		klog.InfoS("Received signal", "signal", sig)
		cancel()
	}()

	// Start server
	if err := srv.Start(ctx); err != nil {
		klog.ErrorS(err, "Server failed")
		os.Exit(1)
	}

	klog.InfoS("Server stopped")
}
