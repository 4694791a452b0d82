package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/iris-locator/internal/config"
	"github.com/ironsheep/iris-locator/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("iris-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("iris-mcp - MCP server for iris localization")
			fmt.Println()
			fmt.Println("Usage: iris-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  IRIS_MCP_LOG_LEVEL=debug     Log level (default info)")
			fmt.Println("  IRIS_MCP_LOG_FORMAT=json     Log format: text or json")
			fmt.Println("  IRIS_WORKERS=8               Search worker pool size")
			fmt.Println("  IRIS_SAMPLER=midpoint        Ring sampler: midpoint or mask (gocv builds)")
			fmt.Println("  IRIS_POINTS_STEP=3           Default grid step")
			fmt.Println("  IRIS_START_R=10              Default smallest radius")
			fmt.Println("  IRIS_END_R=30                Default radius bound (exclusive)")
			fmt.Println("  IRIS_RADIUS_STEP=1           Default radius step")
			fmt.Println("  IRIS_SEARCH_TIMEOUT=5s       Per-call search deadline")
			fmt.Println("  IRIS_ALLOW_PARTIAL=false     Return best-so-far on deadline")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "iris-mcp: %v\n", err)
		os.Exit(2)
	}

	// stdout is for MCP protocol
	logger := cfg.NewLogger(os.Stderr)
	logger.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
		"workers": cfg.Workers,
		"sampler": cfg.Sampler,
	}).Debug("iris MCP server starting")

	if Version != "dev" {
		server.Version = Version
	}
	srv := server.NewWithConfig(cfg, logger)
	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
