package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/plano-planilha/internal/config"
	"github.com/a3tai/plano-planilha/internal/filler"
	"github.com/a3tai/plano-planilha/internal/mcp"
	"github.com/a3tai/plano-planilha/internal/planilha"
	"github.com/a3tai/plano-planilha/internal/web"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// runner is a long-running front end that stops when ctx is canceled
type runner interface {
	Run(ctx context.Context) error
}

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// stdout carries the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
		return
	}
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// newRunner builds the web server or the MCP tool server for cfg
func newRunner(cfg *config.Config, service *filler.Service) (runner, error) {
	if cfg.IsStdioMode() {
		server, err := mcp.NewServer(cfg, service)
		if err != nil {
			return nil, fmt.Errorf("failed to create MCP server: %w", err)
		}
		return server, nil
	}

	server, err := web.NewServer(web.Options{
		Address:     cfg.Address(),
		OutputName:  cfg.OutputName,
		MaxFileSize: cfg.MaxFileSize,
		Debug:       cfg.IsDebug(),
	}, service)
	if err != nil {
		return nil, fmt.Errorf("failed to create web server: %w", err)
	}
	return server, nil
}

// runWebMode runs the HTTP server until a signal arrives or it fails
func runWebMode(ctx context.Context, cancel context.CancelFunc, server runner) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode serves tools until the parent closes stdin
func runStdioMode(ctx context.Context, server runner) {
	if err := server.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	template, err := planilha.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		log.Fatalf("Failed to load template: %v", err)
	}

	service := filler.NewDefaultService(cfg.MaxFileSize, template)

	server, err := newRunner(cfg, service)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsWebMode() {
		runWebMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, server)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Plano Planilha\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
