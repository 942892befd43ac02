package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/unidoc/unipdf/v3/common/license"

	"github.com/ironsheep/pdf-redact-mcp/internal/cache"
	"github.com/ironsheep/pdf-redact-mcp/internal/config"
	"github.com/ironsheep/pdf-redact-mcp/internal/server"
	"github.com/ironsheep/pdf-redact-mcp/internal/session"
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
			fmt.Printf("pdf-redact-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("pdf-redact-mcp - MCP server for single-page PDF redaction")
			fmt.Println()
			fmt.Println("Usage: pdf-redact-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from .env):")
			fmt.Println("  REDACT_MCP_CONFIG=path        Config file (default redact-mcp.yml)")
			fmt.Println("  REDACT_MCP_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println("  REDACT_MCP_REDIS_URL=url      Cache page renders in Redis")
			fmt.Println("  REDACT_MCP_OUTPUT_DIR=dir     Where redacted files are written")
			fmt.Println("  UNIDOC_LICENSE_API_KEY=key    PDF library license key")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	path := os.Getenv(config.EnvConfigPath)
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if cfg.Debug() {
		log.Printf("PDF Redact MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	if cfg.LicenseKey != "" {
		if err := license.SetMeteredKey(cfg.LicenseKey); err != nil {
			log.Fatalf("License error: %v", err)
		}
	} else {
		log.Printf("Warning: %s not set, PDF processing will fail", config.EnvLicenseKey)
	}

	opts, err := session.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if cfg.Cache.RedisURL != "" {
		store, err := cache.NewRedisStore(cfg.Cache.RedisURL, cfg.Cache.Prefix, cfg.Cache.TTL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, using in-memory raster cache: %v", err)
		} else {
			defer store.Close()
			opts.Store = store
			log.Printf("Raster cache: Redis")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(session.New(opts), server.Options{
		OutputDir:     cfg.OutputDir,
		DisplayWidth:  cfg.DisplayWidth,
		PreviewSizing: cfg.Label.Preview,
		OutputSizing:  cfg.Label.Output,
		Version:       Version,
		Debug:         cfg.Debug(),
	})
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Server error: %v", err)
	}
}
