// Package main is the entry point for the petview server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesprial/petview/internal/audit"
	"github.com/jamesprial/petview/internal/auth"
	"github.com/jamesprial/petview/internal/config"
	"github.com/jamesprial/petview/internal/graphql"
	"github.com/jamesprial/petview/internal/pet"
	"github.com/jamesprial/petview/internal/telemetry"
	"github.com/jamesprial/petview/internal/tools"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

const (
	defaultConfigPath = "/config/config.yaml"
	serverName        = "petview"
	serverVersion     = "1.0.0"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := loadConfig()
	config.ApplyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	tokenBefore := cfg.Server.AuthToken
	token, err := config.EnsureAuthToken(cfg)
	if err != nil {
		log.Printf("warning: could not generate auth token: %v; /mcp runs without authentication", err)
	} else if tokenBefore == "" {
		log.Printf("generated auth token (set PETVIEW_AUTH_TOKEN to persist): %s", token)
	}

	var auditLogger *audit.Logger
	if cfg.Audit.Enabled {
		f, err := os.OpenFile(cfg.Audit.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			log.Printf("warning: could not open audit log %q: %v; audit logging disabled", cfg.Audit.LogPath, err)
		} else {
			auditLogger = audit.NewLogger(f)
			defer f.Close()
		}
	}

	shutdownTracing, err := telemetry.Setup(cfg.Telemetry.Endpoint, cfg.Telemetry.Service)
	if err != nil {
		log.Printf("warning: telemetry disabled: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	client, err := graphql.NewHTTPClient(cfg.GraphQL)
	if err != nil {
		log.Fatalf("failed to create GraphQL client: %v", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           newMux(client, auditLogger, cfg.Server.AuthToken),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("petview listening on %s (graphql %s)", addr, client.URL())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-stop
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("telemetry shutdown error: %v", err)
	}
	log.Println("server stopped")
}

// newMux routes the public pet page at "/" and the MCP server, guarded by
// token, at "/mcp".
func newMux(sender graphql.Sender, logger *audit.Logger, token string) http.Handler {
	var regs []tools.Registration
	regs = append(regs, pet.PetTools(sender, logger)...)
	regs = append(regs, graphql.GraphQLTools(sender, logger)...)
	mcpServer := tools.NewServer(serverName, serverVersion, regs)

	mux := http.NewServeMux()
	mux.Handle("/mcp", auth.RequireBearer(token)(server.NewStreamableHTTPServer(mcpServer)))
	mux.Handle("/{$}", pet.NewHandler(sender, logger))
	return telemetry.Middleware(mux)
}

// loadConfig attempts to read the config file from the path specified by
// PETVIEW_CONFIG_PATH or the default /config/config.yaml. If the file cannot
// be read, DefaultConfig is returned.
func loadConfig() *config.Config {
	path := os.Getenv("PETVIEW_CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Printf("could not load config from %q (%v), using defaults", path, err)
		return config.DefaultConfig()
	}

	log.Printf("loaded config from %q", path)
	return cfg
}
