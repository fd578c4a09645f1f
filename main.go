package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"social-graph-atlas/internal/api"
	"social-graph-atlas/internal/attribution"
	"social-graph-atlas/internal/collector"
	"social-graph-atlas/internal/config"
	"social-graph-atlas/internal/frame"
	"social-graph-atlas/internal/ingest"
	"social-graph-atlas/internal/store"
)

// BuildCommit is set at build time via -ldflags.
var BuildCommit = "dev"

func main() {
	// 1. Config
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	schemaPath := os.Getenv("SCHEMA_PATH")
	if schemaPath == "" {
		schemaPath = "internal/store/schema.sql"
	}

	log.Println("Initializing Social Graph Atlas...")
	log.Printf("DB: %s", redactDatabaseURL(cfg.DatabaseURL))
	log.Printf("API Port: %s", cfg.APIPort)
	log.Printf("Build: %s", BuildCommit)

	// 2. Dependencies
	st, err := store.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer st.Close()

	if os.Getenv("SKIP_MIGRATION") == "true" {
		log.Println("database migration skipped (SKIP_MIGRATION=true)")
	} else {
		log.Println("running database migration...")
		if err := st.Migrate(schemaPath); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		log.Println("database migration complete")
	}

	client := ingest.NewClient(cfg.TwitterBearerToken, cfg.XBearerToken)
	if client.HasXAPI() {
		log.Println("fallback like-list upstream (X API v2) configured")
	}

	coll := collector.New(st, client, cfg)
	builder := frame.New(st)
	attributor := attribution.New(st, cfg)

	// 3. Startup recovery: fail any run left "running" by a process that
	// died mid-collection, and sweep snapshots that never finished filling.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := coll.Recover(ctx); err != nil {
		log.Fatalf("startup recovery failed: %v", err)
	}

	apiServer := api.NewServer(st, coll, builder, attributor, cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	<-sigChan
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server shutdown error: %v", err)
	}
	cancel()
	log.Println("shutdown complete")
}

// redactDatabaseURL strips credentials from a database URL before it is
// ever written to a log line.
func redactDatabaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		if u.User != nil {
			user := u.User.Username()
			if user == "" {
				user = "user"
			}
			u.User = url.UserPassword(user, "****")
		}
		u.RawQuery = ""
		return u.String()
	}
	re := regexp.MustCompile(`(?i)(postgres(?:ql)?://[^:/?#]+):([^@]+)@`)
	if re.MatchString(raw) {
		return re.ReplaceAllString(raw, `$1:****@`)
	}
	re = regexp.MustCompile(`(?i)(password=)([^\s]+)`)
	return re.ReplaceAllString(raw, `$1****`)
}
