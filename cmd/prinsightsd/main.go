// Command prinsightsd is the hosted prinsights service.
// It labels pull requests from GitHub App webhooks and serves run history.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prinsights/prinsights/internal/api"
	"github.com/prinsights/prinsights/internal/archive"
	"github.com/prinsights/prinsights/internal/github"
	"github.com/prinsights/prinsights/internal/pipeline"
	"github.com/prinsights/prinsights/internal/platform"
	"github.com/prinsights/prinsights/internal/store"
	"github.com/prinsights/prinsights/internal/webhook"
	"github.com/prinsights/prinsights/pkg/inputs"
)

const checkRunName = "prinsights"

type config struct {
	Port          string
	DatabaseURL   string
	WebhookSecret string
	GitHubAppID   int64
	GitHubKey     string
	GitHubAPIURL  string
	APIKey        string
	Workers       int
	QueueSize     int
	Archive       archive.Config
}

func loadConfig(getenv func(string) string) (config, error) {
	envOrDefault := func(key, defaultVal string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return defaultVal
	}

	cfg := config{
		Port:          envOrDefault("PORT", "8080"),
		DatabaseURL:   getenv("DATABASE_URL"),
		WebhookSecret: getenv("GITHUB_WEBHOOK_SECRET"),
		GitHubKey:     getenv("GITHUB_PRIVATE_KEY"),
		GitHubAPIURL:  getenv("GITHUB_API_URL"),
		APIKey:        getenv("API_KEY"),
		Archive: archive.Config{
			Backend:   envOrDefault("ARCHIVE_BACKEND", "local"),
			Bucket:    getenv("ARCHIVE_BUCKET"),
			LocalPath: envOrDefault("LOCAL_ARCHIVE_PATH", "/tmp/prinsights-data"),
			S3: archive.S3Config{
				Region:    getenv("S3_REGION"),
				Endpoint:  getenv("S3_ENDPOINT"),
				AccessKey: getenv("S3_ACCESS_KEY"),
				SecretKey: getenv("S3_SECRET_KEY"),
			},
		},
	}

	var err error
	if cfg.GitHubAppID, err = strconv.ParseInt(envOrDefault("GITHUB_APP_ID", "0"), 10, 64); err != nil {
		return cfg, fmt.Errorf("GITHUB_APP_ID: %w", err)
	}
	if cfg.Workers, err = strconv.Atoi(envOrDefault("WORKERS", "4")); err != nil {
		return cfg, fmt.Errorf("WORKERS: %w", err)
	}
	if cfg.QueueSize, err = strconv.Atoi(envOrDefault("QUEUE_SIZE", "100")); err != nil {
		return cfg, fmt.Errorf("QUEUE_SIZE: %w", err)
	}
	if cfg.WebhookSecret == "" {
		return cfg, errors.New("GITHUB_WEBHOOK_SECRET is required")
	}
	if cfg.GitHubAppID == 0 || cfg.GitHubKey == "" {
		return cfg, errors.New("GITHUB_APP_ID and GITHUB_PRIVATE_KEY are required")
	}
	return cfg, nil
}

// envInputs reads action inputs from PRINSIGHTS_<NAME> variables so the
// hosted service honors the same knobs as the Action.
type envInputs func(string) string

func (e envInputs) GetInput(name string) string {
	if name == "github_token" {
		return "app-installation"
	}
	return e("PRINSIGHTS_" + strings.ToUpper(name))
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("prinsightsd exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		return err
	}
	in, err := inputs.Parse(envInputs(os.Getenv))
	if err != nil {
		return fmt.Errorf("inputs: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runs, ping, closeDB, err := openRuns(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer closeDB()

	arch, err := archive.Open(ctx, cfg.Archive)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	auth, err := github.NewAppAuth(cfg.GitHubAppID, []byte(cfg.GitHubKey))
	if err != nil {
		return fmt.Errorf("github app: %w", err)
	}
	if cfg.GitHubAPIURL != "" {
		auth.BaseURL = cfg.GitHubAPIURL
	}

	label := labelFunc(auth, in, arch, runs, log)
	// Runs outlive the request that triggered them but not the process.
	q := newQueue(context.WithoutCancel(ctx), cfg.Workers, cfg.QueueSize, label, log)

	mux := http.NewServeMux()
	mux.Handle("POST /v1/webhooks/github", webhook.NewHandler([]byte(cfg.WebhookSecret), q, log))
	apiMux := http.NewServeMux()
	api.NewHandler(runs, arch, api.NewDecisionCacheFromEnv()).RegisterRoutes(apiMux)
	mux.Handle("/api/", api.CORS(api.APIKeyAuth(cfg.APIKey)(apiMux)))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler(ping))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.RequestLog(log)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("starting prinsightsd", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", "error", err)
	}
	return q.Close()
}

// openRuns connects to Postgres and migrates it. Without a DATABASE_URL the
// history lives in memory.
func openRuns(ctx context.Context, dsn string, log *slog.Logger) (store.Runs, func(context.Context) error, func(), error) {
	if dsn == "" {
		log.Warn("DATABASE_URL not set; run history is kept in memory")
		return store.NewMemory(), func(context.Context) error { return nil }, func() {}, nil
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := platform.AutoMigrate(db); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return store.NewService(db), db.PingContext, func() { db.Close() }, nil
}

// labelFunc runs the pipeline for one trigger with an installation client.
func labelFunc(auth *github.AppAuth, in *inputs.Inputs, arch archive.Store, runs store.Runs, log *slog.Logger) func(context.Context, webhook.Trigger) error {
	return func(ctx context.Context, t webhook.Trigger) error {
		client, err := auth.InstallationClient(ctx, t.InstallationID)
		if err != nil {
			return fmt.Errorf("installation client: %w", err)
		}
		runner := &pipeline.Runner{
			Client:       client,
			Archive:      arch,
			Runs:         runs,
			Logger:       log.With("delivery_action", t.Action),
			CheckRunName: checkRunName,
		}
		_, err = runner.Run(ctx, pipeline.Job{
			Ref:          github.PRRef{Owner: t.Owner, Repo: t.Repo, Number: t.Number},
			Inputs:       in,
			RemoteConfig: true,
		})
		return err
	}
}

func healthHandler(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "database unreachable"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
