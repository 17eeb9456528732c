package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"catalogconsole/internal/apiclient"
	"catalogconsole/internal/config"
	"catalogconsole/internal/http/handlers"
	applog "catalogconsole/internal/log"
	"catalogconsole/internal/metrics"
	"catalogconsole/internal/services"
	"catalogconsole/internal/session"
)

const sweepEvery = 5 * time.Minute

func main() {
	// .env is optional outside dev
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		applog.Error(nil, "config.dotenv.fail", err, nil)
	}
	cfg, err := config.Load()
	if err != nil {
		applog.Error(nil, "config.load.fail", err, nil)
		os.Exit(1)
	}

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.App.LogFile != "" {
		f, err := os.OpenFile(cfg.App.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			applog.Error(nil, "log.file.fail", err, map[string]any{"path": cfg.App.LogFile})
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Init(cfg.App.LogLevel, cfg.App.LogFormat, out)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, health, purge, closeRepo, err := openSessionRepo(ctx, cfg.Session)
	if err != nil {
		applog.Error(nil, "session.repo.fail", err, map[string]any{"backend": cfg.Session.Backend})
		os.Exit(1)
	}
	defer closeRepo()
	sessions := session.NewManager(repo, cfg.Session.TTL)

	api, err := apiclient.New(apiclient.Config{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout,
		RetryMax: cfg.API.RetryMax,
	})
	if err != nil {
		applog.Error(nil, "apiclient.init.fail", err, nil)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	catalog := services.NewCatalog(api, m, cfg.API.Timeout)
	defer catalog.Close()
	auth := services.NewAuthService(api.Auth(), sessions, m)

	deps := handlers.NewDeps(cfg, auth, catalog, reg)
	deps.Health = health
	app := handlers.NewApp(deps)

	go sweep(ctx, sessions, purge)
	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			applog.Error(nil, "server.shutdown.fail", err, nil)
		}
	}()

	applog.Info(nil, "server.start", map[string]any{
		"port":    cfg.App.Port,
		"env":     cfg.App.Env,
		"api":     cfg.API.BaseURL,
		"session": cfg.Session.Backend,
	})
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		applog.Error(nil, "server.listen.fail", err, nil)
		os.Exit(1)
	}
}

// openSessionRepo picks the session backend. purge is nil when the backend
// expires records on its own.
func openSessionRepo(ctx context.Context, cfg config.SessionConfig) (session.Repo, handlers.Pinger, func(context.Context, time.Time) (int64, error), func(), error) {
	switch cfg.Backend {
	case config.SessionBackendSQLite:
		db, err := session.OpenDB(cfg.DBDSN)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		repo := session.NewSQLRepo(db, cfg.TTL)
		return repo, repo, repo.PurgeExpired, func() { _ = db.Close() }, nil
	case config.SessionBackendRedis:
		repo, err := session.NewRedisRepo(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return repo, repo, nil, func() { _ = repo.Close() }, nil
	}
	return session.NewMemoryRepo(), nil, nil, func() {}, nil
}

// sweep drops idle live sessions and, for SQL, their stored rows.
func sweep(ctx context.Context, sessions *session.Manager, purge func(context.Context, time.Time) (int64, error)) {
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			fields := map[string]any{"evicted": sessions.Sweep()}
			if purge != nil {
				n, err := purge(ctx, now)
				if err != nil {
					applog.Error(nil, "session.purge.fail", err, nil)
				}
				fields["purged"] = n
			}
			applog.Debug(nil, "session.sweep", fields)
		}
	}
}
