package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/LeventeLantos/sms-dispatch/internal/api"
	"github.com/LeventeLantos/sms-dispatch/internal/cache"
	"github.com/LeventeLantos/sms-dispatch/internal/config"
	"github.com/LeventeLantos/sms-dispatch/internal/logger"
	"github.com/LeventeLantos/sms-dispatch/internal/provider"
	"github.com/LeventeLantos/sms-dispatch/internal/repo"
	"github.com/LeventeLantos/sms-dispatch/internal/scheduler"
	"github.com/LeventeLantos/sms-dispatch/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("sms-dispatch exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := repo.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	store := repo.NewStore(db)

	p, mode := selectProvider(cfg.Provider)
	log.Info("sms provider selected", "mode", mode, "from", cfg.Provider.FromNumber)

	var msgCache cache.MessageCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, continuing without cache", "addr", cfg.Redis.Address, "error", err)
		} else {
			msgCache = cache.NewRedisCache(rdb, cfg.Redis.TTL)
		}
	}

	dispatcher := service.NewDispatcher(service.DispatcherConfig{
		FromNumber:  cfg.Provider.FromNumber,
		Concurrency: cfg.Dispatch.Concurrency,
	}, store, p, msgCache, log)
	history := service.NewHistory(store, p, msgCache, log)
	templates := service.NewTemplateService(store, log)

	var sched *scheduler.Scheduler
	if cfg.Reconciler.Enabled {
		batch := cfg.Reconciler.BatchSize
		sched, err = scheduler.New(cfg.Reconciler.Interval, log, func(ctx context.Context) {
			checked, changed := history.ReconcileRecent(ctx, batch)
			log.Debug("reconcile sweep finished", "checked", checked, "changed", changed)
		})
		if err != nil {
			return fmt.Errorf("reconciler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	router := api.NewRouter(api.RouterConfig{
		Log:         log,
		CORSOrigins: cfg.Server.CORSOrigins,
		SMS: api.NewSMSHandler(dispatcher, history, templates, store, api.SMSOptions{
			FromNumber:       cfg.Provider.FromNumber,
			MessageMaxLength: cfg.Server.MessageMaxLength,
		}, log),
		Reconciler: api.NewReconcilerHandler(sched),
		Contacts:   api.NewContactHandler(service.NewContactService(store, log)),
		Groups:     api.NewGroupHandler(service.NewGroupService(store, log)),
		Templates:  api.NewTemplateHandler(templates),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("sms-dispatch listening",
			"addr", cfg.Server.Address,
			"driver", cfg.Database.Driver,
			"reconciler", cfg.Reconciler.Enabled,
			"redis", msgCache != nil,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// selectProvider prefers Twilio, then the webhook. A nil provider means
// sends are simulated.
func selectProvider(cfg config.ProviderConfig) (provider.Provider, string) {
	switch {
	case cfg.TwilioConfigured():
		return provider.NewTwilio(cfg.TwilioAccountSID, cfg.TwilioAuthToken), "twilio"
	case cfg.WebhookURL != "":
		return provider.NewWebhook(cfg.WebhookURL), "webhook"
	default:
		return nil, "simulation"
	}
}
