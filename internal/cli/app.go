package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LeventeLantos/webhook-chat/internal/cache"
	"github.com/LeventeLantos/webhook-chat/internal/chat"
	"github.com/LeventeLantos/webhook-chat/internal/client"
	"github.com/LeventeLantos/webhook-chat/internal/config"
	"github.com/LeventeLantos/webhook-chat/internal/model"
	"github.com/LeventeLantos/webhook-chat/internal/repo"
	"github.com/LeventeLantos/webhook-chat/internal/scheduler"
	"github.com/LeventeLantos/webhook-chat/internal/service"
)

// app is one session: settings, message list and the services sharing them.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	store    repo.SettingsStore
	settings *service.Settings
	list     *chat.List
	client   *client.WebhookClient
	notifier *service.Fanout
	delivery *service.Delivery
	poller   *scheduler.Scheduler
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	settings := service.NewSettings(store)
	if err := settings.Load(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	list := chat.NewList()
	list.Append(model.NewIncoming(model.WelcomeID, cfg.Chat.Welcome, time.Now()))

	c := client.NewWebhookClient(cfg.Webhook.Timeout(), cfg.Webhook.Sender, cfg.Webhook.ChatID)
	notifier := service.NewFanout()
	delivery := service.NewDelivery(settings, c, list, notifier).WithLogger(log)

	poller := service.NewPoller(settings, c, list).WithLogger(log)
	sched, err := scheduler.New("poller", cfg.Poller.Interval(), poller.Tick)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	log.Debug("session ready",
		"store", cfg.Store.Driver,
		"online", settings.Online(),
		"poll_interval", cfg.Poller.Interval().String(),
	)

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		settings: settings,
		list:     list,
		client:   c,
		notifier: notifier,
		delivery: delivery,
		poller:   sched.WithLogger(log),
	}, nil
}

func (a *app) close() {
	a.poller.Stop()
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close settings store", "err", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (repo.SettingsStore, error) {
	switch cfg.Store.Driver {
	case config.DriverFile:
		return repo.OpenFileSettings(cfg.Store.Path)
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
		return repo.OpenSQLiteSettings(ctx, cfg.Store.Path)
	case config.DriverPostgres:
		return repo.OpenPostgresSettings(ctx, cfg.Database.PostgresURL)
	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return cache.NewRedisSettings(rdb, cfg.Redis.TTL()), nil
	case config.DriverMemory:
		return repo.NewMemorySettings(), nil
	}
	return nil, errors.New("unknown store driver " + cfg.Store.Driver)
}
