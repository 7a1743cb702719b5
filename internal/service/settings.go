package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/LeventeLantos/webhook-chat/internal/model"
	"github.com/LeventeLantos/webhook-chat/internal/repo"
)

// Settings is the in-process view of the persisted configuration. It is read
// from the store once by Load and written through on every save.
type Settings struct {
	store repo.SettingsStore

	mu      sync.RWMutex
	webhook model.WebhookConfig
	theme   model.Theme
}

func NewSettings(store repo.SettingsStore) *Settings {
	return &Settings{store: store, theme: model.ThemeLight}
}

func (s *Settings) Load(ctx context.Context) error {
	get := func(key string) (string, error) {
		v, _, err := s.store.Get(ctx, key)
		return v, err
	}

	webhookURL, err := get(repo.KeyWebhookURL)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	method, err := get(repo.KeyHTTPMethod)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	responseURL, err := get(repo.KeyResponseURL)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	theme, err := get(repo.KeyTheme)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	cfg := model.WebhookConfig{WebhookURL: webhookURL, ResponseURL: responseURL}
	if m, err := model.ParseMethod(method); err == nil {
		cfg.HTTPMethod = m
	} else {
		cfg.HTTPMethod = model.DefaultMethod
	}

	th, err := model.ParseTheme(theme)
	if err != nil {
		th = model.ThemeLight
	}

	s.mu.Lock()
	s.webhook = cfg
	s.theme = th
	s.mu.Unlock()
	return nil
}

func (s *Settings) Webhook() model.WebhookConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.webhook
}

func (s *Settings) Online() bool {
	return s.Webhook().Configured()
}

// SaveWebhook validates cfg in full before touching the store; an invalid
// configuration leaves every persisted key unchanged.
func (s *Settings) SaveWebhook(ctx context.Context, cfg model.WebhookConfig) (model.WebhookConfig, error) {
	norm, err := cfg.Normalize()
	if err != nil {
		return model.WebhookConfig{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writes := []struct{ key, value string }{
		{repo.KeyWebhookURL, norm.WebhookURL},
		{repo.KeyHTTPMethod, string(norm.HTTPMethod)},
		{repo.KeyResponseURL, norm.ResponseURL},
	}
	for _, w := range writes {
		if err := s.store.Set(ctx, w.key, w.value); err != nil {
			return model.WebhookConfig{}, fmt.Errorf("save webhook config: %w", err)
		}
	}

	s.webhook = norm
	return norm, nil
}

func (s *Settings) Theme() model.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *Settings) SetTheme(ctx context.Context, t model.Theme) error {
	t, err := model.ParseTheme(string(t))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, repo.KeyTheme, string(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	s.theme = t
	return nil
}

func (s *Settings) ToggleTheme(ctx context.Context) (model.Theme, error) {
	next := s.Theme().Toggle()
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
