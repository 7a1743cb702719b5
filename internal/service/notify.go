package service

import (
	"log/slog"
	"sync"

	"github.com/LeventeLantos/webhook-chat/internal/model"
)

// Notifier surfaces non-blocking messages to the user. Implementations must
// not block the caller for long.
type Notifier interface {
	Notify(n model.Notification)
}

type NotifierFunc func(n model.Notification)

func (f NotifierFunc) Notify(n model.Notification) { f(n) }

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	Log *slog.Logger
}

func (l LogNotifier) Notify(n model.Notification) {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	if n.Variant == model.VariantDestructive {
		log.Warn(n.Title, "description", n.Description)
		return
	}
	log.Info(n.Title, "description", n.Description)
}

// Fanout delivers every notification to each registered notifier.
type Fanout struct {
	mu   sync.RWMutex
	subs []Notifier
}

func NewFanout(subs ...Notifier) *Fanout {
	return &Fanout{subs: subs}
}

func (f *Fanout) Add(n Notifier) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, n)
}

func (f *Fanout) Notify(n model.Notification) {
	f.mu.RLock()
	subs := make([]Notifier, len(f.subs))
	copy(subs, f.subs)
	f.mu.RUnlock()

	for _, s := range subs {
		s.Notify(n)
	}
}
