package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/LeventeLantos/webhook-chat/internal/chat"
	"github.com/LeventeLantos/webhook-chat/internal/client"
	"github.com/LeventeLantos/webhook-chat/internal/model"
)

type ReplyFetcher interface {
	FetchReply(ctx context.Context, url string) (client.Reply, error)
}

// Poller reads the configured response endpoint and appends replies whose
// timestamp is not yet a message id.
type Poller struct {
	config ConfigSource
	client ReplyFetcher
	list   *chat.List
	log    *slog.Logger
	now    func() time.Time
}

func NewPoller(config ConfigSource, c ReplyFetcher, list *chat.List) *Poller {
	return &Poller{
		config: config,
		client: c,
		list:   list,
		log:    slog.Default(),
		now:    time.Now,
	}
}

func (p *Poller) WithLogger(l *slog.Logger) *Poller {
	p.log = l
	return p
}

// Tick is the scheduler callback.
func (p *Poller) Tick(ctx context.Context) {
	if _, err := p.Poll(ctx); err != nil {
		p.log.Warn("poll failed", "err", err)
	}
}

// Poll performs one fetch and reports whether a message was appended.
func (p *Poller) Poll(ctx context.Context) (bool, error) {
	url := p.config.Webhook().ResponseURL
	if url == "" {
		return false, nil
	}

	reply, err := p.client.FetchReply(ctx, url)
	if errors.Is(err, client.ErrNoReply) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if reply.Timestamp == "" {
		p.log.Debug("polled reply without timestamp ignored")
		return false, nil
	}

	if !p.list.Append(model.NewIncoming(reply.Timestamp, reply.Text, p.now())) {
		return false, nil
	}
	p.log.Debug("polled reply appended", "id", reply.Timestamp)
	return true, nil
}
