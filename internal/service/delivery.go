package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/LeventeLantos/webhook-chat/internal/chat"
	"github.com/LeventeLantos/webhook-chat/internal/client"
	"github.com/LeventeLantos/webhook-chat/internal/model"
)

var (
	ErrNotConfigured = errors.New("webhook not configured")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrBusy          = errors.New("a message is already being sent")
)

type WebhookSender interface {
	Send(ctx context.Context, cfg model.WebhookConfig, text string, at time.Time) (body []byte, err error)
}

type ConfigSource interface {
	Webhook() model.WebhookConfig
}

// Result describes a finished send. Err holds the delivery failure, if any;
// it is informational and never returned from Send.
type Result struct {
	Message   model.Message
	Reply     *model.Message
	Delivered bool
	Err       error
}

// Delivery moves one outgoing chat message to the webhook and appends at most
// one reply. Only one send may be outstanding at a time.
type Delivery struct {
	config   ConfigSource
	client   WebhookSender
	list     *chat.List
	notifier Notifier
	log      *slog.Logger

	now   func() time.Time
	newID func() string

	busy atomic.Bool
}

func NewDelivery(config ConfigSource, c WebhookSender, list *chat.List, notifier Notifier) *Delivery {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Delivery{
		config:   config,
		client:   c,
		list:     list,
		notifier: notifier,
		log:      slog.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (d *Delivery) WithLogger(l *slog.Logger) *Delivery {
	d.log = l
	return d
}

func (d *Delivery) WithClock(now func() time.Time) *Delivery {
	d.now = now
	return d
}

func (d *Delivery) WithIDs(newID func() string) *Delivery {
	d.newID = newID
	return d
}

// Sending reports whether a send is outstanding.
func (d *Delivery) Sending() bool {
	return d.busy.Load()
}

// Send runs the delivery flow for text. The only errors returned are the
// refusals ErrEmptyMessage, ErrNotConfigured and ErrBusy; in those cases
// nothing is appended and no request is made.
func (d *Delivery) Send(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyMessage
	}

	cfg := d.config.Webhook()
	if !cfg.Configured() {
		d.notify("Configuration required", "Configure the webhook before sending messages.", model.VariantDestructive)
		return Result{}, ErrNotConfigured
	}

	if !d.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer d.busy.Store(false)

	at := d.now()
	msg := model.NewOutgoing(d.newID(), text, at)
	d.list.Append(msg)

	d.log.Debug("sending message", "id", msg.ID, "method", cfg.Method(), "url", cfg.WebhookURL)

	body, err := d.client.Send(ctx, cfg, text, at)
	if err != nil && !errors.Is(err, client.ErrReplyUnreadable) {
		return d.fail(msg, err), nil
	}

	delivered, _ := d.list.SetStatus(msg.ID, model.Delivered)
	res := Result{Message: delivered, Delivered: true}

	if err != nil {
		d.log.Debug("no reply appended", "id", msg.ID, "reason", err)
		return res, nil
	}

	reply, err := client.ParseReply(body)
	if err != nil {
		d.log.Debug("no reply appended", "id", msg.ID, "reason", err)
		return res, nil
	}

	replyAt := d.now()
	id := reply.Timestamp
	if id == "" {
		id = strconv.FormatInt(replyAt.UnixMilli(), 10)
	}

	in := model.NewIncoming(id, reply.Text, replyAt)
	if !d.list.Append(in) {
		d.log.Warn("reply dropped, id already present", "id", id)
		return res, nil
	}

	res.Reply = &in
	return res, nil
}

func (d *Delivery) fail(msg model.Message, err error) Result {
	sent, _ := d.list.SetStatus(msg.ID, model.Sent)

	var se *client.StatusError
	if errors.As(err, &se) {
		d.log.Warn("webhook answered with error status", "id", msg.ID, "status", se.Code)
		d.notify("Failed to get a reply", fmt.Sprintf("Webhook returned status %d.", se.Code), model.VariantDestructive)
	} else {
		d.log.Error("failed to send message", "id", msg.ID, "err", err)
		d.notify("Send failed", "Check the webhook URL and that the workflow accepts requests from this client.", model.VariantDestructive)
	}

	return Result{Message: sent, Err: err}
}

func (d *Delivery) notify(title, desc string, v model.Variant) {
	d.notifier.Notify(model.Notification{
		Title:       title,
		Description: desc,
		Variant:     v,
		Time:        d.now(),
	})
}
