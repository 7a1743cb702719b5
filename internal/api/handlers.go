package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/LeventeLantos/webhook-chat/internal/chat"
	"github.com/LeventeLantos/webhook-chat/internal/export"
	"github.com/LeventeLantos/webhook-chat/internal/model"
	"github.com/LeventeLantos/webhook-chat/internal/scheduler"
	"github.com/LeventeLantos/webhook-chat/internal/service"
)

type Deps struct {
	Settings *service.Settings
	Delivery *service.Delivery
	List     *chat.List
	Poller   *scheduler.Scheduler
	Tester   service.ConnectionTester
	Notifier service.Notifier
	Hub      *Hub
	Log      *slog.Logger
}

type Handler struct {
	settings *service.Settings
	delivery *service.Delivery
	list     *chat.List
	poller   *scheduler.Scheduler
	tester   service.ConnectionTester
	notifier service.Notifier
	hub      *Hub
	log      *slog.Logger
	now      func() time.Time
}

func NewHandler(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		settings: d.Settings,
		delivery: d.Delivery,
		list:     d.List,
		poller:   d.Poller,
		tester:   d.Tester,
		notifier: d.Notifier,
		hub:      d.Hub,
		log:      log,
		now:      time.Now,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"online":  h.settings.Online(),
		"sending": h.delivery.Sending(),
		"theme":   h.settings.Theme(),
	})
}

// ListMessages returns the session list. limit=0 (the default) returns every
// record from offset on.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 0)
	offset := parseInt(r.URL.Query().Get("offset"), 0)

	items := page(h.list.Snapshot(), limit, offset)
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type sendRequest struct {
	Text string `json:"text"`
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// A send runs until the webhook settles, even if the caller goes away.
	res, err := h.delivery.Send(context.WithoutCancel(r.Context()), req.Text)
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, service.ErrNotConfigured):
		writeJSON(w, http.StatusPreconditionFailed, map[string]any{
			"error":     err.Error(),
			"configure": true,
		})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	body := map[string]any{
		"message":   res.Message,
		"delivered": res.Delivered,
	}
	if res.Reply != nil {
		body["reply"] = res.Reply
	}
	if res.Err != nil {
		body["error"] = res.Err.Error()
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) ExportMessages(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	exp, err := export.NewExporter(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", exp.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="transcript.`+exp.Extension()+`"`)
	if err := exp.Export(h.list.Snapshot(), w); err != nil {
		h.log.Error("export failed", "format", format, "err", err)
	}
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Webhook())
}

func (h *Handler) PutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg model.WebhookConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	saved, err := h.settings.SaveWebhook(r.Context(), cfg)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Error(), "field": ve.Field})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

type testRequest struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}

func (h *Handler) TestConfig(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := service.CheckConnection(r.Context(), h.tester, h.notifier, req.Method, req.URL, h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"theme": h.settings.Theme()})
}

func (h *Handler) PutTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.settings.SetTheme(r.Context(), model.Theme(req.Theme)); err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"theme": h.settings.Theme()})
}

func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	th, err := h.settings.ToggleTheme(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"theme": th})
}

func (h *Handler) PollerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.pollerState())
}

func (h *Handler) PollerStart(w http.ResponseWriter, r *http.Request) {
	h.poller.Start()
	writeJSON(w, http.StatusOK, h.pollerState())
}

func (h *Handler) PollerStop(w http.ResponseWriter, r *http.Request) {
	h.poller.Stop()
	writeJSON(w, http.StatusOK, h.pollerState())
}

// PollerTrigger runs a poll ahead of schedule; 409 when the poller is stopped.
func (h *Handler) PollerTrigger(w http.ResponseWriter, r *http.Request) {
	if !h.poller.Trigger() {
		writeError(w, http.StatusConflict, "poller is not running")
		return
	}
	writeJSON(w, http.StatusAccepted, h.pollerState())
}

func (h *Handler) pollerState() map[string]any {
	st := h.poller.Stats()
	state := map[string]any{
		"running":  h.poller.IsRunning(),
		"interval": h.poller.Interval().String(),
		"ticks":    st.Ticks,
	}
	if !st.LastTick.IsZero() {
		state["lastTick"] = st.LastTick
	}
	return state
}

func page(items []model.Message, limit, offset int) []model.Message {
	if offset < 0 {
		offset = 0
	}
	if offset > len(items) {
		offset = len(items)
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func parseInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
