package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Router(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(Logging(h.log))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("webhook-chat"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/status", h.Status)

		r.Get("/messages", h.ListMessages)
		r.Post("/messages", h.SendMessage)
		r.Get("/messages/export", h.ExportMessages)

		r.Get("/config", h.GetConfig)
		r.Put("/config", h.PutConfig)
		r.Post("/config/test", h.TestConfig)

		r.Get("/theme", h.GetTheme)
		r.Put("/theme", h.PutTheme)
		r.Post("/theme/toggle", h.ToggleTheme)

		r.Get("/poller/status", h.PollerStatus)
		r.Post("/poller/start", h.PollerStart)
		r.Post("/poller/stop", h.PollerStop)
		r.Post("/poller/trigger", h.PollerTrigger)

		if h.hub != nil {
			r.Get("/stream", h.hub.ServeWS)
		}
	})

	return r
}
