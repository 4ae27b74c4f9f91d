package routers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"drawparty/internal/api"
	"drawparty/internal/metrics"
	"drawparty/internal/session"
)

func New(log *zap.SugaredLogger, mgr *session.Manager) http.Handler {
	h := api.NewHandlers(log, mgr)
	r := chi.NewRouter()

	// Timeout stays off the WebSocket route; it would cancel the
	// connection context mid-game.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/api/v1/healthz", h.Health)
		r.Get("/api/v1/rooms", h.ListRooms)
		r.Handle("/metrics", metrics.Handler())
	})

	r.Get("/ws", h.GameWS)

	return r
}
