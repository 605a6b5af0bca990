package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/drawchain/server/internal/hub"
	"github.com/drawchain/server/internal/store"
	"github.com/drawchain/server/internal/ws"
)

func SetupRoutes(h *hub.Hub, st store.Store, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(h, st, log))
	r.Post("/rooms/{code}/join", JoinRoom(h, st))
	r.Post("/rooms/{code}/start", StartRoom(h, st))
	r.Post("/rooms/{code}/submit", SubmitCompletion(h, st))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, st, log))
	return r
}
