package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/SlickRick2121/Ten-K-sub000/internal/registry"
	"github.com/SlickRick2121/Ten-K-sub000/internal/stats"
	"github.com/SlickRick2121/Ten-K-sub000/internal/visitors"
	"github.com/SlickRick2121/Ten-K-sub000/internal/ws"
)

func SetupRoutes(reg *registry.Registry, rec stats.Recorder, trk visitors.Tracker, staticDir string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(Firewall(trk))

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(reg, log))
	r.Get("/api/rooms", ListRooms(reg))
	r.Get("/api/leaderboard", Leaderboard(rec))

	// The game client bundle. Page loads feed the visitor log.
	r.With(PageViews(trk)).Handle("/*", http.FileServer(http.Dir(staticDir)))
	return r
}
