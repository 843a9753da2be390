package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, store Store, db *sql.DB, rdb *redis.Client, spaDir string) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Hottabych Quest API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db, rdb))

	// Player routes.
	r.Post("/api/users", handleCreateUser(store))
	r.Get("/api/users/{telegramId}", handleGetUser(store))
	r.Get("/api/motifs", handleListMotifs(store))
	r.Get("/api/motifs/{id}", handleGetMotif(store))
	r.Get("/api/motifs/{id}/pois", handleListMotifPOIs(store))
	r.Get("/api/pois", handleListPOIs(store))
	r.Get("/api/pois/{id}", handleGetPOI(store))
	r.Post("/api/progress", handleCreateProgress(store))
	r.Get("/api/progress/{userId}/{motifId}", handleGetProgress(store))
	r.Post("/api/visits", handleSubmitVisit(logger, store, rdb, broker))
	r.Get("/api/visits/{userId}", handleListVisits(store))
	r.Get("/api/achievements", handleListAchievements(store))
	r.Get("/api/achievements/{userId}", handleUserAchievements(store))
	r.Post("/api/achievements/{userId}/{achievementId}", handleUnlockAchievement(logger, store, rdb, broker))
	r.Get("/api/leaderboard", handleLeaderboard(logger, store, rdb))
	r.Get("/api/events", handleEvents(store, broker))

	// Admin auth.
	r.Post("/api/admin/login", handleAdminLogin(store))
	r.Post("/api/admin/logout", handleAdminLogout(store))
	r.Get("/api/admin/me", handleAdminMe(store))

	// Admin content, behind a session.
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin(store))
		r.Post("/api/admin/motifs", handleAdminCreateMotif(store))
		r.Post("/api/admin/achievements", handleAdminCreateAchievement(store))
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
