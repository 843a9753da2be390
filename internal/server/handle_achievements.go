package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/litquest/hottabych/internal/quest"
)

func handleListAchievements(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		achievements, err := store.ListAchievements(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if achievements == nil {
			achievements = []quest.Achievement{}
		}
		writeJSON(w, http.StatusOK, achievements)
	}
}

// handleUnlockAchievement grants an achievement directly, bypassing the
// condition engine. 201 on a fresh unlock, 200 when already held.
func handleUnlockAchievement(logger *slog.Logger, store Store, rdb *redis.Client, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		achievementID := chi.URLParam(r, "achievementId")

		a, unlocked, err := store.UnlockAchievement(r.Context(), userID, achievementID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "user or achievement not found")
			return
		}
		if err != nil {
			logger.Error("manual unlock failed", "user_id", userID, "achievement_id", achievementID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if !unlocked {
			writeJSON(w, http.StatusOK, a)
			return
		}

		broker.Publish(userID, Event{
			Type:            eventAchievementUnlocked,
			AchievementID:   a.ID,
			AchievementName: a.Name,
			Points:          a.Points,
		})
		invalidateLeaderboard(r.Context(), logger, rdb)

		writeJSON(w, http.StatusCreated, a)
	}
}

// handleUserAchievements returns the achievements a user has unlocked, in
// unlock order.
func handleUserAchievements(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		achievements, err := store.ListUserAchievements(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if achievements == nil {
			achievements = []quest.Achievement{}
		}
		writeJSON(w, http.StatusOK, achievements)
	}
}
