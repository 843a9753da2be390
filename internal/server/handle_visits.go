package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/litquest/hottabych/internal/quest"
)

// VisitRequest is the body for POST /api/visits. Coordinates observed at
// visit time are optional.
type VisitRequest struct {
	UserID    string   `json:"userId"`
	PoiID     string   `json:"poiId"`
	Latitude  *float64 `json:"latitude,string,omitempty"`
	Longitude *float64 `json:"longitude,string,omitempty"`
}

// handleSubmitVisit ingests one visit: the store applies the visit record,
// progress advancement, point grants, and achievement evaluation in a single
// transaction; this handler then publishes events and drops the leaderboard
// cache.
func handleSubmitVisit(logger *slog.Logger, store Store, rdb *redis.Client, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VisitRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID == "" || req.PoiID == "" {
			writeError(w, http.StatusBadRequest, "userId and poiId are required")
			return
		}

		outcome, err := store.SubmitVisit(r.Context(), req.UserID, req.PoiID, req.Latitude, req.Longitude)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "POI not found")
			return
		}
		if err != nil {
			logger.Error("visit ingestion failed", "user_id", req.UserID, "poi_id", req.PoiID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		publishVisitEvents(store, broker, req.UserID, outcome)
		invalidateLeaderboard(r.Context(), logger, rdb)

		writeJSON(w, http.StatusCreated, outcome.Visit)
	}
}

func publishVisitEvents(store Store, broker *Broker, userID string, outcome VisitOutcome) {
	poi, _ := store.GetPOI(context.Background(), outcome.Visit.PoiID)

	broker.Publish(userID, Event{
		Type:    eventVisitRecorded,
		PoiID:   outcome.Visit.PoiID,
		PoiName: poi.Name,
		Points:  outcome.PointsAwarded,
	})
	if outcome.MotifCompleted {
		broker.Publish(userID, Event{
			Type:    eventMotifCompleted,
			MotifID: poi.MotifID,
		})
	}
	for _, a := range outcome.Unlocked {
		broker.Publish(userID, Event{
			Type:            eventAchievementUnlocked,
			AchievementID:   a.ID,
			AchievementName: a.Name,
			Points:          a.Points,
		})
	}
}

func handleListVisits(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visits, err := store.ListVisits(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if visits == nil {
			visits = []quest.Visit{}
		}
		writeJSON(w, http.StatusOK, visits)
	}
}
