package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/litquest/hottabych/internal/level"
	"github.com/litquest/hottabych/internal/quest"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50

	leaderboardCacheKey = "leaderboard:top"
	leaderboardCacheTTL = 30 * time.Second
)

// LeaderboardEntry is a user row with the level derived from points.
type LeaderboardEntry struct {
	quest.User
	LevelProgress level.Progress `json:"levelProgress"`
}

// handleLeaderboard returns the top users by cumulative points, descending.
// With a Redis client configured, the top maxLeaderboardLimit rows are kept
// in a short-TTL cache that visit ingestion invalidates.
func handleLeaderboard(logger *slog.Logger, store Store, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLeaderboardLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}

		if rdb != nil && limit <= maxLeaderboardLimit {
			if entries, ok := cachedLeaderboard(r.Context(), rdb); ok {
				if len(entries) > limit {
					entries = entries[:limit]
				}
				writeJSON(w, http.StatusOK, entries)
				return
			}
		}

		fetch := limit
		if rdb != nil && fetch < maxLeaderboardLimit {
			fetch = maxLeaderboardLimit
		}
		users, err := store.Leaderboard(r.Context(), fetch)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		entries := make([]LeaderboardEntry, len(users))
		for i, u := range users {
			entries[i] = LeaderboardEntry{
				User:          withDerivedLevel(u),
				LevelProgress: level.ForPoints(u.TotalPoints),
			}
		}

		if rdb != nil {
			if data, err := json.Marshal(entries); err == nil {
				if err := rdb.Set(r.Context(), leaderboardCacheKey, data, leaderboardCacheTTL).Err(); err != nil {
					logger.Warn("leaderboard cache write failed", "error", err)
				}
			}
		}

		if len(entries) > limit {
			entries = entries[:limit]
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func cachedLeaderboard(ctx context.Context, rdb *redis.Client) ([]LeaderboardEntry, bool) {
	data, err := rdb.Get(ctx, leaderboardCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func invalidateLeaderboard(ctx context.Context, logger *slog.Logger, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		logger.Warn("leaderboard cache invalidation failed", "error", err)
	}
}
