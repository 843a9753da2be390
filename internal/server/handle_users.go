package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/litquest/hottabych/internal/level"
	"github.com/litquest/hottabych/internal/quest"
)

// CreateUserRequest is the body for POST /api/users. The identity provider
// supplies a stable numeric id, already stringified by the client.
type CreateUserRequest struct {
	TelegramID string `json:"telegramId"`
	Name       string `json:"name"`
	BirthDate  string `json:"birthDate,omitempty"`
	Role       string `json:"role,omitempty"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
}

// handleCreateUser gets or creates a user by telegram id: 200 with the
// existing row, 201 when newly created.
func handleCreateUser(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.TelegramID = strings.TrimSpace(req.TelegramID)
		req.Name = strings.TrimSpace(req.Name)
		if req.TelegramID == "" || req.Name == "" {
			writeError(w, http.StatusBadRequest, "telegramId and name are required")
			return
		}

		existing, err := store.GetUserByTelegramID(r.Context(), req.TelegramID)
		if err == nil {
			writeJSON(w, http.StatusOK, withDerivedLevel(existing))
			return
		}
		if !errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		user, err := store.CreateUser(r.Context(), quest.User{
			TelegramID: req.TelegramID,
			Name:       req.Name,
			BirthDate:  req.BirthDate,
			Role:       req.Role,
			AvatarURL:  req.AvatarURL,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, withDerivedLevel(user))
	}
}

func handleGetUser(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		telegramID := chi.URLParam(r, "telegramId")

		user, err := store.GetUserByTelegramID(r.Context(), telegramID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, withDerivedLevel(user))
	}
}

// withDerivedLevel recomputes the level from points before serving a user.
// The stored level column may drift and is never authoritative.
func withDerivedLevel(u quest.User) quest.User {
	u.Level = level.Level(u.TotalPoints)
	return u
}
