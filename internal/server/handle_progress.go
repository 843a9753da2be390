package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CreateProgressRequest is the body for POST /api/progress.
type CreateProgressRequest struct {
	UserID  string `json:"userId"`
	MotifID string `json:"motifId"`
}

// handleCreateProgress starts a user on a motif. Get-or-create: posting the
// same pair twice returns the existing row with 200.
func handleCreateProgress(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProgressRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID == "" || req.MotifID == "" {
			writeError(w, http.StatusBadRequest, "userId and motifId are required")
			return
		}

		if existing, err := store.GetProgress(r.Context(), req.UserID, req.MotifID); err == nil {
			writeJSON(w, http.StatusOK, existing)
			return
		} else if !errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if _, err := store.GetMotif(r.Context(), req.MotifID); errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "motif not found")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		progress, err := store.CreateProgress(r.Context(), req.UserID, req.MotifID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, progress)
	}
}

func handleGetProgress(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		motifID := chi.URLParam(r, "motifId")

		progress, err := store.GetProgress(r.Context(), userID, motifID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "progress not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, progress)
	}
}
