package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/litquest/hottabych/internal/quest"
)

func handleListMotifs(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		motifs, err := store.ListMotifs(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if motifs == nil {
			motifs = []quest.Motif{}
		}
		writeJSON(w, http.StatusOK, motifs)
	}
}

func handleGetMotif(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		motif, err := store.GetMotif(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "motif not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, motif)
	}
}

// handleListMotifPOIs returns the motif's POIs in route order.
func handleListMotifPOIs(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pois, err := store.ListPOIsByMotif(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if pois == nil {
			pois = []quest.POI{}
		}
		writeJSON(w, http.StatusOK, pois)
	}
}
