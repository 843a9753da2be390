package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/litquest/hottabych/internal/quest"
)

// handleListPOIs returns every POI across active motifs, flattened, in
// route order per motif. The client's proximity tracker consumes this list.
func handleListPOIs(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pois, err := store.ListPOIs(r.Context())
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

func handleGetPOI(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poi, err := store.GetPOI(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "POI not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, poi)
	}
}
