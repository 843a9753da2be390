package server

import (
	"net/http"
	"strings"

	"github.com/litquest/hottabych/internal/quest"
)

// AdminPOIRequest is one waypoint in an AdminMotifRequest. Order is assigned
// from the slice position.
type AdminPOIRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quote       string  `json:"quote"`
	Latitude    float64 `json:"latitude,string"`
	Longitude   float64 `json:"longitude,string"`
	Radius      float64 `json:"radius"`
	Points      int     `json:"points"`
	ImageURL    string  `json:"imageUrl"`
}

// AdminMotifRequest is the request body for POST /api/admin/motifs.
type AdminMotifRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Legend      string            `json:"legend"`
	Theme       string            `json:"theme"`
	IsActive    bool              `json:"isActive"`
	Pois        []AdminPOIRequest `json:"pois"`
}

func (req *AdminMotifRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if len(req.Pois) == 0 {
		return "at least one poi is required"
	}
	for i := range req.Pois {
		if strings.TrimSpace(req.Pois[i].Name) == "" {
			return "each poi must have a name"
		}
		lat, lon := req.Pois[i].Latitude, req.Pois[i].Longitude
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return "each poi must have valid coordinates"
		}
	}
	return ""
}

func handleAdminCreateMotif(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminMotifRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		m := quest.Motif{
			Name:        req.Name,
			Description: req.Description,
			Legend:      req.Legend,
			Theme:       req.Theme,
			IsActive:    req.IsActive,
		}
		pois := make([]quest.POI, len(req.Pois))
		for i, p := range req.Pois {
			pois[i] = quest.POI{
				Name:        strings.TrimSpace(p.Name),
				Description: p.Description,
				Quote:       p.Quote,
				Latitude:    p.Latitude,
				Longitude:   p.Longitude,
				Order:       i + 1,
				Radius:      p.Radius,
				Points:      p.Points,
				ImageURL:    p.ImageURL,
			}
		}

		created, err := store.CreateMotif(r.Context(), m, pois)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// AdminAchievementRequest is the request body for POST /api/admin/achievements.
type AdminAchievementRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
	Condition   string `json:"condition"`
	Points      int    `json:"points"`
}

func handleAdminCreateAchievement(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminAchievementRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Condition = strings.TrimSpace(req.Condition)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if !quest.KnownCondition(quest.Condition(req.Condition)) {
			writeError(w, http.StatusBadRequest, "unknown condition")
			return
		}

		created, err := store.CreateAchievement(r.Context(), quest.Achievement{
			Name:        req.Name,
			Description: req.Description,
			IconURL:     req.IconURL,
			Condition:   quest.Condition(req.Condition),
			Points:      req.Points,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}
