// Package quest defines the core domain types and the achievement rules.
// It has no dependencies outside the standard library.
package quest

import "time"

type User struct {
	ID          string    `json:"id"`
	TelegramID  string    `json:"telegramId"`
	Name        string    `json:"name"`
	BirthDate   string    `json:"birthDate,omitempty"`
	Role        string    `json:"role"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	TotalPoints int       `json:"totalPoints"`
	Level       int       `json:"level"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Motif is a themed quest route composed of ordered POIs.
type Motif struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Legend      string    `json:"legend"`
	Theme       string    `json:"theme"` // opaque JSON blob for the client
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// POI is a geographic waypoint with narrative content and a point reward.
// Order defines the route sequence within a motif; order values are unique
// per motif.
type POI struct {
	ID          string    `json:"id"`
	MotifID     string    `json:"motifId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quote       string    `json:"quote,omitempty"`
	Latitude    float64   `json:"latitude,string"`
	Longitude   float64   `json:"longitude,string"`
	Order       int       `json:"order"`
	Radius      float64   `json:"radius"`
	Points      int       `json:"points"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MotifProgress tracks how far a user has advanced through a motif.
// CurrentPoiIndex is a count of POIs completed, not a POI id; it only
// increases. IsCompleted becomes true exactly when the index reaches the
// motif's POI count and is never reverted.
type MotifProgress struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	MotifID         string     `json:"motifId"`
	CurrentPoiIndex int        `json:"currentPoiIndex"`
	IsCompleted     bool       `json:"isCompleted"`
	Points          int        `json:"points"`
	StartedAt       time.Time  `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// Visit is an append-only record of a user arriving at a POI. Visits are
// never mutated or deleted; only the first visit to a POI advances progress.
type Visit struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PoiID     string    `json:"poiId"`
	VisitedAt time.Time `json:"visitedAt"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
}

type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IconURL     string    `json:"iconUrl,omitempty"`
	Condition   Condition `json:"condition"`
	Points      int       `json:"points"`
	CreatedAt   time.Time `json:"createdAt"`
}

type UserAchievement struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	AchievementID string    `json:"achievementId"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}
