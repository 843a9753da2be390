package server

import (
	"context"
	"errors"

	"github.com/litquest/hottabych/internal/quest"
)

var ErrNotFound = errors.New("not found")

type adminSession struct {
	AdminID string
	Email   string
}

// VisitOutcome is everything a single ingested visit produced: the
// append-only record, the POI points applied to progress (0 for repeat
// visits or when the user has no progress row for the motif), whether this
// visit completed the motif, and any achievements unlocked along the way.
type VisitOutcome struct {
	Visit          quest.Visit
	PointsAwarded  int
	MotifCompleted bool
	Unlocked       []quest.Achievement
}

type Store interface {
	GetUserByTelegramID(ctx context.Context, telegramID string) (quest.User, error)
	GetUser(ctx context.Context, id string) (quest.User, error)
	CreateUser(ctx context.Context, u quest.User) (quest.User, error)
	Leaderboard(ctx context.Context, limit int) ([]quest.User, error)

	ListMotifs(ctx context.Context) ([]quest.Motif, error)
	GetMotif(ctx context.Context, id string) (quest.Motif, error)
	CreateMotif(ctx context.Context, m quest.Motif, pois []quest.POI) (quest.Motif, error)

	ListPOIs(ctx context.Context) ([]quest.POI, error)
	ListPOIsByMotif(ctx context.Context, motifID string) ([]quest.POI, error)
	GetPOI(ctx context.Context, id string) (quest.POI, error)

	GetProgress(ctx context.Context, userID, motifID string) (quest.MotifProgress, error)
	CreateProgress(ctx context.Context, userID, motifID string) (quest.MotifProgress, error)

	ListVisits(ctx context.Context, userID string) ([]quest.Visit, error)
	SubmitVisit(ctx context.Context, userID, poiID string, lat, lon *float64) (VisitOutcome, error)

	ListAchievements(ctx context.Context) ([]quest.Achievement, error)
	ListUserAchievements(ctx context.Context, userID string) ([]quest.Achievement, error)
	CreateAchievement(ctx context.Context, a quest.Achievement) (quest.Achievement, error)
	UnlockAchievement(ctx context.Context, userID, achievementID string) (quest.Achievement, bool, error)

	HasAdmins(ctx context.Context) (bool, error)
	CreateAdmin(ctx context.Context, email, passwordHash string) error
	AdminByEmail(ctx context.Context, email string) (id, passwordHash string, err error)
	CreateAdminSession(ctx context.Context, adminID string) (string, error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)
}
