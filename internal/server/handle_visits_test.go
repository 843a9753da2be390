package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/litquest/hottabych/internal/database"
	"github.com/litquest/hottabych/internal/quest"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store, err := NewSQLiteStore(ctx, db)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return store
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func apiRouter(t *testing.T, store *SQLiteStore) *chi.Mux {
	t.Helper()
	broker := NewBroker()
	logger := testLogger()

	r := chi.NewRouter()
	r.Post("/api/users", handleCreateUser(store))
	r.Get("/api/users/{telegramId}", handleGetUser(store))
	r.Get("/api/motifs", handleListMotifs(store))
	r.Get("/api/motifs/{id}/pois", handleListMotifPOIs(store))
	r.Post("/api/progress", handleCreateProgress(store))
	r.Get("/api/progress/{userId}/{motifId}", handleGetProgress(store))
	r.Post("/api/visits", handleSubmitVisit(logger, store, nil, broker))
	r.Get("/api/visits/{userId}", handleListVisits(store))
	r.Get("/api/achievements/{userId}", handleUserAchievements(store))
	r.Get("/api/leaderboard", handleLeaderboard(logger, store, nil))
	return r
}

// questFixture creates a user on a three-POI motif worth 50, 75, and 100
// points, with deterministic achievements wired (no time-of-day condition).
type questFixture struct {
	user  quest.User
	motif quest.Motif
	pois  []quest.POI
}

func setupQuest(t *testing.T, store *SQLiteStore) questFixture {
	t.Helper()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, quest.User{TelegramID: "100500", Name: "Волька"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	motif, err := store.CreateMotif(ctx, quest.Motif{
		Name:        "Старик Хоттабыч",
		Description: "Тестовый маршрут",
		Legend:      "Легенда",
		IsActive:    true,
	}, []quest.POI{
		{Name: "Москва-река", Description: "Кувшин", Latitude: 55.7520, Longitude: 37.6175, Order: 1, Radius: 100, Points: 50},
		{Name: "Большой театр", Description: "Представление", Latitude: 55.7603, Longitude: 37.6186, Order: 2, Radius: 100, Points: 75},
		{Name: "Стадион Динамо", Description: "Матч", Latitude: 55.7916, Longitude: 37.5589, Order: 3, Radius: 150, Points: 100},
	})
	if err != nil {
		t.Fatalf("create motif: %v", err)
	}

	for _, a := range []quest.Achievement{
		{Name: "Первооткрыватель", Description: "Первая точка", Condition: quest.ConditionVisitFirstPOI, Points: 25},
		{Name: "Коллекционер историй", Description: "Три точки", Condition: quest.ConditionVisitThreePOIs, Points: 50},
		{Name: "Мастер маршрута", Description: "Весь маршрут", Condition: quest.ConditionCompleteMotif, Points: 100},
	} {
		if _, err := store.CreateAchievement(ctx, a); err != nil {
			t.Fatalf("create achievement: %v", err)
		}
	}

	pois, err := store.ListPOIsByMotif(ctx, motif.ID)
	if err != nil {
		t.Fatalf("list pois: %v", err)
	}
	if len(pois) != 3 {
		t.Fatalf("expected 3 pois, got %d", len(pois))
	}

	return questFixture{user: user, motif: motif, pois: pois}
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getJSON(t *testing.T, r http.Handler, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return w
}

func TestCreateUserGetOrCreate(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)

	w := postJSON(t, r, "/api/users", CreateUserRequest{TelegramID: "42", Name: "Женя"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created quest.User
	json.NewDecoder(w.Body).Decode(&created)

	w = postJSON(t, r, "/api/users", CreateUserRequest{TelegramID: "42", Name: "Женя"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat, got %d", w.Code)
	}
	var again quest.User
	json.NewDecoder(w.Body).Decode(&again)

	if created.ID != again.ID {
		t.Errorf("expected same user id, got %q and %q", created.ID, again.ID)
	}
	if again.Level != 1 {
		t.Errorf("expected level 1 for new user, got %d", again.Level)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)

	w := getJSON(t, r, "/api/users/nobody", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestVisitPipeline(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)
	fx := setupQuest(t, store)

	w := postJSON(t, r, "/api/progress", CreateProgressRequest{UserID: fx.user.ID, MotifID: fx.motif.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 starting motif, got %d: %s", w.Code, w.Body.String())
	}

	// First visit: POI points plus the first-visit achievement.
	w = postJSON(t, r, "/api/visits", VisitRequest{UserID: fx.user.ID, PoiID: fx.pois[0].ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var u quest.User
	getJSON(t, r, "/api/users/"+fx.user.TelegramID, &u)
	if u.TotalPoints != 75 {
		t.Errorf("after first visit expected 75 points (50 POI + 25 achievement), got %d", u.TotalPoints)
	}

	// Repeat visit: recorded but awards nothing.
	w = postJSON(t, r, "/api/visits", VisitRequest{UserID: fx.user.ID, PoiID: fx.pois[0].ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 on repeat visit, got %d", w.Code)
	}
	getJSON(t, r, "/api/users/"+fx.user.TelegramID, &u)
	if u.TotalPoints != 75 {
		t.Errorf("repeat visit must not change points, got %d", u.TotalPoints)
	}

	var visits []quest.Visit
	getJSON(t, r, "/api/visits/"+fx.user.ID, &visits)
	if len(visits) != 2 {
		t.Errorf("expected 2 visit records, got %d", len(visits))
	}

	var progress quest.MotifProgress
	getJSON(t, r, "/api/progress/"+fx.user.ID+"/"+fx.motif.ID, &progress)
	if progress.CurrentPoiIndex != 1 {
		t.Errorf("repeat visit must not advance progress, index = %d", progress.CurrentPoiIndex)
	}

	// Second POI. Visit count reaches 3 (repeat included), unlocking the
	// three-visits achievement.
	postJSON(t, r, "/api/visits", VisitRequest{UserID: fx.user.ID, PoiID: fx.pois[1].ID})
	getJSON(t, r, "/api/users/"+fx.user.TelegramID, &u)
	if u.TotalPoints != 200 {
		t.Errorf("after second POI expected 200 points, got %d", u.TotalPoints)
	}

	// Final POI completes the motif.
	postJSON(t, r, "/api/visits", VisitRequest{UserID: fx.user.ID, PoiID: fx.pois[2].ID})
	getJSON(t, r, "/api/users/"+fx.user.TelegramID, &u)
	if u.TotalPoints != 400 {
		t.Errorf("after completion expected 400 points, got %d", u.TotalPoints)
	}
	if u.Level != 3 {
		t.Errorf("400 points should derive level 3, got %d", u.Level)
	}

	getJSON(t, r, "/api/progress/"+fx.user.ID+"/"+fx.motif.ID, &progress)
	if !progress.IsCompleted {
		t.Error("expected motif completed")
	}
	if progress.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
	if progress.Points != 225 {
		t.Errorf("expected 225 route points on progress, got %d", progress.Points)
	}

	var unlocked []quest.Achievement
	getJSON(t, r, "/api/achievements/"+fx.user.ID, &unlocked)
	if len(unlocked) != 3 {
		t.Errorf("expected 3 achievements unlocked, got %d", len(unlocked))
	}
}

func TestVisitCompletionIdempotent(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)
	fx := setupQuest(t, store)
	ctx := context.Background()

	if _, err := store.CreateProgress(ctx, fx.user.ID, fx.motif.ID); err != nil {
		t.Fatalf("create progress: %v", err)
	}

	for _, p := range fx.pois {
		postJSON(t, r, "/api/visits", VisitRequest{UserID: fx.user.ID, PoiID: p.ID})
	}
	var before quest.User
	getJSON(t, r, "/api/users/"+fx.user.TelegramID, &before)

	// Re-visiting after completion must not re-complete or re-award.
	postJSON(t, r, "/api/visits", VisitRequest{UserID: fx.user.ID, PoiID: fx.pois[2].ID})

	var after quest.User
	getJSON(t, r, "/api/users/"+fx.user.TelegramID, &after)
	if after.TotalPoints != before.TotalPoints {
		t.Errorf("points changed on post-completion revisit: %d -> %d", before.TotalPoints, after.TotalPoints)
	}

	var unlocked []quest.Achievement
	getJSON(t, r, "/api/achievements/"+fx.user.ID, &unlocked)
	if len(unlocked) != 3 {
		t.Errorf("expected achievements to stay at 3, got %d", len(unlocked))
	}
}

func TestVisitWithoutProgressAwardsNoRoutePoints(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)
	fx := setupQuest(t, store)

	// No progress row: the visit is recorded and achievements still
	// evaluate, but no POI points are granted.
	w := postJSON(t, r, "/api/visits", VisitRequest{UserID: fx.user.ID, PoiID: fx.pois[0].ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var u quest.User
	getJSON(t, r, "/api/users/"+fx.user.TelegramID, &u)
	if u.TotalPoints != 25 {
		t.Errorf("expected only the 25 achievement points, got %d", u.TotalPoints)
	}
}

func TestVisitBeforeNineUnlock(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)
	fx := setupQuest(t, store)
	ctx := context.Background()

	if _, err := store.CreateAchievement(ctx, quest.Achievement{
		Name:        "Ранняя пташка",
		Description: "Визит до девяти утра",
		Condition:   quest.ConditionVisitBeforeNine,
		Points:      30,
	}); err != nil {
		t.Fatalf("create achievement: %v", err)
	}

	store.now = func() time.Time {
		return time.Date(2026, 5, 12, 8, 30, 0, 0, time.Local)
	}

	postJSON(t, r, "/api/progress", CreateProgressRequest{UserID: fx.user.ID, MotifID: fx.motif.ID})
	w := postJSON(t, r, "/api/visits", VisitRequest{UserID: fx.user.ID, PoiID: fx.pois[0].ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var u quest.User
	getJSON(t, r, "/api/users/"+fx.user.TelegramID, &u)
	if u.TotalPoints != 105 {
		t.Errorf("expected 105 points (50 POI + 25 first + 30 early), got %d", u.TotalPoints)
	}

	var unlocked []quest.Achievement
	getJSON(t, r, "/api/achievements/"+fx.user.ID, &unlocked)
	names := make(map[string]bool, len(unlocked))
	for _, a := range unlocked {
		names[a.Name] = true
	}
	if !names["Ранняя пташка"] {
		t.Errorf("expected early-morning achievement unlocked, got %v", unlocked)
	}
}

func TestVisitAtNineStaysLocked(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)
	fx := setupQuest(t, store)
	ctx := context.Background()

	if _, err := store.CreateAchievement(ctx, quest.Achievement{
		Name:        "Ранняя пташка",
		Description: "Визит до девяти утра",
		Condition:   quest.ConditionVisitBeforeNine,
		Points:      30,
	}); err != nil {
		t.Fatalf("create achievement: %v", err)
	}

	store.now = func() time.Time {
		return time.Date(2026, 5, 12, 9, 0, 0, 0, time.Local)
	}

	postJSON(t, r, "/api/progress", CreateProgressRequest{UserID: fx.user.ID, MotifID: fx.motif.ID})
	postJSON(t, r, "/api/visits", VisitRequest{UserID: fx.user.ID, PoiID: fx.pois[0].ID})

	var u quest.User
	getJSON(t, r, "/api/users/"+fx.user.TelegramID, &u)
	if u.TotalPoints != 75 {
		t.Errorf("expected 75 points with no early bonus, got %d", u.TotalPoints)
	}

	var unlocked []quest.Achievement
	getJSON(t, r, "/api/achievements/"+fx.user.ID, &unlocked)
	if len(unlocked) != 1 {
		t.Errorf("expected only the first-visit achievement, got %d", len(unlocked))
	}
}

func TestVisitUnknownPOI(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)
	fx := setupQuest(t, store)

	w := postJSON(t, r, "/api/visits", VisitRequest{UserID: fx.user.ID, PoiID: "missing"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestVisitUnknownUser(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)
	fx := setupQuest(t, store)

	w := postJSON(t, r, "/api/visits", VisitRequest{UserID: "missing", PoiID: fx.pois[0].ID})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestProgressGetOrCreate(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)
	fx := setupQuest(t, store)

	w := postJSON(t, r, "/api/progress", CreateProgressRequest{UserID: fx.user.ID, MotifID: fx.motif.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var first quest.MotifProgress
	json.NewDecoder(w.Body).Decode(&first)

	w = postJSON(t, r, "/api/progress", CreateProgressRequest{UserID: fx.user.ID, MotifID: fx.motif.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat, got %d", w.Code)
	}
	var second quest.MotifProgress
	json.NewDecoder(w.Body).Decode(&second)

	if first.ID != second.ID {
		t.Errorf("expected same progress row, got %q and %q", first.ID, second.ID)
	}
}

func TestProgressUnknownMotif(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)
	fx := setupQuest(t, store)

	w := postJSON(t, r, "/api/progress", CreateProgressRequest{UserID: fx.user.ID, MotifID: "missing"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)
	fx := setupQuest(t, store)
	ctx := context.Background()

	second, err := store.CreateUser(ctx, quest.User{TelegramID: "200600", Name: "Хоттабыч"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	store.CreateProgress(ctx, fx.user.ID, fx.motif.ID)
	store.CreateProgress(ctx, second.ID, fx.motif.ID)

	// First user visits two POIs, second visits one.
	postJSON(t, r, "/api/visits", VisitRequest{UserID: fx.user.ID, PoiID: fx.pois[0].ID})
	postJSON(t, r, "/api/visits", VisitRequest{UserID: fx.user.ID, PoiID: fx.pois[1].ID})
	postJSON(t, r, "/api/visits", VisitRequest{UserID: second.ID, PoiID: fx.pois[0].ID})

	var entries []LeaderboardEntry
	w := getJSON(t, r, "/api/leaderboard", &entries)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != fx.user.ID {
		t.Errorf("expected highest scorer first, got %q", entries[0].Name)
	}
	if entries[0].TotalPoints <= entries[1].TotalPoints {
		t.Errorf("leaderboard not descending: %d then %d", entries[0].TotalPoints, entries[1].TotalPoints)
	}
	if entries[0].LevelProgress.Level < 1 {
		t.Errorf("expected derived level progress, got %+v", entries[0].LevelProgress)
	}
}

func TestLeaderboardInvalidLimit(t *testing.T) {
	store := setupStore(t)
	r := apiRouter(t, store)

	w := getJSON(t, r, "/api/leaderboard?limit=zero", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
