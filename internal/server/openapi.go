package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi31"

	"github.com/litquest/hottabych/internal/quest"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi31.Spec {
	r := openapi31.NewReflector()
	r.Spec.Info.Title = "Hottabych Quest API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Hottabych literary walking quest.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/users
	postUser, _ := r.NewOperationContext(http.MethodPost, "/api/users")
	postUser.SetSummary("Create or fetch user")
	postUser.SetDescription("Registers a user by Telegram id. Returns the existing user if already registered.")
	postUser.AddReqStructure(CreateUserRequest{})
	postUser.AddRespStructure(quest.User{}, openapi.WithHTTPStatus(http.StatusOK))
	postUser.AddRespStructure(quest.User{}, openapi.WithHTTPStatus(http.StatusCreated))
	postUser.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postUser)

	// GET /api/users/{telegramId}
	getUser, _ := r.NewOperationContext(http.MethodGet, "/api/users/{telegramId}")
	getUser.SetSummary("Get user")
	getUser.SetDescription("Returns a user with the level derived from total points.")
	getUser.AddRespStructure(quest.User{}, openapi.WithHTTPStatus(http.StatusOK))
	getUser.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getUser)

	// GET /api/motifs
	listMotifs, _ := r.NewOperationContext(http.MethodGet, "/api/motifs")
	listMotifs.SetSummary("List motifs")
	listMotifs.SetDescription("Returns all active quest routes.")
	listMotifs.AddRespStructure([]quest.Motif{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listMotifs)

	// GET /api/motifs/{id}
	getMotif, _ := r.NewOperationContext(http.MethodGet, "/api/motifs/{id}")
	getMotif.SetSummary("Get motif")
	getMotif.AddRespStructure(quest.Motif{}, openapi.WithHTTPStatus(http.StatusOK))
	getMotif.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getMotif)

	// GET /api/motifs/{id}/pois
	listMotifPOIs, _ := r.NewOperationContext(http.MethodGet, "/api/motifs/{id}/pois")
	listMotifPOIs.SetSummary("List motif POIs")
	listMotifPOIs.SetDescription("Returns the motif's points of interest in route order.")
	listMotifPOIs.AddRespStructure([]quest.POI{}, openapi.WithHTTPStatus(http.StatusOK))
	listMotifPOIs.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(listMotifPOIs)

	// GET /api/pois
	listPOIs, _ := r.NewOperationContext(http.MethodGet, "/api/pois")
	listPOIs.SetSummary("List POIs")
	listPOIs.AddRespStructure([]quest.POI{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listPOIs)

	// GET /api/pois/{id}
	getPOI, _ := r.NewOperationContext(http.MethodGet, "/api/pois/{id}")
	getPOI.SetSummary("Get POI")
	getPOI.AddRespStructure(quest.POI{}, openapi.WithHTTPStatus(http.StatusOK))
	getPOI.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getPOI)

	// POST /api/progress
	postProgress, _ := r.NewOperationContext(http.MethodPost, "/api/progress")
	postProgress.SetSummary("Start motif")
	postProgress.SetDescription("Creates a progress row for the user on a motif. Returns the existing row if already started.")
	postProgress.AddReqStructure(CreateProgressRequest{})
	postProgress.AddRespStructure(quest.MotifProgress{}, openapi.WithHTTPStatus(http.StatusOK))
	postProgress.AddRespStructure(quest.MotifProgress{}, openapi.WithHTTPStatus(http.StatusCreated))
	postProgress.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postProgress)

	// GET /api/progress/{userId}/{motifId}
	getProgress, _ := r.NewOperationContext(http.MethodGet, "/api/progress/{userId}/{motifId}")
	getProgress.SetSummary("Get progress")
	getProgress.SetDescription("Returns the user's progress on a motif.")
	getProgress.AddRespStructure(quest.MotifProgress{}, openapi.WithHTTPStatus(http.StatusOK))
	getProgress.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getProgress)

	// POST /api/visits
	postVisit, _ := r.NewOperationContext(http.MethodPost, "/api/visits")
	postVisit.SetSummary("Submit visit")
	postVisit.SetDescription("Records a POI visit, advances progress, grants points, and evaluates achievements in one transaction.")
	postVisit.AddReqStructure(VisitRequest{})
	postVisit.AddRespStructure(quest.Visit{}, openapi.WithHTTPStatus(http.StatusCreated))
	postVisit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postVisit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postVisit)

	// GET /api/visits/{userId}
	listVisits, _ := r.NewOperationContext(http.MethodGet, "/api/visits/{userId}")
	listVisits.SetSummary("List visits")
	listVisits.SetDescription("Returns the user's visit history in visit order.")
	listVisits.AddRespStructure([]quest.Visit{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listVisits)

	// GET /api/achievements
	listAchievements, _ := r.NewOperationContext(http.MethodGet, "/api/achievements")
	listAchievements.SetSummary("List achievements")
	listAchievements.AddRespStructure([]quest.Achievement{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listAchievements)

	// GET /api/achievements/{userId}
	userAchievements, _ := r.NewOperationContext(http.MethodGet, "/api/achievements/{userId}")
	userAchievements.SetSummary("List user achievements")
	userAchievements.SetDescription("Returns the achievements a user has unlocked, in unlock order.")
	userAchievements.AddRespStructure([]quest.Achievement{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(userAchievements)

	// POST /api/achievements/{userId}/{achievementId}
	unlock, _ := r.NewOperationContext(http.MethodPost, "/api/achievements/{userId}/{achievementId}")
	unlock.SetSummary("Unlock achievement")
	unlock.SetDescription("Grants an achievement directly, bypassing the condition engine. Repeat calls change nothing.")
	unlock.AddRespStructure(quest.Achievement{}, openapi.WithHTTPStatus(http.StatusCreated))
	unlock.AddRespStructure(quest.Achievement{}, openapi.WithHTTPStatus(http.StatusOK))
	unlock.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(unlock)

	// GET /api/leaderboard
	leaderboard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	leaderboard.SetSummary("Leaderboard")
	leaderboard.SetDescription("Returns the top users by total points with derived level progress.")
	leaderboard.AddRespStructure([]LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(leaderboard)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream for visit, motif, and achievement updates. Pass telegramId as a query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// POST /api/admin/motifs
	createMotif, _ := r.NewOperationContext(http.MethodPost, "/api/admin/motifs")
	createMotif.SetSummary("Create motif")
	createMotif.SetDescription("Creates a motif with its ordered POIs. Requires admin_session cookie.")
	createMotif.AddReqStructure(AdminMotifRequest{})
	createMotif.AddRespStructure(quest.Motif{}, openapi.WithHTTPStatus(http.StatusCreated))
	createMotif.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createMotif.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createMotif)

	// POST /api/admin/achievements
	createAchievement, _ := r.NewOperationContext(http.MethodPost, "/api/admin/achievements")
	createAchievement.SetSummary("Create achievement")
	createAchievement.SetDescription("Creates an achievement with a known condition tag. Requires admin_session cookie.")
	createAchievement.AddReqStructure(AdminAchievementRequest{})
	createAchievement.AddRespStructure(quest.Achievement{}, openapi.WithHTTPStatus(http.StatusCreated))
	createAchievement.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createAchievement.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createAchievement)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
