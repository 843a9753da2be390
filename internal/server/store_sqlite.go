package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/litquest/hottabych/internal/quest"
)

// SQLiteStore implements Store on a single SQLite database. All multi-step
// mutations (visit ingestion in particular) run inside one transaction, so a
// crash mid-pipeline can never leave points applied without their visit
// record or vice versa. SQLite's single-writer transactions also serialize
// concurrent per-user point updates.
type SQLiteStore struct {
	db *sql.DB

	// now is the clock visit ingestion stamps records with; tests swap it
	// to pin time-of-day achievement conditions.
	now func() time.Time
}

func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			telegram_id  TEXT NOT NULL UNIQUE,
			name         TEXT NOT NULL,
			birth_date   TEXT,
			role         TEXT NOT NULL DEFAULT 'user',
			avatar_url   TEXT,
			total_points INTEGER NOT NULL DEFAULT 0,
			level        INTEGER NOT NULL DEFAULT 1,
			created_at   TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS motifs (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL,
			legend      TEXT NOT NULL,
			theme       TEXT NOT NULL DEFAULT '{}',
			is_active   INTEGER NOT NULL DEFAULT 1,
			created_at  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS points_of_interest (
			id          TEXT PRIMARY KEY,
			motif_id    TEXT NOT NULL REFERENCES motifs(id) ON DELETE CASCADE,
			name        TEXT NOT NULL,
			description TEXT NOT NULL,
			quote       TEXT,
			latitude    REAL NOT NULL,
			longitude   REAL NOT NULL,
			"order"     INTEGER NOT NULL,
			radius      REAL NOT NULL DEFAULT 100,
			points      INTEGER NOT NULL DEFAULT 10,
			image_url   TEXT,
			created_at  TEXT NOT NULL,
			UNIQUE (motif_id, "order")
		)`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL,
			icon_url    TEXT,
			condition   TEXT NOT NULL,
			points      INTEGER NOT NULL DEFAULT 50,
			created_at  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_motif_progress (
			id                TEXT PRIMARY KEY,
			user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			motif_id          TEXT NOT NULL REFERENCES motifs(id) ON DELETE CASCADE,
			current_poi_index INTEGER NOT NULL DEFAULT 0,
			is_completed      INTEGER NOT NULL DEFAULT 0,
			points            INTEGER NOT NULL DEFAULT 0,
			started_at        TEXT NOT NULL,
			completed_at      TEXT,
			UNIQUE (user_id, motif_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_poi_visits (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			poi_id     TEXT NOT NULL REFERENCES points_of_interest(id) ON DELETE CASCADE,
			visited_at TEXT NOT NULL,
			latitude   REAL,
			longitude  REAL
		)`,
		`CREATE TABLE IF NOT EXISTS user_achievements (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			achievement_id TEXT NOT NULL REFERENCES achievements(id) ON DELETE CASCADE,
			unlocked_at    TEXT NOT NULL,
			UNIQUE (user_id, achievement_id)
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS admin_sessions (
			id         TEXT PRIMARY KEY,
			admin_id   TEXT NOT NULL REFERENCES admins(id) ON DELETE CASCADE,
			created_at TEXT NOT NULL
		)`,
	} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return nil, fmt.Errorf("creating table: %w", err)
		}
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func newID() string { return uuid.NewString() }

func fmtTime(t time.Time) string { return t.Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// --- users ---

const userColumns = `id, telegram_id, name, COALESCE(birth_date, ''), role,
	COALESCE(avatar_url, ''), total_points, level, created_at`

func scanUser(row interface{ Scan(...any) error }) (quest.User, error) {
	var u quest.User
	var createdAt string
	err := row.Scan(&u.ID, &u.TelegramID, &u.Name, &u.BirthDate, &u.Role,
		&u.AvatarURL, &u.TotalPoints, &u.Level, &createdAt)
	if err != nil {
		return u, err
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

func (s *SQLiteStore) GetUserByTelegramID(ctx context.Context, telegramID string) (quest.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = ?`, telegramID))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (quest.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u quest.User) (quest.User, error) {
	u.ID = newID()
	u.CreatedAt = time.Now()
	if u.Role == "" {
		u.Role = "user"
	}
	if u.Level == 0 {
		u.Level = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, telegram_id, name, birth_date, role, avatar_url, total_points, level, created_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, NULLIF(?, ''), ?, ?, ?)
	`, u.ID, u.TelegramID, u.Name, u.BirthDate, u.Role, u.AvatarURL, u.TotalPoints, u.Level, fmtTime(u.CreatedAt))
	return u, err
}

func (s *SQLiteStore) Leaderboard(ctx context.Context, limit int) ([]quest.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY total_points DESC, created_at LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []quest.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// --- motifs ---

const motifColumns = `id, name, description, legend, theme, is_active, created_at`

func scanMotif(row interface{ Scan(...any) error }) (quest.Motif, error) {
	var m quest.Motif
	var createdAt string
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Legend, &m.Theme, &m.IsActive, &createdAt)
	if err != nil {
		return m, err
	}
	m.CreatedAt = parseTime(createdAt)
	return m, nil
}

func (s *SQLiteStore) ListMotifs(ctx context.Context) ([]quest.Motif, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+motifColumns+` FROM motifs ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var motifs []quest.Motif
	for rows.Next() {
		m, err := scanMotif(rows)
		if err != nil {
			return nil, err
		}
		motifs = append(motifs, m)
	}
	return motifs, rows.Err()
}

func (s *SQLiteStore) GetMotif(ctx context.Context, id string) (quest.Motif, error) {
	m, err := scanMotif(s.db.QueryRowContext(ctx,
		`SELECT `+motifColumns+` FROM motifs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNotFound
	}
	return m, err
}

func (s *SQLiteStore) CreateMotif(ctx context.Context, m quest.Motif, pois []quest.POI) (quest.Motif, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return m, err
	}
	defer tx.Rollback()

	m.ID = newID()
	m.CreatedAt = time.Now()
	if m.Theme == "" {
		m.Theme = "{}"
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO motifs (id, name, description, legend, theme, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Description, m.Legend, m.Theme, m.IsActive, fmtTime(m.CreatedAt))
	if err != nil {
		return m, err
	}

	for _, p := range pois {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO points_of_interest
				(id, motif_id, name, description, quote, latitude, longitude, "order", radius, points, image_url, created_at)
			VALUES (?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, NULLIF(?, ''), ?)
		`, newID(), m.ID, p.Name, p.Description, p.Quote, p.Latitude, p.Longitude,
			p.Order, p.Radius, p.Points, p.ImageURL, fmtTime(m.CreatedAt))
		if err != nil {
			return m, err
		}
	}

	return m, tx.Commit()
}

// --- POIs ---

const poiColumns = `id, motif_id, name, description, COALESCE(quote, ''), latitude, longitude,
	"order", radius, points, COALESCE(image_url, ''), created_at`

func scanPOI(row interface{ Scan(...any) error }) (quest.POI, error) {
	var p quest.POI
	var createdAt string
	err := row.Scan(&p.ID, &p.MotifID, &p.Name, &p.Description, &p.Quote,
		&p.Latitude, &p.Longitude, &p.Order, &p.Radius, &p.Points, &p.ImageURL, &createdAt)
	if err != nil {
		return p, err
	}
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

// ListPOIs returns POIs across all active motifs, flattened, in route order
// per motif.
func (s *SQLiteStore) ListPOIs(ctx context.Context) ([]quest.POI, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.motif_id, p.name, p.description, COALESCE(p.quote, ''),
			p.latitude, p.longitude, p."order", p.radius, p.points,
			COALESCE(p.image_url, ''), p.created_at
		FROM points_of_interest p
		JOIN motifs m ON m.id = p.motif_id
		WHERE m.is_active = 1
		ORDER BY m.created_at, p."order"
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pois []quest.POI
	for rows.Next() {
		p, err := scanPOI(rows)
		if err != nil {
			return nil, err
		}
		pois = append(pois, p)
	}
	return pois, rows.Err()
}

func (s *SQLiteStore) ListPOIsByMotif(ctx context.Context, motifID string) ([]quest.POI, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+poiColumns+` FROM points_of_interest WHERE motif_id = ? ORDER BY "order"`, motifID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pois []quest.POI
	for rows.Next() {
		p, err := scanPOI(rows)
		if err != nil {
			return nil, err
		}
		pois = append(pois, p)
	}
	return pois, rows.Err()
}

func (s *SQLiteStore) GetPOI(ctx context.Context, id string) (quest.POI, error) {
	p, err := scanPOI(s.db.QueryRowContext(ctx,
		`SELECT `+poiColumns+` FROM points_of_interest WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// --- progress ---

func scanProgress(row interface{ Scan(...any) error }) (quest.MotifProgress, error) {
	var pr quest.MotifProgress
	var startedAt string
	var completedAt sql.NullString
	err := row.Scan(&pr.ID, &pr.UserID, &pr.MotifID, &pr.CurrentPoiIndex,
		&pr.IsCompleted, &pr.Points, &startedAt, &completedAt)
	if err != nil {
		return pr, err
	}
	pr.StartedAt = parseTime(startedAt)
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		pr.CompletedAt = &t
	}
	return pr, nil
}

const progressColumns = `id, user_id, motif_id, current_poi_index, is_completed, points, started_at, completed_at`

func (s *SQLiteStore) GetProgress(ctx context.Context, userID, motifID string) (quest.MotifProgress, error) {
	pr, err := scanProgress(s.db.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM user_motif_progress WHERE user_id = ? AND motif_id = ?`,
		userID, motifID))
	if errors.Is(err, sql.ErrNoRows) {
		return pr, ErrNotFound
	}
	return pr, err
}

// CreateProgress starts a user on a motif. Get-or-create: a second call for
// the same pair returns the existing row untouched.
func (s *SQLiteStore) CreateProgress(ctx context.Context, userID, motifID string) (quest.MotifProgress, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_motif_progress (id, user_id, motif_id, started_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, motif_id) DO NOTHING
	`, newID(), userID, motifID, fmtTime(time.Now()))
	if err != nil {
		return quest.MotifProgress{}, err
	}
	return s.GetProgress(ctx, userID, motifID)
}

// --- visits ---

func (s *SQLiteStore) ListVisits(ctx context.Context, userID string) ([]quest.Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, poi_id, visited_at, latitude, longitude
		FROM user_poi_visits WHERE user_id = ? ORDER BY visited_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []quest.Visit
	for rows.Next() {
		var v quest.Visit
		var visitedAt string
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&v.ID, &v.UserID, &v.PoiID, &visitedAt, &lat, &lon); err != nil {
			return nil, err
		}
		v.VisitedAt = parseTime(visitedAt)
		if lat.Valid {
			v.Latitude = &lat.Float64
		}
		if lon.Valid {
			v.Longitude = &lon.Float64
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

const submitRetries = 3

// SubmitVisit runs the whole ingestion pipeline (visit record, progress
// advancement, point grants, motif completion, achievement evaluation) in
// one transaction, with bounded retry on transient lock contention.
func (s *SQLiteStore) SubmitVisit(ctx context.Context, userID, poiID string, lat, lon *float64) (VisitOutcome, error) {
	var out VisitOutcome
	var err error
	for attempt := 0; attempt < submitRetries; attempt++ {
		out, err = s.submitVisit(ctx, userID, poiID, lat, lon)
		if err == nil || !isBusy(err) {
			return out, err
		}
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-time.After(time.Duration(50<<attempt) * time.Millisecond):
		}
	}
	return out, err
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

func (s *SQLiteStore) submitVisit(ctx context.Context, userID, poiID string, lat, lon *float64) (VisitOutcome, error) {
	var out VisitOutcome

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return out, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, err
	}

	var motifID string
	var poiPoints int
	err = tx.QueryRowContext(ctx,
		`SELECT motif_id, points FROM points_of_interest WHERE id = ?`, poiID,
	).Scan(&motifID, &poiPoints)
	if errors.Is(err, sql.ErrNoRows) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, err
	}

	// Only the first visit to a POI advances progress; repeats are still
	// recorded below but award nothing.
	var priorVisits int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_poi_visits WHERE user_id = ? AND poi_id = ?`,
		userID, poiID,
	).Scan(&priorVisits)
	if err != nil {
		return out, err
	}
	firstVisit := priorVisits == 0

	visitedAt := s.now()
	visit := quest.Visit{
		ID:        newID(),
		UserID:    userID,
		PoiID:     poiID,
		VisitedAt: visitedAt,
		Latitude:  lat,
		Longitude: lon,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_poi_visits (id, user_id, poi_id, visited_at, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?)
	`, visit.ID, visit.UserID, visit.PoiID, fmtTime(visitedAt), lat, lon)
	if err != nil {
		return out, err
	}
	out.Visit = visit

	// Advance progress if the user has started this motif.
	var progressID string
	var poiIndex, progressPoints int
	var motifCompleted bool
	err = tx.QueryRowContext(ctx, `
		SELECT id, current_poi_index, points, is_completed
		FROM user_motif_progress WHERE user_id = ? AND motif_id = ?
	`, userID, motifID).Scan(&progressID, &poiIndex, &progressPoints, &motifCompleted)
	hasProgress := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return out, err
	}

	if hasProgress && firstVisit {
		poiIndex++
		progressPoints += poiPoints
		_, err = tx.ExecContext(ctx, `
			UPDATE user_motif_progress SET current_poi_index = ?, points = ? WHERE id = ?
		`, poiIndex, progressPoints, progressID)
		if err != nil {
			return out, err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE users SET total_points = total_points + ? WHERE id = ?`, poiPoints, userID)
		if err != nil {
			return out, err
		}
		out.PointsAwarded = poiPoints

		var totalPOIs int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM points_of_interest WHERE motif_id = ?`, motifID,
		).Scan(&totalPOIs)
		if err != nil {
			return out, err
		}
		if poiIndex >= totalPOIs && !motifCompleted {
			_, err = tx.ExecContext(ctx, `
				UPDATE user_motif_progress SET is_completed = 1, completed_at = ? WHERE id = ?
			`, fmtTime(visitedAt), progressID)
			if err != nil {
				return out, err
			}
			motifCompleted = true
			out.MotifCompleted = true
		}
	}

	// Achievement evaluation over freshly re-read state.
	var visitCount, totalPoints int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_poi_visits WHERE user_id = ?`, userID,
	).Scan(&visitCount)
	if err != nil {
		return out, err
	}
	err = tx.QueryRowContext(ctx,
		`SELECT total_points FROM users WHERE id = ?`, userID,
	).Scan(&totalPoints)
	if err != nil {
		return out, err
	}

	snap := quest.Snapshot{
		VisitCount:     visitCount,
		TotalPoints:    totalPoints,
		MotifCompleted: motifCompleted,
		VisitHour:      visitedAt.Hour(),
	}

	achievements, err := listAchievementsTx(ctx, tx)
	if err != nil {
		return out, err
	}
	unlocked, err := unlockedIDsTx(ctx, tx, userID)
	if err != nil {
		return out, err
	}

	bonus := 0
	for _, a := range achievements {
		if unlocked[a.ID] || !quest.ConditionMet(a.Condition, snap) {
			continue
		}
		// DO NOTHING absorbs a concurrent unlock of the same pair; a row
		// count of zero means someone else won and the reward is skipped.
		res, err := tx.ExecContext(ctx, `
			INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id, achievement_id) DO NOTHING
		`, newID(), userID, a.ID, fmtTime(visitedAt))
		if err != nil {
			return out, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		bonus += a.Points
		out.Unlocked = append(out.Unlocked, a)
	}

	// One aggregated write for all achievement rewards.
	if bonus > 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET total_points = total_points + ? WHERE id = ?`, bonus, userID)
		if err != nil {
			return out, err
		}
	}

	return out, tx.Commit()
}

// --- achievements ---

const achievementColumns = `id, name, description, COALESCE(icon_url, ''), condition, points, created_at`

func scanAchievement(row interface{ Scan(...any) error }) (quest.Achievement, error) {
	var a quest.Achievement
	var createdAt string
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.IconURL, &a.Condition, &a.Points, &createdAt)
	if err != nil {
		return a, err
	}
	a.CreatedAt = parseTime(createdAt)
	return a, nil
}

func listAchievementsTx(ctx context.Context, tx *sql.Tx) ([]quest.Achievement, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+achievementColumns+` FROM achievements ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []quest.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func unlockedIDsTx(ctx context.Context, tx *sql.Tx, userID string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT achievement_id FROM user_achievements WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) ListAchievements(ctx context.Context) ([]quest.Achievement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+achievementColumns+` FROM achievements ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []quest.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func (s *SQLiteStore) ListUserAchievements(ctx context.Context, userID string) ([]quest.Achievement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.description, COALESCE(a.icon_url, ''), a.condition, a.points, a.created_at
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = ?
		ORDER BY ua.unlocked_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []quest.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func (s *SQLiteStore) CreateAchievement(ctx context.Context, a quest.Achievement) (quest.Achievement, error) {
	a.ID = newID()
	a.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO achievements (id, name, description, icon_url, condition, points, created_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?)
	`, a.ID, a.Name, a.Description, a.IconURL, string(a.Condition), a.Points, fmtTime(a.CreatedAt))
	return a, err
}

// UnlockAchievement grants an achievement directly, outside the visit
// pipeline. The reward is applied at most once: a repeat unlock reports
// false and changes nothing.
func (s *SQLiteStore) UnlockAchievement(ctx context.Context, userID, achievementID string) (quest.Achievement, bool, error) {
	var a quest.Achievement

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return a, false, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return a, false, ErrNotFound
	}
	if err != nil {
		return a, false, err
	}

	a, err = scanAchievement(tx.QueryRowContext(ctx,
		`SELECT `+achievementColumns+` FROM achievements WHERE id = ?`, achievementID))
	if errors.Is(err, sql.ErrNoRows) {
		return a, false, ErrNotFound
	}
	if err != nil {
		return a, false, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, newID(), userID, achievementID, fmtTime(s.now()))
	if err != nil {
		return a, false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return a, false, tx.Commit()
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET total_points = total_points + ? WHERE id = ?`, a.Points, userID)
	if err != nil {
		return a, false, err
	}

	return a, true, tx.Commit()
}

// --- admins ---

func (s *SQLiteStore) HasAdmins(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count)
	return count > 0, err
}

func (s *SQLiteStore) CreateAdmin(ctx context.Context, email, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)
	`, newID(), email, passwordHash, fmtTime(time.Now()))
	return err
}

func (s *SQLiteStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var adminID, passwordHash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM admins WHERE email = ?`, email,
	).Scan(&adminID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return adminID, passwordHash, err
}

func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_sessions (id, admin_id, created_at) VALUES (?, ?, ?)
	`, id, adminID, fmtTime(time.Now()))
	return id, err
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, ErrNotFound
	}
	return sess, err
}
