package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
-- Journal entries with per-entry analysis columns
CREATE TABLE IF NOT EXISTS journal_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    date TEXT NOT NULL,
    content TEXT NOT NULL,
    sentiment_score REAL,
    emotion TEXT,
    emotion_confidence REAL,
    emotions_detected TEXT,       -- JSON array of [label, score] pairs
    emotion_group TEXT,
    stress_level REAL,
    analysis_method TEXT,
    word_count INTEGER,
    created_at TEXT NOT NULL,
    updated_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_entries_user ON journal_entries(user_id);
CREATE INDEX IF NOT EXISTS idx_entries_date ON journal_entries(date);
CREATE INDEX IF NOT EXISTS idx_entries_user_date ON journal_entries(user_id, date);
CREATE INDEX IF NOT EXISTS idx_entries_emotion ON journal_entries(emotion);
CREATE INDEX IF NOT EXISTS idx_entries_emotion_group ON journal_entries(emotion_group);
CREATE INDEX IF NOT EXISTS idx_entries_sentiment ON journal_entries(sentiment_score);
CREATE INDEX IF NOT EXISTS idx_entries_stress ON journal_entries(stress_level);
CREATE INDEX IF NOT EXISTS idx_entries_created ON journal_entries(created_at);

CREATE TABLE IF NOT EXISTS user_profiles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL,
    full_name TEXT,
    display_name TEXT,
    role TEXT NOT NULL DEFAULT 'user',
    is_active TEXT NOT NULL DEFAULT 'true',
    created_at TEXT NOT NULL,
    updated_at TEXT,
    last_login TEXT
);

CREATE INDEX IF NOT EXISTS idx_profiles_email ON user_profiles(email);
CREATE INDEX IF NOT EXISTS idx_profiles_display_name ON user_profiles(display_name);
`

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(schema)
	if err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Entry is one journal entry row.
type Entry struct {
	ID                int64
	UserID            string
	Date              time.Time
	Content           string
	SentimentScore    float64
	Emotion           string
	EmotionConfidence float64
	EmotionsDetected  string // JSON array of [label, score] pairs
	EmotionGroup      string
	StressLevel       float64
	AnalysisMethod    string
	WordCount         int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EntryFilter narrows and orders a ListEntries query. Zero values mean
// "no filter". Sentiment and stress bounds use the 0-10 scale.
type EntryFilter struct {
	Search       string
	Emotion      string
	EmotionGroup string
	MinSentiment *float64
	MaxSentiment *float64
	MinStress    *float64
	MaxStress    *float64
	StartDate    *time.Time
	EndDate      *time.Time
	SortBy       string // created_at, date, sentiment_score, stress_level
	SortOrder    string // asc, desc
	Page         int
	PerPage      int
}

// sortColumns whitelists sortable fields
var sortColumns = map[string]bool{
	"created_at":      true,
	"date":            true,
	"sentiment_score": true,
	"stress_level":    true,
}

const entryColumns = `id, user_id, date, content, sentiment_score, emotion, emotion_confidence,
	emotions_detected, emotion_group, stress_level, analysis_method, word_count, created_at, updated_at`

// CreateEntry inserts an entry and returns its new ID.
func (db *DB) CreateEntry(e *Entry) (int64, error) {
	now := time.Now().UTC()
	result, err := db.conn.Exec(`
		INSERT INTO journal_entries (user_id, date, content, sentiment_score, emotion, emotion_confidence,
			emotions_detected, emotion_group, stress_level, analysis_method, word_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.UserID, e.Date.UTC().Format(time.RFC3339), e.Content, e.SentimentScore, e.Emotion,
		e.EmotionConfidence, e.EmotionsDetected, e.EmotionGroup, e.StressLevel, e.AnalysisMethod,
		e.WordCount, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetEntry returns an entry by ID scoped to its owner, or nil when absent.
func (db *DB) GetEntry(id int64, userID string) (*Entry, error) {
	row := db.conn.QueryRow(`
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE id = ? AND user_id = ?
	`, id, userID)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEntry rewrites an entry's content, date, and analysis columns.
// Returns false when the entry does not exist for this user.
func (db *DB) UpdateEntry(e *Entry) (bool, error) {
	result, err := db.conn.Exec(`
		UPDATE journal_entries
		SET date = ?, content = ?, sentiment_score = ?, emotion = ?, emotion_confidence = ?,
			emotions_detected = ?, emotion_group = ?, stress_level = ?, analysis_method = ?,
			word_count = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, e.Date.UTC().Format(time.RFC3339), e.Content, e.SentimentScore, e.Emotion,
		e.EmotionConfidence, e.EmotionsDetected, e.EmotionGroup, e.StressLevel, e.AnalysisMethod,
		e.WordCount, time.Now().UTC().Format(time.RFC3339), e.ID, e.UserID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// DeleteEntry removes an entry scoped to its owner. Returns false when
// nothing matched.
func (db *DB) DeleteEntry(id int64, userID string) (bool, error) {
	result, err := db.conn.Exec(`
		DELETE FROM journal_entries WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// ListEntries returns one page of a user's entries plus the unpaginated
// total matching the filter.
func (db *DB) ListEntries(userID string, f EntryFilter) ([]Entry, int, error) {
	where := `WHERE user_id = ?`
	args := []interface{}{userID}

	if f.Search != "" {
		where += ` AND content LIKE ?`
		args = append(args, "%"+f.Search+"%")
	}
	if f.Emotion != "" {
		where += ` AND emotion = ?`
		args = append(args, f.Emotion)
	}
	if f.EmotionGroup != "" {
		where += ` AND emotion_group = ?`
		args = append(args, f.EmotionGroup)
	}
	if f.MinSentiment != nil {
		where += ` AND sentiment_score >= ?`
		args = append(args, *f.MinSentiment)
	}
	if f.MaxSentiment != nil {
		where += ` AND sentiment_score <= ?`
		args = append(args, *f.MaxSentiment)
	}
	if f.MinStress != nil {
		where += ` AND stress_level >= ?`
		args = append(args, *f.MinStress)
	}
	if f.MaxStress != nil {
		where += ` AND stress_level <= ?`
		args = append(args, *f.MaxStress)
	}
	if f.StartDate != nil {
		where += ` AND date >= ?`
		args = append(args, f.StartDate.UTC().Format(time.RFC3339))
	}
	if f.EndDate != nil {
		where += ` AND date <= ?`
		args = append(args, f.EndDate.UTC().Format(time.RFC3339))
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM journal_entries `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy := f.SortBy
	if !sortColumns[sortBy] {
		sortBy = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		order = "ASC"
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = 10
	}
	offset := (page - 1) * perPage

	query := fmt.Sprintf(`SELECT %s FROM journal_entries %s ORDER BY %s %s LIMIT ? OFFSET ?`,
		entryColumns, where, sortBy, order)
	args = append(args, perPage, offset)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// EntriesSince returns all of a user's entries dated at or after the given
// time, oldest first. Used by the analytics endpoints.
func (db *DB) EntriesSince(userID string, since time.Time) ([]Entry, error) {
	rows, err := db.conn.Query(`
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE user_id = ? AND date >= ?
		ORDER BY date ASC
	`, userID, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// AllEntries returns every entry for a user, oldest first.
func (db *DB) AllEntries(userID string) ([]Entry, error) {
	rows, err := db.conn.Query(`
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE user_id = ?
		ORDER BY date ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// EntriesNeedingAnalysis returns entries whose analysis degraded to the
// static default (or was never recorded), for the backfill job.
func (db *DB) EntriesNeedingAnalysis(limit int) ([]Entry, error) {
	rows, err := db.conn.Query(`
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE analysis_method IS NULL OR analysis_method = '' OR analysis_method = 'error_fallback'
		ORDER BY created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// UpdateEntryAnalysis rewrites only the analysis columns of an entry.
func (db *DB) UpdateEntryAnalysis(id int64, e *Entry) error {
	_, err := db.conn.Exec(`
		UPDATE journal_entries
		SET sentiment_score = ?, emotion = ?, emotion_confidence = ?, emotions_detected = ?,
			emotion_group = ?, stress_level = ?, analysis_method = ?, updated_at = ?
		WHERE id = ?
	`, e.SentimentScore, e.Emotion, e.EmotionConfidence, e.EmotionsDetected, e.EmotionGroup,
		e.StressLevel, e.AnalysisMethod, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

// Profile is one user profile row. IsActive is stored as the strings "true"
// and "false".
type Profile struct {
	ID          int64
	UserID      string
	Email       string
	FullName    string
	DisplayName string
	Role        string
	IsActive    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLogin   *time.Time
}

// GetProfile returns a user's profile, or nil when none exists yet.
func (db *DB) GetProfile(userID string) (*Profile, error) {
	row := db.conn.QueryRow(`
		SELECT id, user_id, email, full_name, display_name, role, is_active, created_at, updated_at, last_login
		FROM user_profiles
		WHERE user_id = ?
	`, userID)

	var p Profile
	var createdStr string
	var fullName, displayName, updatedStr, lastLoginStr sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.Email, &fullName, &displayName, &p.Role, &p.IsActive,
		&createdStr, &updatedStr, &lastLoginStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.FullName = fullName.String
	p.DisplayName = displayName.String
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	if updatedStr.Valid {
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr.String)
	}
	if lastLoginStr.Valid {
		t, err := time.Parse(time.RFC3339, lastLoginStr.String)
		if err == nil {
			p.LastLogin = &t
		}
	}
	return &p, nil
}

// CreateProfile inserts a profile and returns its new ID.
func (db *DB) CreateProfile(p *Profile) (int64, error) {
	now := time.Now().UTC()
	if p.Role == "" {
		p.Role = "user"
	}
	if p.IsActive == "" {
		p.IsActive = "true"
	}
	result, err := db.conn.Exec(`
		INSERT INTO user_profiles (user_id, email, full_name, display_name, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.UserID, p.Email, p.FullName, p.DisplayName, p.Role, p.IsActive,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return result.LastInsertId()
}

// UpdateProfile rewrites a profile's mutable columns. Returns false when the
// profile does not exist.
func (db *DB) UpdateProfile(p *Profile) (bool, error) {
	result, err := db.conn.Exec(`
		UPDATE user_profiles
		SET full_name = ?, display_name = ?, role = ?, is_active = ?, updated_at = ?
		WHERE user_id = ?
	`, p.FullName, p.DisplayName, p.Role, p.IsActive,
		time.Now().UTC().Format(time.RFC3339), p.UserID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var dateStr, createdStr string
	var updatedStr, emotion, emotionsDetected, emotionGroup, analysisMethod sql.NullString
	var sentimentScore, emotionConfidence, stressLevel sql.NullFloat64
	var wordCount sql.NullInt64

	err := row.Scan(&e.ID, &e.UserID, &dateStr, &e.Content, &sentimentScore, &emotion,
		&emotionConfidence, &emotionsDetected, &emotionGroup, &stressLevel, &analysisMethod,
		&wordCount, &createdStr, &updatedStr)
	if err != nil {
		return nil, err
	}

	e.Date, _ = time.Parse(time.RFC3339, dateStr)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	if updatedStr.Valid {
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr.String)
	}
	e.SentimentScore = sentimentScore.Float64
	e.Emotion = emotion.String
	e.EmotionConfidence = emotionConfidence.Float64
	e.EmotionsDetected = emotionsDetected.String
	e.EmotionGroup = emotionGroup.String
	e.StressLevel = stressLevel.Float64
	e.AnalysisMethod = analysisMethod.String
	e.WordCount = int(wordCount.Int64)
	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
