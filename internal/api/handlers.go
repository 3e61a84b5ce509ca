package api

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/eunoia-app/eunoia-server/internal/analysis"
	"github.com/eunoia-app/eunoia-server/internal/analytics"
	"github.com/eunoia-app/eunoia-server/internal/config"
	"github.com/eunoia-app/eunoia-server/internal/db"
	"github.com/eunoia-app/eunoia-server/internal/inference"
	"github.com/eunoia-app/eunoia-server/internal/models"
)

const maxContentLength = 10000

var whitespaceRe = regexp.MustCompile(`\s+`)

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
		Code:  code,
	})
}

type Handlers struct {
	cfg      *config.Config
	db       *db.DB
	analyzer *analysis.Analyzer
	client   *inference.Client
}

func NewHandlers(cfg *config.Config, database *db.DB, analyzer *analysis.Analyzer, client *inference.Client) *Handlers {
	return &Handlers{
		cfg:      cfg,
		db:       database,
		analyzer: analyzer,
		client:   client,
	}
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:    "ok",
		Database:  h.checkDatabase(),
		Inference: h.checkInference(r.Context()),
		Version:   "1.0.0",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func (h *Handlers) checkDatabase() string {
	if h.db == nil {
		return "not configured"
	}
	if _, err := h.db.EntriesNeedingAnalysis(1); err != nil {
		return "error: " + err.Error()
	}
	return "connected"
}

func (h *Handlers) checkInference(ctx context.Context) string {
	if !h.analyzer.RemoteEnabled() {
		return "rule_based only"
	}
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.client.HealthCheck(probeCtx, h.cfg.SentimentModel); err != nil {
		return "error: " + err.Error()
	}
	return "connected"
}

// normalizeContent collapses runs of whitespace and trims the result.
func normalizeContent(content string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(content, " "))
}

// CreateEntry handles POST /entries. Analysis runs inline but never blocks
// the save: a failed pipeline still persists the entry with whatever result
// the fallback chain produced.
func (h *Handlers) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req models.EntryCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	content := normalizeContent(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "content is required", "MISSING_CONTENT")
		return
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		writeError(w, http.StatusBadRequest, "content exceeds maximum length", "CONTENT_TOO_LONG")
		return
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	result := h.analyzer.Analyze(r.Context(), content)

	entry := h.entryFromResult(GetUser(r), date, content, result)
	id, err := h.db.CreateEntry(entry)
	if err != nil {
		log.Printf("Failed to create entry: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save entry", "DB_ERROR")
		return
	}
	entry.ID = id

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entryResponse(entry))
}

// GetEntry handles GET /entries/{id}
func (h *Handlers) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id", "INVALID_ID")
		return
	}

	entry, err := h.db.GetEntry(id, GetUser(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "entry not found", "NOT_FOUND")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(entryResponse(entry))
}

// UpdateEntry handles PUT /entries/{id}. Changed content is re-analyzed;
// a date-only update keeps the stored analysis.
func (h *Handlers) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id", "INVALID_ID")
		return
	}

	var req models.EntryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	userID := GetUser(r)
	entry, err := h.db.GetEntry(id, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "entry not found", "NOT_FOUND")
		return
	}

	if req.Date != nil {
		entry.Date = req.Date.UTC()
	}

	if req.Content != nil {
		content := normalizeContent(*req.Content)
		if content == "" {
			writeError(w, http.StatusBadRequest, "content is required", "MISSING_CONTENT")
			return
		}
		if utf8.RuneCountInString(content) > maxContentLength {
			writeError(w, http.StatusBadRequest, "content exceeds maximum length", "CONTENT_TOO_LONG")
			return
		}
		if content != entry.Content {
			result := h.analyzer.Analyze(r.Context(), content)
			updated := h.entryFromResult(userID, entry.Date, content, result)
			updated.ID = entry.ID
			updated.CreatedAt = entry.CreatedAt
			entry = updated
		}
	}

	ok, err := h.db.UpdateEntry(entry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update entry", "DB_ERROR")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "entry not found", "NOT_FOUND")
		return
	}
	entry.UpdatedAt = time.Now().UTC()

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(entryResponse(entry))
}

// DeleteEntry handles DELETE /entries/{id}
func (h *Handlers) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id", "INVALID_ID")
		return
	}

	ok, err := h.db.DeleteEntry(id, GetUser(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete entry", "DB_ERROR")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "entry not found", "NOT_FOUND")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "entry deleted"})
}

// ListEntries handles GET /entries
func (h *Handlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_QUERY")
		return
	}

	entries, total, err := h.db.ListEntries(GetUser(r), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}

	responses := make([]models.EntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, *entryResponse(&entries[i]))
	}

	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(filter.PerPage)))
	}

	resp := models.PaginatedEntries{
		Entries:    responses,
		Total:      total,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalPages: totalPages,
		HasNext:    filter.Page < totalPages,
		HasPrev:    filter.Page > 1,
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Trends handles GET /analytics/trends
func (h *Handlers) Trends(w http.ResponseWriter, r *http.Request) {
	days := daysParam(r, 30)
	since := time.Now().UTC().AddDate(0, 0, -days)

	entries, err := h.db.EntriesSince(GetUser(r), since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(analytics.BuildTrends(entries, days))
}

// Insights handles GET /analytics/insights
func (h *Handlers) Insights(w http.ResponseWriter, r *http.Request) {
	days := daysParam(r, 7)
	since := time.Now().UTC().AddDate(0, 0, -days)

	entries, err := h.db.EntriesSince(GetUser(r), since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(analytics.BuildInsights(entries, days))
}

// Stats handles GET /analytics/stats
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	entries, err := h.db.AllEntries(GetUser(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(analytics.BuildStats(entries))
}

// Ready handles GET /ready
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ready",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

// GetProfile handles GET /profile. A first request lazily creates the
// profile row from the token's identity.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := GetUser(r)

	profile, err := h.db.GetProfile(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}
	if profile == nil {
		profile = &db.Profile{
			UserID: userID,
			Email:  GetEmail(r),
			Role:   "user",
		}
		id, err := h.db.CreateProfile(profile)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create profile", "DB_ERROR")
			return
		}
		profile.ID = id
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(profileResponse(profile))
}

// UpdateProfile handles PUT /profile. Nil fields keep their stored values.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	profile, err := h.db.GetProfile(GetUser(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found", "NOT_FOUND")
		return
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Role != nil {
		profile.Role = *req.Role
	}
	if req.IsActive != nil {
		profile.IsActive = *req.IsActive
	}

	ok, err := h.db.UpdateProfile(profile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update profile", "DB_ERROR")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "profile not found", "NOT_FOUND")
		return
	}
	profile.UpdatedAt = time.Now().UTC()

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(profileResponse(profile))
}

func profileResponse(p *db.Profile) *models.ProfileResponse {
	return &models.ProfileResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Email:       p.Email,
		FullName:    p.FullName,
		DisplayName: p.DisplayName,
		Role:        p.Role,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		LastLogin:   p.LastLogin,
	}
}

// Methods handles GET /ai/methods
func (h *Handlers) Methods(w http.ResponseWriter, r *http.Request) {
	current := analysis.MethodRuleBased
	if h.analyzer.RemoteEnabled() {
		current = analysis.MethodRemote
	}
	resp := models.MethodsResponse{
		RemoteAvailable:    h.analyzer.RemoteEnabled(),
		RuleBasedAvailable: true,
		CurrentMethod:      current,
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// Analyze handles POST /ai/analyze: runs the full pipeline without saving.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	result := h.analyzer.Analyze(r.Context(), req.Text)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// AnalyzeRuleBased handles POST /ai/analyze/rule-based: forces the keyword
// scorer regardless of remote availability.
func (h *Handlers) AnalyzeRuleBased(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	result := h.analyzer.AnalyzeRuleBased(req.Text)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

func (h *Handlers) entryFromResult(userID string, date time.Time, content string, result analysis.Result) *db.Entry {
	emotions, err := analysis.MarshalEmotions(result.EmotionsDetected)
	if err != nil {
		log.Printf("Failed to marshal emotions: %v", err)
		emotions = "[]"
	}
	return &db.Entry{
		UserID:            userID,
		Date:              date,
		Content:           content,
		SentimentScore:    result.SentimentScore,
		Emotion:           result.Emotion,
		EmotionConfidence: result.EmotionConfidence,
		EmotionsDetected:  emotions,
		EmotionGroup:      result.EmotionGroup,
		StressLevel:       result.StressLevel,
		AnalysisMethod:    result.AnalysisMethod,
		WordCount:         len(strings.Fields(content)),
	}
}

func entryResponse(e *db.Entry) *models.EntryResponse {
	emotions, err := analysis.UnmarshalEmotions(e.EmotionsDetected)
	if err != nil {
		log.Printf("Failed to parse stored emotions for entry %d: %v", e.ID, err)
		emotions = []analysis.EmotionScore{}
	}
	return &models.EntryResponse{
		ID:                e.ID,
		Date:              e.Date,
		Content:           e.Content,
		SentimentScore:    e.SentimentScore,
		Emotion:           e.Emotion,
		EmotionConfidence: e.EmotionConfidence,
		EmotionsDetected:  emotions,
		EmotionGroup:      e.EmotionGroup,
		StressLevel:       e.StressLevel,
		AnalysisMethod:    e.AnalysisMethod,
		WordCount:         e.WordCount,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func daysParam(r *http.Request, defaultDays int) int {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return defaultDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return defaultDays
	}
	if days > 365 {
		return 365
	}
	return days
}

func filterFromQuery(r *http.Request) (db.EntryFilter, error) {
	q := r.URL.Query()
	f := db.EntryFilter{
		Search:       q.Get("search"),
		Emotion:      q.Get("emotion"),
		EmotionGroup: q.Get("emotion_group"),
		SortBy:       q.Get("sort_by"),
		SortOrder:    q.Get("sort_order"),
		Page:         1,
		PerPage:      10,
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return f, errInvalidParam("page")
		}
		f.Page = page
	}
	if raw := q.Get("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage < 1 || perPage > 100 {
			return f, errInvalidParam("per_page")
		}
		f.PerPage = perPage
	}

	for name, dest := range map[string]**float64{
		"min_sentiment": &f.MinSentiment,
		"max_sentiment": &f.MaxSentiment,
		"min_stress":    &f.MinStress,
		"max_stress":    &f.MaxStress,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 10 {
			return f, errInvalidParam(name)
		}
		*dest = &v
	}

	for name, dest := range map[string]**time.Time{
		"start_date": &f.StartDate,
		"end_date":   &f.EndDate,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		t, err := parseDateParam(raw)
		if err != nil {
			return f, errInvalidParam(name)
		}
		*dest = &t
	}

	return f, nil
}

func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

type paramError string

func errInvalidParam(name string) error {
	return paramError("invalid " + name + " parameter")
}

func (e paramError) Error() string { return string(e) }
