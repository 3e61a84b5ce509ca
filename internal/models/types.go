package models

import (
	"time"

	"github.com/eunoia-app/eunoia-server/internal/analysis"
)

// EntryCreateRequest is the body for creating a journal entry.
type EntryCreateRequest struct {
	Content string     `json:"content"`
	Date    *time.Time `json:"date,omitempty"`
}

// EntryUpdateRequest is the body for updating an entry. Nil fields are left
// unchanged; updated content triggers re-analysis.
type EntryUpdateRequest struct {
	Content *string    `json:"content,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
}

// EntryResponse is a journal entry with its analysis columns.
type EntryResponse struct {
	ID                int64                   `json:"id"`
	Date              time.Time               `json:"date"`
	Content           string                  `json:"content"`
	SentimentScore    float64                 `json:"sentiment_score"`
	Emotion           string                  `json:"emotion"`
	EmotionConfidence float64                 `json:"emotion_confidence"`
	EmotionsDetected  []analysis.EmotionScore `json:"emotions_detected"`
	EmotionGroup      string                  `json:"emotion_group"`
	StressLevel       float64                 `json:"stress_level"`
	AnalysisMethod    string                  `json:"analysis_method,omitempty"`
	WordCount         int                     `json:"word_count"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// PaginatedEntries is returned by the entry list endpoint.
type PaginatedEntries struct {
	Entries    []EntryResponse `json:"entries"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
	HasNext    bool            `json:"has_next"`
	HasPrev    bool            `json:"has_prev"`
}

// TrendPoint is one day's aggregate in the sentiment trends response.
type TrendPoint struct {
	Date                   string  `json:"date"`
	AvgSentiment           float64 `json:"avg_sentiment"`
	AvgStress              float64 `json:"avg_stress"`
	AvgWordCount           float64 `json:"avg_word_count"`
	MostCommonEmotion      string  `json:"most_common_emotion"`
	MostCommonEmotionGroup string  `json:"most_common_emotion_group"`
	EntryCount             int     `json:"entry_count"`
}

// TrendSummary aggregates the whole analyzed window.
type TrendSummary struct {
	AvgSentiment      float64 `json:"avg_sentiment"`
	AvgStress         float64 `json:"avg_stress"`
	MostCommonEmotion string  `json:"most_common_emotion"`
	TotalEntries      int     `json:"total_entries"`
}

// TrendsResponse is returned by the sentiment trends endpoint.
type TrendsResponse struct {
	Trends       []TrendPoint `json:"trends"`
	TotalEntries int          `json:"total_entries"`
	DaysAnalyzed int          `json:"days_analyzed"`
	Summary      TrendSummary `json:"summary"`
}

// InsightStatistics carries the numbers behind the generated insights.
type InsightStatistics struct {
	AvgSentiment           float64 `json:"avg_sentiment"`
	AvgStress              float64 `json:"avg_stress"`
	AvgWordCount           float64 `json:"avg_word_count"`
	MostCommonEmotion      string  `json:"most_common_emotion"`
	MostCommonEmotionGroup string  `json:"most_common_emotion_group"`
	EntryCount             int     `json:"entry_count"`
	DaysAnalyzed           int     `json:"days_analyzed"`
}

// InsightsResponse is returned by the insights endpoint.
type InsightsResponse struct {
	Insights        []string           `json:"insights"`
	Suggestions     []string           `json:"suggestions"`
	DataAvailable   bool               `json:"data_available"`
	Patterns        map[string]string  `json:"patterns"`
	Recommendations []string           `json:"recommendations"`
	Statistics      *InsightStatistics `json:"statistics,omitempty"`
}

// RangeStats holds min/avg/max over a numeric column.
type RangeStats struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// WritingStats summarizes word counts across entries.
type WritingStats struct {
	AvgWordCount float64 `json:"avg_word_count"`
	MinWordCount int     `json:"min_word_count"`
	MaxWordCount int     `json:"max_word_count"`
	TotalWords   int     `json:"total_words"`
}

// DateRange bounds the stored entries.
type DateRange struct {
	FirstEntry string `json:"first_entry"`
	LastEntry  string `json:"last_entry"`
	SpanDays   int    `json:"span_days"`
}

// StatsResponse is returned by the stats endpoint.
type StatsResponse struct {
	TotalEntries             int            `json:"total_entries"`
	DateRange                *DateRange     `json:"date_range"`
	EmotionDistribution      map[string]int `json:"emotion_distribution"`
	EmotionGroupDistribution map[string]int `json:"emotion_group_distribution"`
	SentimentStats           RangeStats     `json:"sentiment_stats"`
	StressStats              RangeStats     `json:"stress_stats"`
	WritingStats             WritingStats   `json:"writing_stats"`
}

// ProfileResponse is a user profile. IsActive mirrors the stored
// "true"/"false" string representation.
type ProfileResponse struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	Role        string     `json:"role"`
	IsActive    string     `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// ProfileUpdateRequest is the body for updating a profile. Nil fields are
// left unchanged.
type ProfileUpdateRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Role        *string `json:"role,omitempty"`
	IsActive    *string `json:"is_active,omitempty"`
}

// MethodsResponse describes the available analysis strategies.
type MethodsResponse struct {
	RemoteAvailable    bool   `json:"remote_available"`
	RuleBasedAvailable bool   `json:"rule_based_available"`
	CurrentMethod      string `json:"current_method"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Inference string `json:"inference"`
	Version   string `json:"version"`
}
