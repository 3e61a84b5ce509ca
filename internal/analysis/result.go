package analysis

import (
	"encoding/json"
	"fmt"
)

// Analysis method tags identifying which path produced a result
const (
	MethodRemote        = "remote"
	MethodRuleBased     = "rule_based"
	MethodEmpty         = "empty"
	MethodErrorFallback = "error_fallback"
)

// Sentiment label constants
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Emotion group constants
const (
	GroupPositive = "positive"
	GroupNegative = "negative"
	GroupNeutral  = "neutral"
)

// EmotionScore is a single (label, score) pair from emotion classification.
// It serializes as a two-element JSON array ["joy", 0.92] to stay compatible
// with the dashboard's stored format.
type EmotionScore struct {
	Label string
	Score float64
}

func (e EmotionScore) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{e.Label, e.Score})
}

func (e *EmotionScore) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("emotion pair: %w", err)
	}
	if err := json.Unmarshal(raw[0], &e.Label); err != nil {
		return fmt.Errorf("emotion label: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Score); err != nil {
		return fmt.Errorf("emotion score: %w", err)
	}
	return nil
}

// Result is the outcome of analyzing one journal entry. It is a value type:
// constructed fresh per call and never mutated afterwards. Every numeric
// field always holds a defined value, whichever path produced it.
type Result struct {
	SentimentScore     float64        `json:"sentiment_score"`
	SentimentLabel     string         `json:"sentiment_label"`
	Emotion            string         `json:"emotion"`
	EmotionConfidence  float64        `json:"emotion_confidence"`
	EmotionsDetected   []EmotionScore `json:"emotions_detected"`
	EmotionGroup       string         `json:"emotion_group"`
	StressLevel        float64        `json:"stress_level"`
	Insights           []string       `json:"insights"`
	AnalysisMethod     string         `json:"analysis_method"`
	AnalysisConfidence float64        `json:"analysis_confidence"`
}

// EmptyResult is returned for blank or whitespace-only input. All numeric
// fields are zero and no emotions are reported.
func EmptyResult() Result {
	return Result{
		SentimentScore:     0.0,
		SentimentLabel:     SentimentNeutral,
		Emotion:            "neutral",
		EmotionConfidence:  0.0,
		EmotionsDetected:   []EmotionScore{},
		EmotionGroup:       GroupNeutral,
		StressLevel:        0.0,
		Insights:           []string{"Please write something to get analysis."},
		AnalysisMethod:     MethodEmpty,
		AnalysisConfidence: 0.0,
	}
}

// FallbackResult is the static neutral terminal of the fallback chain, used
// when no analysis path could run at all.
func FallbackResult() Result {
	return Result{
		SentimentScore:     5.0,
		SentimentLabel:     SentimentNeutral,
		Emotion:            "neutral",
		EmotionConfidence:  0.5,
		EmotionsDetected:   []EmotionScore{{Label: "neutral", Score: 0.5}},
		EmotionGroup:       GroupNeutral,
		StressLevel:        3.0,
		Insights:           []string{"Thank you for sharing your thoughts."},
		AnalysisMethod:     MethodErrorFallback,
		AnalysisConfidence: 0.5,
	}
}

// MarshalEmotions serializes an ordered emotion list for storage.
func MarshalEmotions(emotions []EmotionScore) (string, error) {
	if emotions == nil {
		emotions = []EmotionScore{}
	}
	data, err := json.Marshal(emotions)
	if err != nil {
		return "", fmt.Errorf("marshaling emotions: %w", err)
	}
	return string(data), nil
}

// UnmarshalEmotions parses a stored emotion list back into ordered pairs.
func UnmarshalEmotions(data string) ([]EmotionScore, error) {
	if data == "" {
		return []EmotionScore{}, nil
	}
	var emotions []EmotionScore
	if err := json.Unmarshal([]byte(data), &emotions); err != nil {
		return nil, fmt.Errorf("unmarshaling emotions: %w", err)
	}
	return emotions, nil
}
