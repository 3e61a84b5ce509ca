package analysis

import (
	"math"
	"strings"
)

// stressLevel combines sentiment polarity, emotion-group membership, and
// stress keyword hits into a bounded 0-10 value. Contributions accumulate on
// a 0-1 unit scale, clamp at 1.0, then scale to the 0-10 dashboard range.
// Deterministic given its inputs.
func stressLevel(text string, sentiment sentimentOutcome, emotion emotionOutcome) float64 {
	var sentimentUnit float64
	switch sentiment.Label {
	case SentimentNegative:
		sentimentUnit = math.Min(1.0, sentiment.Confidence)
	case SentimentPositive:
		sentimentUnit = 0.1
	}

	var emotionUnit float64
	switch emotion.Group {
	case GroupNegative:
		emotionUnit = 0.3
	case GroupPositive:
		emotionUnit = 0.1
	}

	lower := strings.ToLower(text)
	var keywordUnit float64
	for _, kw := range stressKeywords {
		if strings.Contains(lower, kw) {
			keywordUnit += 0.1
		}
	}

	total := math.Min(sentimentUnit+emotionUnit+keywordUnit, 1.0)
	return math.Round(total*10.0*10) / 10
}
