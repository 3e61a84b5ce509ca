package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/eunoia-app/eunoia-server/internal/inference"
)

// sentimentLabelMap normalizes both numeric class labels and textual labels
// into the 3-way sentiment vocabulary.
var sentimentLabelMap = map[string]string{
	"LABEL_0":  SentimentNegative,
	"LABEL_1":  SentimentNeutral,
	"LABEL_2":  SentimentPositive,
	"negative": SentimentNegative,
	"neutral":  SentimentNeutral,
	"positive": SentimentPositive,
	"NEGATIVE": SentimentNegative,
	"NEUTRAL":  SentimentNeutral,
	"POSITIVE": SentimentPositive,
}

// remoteSentiment classifies sentiment via the hosted endpoint and maps the
// winning label onto the 0-10 score scale: positive 5+conf*5, negative
// 5-conf*5, neutral 5.0.
func remoteSentiment(ctx context.Context, client *inference.Client, model, text string) (sentimentOutcome, error) {
	candidates, err := client.Classify(ctx, model, text, 3)
	if err != nil {
		return sentimentOutcome{}, err
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}

	label, ok := sentimentLabelMap[best.Label]
	if !ok {
		label = SentimentNeutral
	}

	// Normalize from the raw probability; only the outputs are rounded
	var score float64
	switch label {
	case SentimentPositive:
		score = 5.0 + best.Score*5.0
	case SentimentNegative:
		score = 5.0 - best.Score*5.0
	default:
		score = 5.0
	}

	return sentimentOutcome{
		Label:      label,
		Score:      round3(score),
		Confidence: round3(best.Score),
	}, nil
}

// remoteEmotion classifies emotion via the hosted endpoint: candidates below
// score 0.1 are dropped, the rest sorted descending and capped at 5, and the
// winner's group comes from the static membership table. When everything
// falls below the threshold the result is the neutral default.
func remoteEmotion(ctx context.Context, client *inference.Client, model, text string) (emotionOutcome, error) {
	candidates, err := client.Classify(ctx, model, text, 6)
	if err != nil {
		return emotionOutcome{}, err
	}

	var filtered []inference.LabelScore
	for _, c := range candidates {
		if c.Score >= 0.1 {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return emotionOutcome{
			Primary:    "neutral",
			Confidence: 0.5,
			All:        []EmotionScore{{Label: "neutral", Score: 0.5}},
			Group:      GroupNeutral,
		}, nil
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	if len(filtered) > 5 {
		filtered = filtered[:5]
	}

	all := make([]EmotionScore, 0, len(filtered))
	for _, c := range filtered {
		all = append(all, EmotionScore{
			Label: strings.ToLower(c.Label),
			Score: round3(c.Score),
		})
	}

	primary := all[0]
	return emotionOutcome{
		Primary:    primary.Label,
		Confidence: primary.Score,
		All:        all,
		Group:      EmotionGroup(primary.Label),
	}, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// remoteAnalysisError wraps the failing stage for the warning log.
func remoteAnalysisError(stage string, err error) error {
	return fmt.Errorf("%s classification: %w", stage, err)
}
