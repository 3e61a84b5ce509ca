package analysis

import (
	"context"
	"log"
	"math"
	"strings"

	"github.com/eunoia-app/eunoia-server/internal/inference"
)

// Analyzer runs the text analysis pipeline: empty check, then the remote
// classifier path when enabled, then the rule-based path, terminating in the
// static neutral default. Each stage reports failure as a value; nothing
// escapes to the caller as an error. Safe for concurrent use: all state is
// read-only after construction.
type Analyzer struct {
	client         *inference.Client
	sentimentModel string
	emotionModel   string
	useRemote      bool
}

// NewAnalyzer creates an analyzer. useRemote only takes effect when the
// client also has a token; otherwise every call goes straight to the
// rule-based scorer.
func NewAnalyzer(client *inference.Client, sentimentModel, emotionModel string, useRemote bool) *Analyzer {
	return &Analyzer{
		client:         client,
		sentimentModel: sentimentModel,
		emotionModel:   emotionModel,
		useRemote:      useRemote,
	}
}

// RemoteEnabled reports whether the remote classifier path will be attempted.
func (a *Analyzer) RemoteEnabled() bool {
	return a.useRemote && a.client != nil && a.client.HasToken()
}

// Analyze runs the full pipeline over raw journal text and always returns a
// structurally valid Result.
func (a *Analyzer) Analyze(ctx context.Context, text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return EmptyResult()
	}

	if a.RemoteEnabled() {
		result, err := a.analyzeRemote(ctx, trimmed)
		if err == nil {
			return result
		}
		log.Printf("WARNING: remote analysis failed, falling back to rule-based: %v", err)
		if ctx.Err() != nil {
			// Request already cancelled; nothing further may run
			return FallbackResult()
		}
	}

	return a.AnalyzeRuleBased(trimmed)
}

// AnalyzeRuleBased forces the deterministic keyword path. Pure computation,
// identical output for identical text.
func (a *Analyzer) AnalyzeRuleBased(text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return EmptyResult()
	}

	lower := strings.ToLower(trimmed)
	sentiment := ruleBasedSentiment(lower)
	emotion := ruleBasedEmotion(lower)

	return buildResult(trimmed, sentiment, emotion, MethodRuleBased)
}

func (a *Analyzer) analyzeRemote(ctx context.Context, text string) (Result, error) {
	sentiment, err := remoteSentiment(ctx, a.client, a.sentimentModel, text)
	if err != nil {
		return Result{}, remoteAnalysisError("sentiment", err)
	}

	emotion, err := remoteEmotion(ctx, a.client, a.emotionModel, text)
	if err != nil {
		return Result{}, remoteAnalysisError("emotion", err)
	}

	return buildResult(text, sentiment, emotion, MethodRemote), nil
}

func buildResult(text string, sentiment sentimentOutcome, emotion emotionOutcome, method string) Result {
	return Result{
		SentimentScore:     clamp(sentiment.Score, 0, 10),
		SentimentLabel:     sentiment.Label,
		Emotion:            emotion.Primary,
		EmotionConfidence:  emotion.Confidence,
		EmotionsDetected:   emotion.All,
		EmotionGroup:       emotion.Group,
		StressLevel:        stressLevel(text, sentiment, emotion),
		Insights:           insightsFor(sentiment.Label, emotion.Primary),
		AnalysisMethod:     method,
		AnalysisConfidence: math.Min(sentiment.Confidence, emotion.Confidence),
	}
}
