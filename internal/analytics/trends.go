package analytics

import (
	"math"
	"sort"

	"github.com/eunoia-app/eunoia-server/internal/db"
	"github.com/eunoia-app/eunoia-server/internal/models"
)

// BuildTrends buckets entries by calendar day and produces the dashboard's
// sentiment/stress/emotion trend series plus a window summary.
func BuildTrends(entries []db.Entry, days int) models.TrendsResponse {
	resp := models.TrendsResponse{
		Trends:       []models.TrendPoint{},
		TotalEntries: len(entries),
		DaysAnalyzed: days,
		Summary: models.TrendSummary{
			MostCommonEmotion: "neutral",
		},
	}
	if len(entries) == 0 {
		return resp
	}

	type dayBucket struct {
		sentiments    []float64
		stressLevels  []float64
		wordCounts    []int
		emotions      []string
		emotionGroups []string
	}

	dayMap := make(map[string]*dayBucket)
	for _, e := range entries {
		key := e.Date.UTC().Format("2006-01-02")
		bucket, ok := dayMap[key]
		if !ok {
			bucket = &dayBucket{}
			dayMap[key] = bucket
		}
		bucket.sentiments = append(bucket.sentiments, e.SentimentScore)
		bucket.stressLevels = append(bucket.stressLevels, e.StressLevel)
		bucket.wordCounts = append(bucket.wordCounts, e.WordCount)
		bucket.emotions = append(bucket.emotions, orNeutral(e.Emotion))
		bucket.emotionGroups = append(bucket.emotionGroups, orNeutral(e.EmotionGroup))
	}

	var dates []string
	for d := range dayMap {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var allSentiments, allStress []float64
	var allEmotions []string

	for _, d := range dates {
		bucket := dayMap[d]
		resp.Trends = append(resp.Trends, models.TrendPoint{
			Date:                   d,
			AvgSentiment:           round3(mean(bucket.sentiments)),
			AvgStress:              round3(mean(bucket.stressLevels)),
			AvgWordCount:           round1(meanInt(bucket.wordCounts)),
			MostCommonEmotion:      mostCommon(bucket.emotions),
			MostCommonEmotionGroup: mostCommon(bucket.emotionGroups),
			EntryCount:             len(bucket.sentiments),
		})
		allSentiments = append(allSentiments, bucket.sentiments...)
		allStress = append(allStress, bucket.stressLevels...)
		allEmotions = append(allEmotions, bucket.emotions...)
	}

	resp.Summary = models.TrendSummary{
		AvgSentiment:      round3(mean(allSentiments)),
		AvgStress:         round3(mean(allStress)),
		MostCommonEmotion: mostCommon(allEmotions),
		TotalEntries:      len(entries),
	}
	return resp
}

func orNeutral(s string) string {
	if s == "" {
		return "neutral"
	}
	return s
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func meanInt(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

// mostCommon picks the most frequent value; ties resolve to the
// lexicographically smaller one so output is stable.
func mostCommon(vals []string) string {
	if len(vals) == 0 {
		return "neutral"
	}
	counts := make(map[string]int)
	for _, v := range vals {
		counts[v]++
	}
	best := ""
	bestCount := -1
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best = v
			bestCount = c
		}
	}
	return best
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
