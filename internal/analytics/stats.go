package analytics

import (
	"github.com/eunoia-app/eunoia-server/internal/db"
	"github.com/eunoia-app/eunoia-server/internal/models"
)

// BuildStats summarizes a user's full journal: totals, date span, emotion
// distributions, and min/avg/max over sentiment, stress, and word counts.
func BuildStats(entries []db.Entry) models.StatsResponse {
	resp := models.StatsResponse{
		TotalEntries:             len(entries),
		EmotionDistribution:      map[string]int{},
		EmotionGroupDistribution: map[string]int{},
	}
	if len(entries) == 0 {
		return resp
	}

	minDate := entries[0].Date
	maxDate := entries[0].Date

	var sentiments, stressLevels []float64
	var wordCounts []int

	for _, e := range entries {
		if e.Date.Before(minDate) {
			minDate = e.Date
		}
		if e.Date.After(maxDate) {
			maxDate = e.Date
		}
		resp.EmotionDistribution[orNeutral(e.Emotion)]++
		resp.EmotionGroupDistribution[orNeutral(e.EmotionGroup)]++
		sentiments = append(sentiments, e.SentimentScore)
		stressLevels = append(stressLevels, e.StressLevel)
		wordCounts = append(wordCounts, e.WordCount)
	}

	resp.DateRange = &models.DateRange{
		FirstEntry: minDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
		LastEntry:  maxDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
		SpanDays:   int(maxDate.Sub(minDate).Hours()/24) + 1,
	}
	resp.SentimentStats = rangeStats(sentiments)
	resp.StressStats = rangeStats(stressLevels)
	resp.WritingStats = writingStats(wordCounts)
	return resp
}

func rangeStats(vals []float64) models.RangeStats {
	if len(vals) == 0 {
		return models.RangeStats{}
	}
	minV, maxV := vals[0], vals[0]
	for _, v := range vals {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return models.RangeStats{
		Avg:   round3(mean(vals)),
		Min:   round3(minV),
		Max:   round3(maxV),
		Count: len(vals),
	}
}

func writingStats(counts []int) models.WritingStats {
	if len(counts) == 0 {
		return models.WritingStats{}
	}
	minC, maxC, total := counts[0], counts[0], 0
	for _, c := range counts {
		if c < minC {
			minC = c
		}
		if c > maxC {
			maxC = c
		}
		total += c
	}
	return models.WritingStats{
		AvgWordCount: round1(float64(total) / float64(len(counts))),
		MinWordCount: minC,
		MaxWordCount: maxC,
		TotalWords:   total,
	}
}
