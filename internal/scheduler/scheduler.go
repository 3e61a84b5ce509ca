package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/eunoia-app/eunoia-server/internal/analysis"
	"github.com/eunoia-app/eunoia-server/internal/db"
	"github.com/eunoia-app/eunoia-server/internal/inference"
)

const backfillBatchSize = 50

// Scheduler manages scheduled jobs
type Scheduler struct {
	scheduler      gocron.Scheduler
	db             *db.DB
	analyzer       *analysis.Analyzer
	client         *inference.Client
	sentimentModel string
	timezone       *time.Location
}

// Config holds scheduler configuration
type Config struct {
	Timezone       string
	SentimentModel string
}

// New creates a new scheduler
func New(database *db.DB, analyzer *analysis.Analyzer, client *inference.Client, cfg Config) (*Scheduler, error) {
	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		tz = time.UTC
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(tz))
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		scheduler:      s,
		db:             database,
		analyzer:       analyzer,
		client:         client,
		sentimentModel: cfg.SentimentModel,
		timezone:       tz,
	}, nil
}

// Start starts the scheduler and registers all jobs
func (s *Scheduler) Start() error {
	// Re-analyze degraded entries nightly at 02:00
	_, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(2, 0, 0))),
		gocron.NewTask(s.backfillAnalysis),
		gocron.WithName("analysis-backfill"),
	)
	if err != nil {
		return err
	}

	// Probe the inference API every 5 minutes when the remote path is on
	if s.analyzer.RemoteEnabled() {
		_, err = s.scheduler.NewJob(
			gocron.DurationJob(5*time.Minute),
			gocron.NewTask(s.healthCheck),
			gocron.WithName("inference-health-check"),
		)
		if err != nil {
			return err
		}
	}

	s.scheduler.Start()
	log.Println("Scheduler started")
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

// backfillAnalysis re-runs the pipeline over entries whose analysis degraded
// to the static default or was never recorded.
func (s *Scheduler) backfillAnalysis() {
	log.Println("Running analysis backfill...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	entries, err := s.db.EntriesNeedingAnalysis(backfillBatchSize)
	if err != nil {
		log.Printf("Backfill: failed to list entries: %v", err)
		return
	}
	if len(entries) == 0 {
		log.Println("Backfill: nothing to do")
		return
	}

	updated := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			log.Printf("Backfill: stopped early after %d entries: %v", updated, ctx.Err())
			return
		}

		result := s.analyzer.Analyze(ctx, entry.Content)
		if result.AnalysisMethod == analysis.MethodErrorFallback {
			// Still degraded; leave the row for the next run
			continue
		}

		emotions, err := analysis.MarshalEmotions(result.EmotionsDetected)
		if err != nil {
			log.Printf("Backfill: failed to marshal emotions for entry %d: %v", entry.ID, err)
			continue
		}

		entry.SentimentScore = result.SentimentScore
		entry.Emotion = result.Emotion
		entry.EmotionConfidence = result.EmotionConfidence
		entry.EmotionsDetected = emotions
		entry.EmotionGroup = result.EmotionGroup
		entry.StressLevel = result.StressLevel
		entry.AnalysisMethod = result.AnalysisMethod

		if err := s.db.UpdateEntryAnalysis(entry.ID, &entry); err != nil {
			log.Printf("Backfill: failed to update entry %d: %v", entry.ID, err)
			continue
		}
		updated++
	}

	log.Printf("Backfill: re-analyzed %d of %d entries", updated, len(entries))
}

func (s *Scheduler) healthCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.client.HealthCheck(ctx, s.sentimentModel); err != nil {
		log.Printf("Inference health check failed: %v", err)
	}
}
