package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"opnamecore/internal/config"
	"opnamecore/internal/domain/models"
	"opnamecore/internal/repository/mongodb"
	"opnamecore/internal/service/analysis"
)

// Scheduler runs the periodic monitoring digest: the trend analyzer is fed
// the most recent completed count and the resulting watch list is logged
// for operations follow-up.
type Scheduler struct {
	cron     *cron.Cron
	ledger   mongodb.HistoryLedger
	analyzer *analysis.Analyzer
	cfg      config.MonitoringConfig
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.MonitoringConfig, ledger mongodb.HistoryLedger, analyzer *analysis.Analyzer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to local", zap.String("timezone", cfg.Timezone), zap.Error(err))
		location = time.Local
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		ledger:   ledger,
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the digest job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runMonitoringDigest); err != nil {
		s.logger.Error("failed to schedule monitoring digest", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runMonitoringDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	records, err := s.ledger.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to load opname history for digest", zap.Error(err))
		return
	}
	if len(records) == 0 {
		s.logger.Info("no completed counts yet, skipping monitoring digest")
		return
	}

	// ListAll is date descending, so the first record is the latest count;
	// its item snapshot stands in for the current working list.
	latest := records[0]
	current := make([]models.SOWorkingItem, 0, len(latest.Items))
	for _, snap := range latest.Items {
		current = append(current, models.SOWorkingItem{
			Code:        snap.Code,
			Name:        snap.Name,
			Price:       snap.Price,
			SystemQty:   snap.SystemQty,
			PhysicalQty: snap.PhysicalQty,
		})
	}

	result := s.analyzer.Analyze(current, records)

	s.logger.Info("monitoring digest",
		zap.Int("analyzed_items", len(result.PerItem)),
		zap.Int("watch_list", len(result.Monitoring)),
		zap.Int("open_minus_runs", len(result.ConsecutiveRuns.Minus)),
		zap.Int("open_plus_runs", len(result.ConsecutiveRuns.Plus)))

	for _, entry := range result.Monitoring {
		s.logger.Info("watch list item",
			zap.String("code", entry.Code),
			zap.String("name", entry.Name),
			zap.String("status", entry.Status),
			zap.String("history", entry.HistoryText))
	}
}
