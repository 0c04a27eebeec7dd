package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/config"
	"github.com/ricetradesolutions/riceledger/internal/domain/models"
	"github.com/ricetradesolutions/riceledger/internal/repository/mongodb"
	"github.com/ricetradesolutions/riceledger/internal/service/reporting"
	"github.com/ricetradesolutions/riceledger/pkg/clients/webhook"
)

// SummarySaver persists one daily summary per trading day.
type SummarySaver interface {
	SaveDailySummary(ctx context.Context, s models.DailySummary) error
}

// LedgerMirror pushes a day's loads into the spreadsheet mirror.
type LedgerMirror interface {
	PushLoadsToSheet(ctx context.Context, filter mongodb.LoadFilter) (int, error)
}

// Scheduler runs the end-of-day close: persist a daily summary, mirror the
// day's loads to the spreadsheet when configured, and push a reminder about
// overdue mill payments when a webhook is configured.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	summaries    SummarySaver
	mirror       LedgerMirror
	notifier     webhook.Client
	cfg          config.ReportingConfig
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduler creates a new scheduler instance. The mirror and notifier may
// be nil when the matching features are not configured.
func NewScheduler(cfg config.ReportingConfig, reportingSvc *reporting.Service, summaries SummarySaver, mirror LedgerMirror, notifier webhook.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, scheduling in local time", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.Local
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		reportingSvc: reportingSvc,
		summaries:    summaries,
		mirror:       mirror,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Start registers the daily close job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDailyClose); err != nil {
		s.logger.Error("failed to schedule daily close", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runDailyClose() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	day := s.now()
	s.logger.Info("running daily close", zap.String("date", day.Format("2006-01-02")))

	summary, err := s.reportingSvc.DailySummary(ctx, day)
	if err != nil {
		s.logger.Error("failed to build daily summary", zap.Error(err))
		return
	}

	if err := s.summaries.SaveDailySummary(ctx, summary); err != nil {
		s.logger.Error("failed to persist daily summary", zap.Error(err))
	}

	if s.mirror != nil {
		from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		to := from.Add(24*time.Hour - time.Nanosecond)
		if _, err := s.mirror.PushLoadsToSheet(ctx, mongodb.LoadFilter{From: &from, To: &to}); err != nil {
			s.logger.Error("failed to mirror daily loads", zap.Error(err))
		}
	}

	if s.notifier == nil {
		return
	}

	body := s.reportingSvc.FormatDailySummary(summary)

	overdue, err := s.reportingSvc.OverdueMillLoads(ctx, s.cfg.OverdueDays)
	if err != nil {
		s.logger.Error("failed to list overdue loads", zap.Error(err))
	} else if reminder := s.reportingSvc.FormatOverdue(overdue); reminder != "" {
		body += " " + reminder
	}

	if err := s.notifier.SendNotification(ctx, webhook.Notification{
		Title:   "Daily ledger close",
		Message: body,
	}); err != nil {
		s.logger.Error("failed to send daily close notification", zap.Error(err))
		return
	}

	s.logger.Info("daily close notification sent")
}
