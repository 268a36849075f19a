package notify

import (
	"context"
	"time"

	"finance-tracker/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SummarySource provides the data behind monthly summary emails.
type SummarySource interface {
	Users(ctx context.Context) ([]models.User, error)
	MonthTotals(ctx context.Context, userID primitive.ObjectID, month, year int) (income, expense float64, err error)
}

// SummarySender delivers one summary email.
type SummarySender interface {
	SendMonthlySummary(to, name string, month time.Month, year int, income, expense float64) error
}

// Scheduler runs the monthly summary job on the first of each month.
type Scheduler struct {
	cron   *cron.Cron
	source SummarySource
	sender SummarySender
	logger *logrus.Logger
}

// NewScheduler creates a scheduler; Start must be called to arm it.
func NewScheduler(source SummarySource, sender SummarySender, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		source: source,
		sender: sender,
		logger: logger,
	}
}

// Start arms the monthly summary job.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 8 1 * *", s.runMonthlySummaries); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Monthly summary scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runMonthlySummaries() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	month, year := int(prev.Month()), prev.Year()

	users, err := s.source.Users(ctx)
	if err != nil {
		s.logger.Errorf("Monthly summary: failed to list users: %v", err)
		return
	}

	for _, user := range users {
		income, expense, err := s.source.MonthTotals(ctx, user.ID, month, year)
		if err != nil {
			s.logger.Errorf("Monthly summary: failed to total %s: %v", user.Email, err)
			continue
		}
		if income == 0 && expense == 0 {
			continue
		}
		if err := s.sender.SendMonthlySummary(user.Email, user.Name, time.Month(month), year, income, expense); err != nil {
			s.logger.Errorf("Monthly summary: %v", err)
		}
	}
}
