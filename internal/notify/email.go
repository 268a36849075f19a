// Package notify sends budget alert and monthly summary emails over SMTP.
package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"finance-tracker/internal/config"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendBudgetAlert notifies a user that a budget crossed the warning or
// exceeded threshold.
func (s *Sender) SendBudgetAlert(to, name, category string, spent, limit float64, percentage, month, year int) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if percentage >= 100 {
		e.Subject = fmt.Sprintf("Budget exceeded: %s", category)
	} else {
		e.Subject = fmt.Sprintf("Budget warning: %s", category)
	}

	body := fmt.Sprintf("Dear %s,\n\n", name)
	body += fmt.Sprintf(
		"Your %s budget for %s %d is at %d%% (%.2f of %.2f spent).\n",
		category, time.Month(month), year, percentage, spent, limit,
	)
	if percentage >= 100 {
		body += "You have exceeded your limit for this month.\n"
	} else {
		body += "You are approaching your limit for this month.\n"
	}
	body += "\nBest regards,\nFinance Tracker"
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		return fmt.Errorf("failed to send budget alert: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// SendMonthlySummary sends a user their previous-month totals.
func (s *Sender) SendMonthlySummary(to, name string, month time.Month, year int, income, expense float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your %s %d summary", month, year)

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Here is your summary for %s %d:\n"+
			"Income: %.2f\n"+
			"Expenses: %.2f\n"+
			"Net: %.2f\n",
		name, month, year, income, expense, income-expense,
	)
	body += "\nBest regards,\nFinance Tracker"
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		return fmt.Errorf("failed to send monthly summary: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	return e.Send(addr, auth)
}
