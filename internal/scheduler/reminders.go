// Package scheduler runs the periodic due-payment reminder.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/market-planner/internal/metrics"
	"github.com/Dan9191/market-planner/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DueLister returns unpaid scheduled payments due on or before today
type DueLister interface {
	DuePayments(ctx context.Context) ([]models.PaymentSchedule, error)
}

// ReminderSender delivers the due-payment list to a recipient
type ReminderSender interface {
	SendDueReminder(to string, today models.Date, due []models.PaymentSchedule) error
}

// Reminders emails the list of due payments on a cron schedule
type Reminders struct {
	due     DueLister
	sender  ReminderSender
	to      string
	timeout time.Duration
	log     *logrus.Logger
	now     func() time.Time
}

func NewReminders(due DueLister, sender ReminderSender, to string, timeout time.Duration, log *logrus.Logger) *Reminders {
	return &Reminders{due: due, sender: sender, to: to, timeout: timeout, log: log, now: time.Now}
}

// Start registers the reminder job under expr and starts the cron runner.
// The caller stops the returned runner on shutdown.
func (r *Reminders) Start(expr string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(expr, r.run); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", expr, err)
	}
	c.Start()
	r.log.Infof("Due-payment reminders scheduled at %q for %s", expr, r.to)
	return c, nil
}

func (r *Reminders) run() {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := r.RunOnce(ctx); err != nil {
		r.log.Errorf("Reminder run failed: %v", err)
	}
}

// RunOnce sends a single reminder if anything is due. Nothing is sent when
// all scheduled payments are settled or in the future.
func (r *Reminders) RunOnce(ctx context.Context) error {
	due, err := r.due.DuePayments(ctx)
	if err != nil {
		metrics.RemindersSent.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to list due payments: %w", err)
	}
	if len(due) == 0 {
		metrics.RemindersSent.WithLabelValues("skipped").Inc()
		r.log.Debug("No payments due, reminder skipped")
		return nil
	}

	if err := r.sender.SendDueReminder(r.to, models.DateOf(r.now()), due); err != nil {
		metrics.RemindersSent.WithLabelValues("failed").Inc()
		return err
	}
	metrics.RemindersSent.WithLabelValues("sent").Inc()
	r.log.WithFields(logrus.Fields{
		"to":       r.to,
		"payments": len(due),
	}).Info("Due-payment reminder sent")
	return nil
}
