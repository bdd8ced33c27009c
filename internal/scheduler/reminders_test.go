package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Dan9191/market-planner/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDue struct {
	rows []models.PaymentSchedule
	err  error
}

func (s stubDue) DuePayments(context.Context) ([]models.PaymentSchedule, error) {
	return s.rows, s.err
}

type recordingSender struct {
	calls int
	to    string
	today models.Date
	due   []models.PaymentSchedule
	err   error
}

func (s *recordingSender) SendDueReminder(to string, today models.Date, due []models.PaymentSchedule) error {
	s.calls++
	s.to, s.today, s.due = to, today, due
	return s.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newReminders(due DueLister, sender ReminderSender) *Reminders {
	r := NewReminders(due, sender, "owner@shop", time.Second, quietLogger())
	r.now = func() time.Time { return time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC) }
	return r
}

func TestRunOnce_SendsDuePayments(t *testing.T) {
	rows := []models.PaymentSchedule{{ID: 1, ScheduledDate: models.NewDate(2024, 3, 4), ScheduledAmount: decimal.NewFromInt(10)}}
	sender := &recordingSender{}

	require.NoError(t, newReminders(stubDue{rows: rows}, sender).RunOnce(context.Background()))
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "owner@shop", sender.to)
	assert.Equal(t, models.NewDate(2024, 3, 4), sender.today)
	assert.Len(t, sender.due, 1)
}

func TestRunOnce_SkipsWhenNothingDue(t *testing.T) {
	sender := &recordingSender{}
	require.NoError(t, newReminders(stubDue{}, sender).RunOnce(context.Background()))
	assert.Zero(t, sender.calls)
}

func TestRunOnce_Errors(t *testing.T) {
	sender := &recordingSender{}
	err := newReminders(stubDue{err: errors.New("backend down")}, sender).RunOnce(context.Background())
	assert.ErrorContains(t, err, "backend down")
	assert.Zero(t, sender.calls)

	rows := []models.PaymentSchedule{{ID: 1, ScheduledDate: models.NewDate(2024, 3, 1)}}
	sender = &recordingSender{err: errors.New("smtp down")}
	err = newReminders(stubDue{rows: rows}, sender).RunOnce(context.Background())
	assert.ErrorContains(t, err, "smtp down")
}

func TestStart_RejectsBadSpec(t *testing.T) {
	_, err := newReminders(stubDue{}, &recordingSender{}).Start("every other tuesday")
	assert.Error(t, err)

	c, err := newReminders(stubDue{}, &recordingSender{}).Start("0 8 * * *")
	require.NoError(t, err)
	c.Stop()
}
