package email

import (
	"fmt"
	"net/smtp"
	"sort"
	"strings"

	"github.com/Dan9191/market-planner/internal/config"
	"github.com/Dan9191/market-planner/internal/models"
	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	s := &Sender{
		cfg:    cfg,
		logger: logger,
	}
	s.send = func(e *email.Email) error {
		addr := fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort)
		var auth smtp.Auth
		if cfg.SMTPUsername != "" {
			auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
		}
		return e.Send(addr, auth)
	}
	return s
}

// SendDueReminder sends the list of unpaid scheduled payments due on or
// before today
func (s *Sender) SendDueReminder(to string, today models.Date, due []models.PaymentSchedule) error {
	e := buildDueReminder(s.cfg.SenderEmail, to, today, due)

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func buildDueReminder(from, to string, today models.Date, due []models.PaymentSchedule) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{to}

	overdue := 0
	totals := make(map[string]decimal.Decimal)
	for _, p := range due {
		if p.ScheduledDate.Before(today.Time) {
			overdue++
		}
		totals[p.Currency] = totals[p.Currency].Add(p.ScheduledAmount)
	}
	if overdue > 0 {
		e.Subject = fmt.Sprintf("%d payments due, %d overdue", len(due), overdue)
	} else {
		e.Subject = fmt.Sprintf("%d payments due today", len(due))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scheduled payments due as of %s:\n\n", today)
	for _, p := range due {
		name := p.EntityName
		if name == "" {
			name = fmt.Sprintf("plan #%d", p.PaymentPlan)
		}
		mark := ""
		if p.ScheduledDate.Before(today.Time) {
			mark = " (overdue)"
		}
		fmt.Fprintf(&b, "  %s  %-30s %12s %s%s\n", p.ScheduledDate, name, p.ScheduledAmount.StringFixed(2), p.Currency, mark)
	}

	currencies := make([]string, 0, len(totals))
	for c := range totals {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	b.WriteString("\nTotals:\n")
	for _, c := range currencies {
		fmt.Fprintf(&b, "  %s %s\n", totals[c].StringFixed(2), c)
	}
	b.WriteString("\nRecord each payment once it is made so the schedule stays current.\n")
	e.Text = []byte(b.String())
	return e
}
