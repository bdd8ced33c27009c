package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Dan9191/market-planner/internal/config"
	"github.com/Dan9191/market-planner/internal/metrics"
	"github.com/Dan9191/market-planner/internal/models"
	"github.com/Dan9191/market-planner/internal/planner"
	"github.com/Dan9191/market-planner/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoDraft       = errors.New("no draft schedule")
	ErrItemNotFound  = errors.New("schedule item not found")
	ErrAlreadyPaid   = errors.New("payment already recorded")
	ErrInvalidAmount = errors.New("actual amount must be positive")
	ErrStaleDraft    = errors.New("draft schedules companies that no longer have debt, regenerate it")
)

// Backend is the bookkeeping REST API the service reads from and writes to
type Backend interface {
	ListCompanies(ctx context.Context) ([]models.Company, error)
	GetShopMoney(ctx context.Context) (models.ShopMoney, error)
	ListPaymentPlans(ctx context.Context) ([]models.PaymentPlan, error)
	GetPaymentPlan(ctx context.Context, id int64) (models.PaymentPlan, error)
	CreatePaymentPlan(ctx context.Context, in models.PaymentPlanCreate) (models.PaymentPlan, error)
	ListPaymentSchedules(ctx context.Context) ([]models.PaymentSchedule, error)
	GetPaymentSchedule(ctx context.Context, id int64) (models.PaymentSchedule, error)
	CreatePaymentSchedule(ctx context.Context, in models.PaymentScheduleCreate) (models.PaymentSchedule, error)
	UpdatePaymentSchedule(ctx context.Context, id int64, in models.PaymentScheduleUpdate) (models.PaymentSchedule, error)
	CreateDebt(ctx context.Context, in models.DebtCreate) (models.Debt, error)
}

// DraftStore keeps one draft per owner plus its paid-item overlay
type DraftStore interface {
	SaveDraft(ctx context.Context, draft *models.Draft) error
	FindDraft(ctx context.Context, owner string) (*models.Draft, error)
	DeleteDraft(ctx context.Context, owner string) error
	MarkItemPaid(ctx context.Context, owner, itemKey string) error
	PaidItems(ctx context.Context, owner string) (map[string]bool, error)
}

// DraftView is a draft with its paid overlay applied, grouped per day
type DraftView struct {
	Draft   *models.Draft          `json:"draft"`
	Days    []models.DaySchedule   `json:"days"`
	Summary models.ScheduleSummary `json:"summary"`
}

// Service handles business logic
type Service struct {
	backend Backend
	store   DraftStore
	log     *logrus.Logger
	config  *config.Config
	now     func() time.Time
}

// NewService initializes a new service
func NewService(backend Backend, store DraftStore, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{backend: backend, store: store, log: log, config: cfg, now: time.Now}
}

// WithClock replaces the wall clock, for reproducible runs
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Generate runs the allocation engine over the backend's current companies
// and stores the result as the owner's draft, replacing any previous one.
func (s *Service) Generate(ctx context.Context, owner string, req planner.Request) (*DraftView, error) {
	now := s.now()

	companies, err := s.backend.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch companies: %w", err)
	}

	var cash decimal.Decimal
	if req.ShopCash == "" {
		money, err := s.backend.GetShopMoney(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch shop money: %w", err)
		}
		cash = money.CurrentMoney
	}

	params, err := planner.Validate(req, companies, cash, now, s.config.BaseCurrency)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	entries, err := planner.Generate(companies, params, now)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	draft := &models.Draft{
		ID:            uuid.New(),
		Owner:         owner,
		GeneratedAt:   now,
		StartDate:     params.StartDate,
		EndDate:       params.EndDate,
		ShopCash:      params.ShopCash,
		SafetyMargin:  params.SafetyMarginPercent,
		AvailableCash: params.AvailableCash(),
		DailyBudget:   params.DailyBudget(),
		BaseCurrency:  params.BaseCurrency,
		Entries:       entries,
	}
	if err := s.store.SaveDraft(ctx, draft); err != nil {
		return nil, err
	}

	metrics.GenerationsTotal.WithLabelValues("ok").Inc()
	metrics.ScheduledEntries.Observe(float64(len(entries)))
	s.log.WithFields(logrus.Fields{
		"owner":   owner,
		"draft":   draft.ID,
		"entries": len(entries),
		"days":    params.Days(),
	}).Info("Payment schedule generated")

	return newDraftView(draft), nil
}

// Draft returns the owner's draft with paid flags applied
func (s *Service) Draft(ctx context.Context, owner string) (*DraftView, error) {
	draft, err := s.loadDraft(ctx, owner)
	if err != nil {
		return nil, err
	}
	return newDraftView(draft), nil
}

// Clear discards the owner's draft without touching the backend
func (s *Service) Clear(ctx context.Context, owner string) error {
	if err := s.store.DeleteDraft(ctx, owner); err != nil {
		return err
	}
	s.log.WithField("owner", owner).Info("Draft schedule cleared")
	return nil
}

// Save materializes the owner's draft as backend payment plans and schedule
// rows. Every company with debt gets a payment plan first, reusing its
// active plan when the backend already has one; every schedule row then
// references its company's plan. A draft scheduling a company that no longer
// has debt is rejected before anything is written. The first failure aborts
// the batch and the draft is kept for a retry. Rows already created are not
// rolled back, so a retry may duplicate them.
func (s *Service) Save(ctx context.Context, owner string) (int, error) {
	draft, err := s.loadDraft(ctx, owner)
	if err != nil {
		return 0, err
	}

	companies, err := s.backend.ListCompanies(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch companies: %w", err)
	}
	debtors := make(map[int64]models.Company)
	for _, c := range companies {
		if c.HasDebt() {
			debtors[c.ID] = c
		}
	}

	stale := 0
	for _, e := range draft.Entries {
		if _, ok := debtors[e.CompanyID]; !ok {
			stale++
		}
	}
	if stale > 0 {
		metrics.SavesTotal.WithLabelValues("failed").Inc()
		s.log.WithFields(logrus.Fields{"owner": owner, "stale": stale}).Warn("Draft references companies without debt")
		return 0, fmt.Errorf("%w: %d of %d items", ErrStaleDraft, stale, len(draft.Entries))
	}

	plans, err := s.ensurePlans(ctx, owner, companies)
	if err != nil {
		metrics.SavesTotal.WithLabelValues("failed").Inc()
		return 0, err
	}

	created := 0
	for _, e := range draft.Entries {
		_, err := s.backend.CreatePaymentSchedule(ctx, models.PaymentScheduleCreate{
			PaymentPlan:     plans[e.CompanyID],
			ScheduledDate:   e.Date.String(),
			ScheduledAmount: e.Amount.StringFixed(3),
			ActualAmount:    "0",
			IsPaid:          false,
			Currency:        e.Currency,
		})
		if err != nil {
			metrics.SavesTotal.WithLabelValues("failed").Inc()
			s.log.WithFields(logrus.Fields{"owner": owner, "item": e.Key()}).Errorf("Failed to create payment schedule: %v", err)
			return created, fmt.Errorf("failed to save schedule item %s after %d of %d: %w", e.Key(), created, len(draft.Entries), err)
		}
		s.log.WithFields(logrus.Fields{"owner": owner, "item": e.Key()}).Debug("Payment schedule created")
		created++
	}

	if err := s.store.DeleteDraft(ctx, owner); err != nil {
		return created, fmt.Errorf("schedule saved but draft not cleared: %w", err)
	}

	metrics.SavesTotal.WithLabelValues("ok").Inc()
	s.log.WithFields(logrus.Fields{"owner": owner, "plans": len(plans), "schedules": created}).Info("Payment schedule saved")
	return created, nil
}

// ensurePlans returns the payment plan ID per company with debt. Active
// company plans already in the backend are reused, the rest are created.
func (s *Service) ensurePlans(ctx context.Context, owner string, companies []models.Company) (map[int64]int64, error) {
	existing, err := s.backend.ListPaymentPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment plans: %w", err)
	}
	active := make(map[int64]int64)
	for _, p := range existing {
		if !p.IsActive || p.Company == nil || p.Customer != nil {
			continue
		}
		if _, seen := active[*p.Company]; !seen {
			active[*p.Company] = p.ID
		}
	}

	plans := make(map[int64]int64)
	for _, c := range companies {
		if !c.HasDebt() {
			continue
		}
		if id, ok := active[c.ID]; ok {
			plans[c.ID] = id
			continue
		}
		debt := c.TotalDebt.StringFixed(3)
		plan, err := s.backend.CreatePaymentPlan(ctx, models.PaymentPlanCreate{
			Company:       c.ID,
			TotalDebt:     debt,
			PaidAmount:    "0",
			RemainingDebt: debt,
			IsActive:      true,
		})
		if err != nil {
			s.log.WithFields(logrus.Fields{"owner": owner, "company": c.ID}).Errorf("Failed to create payment plan: %v", err)
			return nil, fmt.Errorf("failed to create payment plan for company %d: %w", c.ID, err)
		}
		plans[c.ID] = plan.ID
	}
	return plans, nil
}

// MarkDraftItemPaid records a payment for one draft item. The backend debt
// is written first; the local paid flag only follows a successful write.
func (s *Service) MarkDraftItemPaid(ctx context.Context, owner string, date models.Date, companyID int64) (*models.ScheduleEntry, error) {
	draft, err := s.loadDraft(ctx, owner)
	if err != nil {
		return nil, err
	}
	entry := draft.Entry(date, companyID)
	if entry == nil {
		return nil, ErrItemNotFound
	}
	if entry.IsPaid {
		return nil, ErrAlreadyPaid
	}

	note := "Payment completed - Generated schedule: " + entry.Date.String()
	if _, err := s.backend.CreateDebt(ctx, models.NewCompanyPayment(companyID, entry.Amount, note)); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if err := s.store.MarkItemPaid(ctx, owner, entry.Key()); err != nil {
		return nil, err
	}

	entry.IsPaid = true
	metrics.PaymentsRecorded.WithLabelValues("draft").Inc()
	s.log.WithFields(logrus.Fields{
		"owner":   owner,
		"company": companyID,
		"amount":  entry.Amount.StringFixed(3),
	}).Info("Draft payment recorded")
	return entry, nil
}

// MarkSchedulePaid posts the payment against the plan's company and then
// marks the persisted schedule row paid with the amount actually paid. The
// row is only flagged after the ledger write succeeded, so a failed call can
// be retried.
func (s *Service) MarkSchedulePaid(ctx context.Context, scheduleID int64, actual decimal.Decimal) (*models.PaymentSchedule, error) {
	if !actual.IsPositive() {
		return nil, ErrInvalidAmount
	}

	current, err := s.backend.GetPaymentSchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule %d: %w", scheduleID, err)
	}
	if current.IsPaid {
		return nil, ErrAlreadyPaid
	}

	plan, err := s.backend.GetPaymentPlan(ctx, current.PaymentPlan)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment plan %d: %w", current.PaymentPlan, err)
	}
	if plan.Company != nil {
		note := "Payment completed - Schedule ID: " + strconv.FormatInt(scheduleID, 10)
		if _, err := s.backend.CreateDebt(ctx, models.NewCompanyPayment(*plan.Company, actual, note)); err != nil {
			return nil, fmt.Errorf("failed to record payment: %w", err)
		}
	}

	updated, err := s.backend.UpdatePaymentSchedule(ctx, scheduleID, models.PaymentScheduleUpdate{
		ActualAmount: actual.StringFixed(3),
		IsPaid:       true,
		PaidAt:       s.now().UTC(),
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"schedule": scheduleID,
			"amount":   actual.StringFixed(3),
		}).Errorf("Payment recorded but schedule not marked paid: %v", err)
		return nil, fmt.Errorf("payment recorded but failed to update schedule %d: %w", scheduleID, err)
	}

	metrics.PaymentsRecorded.WithLabelValues("schedule").Inc()
	s.log.WithFields(logrus.Fields{
		"schedule": scheduleID,
		"amount":   actual.StringFixed(3),
	}).Info("Scheduled payment recorded")
	return &updated, nil
}

// Schedules lists the persisted schedule rows
func (s *Service) Schedules(ctx context.Context) ([]models.PaymentSchedule, error) {
	rows, err := s.backend.ListPaymentSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedules: %w", err)
	}
	return rows, nil
}

// DuePayments returns unpaid persisted schedule rows due on or before the
// current date
func (s *Service) DuePayments(ctx context.Context) ([]models.PaymentSchedule, error) {
	rows, err := s.Schedules(ctx)
	if err != nil {
		return nil, err
	}
	today := models.DateOf(s.now())
	var due []models.PaymentSchedule
	for _, r := range rows {
		if !r.IsPaid && !r.ScheduledDate.After(today.Time) {
			due = append(due, r)
		}
	}
	return due, nil
}

// loadDraft reads the owner's draft and applies the paid overlay. Overlay
// keys that no longer match an entry are ignored.
func (s *Service) loadDraft(ctx context.Context, owner string) (*models.Draft, error) {
	draft, err := s.store.FindDraft(ctx, owner)
	if errors.Is(err, repository.ErrDraftNotFound) {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, err
	}

	paid, err := s.store.PaidItems(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range draft.Entries {
		if paid[draft.Entries[i].Key()] {
			draft.Entries[i].IsPaid = true
		}
	}
	return draft, nil
}

func newDraftView(d *models.Draft) *DraftView {
	return &DraftView{
		Draft:   d,
		Days:    planner.GroupByDate(d.Entries),
		Summary: planner.Summarize(d),
	}
}
