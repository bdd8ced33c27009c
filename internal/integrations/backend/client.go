// Package backend is the REST client for the bookkeeping backend that owns
// companies, debts, cash balance and persisted payment plans.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Dan9191/market-planner/internal/config"
	"github.com/Dan9191/market-planner/internal/models"
	"github.com/sirupsen/logrus"
)

// maxPages bounds pagination so a misbehaving "next" link cannot loop forever
const maxPages = 1000

// APIError is returned for non-2xx responses
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s %s: unexpected status code %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client talks to the bookkeeping backend
type Client struct {
	baseURL *url.URL
	token   string
	client  *http.Client
	log     *logrus.Logger
}

// NewClient initializes a new backend client
func NewClient(cfg *config.Config, log *logrus.Logger) (*Client, error) {
	base := cfg.BackendURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	return &Client{
		baseURL: u,
		token:   cfg.BackendToken,
		client: &http.Client{
			Timeout: cfg.BackendTimeout,
		},
		log: log,
	}, nil
}

// ListCompanies returns every company visible to the token
func (c *Client) ListCompanies(ctx context.Context) ([]models.Company, error) {
	return listAll[models.Company](ctx, c, "companies/")
}

// ListCustomers returns every customer visible to the token
func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return listAll[models.Customer](ctx, c, "customers/")
}

// GetShopMoney returns the shop's current cash on hand
func (c *Client) GetShopMoney(ctx context.Context) (models.ShopMoney, error) {
	var money models.ShopMoney
	if err := c.do(ctx, http.MethodGet, "shop-money/", nil, &money); err != nil {
		return models.ShopMoney{}, err
	}
	return money, nil
}

// ListPaymentPlans returns the active payment plans
func (c *Client) ListPaymentPlans(ctx context.Context) ([]models.PaymentPlan, error) {
	return listAll[models.PaymentPlan](ctx, c, "payment-plans/")
}

// GetPaymentPlan retrieves a payment plan by ID
func (c *Client) GetPaymentPlan(ctx context.Context, id int64) (models.PaymentPlan, error) {
	var plan models.PaymentPlan
	if err := c.do(ctx, http.MethodGet, "payment-plans/"+strconv.FormatInt(id, 10)+"/", nil, &plan); err != nil {
		return models.PaymentPlan{}, err
	}
	return plan, nil
}

// CreatePaymentPlan creates a payment plan for a company
func (c *Client) CreatePaymentPlan(ctx context.Context, in models.PaymentPlanCreate) (models.PaymentPlan, error) {
	var plan models.PaymentPlan
	if err := c.do(ctx, http.MethodPost, "payment-plans/", in, &plan); err != nil {
		return models.PaymentPlan{}, err
	}
	return plan, nil
}

// ListPaymentSchedules returns persisted schedule rows ordered by date
func (c *Client) ListPaymentSchedules(ctx context.Context) ([]models.PaymentSchedule, error) {
	return listAll[models.PaymentSchedule](ctx, c, "payment-schedules/")
}

// GetPaymentSchedule retrieves a schedule row by ID
func (c *Client) GetPaymentSchedule(ctx context.Context, id int64) (models.PaymentSchedule, error) {
	var schedule models.PaymentSchedule
	if err := c.do(ctx, http.MethodGet, "payment-schedules/"+strconv.FormatInt(id, 10)+"/", nil, &schedule); err != nil {
		return models.PaymentSchedule{}, err
	}
	return schedule, nil
}

// CreatePaymentSchedule creates a schedule row under a plan
func (c *Client) CreatePaymentSchedule(ctx context.Context, in models.PaymentScheduleCreate) (models.PaymentSchedule, error) {
	var schedule models.PaymentSchedule
	if err := c.do(ctx, http.MethodPost, "payment-schedules/", in, &schedule); err != nil {
		return models.PaymentSchedule{}, err
	}
	return schedule, nil
}

// UpdatePaymentSchedule patches a schedule row
func (c *Client) UpdatePaymentSchedule(ctx context.Context, id int64, in models.PaymentScheduleUpdate) (models.PaymentSchedule, error) {
	var schedule models.PaymentSchedule
	if err := c.do(ctx, http.MethodPatch, "payment-schedules/"+strconv.FormatInt(id, 10)+"/", in, &schedule); err != nil {
		return models.PaymentSchedule{}, err
	}
	return schedule, nil
}

// CreateDebt records a debt or, with a negative amount, a payment
func (c *Client) CreateDebt(ctx context.Context, in models.DebtCreate) (models.Debt, error) {
	var debt models.Debt
	if err := c.do(ctx, http.MethodPost, "debts/", in, &debt); err != nil {
		return models.Debt{}, err
	}
	return debt, nil
}

// listAll follows "next" links until the collection is exhausted
func listAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	next := path
	for i := 0; next != "" && i < maxPages; i++ {
		var page models.Page[T]
		if err := c.do(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}
	return all, nil
}

// do sends a JSON request and decodes the JSON response into out
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	target := c.baseURL.ResolveReference(ref)

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"method": method,
		"url":    target.String(),
		"status": resp.StatusCode,
	}).Debug("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Method: method, Path: target.Path, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", target.Path, err)
	}
	return nil
}
