package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Dan9191/market-planner/internal/integrations/backend"
	"github.com/Dan9191/market-planner/internal/middleware"
	"github.com/Dan9191/market-planner/internal/models"
	"github.com/Dan9191/market-planner/internal/planner"
	"github.com/Dan9191/market-planner/internal/service"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Planner is the schedule lifecycle the handlers expose
type Planner interface {
	Generate(ctx context.Context, owner string, req planner.Request) (*service.DraftView, error)
	Draft(ctx context.Context, owner string) (*service.DraftView, error)
	Clear(ctx context.Context, owner string) error
	Save(ctx context.Context, owner string) (int, error)
	MarkDraftItemPaid(ctx context.Context, owner string, date models.Date, companyID int64) (*models.ScheduleEntry, error)
	MarkSchedulePaid(ctx context.Context, scheduleID int64, actual decimal.Decimal) (*models.PaymentSchedule, error)
	Schedules(ctx context.Context) ([]models.PaymentSchedule, error)
}

type Handler struct {
	svc Planner
	log *logrus.Logger
}

func NewHandler(svc Planner, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Router mounts public routes and the routes guarded by auth
func (h *Handler) Router(auth mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(auth)
	authRouter.HandleFunc("/schedule/generate", h.Generate).Methods("POST")
	authRouter.HandleFunc("/schedule/draft", h.GetDraft).Methods("GET")
	authRouter.HandleFunc("/schedule/draft", h.ClearDraft).Methods("DELETE")
	authRouter.HandleFunc("/schedule/draft/save", h.SaveDraft).Methods("POST")
	authRouter.HandleFunc("/schedule/draft/items/{date}/{companyID:[0-9]+}/paid", h.MarkDraftItemPaid).Methods("POST")
	authRouter.HandleFunc("/schedules", h.ListSchedules).Methods("GET")
	authRouter.HandleFunc("/schedules/{id:[0-9]+}/paid", h.MarkSchedulePaid).Methods("POST")
	return r
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Generate handles schedule generation
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "user ID not found in context"})
		return
	}

	var req planner.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	view, err := h.svc.Generate(r.Context(), owner, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// GetDraft returns the caller's draft schedule
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "user ID not found in context"})
		return
	}

	view, err := h.svc.Draft(r.Context(), owner)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ClearDraft discards the caller's draft schedule
func (h *Handler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "user ID not found in context"})
		return
	}

	if err := h.svc.Clear(r.Context(), owner); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveDraft materializes the caller's draft in the backend
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "user ID not found in context"})
		return
	}

	created, err := h.svc.Save(r.Context(), owner)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"created": created})
}

// MarkDraftItemPaid records the payment of a single draft item
func (h *Handler) MarkDraftItemPaid(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "user ID not found in context"})
		return
	}

	vars := mux.Vars(r)
	date, err := models.ParseDate(vars["date"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid date"})
		return
	}
	companyID, err := strconv.ParseInt(vars["companyID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid company ID"})
		return
	}

	entry, err := h.svc.MarkDraftItemPaid(r.Context(), owner, date, companyID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ListSchedules returns persisted schedule rows
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Schedules(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type markPaidRequest struct {
	ActualAmount decimal.Decimal `json:"actualAmount"`
}

// MarkSchedulePaid records the payment of a persisted schedule row
func (h *Handler) MarkSchedulePaid(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid schedule ID"})
		return
	}

	var req markPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	row, err := h.svc.MarkSchedulePaid(r.Context(), id, req.ActualAmount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps service and planner errors to HTTP responses
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *planner.ValidationError
	var apiErr *backend.APIError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Please fix the validation errors before generating schedule", Fields: verr.Fields})
	case errors.Is(err, planner.ErrInvalidRange),
		errors.Is(err, planner.ErrNoDebts),
		errors.Is(err, planner.ErrNoCash),
		errors.Is(err, service.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, planner.ErrEmptySchedule):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrNoDraft), errors.Is(err, service.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrAlreadyPaid), errors.Is(err, service.ErrStaleDraft):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.As(err, &apiErr):
		h.log.Errorf("Backend request failed: %v", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	default:
		h.log.Errorf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
