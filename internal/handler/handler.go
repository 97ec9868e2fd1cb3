package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/draft"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/models"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/plan"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseDate coerces the few date shapes the dashboard sends into a
// time.Time; anything unparseable becomes the zero time.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "02.01.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateClient handles client creation
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.CreateClient(&client)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListClients handles listing all clients
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.ListClients()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// GetClient handles fetching a single client
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	client, err := h.svc.GetClient(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, client)
}

type scheduleRequest struct {
	Amount     float64 `json:"amount"`
	AmountDue  float64 `json:"amount_due"`
	AmountPaid float64 `json:"amount_paid"`
	IsPaid     bool    `json:"is_paid"`
	DueDate    string  `json:"due_date"`
}

func (req scheduleRequest) toModel(clientID int64) models.Schedule {
	return models.Schedule{
		ClientID:   clientID,
		Amount:     req.Amount,
		AmountDue:  req.AmountDue,
		AmountPaid: req.AmountPaid,
		IsPaid:     req.IsPaid,
		DueDate:    parseDate(req.DueDate),
	}
}

// CreateSchedule handles adding an installment to a client
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sched := req.toModel(id)
	created, err := h.svc.CreateSchedule(&sched)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// RecordPayment handles recording a payment for a client
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	var req struct {
		ScheduleID int64   `json:"schedule_id"`
		Amount     float64 `json:"amount"`
		PaidAt     string  `json:"paid_at"`
		Method     string  `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payment := models.Payment{
		ClientID:   id,
		ScheduleID: req.ScheduleID,
		Amount:     req.Amount,
		PaidAt:     parseDate(req.PaidAt),
		Method:     req.Method,
	}
	created, err := h.svc.RecordPayment(&payment)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ClientRisk handles the per-client risk report
func (h *Handler) ClientRisk(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	report, err := h.svc.ClientRisk(id, parseDate(r.URL.Query().Get("now")))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// SuggestPlan handles the per-client plan suggestion
func (h *Handler) SuggestPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	var req struct {
		TotalAmount float64 `json:"total_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TotalAmount <= 0 {
		writeError(w, http.StatusBadRequest, "total_amount must be positive")
		return
	}
	suggestion, err := h.svc.SuggestPlanForClient(id, req.TotalAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

// DraftMessage handles the per-client outreach draft
func (h *Handler) DraftMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	var req struct {
		Scenario string `json:"scenario"`
		Tone     string `json:"tone"`
		Channel  string `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	scenario, tone, channel := draft.Scenario(req.Scenario), draft.Tone(req.Tone), draft.Channel(req.Channel)
	if !scenario.Valid() || !tone.Valid() || !channel.Valid() {
		writeError(w, http.StatusBadRequest, "unknown scenario, tone or channel")
		return
	}
	d, err := h.svc.DraftForClient(id, scenario, tone, channel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type analyzeRiskRequest struct {
	Schedules    []scheduleRequest `json:"schedules"`
	Transactions []struct {
		PaidAt string  `json:"paid_at"`
		Amount float64 `json:"amount"`
	} `json:"transactions"`
	Now string `json:"now"`
}

// AnalyzeRisk computes a risk report over rows supplied by the caller
func (h *Handler) AnalyzeRisk(w http.ResponseWriter, r *http.Request) {
	var req analyzeRiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	schedules := make([]models.Schedule, 0, len(req.Schedules))
	for _, row := range req.Schedules {
		schedules = append(schedules, row.toModel(0))
	}
	payments := make([]models.Payment, 0, len(req.Transactions))
	for _, tx := range req.Transactions {
		payments = append(payments, models.Payment{Amount: tx.Amount, PaidAt: parseDate(tx.PaidAt)})
	}
	writeJSON(w, http.StatusOK, h.svc.AnalyzeRisk(schedules, payments, parseDate(req.Now)))
}

// AnalyzePlan computes a plan suggestion from explicit inputs
func (h *Handler) AnalyzePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TotalAmount  float64 `json:"total_amount"`
		RiskLevel    string  `json:"risk_level"`
		Stage        int     `json:"stage"`
		OverdueCount int     `json:"overdue_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	suggestion, err := h.svc.SuggestPlan(plan.Input{
		TotalAmount:  req.TotalAmount,
		RiskLevel:    models.RiskLevel(req.RiskLevel),
		Stage:        req.Stage,
		OverdueCount: req.OverdueCount,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

// AnalyzeDraft renders a message draft from explicit inputs
func (h *Handler) AnalyzeDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scenario      string  `json:"scenario"`
		Tone          string  `json:"tone"`
		Channel       string  `json:"channel"`
		ClientName    string  `json:"client_name"`
		Phone         string  `json:"phone"`
		NextDueDate   string  `json:"next_due_date"`
		NextDueAmount float64 `json:"next_due_amount"`
		OverdueAmount float64 `json:"overdue_amount"`
		TotalPaid     float64 `json:"total_paid"`
		Remaining     float64 `json:"remaining"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	scenario, tone, channel := draft.Scenario(req.Scenario), draft.Tone(req.Tone), draft.Channel(req.Channel)
	if !scenario.Valid() || !tone.Valid() || !channel.Valid() {
		writeError(w, http.StatusBadRequest, "unknown scenario, tone or channel")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Draft(draft.Input{
		Scenario:      scenario,
		Tone:          tone,
		Channel:       channel,
		ClientName:    req.ClientName,
		Phone:         req.Phone,
		NextDueDate:   parseDate(req.NextDueDate),
		NextDueAmount: req.NextDueAmount,
		OverdueAmount: req.OverdueAmount,
		TotalPaid:     req.TotalPaid,
		Remaining:     req.Remaining,
	}))
}
