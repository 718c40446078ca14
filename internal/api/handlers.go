package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/model"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/repository"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/service"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}

// writeError maps domain errors onto status codes. Outages are 503 so that
// clients can tell them apart from rejected requests.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrUnavailable):
		log.Printf("ERROR: Store unavailable on %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrAlreadyExists):
		http.Error(w, "already exists", http.StatusConflict)
	case errors.Is(err, service.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrShapeMismatch):
		log.Printf("ERROR: Malformed data on %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "malformed data in store", http.StatusInternalServerError)
	default:
		log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// parseOptionalDate accepts an empty string as "not given".
func parseOptionalDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	d := model.ParseDate(s)
	return d, d != nil
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.Register(r.Context(), req.Username, req.Password, req.FullName); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	fullName, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrNotFound) {
		log.Printf("INFO: Failed login for %s", req.Username)
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := h.sessions.Create(req.Username, fullName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.tokens.Issue(sess)
	if err != nil {
		h.sessions.Destroy(sess.ID)
		writeError(w, r, err)
		return
	}
	log.Printf("INFO: Successful login - User: %s", req.Username)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"full_name":  fullName,
		"expires_at": sess.ExpiresAt,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(sessionFrom(r.Context()).ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.ListUserTransactions(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *Handler) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.TransactionHistory(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date     string          `json:"date"`
		Type     string          `json:"type"`
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Note     string          `json:"note"`
	}
	if !decode(w, r, &req) {
		return
	}
	date, ok := parseOptionalDate(req.Date)
	if !ok {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	tx, err := h.service.RecordTransaction(r.Context(), sessionFrom(r.Context()), service.TransactionInput{
		Date:     date,
		Type:     req.Type,
		Category: req.Category,
		Amount:   req.Amount,
		Note:     req.Note,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	reportType, err := service.ParseReportType(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := h.service.Summary(r.Context(), sessionFrom(r.Context()), reportType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// SummaryChart renders the summary as PNG. kind is bar (default), pie or
// comparison. A period without data yields 204.
func (h *Handler) SummaryChart(w http.ResponseWriter, r *http.Request) {
	reportType, err := service.ParseReportType(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := h.service.Summary(r.Context(), sessionFrom(r.Context()), reportType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var png []byte
	switch kind := r.URL.Query().Get("kind"); kind {
	case "", "bar":
		png, err = h.charts.GenerateExpenseChart(summary)
	case "pie":
		png, err = h.charts.GenerateCategoryPieChart(summary, true)
	case "comparison":
		png, err = h.charts.GenerateComparisonChart(summary)
	default:
		http.Error(w, "unknown chart kind", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.service.ListUserGoals(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string          `json:"name"`
		Target   decimal.Decimal `json:"target"`
		Deadline string          `json:"deadline"`
	}
	if !decode(w, r, &req) {
		return
	}
	deadline, ok := parseOptionalDate(req.Deadline)
	if !ok {
		http.Error(w, "deadline must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	goal, err := h.service.RecordGoal(r.Context(), sessionFrom(r.Context()), req.Name, req.Target, deadline)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := h.service.ListUserDebts(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BorrowedOn   string          `json:"borrowed_on"`
		Counterparty string          `json:"counterparty"`
		Direction    string          `json:"direction"`
		Amount       decimal.Decimal `json:"amount"`
		Status       string          `json:"status"`
		Note         string          `json:"note"`
		DueOn        string          `json:"due_on"`
	}
	if !decode(w, r, &req) {
		return
	}
	borrowed, ok := parseOptionalDate(req.BorrowedOn)
	if !ok {
		http.Error(w, "borrowed_on must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	due, ok := parseOptionalDate(req.DueOn)
	if !ok {
		http.Error(w, "due_on must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	debt, err := h.service.RecordDebt(r.Context(), sessionFrom(r.Context()), service.DebtInput{
		BorrowedOn:   borrowed,
		Counterparty: req.Counterparty,
		Direction:    req.Direction,
		Amount:       req.Amount,
		Status:       req.Status,
		Note:         req.Note,
		DueOn:        due,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, debt)
}

func (h *Handler) DebtTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.DebtTotals(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *Handler) MarkDebtPaid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Counterparty string          `json:"counterparty"`
		Amount       decimal.Decimal `json:"amount"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.MarkDebtPaid(r.Context(), sessionFrom(r.Context()), req.Counterparty, req.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": model.StatusPaid})
}
