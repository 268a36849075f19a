package handler

import (
	"net/http"
	"strconv"
	"time"

	"finance-tracker/internal/apperr"
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"

	"github.com/gorilla/mux"
)

type transactionRequest struct {
	Type        *string  `json:"type"`
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

type transactionListResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Pagination   models.Pagination    `json:"pagination"`
}

// CreateTransaction handles POST /api/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	date, fieldErr := parseDateField(req.Date, true)
	if fieldErr != nil {
		h.respondError(w, apperr.Validation(*fieldErr))
		return
	}

	in := service.TransactionInput{Date: date}
	if req.Type != nil {
		in.Type = *req.Type
	}
	if req.Amount != nil {
		in.Amount = *req.Amount
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Description != nil {
		in.Description = *req.Description
	}

	txn, err := h.svc.CreateTransaction(r.Context(), userID, in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, txn)
}

// ListTransactions handles GET /api/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := models.TransactionFilter{
		Type:     q.Get("type"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}

	if start, end := q.Get("startDate"), q.Get("endDate"); start != "" && end != "" {
		startDate, err1 := parseDate(start)
		endDate, err2 := parseDate(end)
		if err1 != nil || err2 != nil || endDate.Before(startDate) {
			h.respondError(w, apperr.Validation(apperr.FieldError{Field: "startDate", Message: "Invalid date range"}))
			return
		}
		filter.StartDate = &startDate
		filter.EndDate = &endDate
	}

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	txns, pagination, err := h.svc.ListTransactions(r.Context(), userID, filter, page, limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, transactionListResponse{Transactions: txns, Pagination: pagination})
}

// GetTransaction handles GET /api/transactions/{id}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	txn, err := h.svc.GetTransaction(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, txn)
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	upd := service.TransactionUpdate{
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date != nil {
		date, fieldErr := parseDateField(req.Date, true)
		if fieldErr != nil {
			h.respondError(w, apperr.Validation(*fieldErr))
			return
		}
		upd.Date = &date
	}

	txn, err := h.svc.UpdateTransaction(r.Context(), userID, mux.Vars(r)["id"], upd)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, txn)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteTransaction(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}

// TransactionStats handles GET /api/transactions/stats
func (h *Handler) TransactionStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.TransactionStats(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func parseDateField(s *string, required bool) (time.Time, *apperr.FieldError) {
	if s == nil || *s == "" {
		if required {
			return time.Time{}, &apperr.FieldError{Field: "date", Message: "Please provide a valid date"}
		}
		return time.Time{}, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return time.Time{}, &apperr.FieldError{Field: "date", Message: "Please provide a valid date"}
	}
	return t, nil
}
