package handler

import (
	"net/http"
	"strconv"
	"time"

	"finance-tracker/internal/service"

	"github.com/gorilla/mux"
)

type budgetRequest struct {
	Category *string  `json:"category"`
	Limit    *float64 `json:"limit"`
	Month    *int     `json:"month"`
	Year     *int     `json:"year"`
}

// CreateBudget handles POST /api/budgets
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req budgetRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	var in service.BudgetInput
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Limit != nil {
		in.Limit = *req.Limit
	}
	if req.Month != nil {
		in.Month = *req.Month
	}
	if req.Year != nil {
		in.Year = *req.Year
	}

	budget, err := h.svc.CreateBudget(r.Context(), userID, in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, budget)
}

// ListBudgets handles GET /api/budgets
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	month, year := monthYearQuery(r)
	budgets, err := h.svc.ListBudgets(r.Context(), userID, month, year)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, budgets)
}

// BudgetProgress handles GET /api/budgets/progress
func (h *Handler) BudgetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	month, year := monthYearQuery(r)
	progress, err := h.svc.BudgetProgress(r.Context(), userID, month, year)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, progress)
}

// GetBudget handles GET /api/budgets/{id}
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	budget, err := h.svc.GetBudget(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, budget)
}

// UpdateBudget handles PUT /api/budgets/{id}
func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req budgetRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	upd := service.BudgetUpdate{
		Category: req.Category,
		Limit:    req.Limit,
		Month:    req.Month,
		Year:     req.Year,
	}

	budget, err := h.svc.UpdateBudget(r.Context(), userID, mux.Vars(r)["id"], upd)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, budget)
}

// DeleteBudget handles DELETE /api/budgets/{id}
func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteBudget(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Budget deleted successfully"})
}

// monthYearQuery reads the month and year parameters, defaulting to the
// current month.
func monthYearQuery(r *http.Request) (int, int) {
	now := time.Now().UTC()
	month, year := int(now.Month()), now.Year()

	if m, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil && m >= 1 && m <= 12 {
		month = m
	}
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y > 0 {
		year = y
	}
	return month, year
}
