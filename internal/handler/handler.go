// Package handler exposes the HTTP JSON API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"finance-tracker/internal/apperr"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/service"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler serves the HTTP API
type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

// NewHandler creates a new handler
func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// errorResponse is the JSON shape of every error reply.
type errorResponse struct {
	Message string             `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			h.log.Errorf("Failed to encode response: %v", err)
		}
	}
}

// respondError maps an application error onto its HTTP status. Internal
// detail is logged, never sent to the caller.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal(err)
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		h.log.Errorf("Request failed: %v", appErr)
	}

	h.respondJSON(w, status, errorResponse{Message: appErr.Message, Errors: appErr.Fields})
}

// userID resolves the authenticated caller; a miss means the route was
// wired outside the auth middleware.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		h.respondError(w, apperr.Unauthorized("Authorization token required"))
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondError(w, apperr.Validation(apperr.FieldError{Field: "body", Message: "Invalid request body"}))
		return false
	}
	return true
}
