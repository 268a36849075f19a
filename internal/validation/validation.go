// Package validation checks request payloads before any write occurs and
// reports failures as field-level error lists.
package validation

import (
	"regexp"
	"strings"
	"time"

	"finance-tracker/internal/apperr"
	"finance-tracker/internal/models"
)

// Validation limits
const (
	NameMin        = 2
	NameMax        = 50
	PasswordMin    = 6
	DescriptionMin = 1
	DescriptionMax = 200
	AmountMin      = 0.01
	AmountMax      = 999999.99
	LimitMin       = 1
	YearMin        = 2020
	YearMax        = 2030
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nameRe  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// Registration validates a new-account payload.
func Registration(name, email, password string) []apperr.FieldError {
	var errs []apperr.FieldError
	errs = appendErr(errs, checkName(name))
	errs = appendErr(errs, checkEmail(email))
	if len(password) < PasswordMin {
		errs = append(errs, apperr.FieldError{Field: "password", Message: "Password must be at least 6 characters long"})
	} else if !hasLower(password) || !hasUpper(password) || !hasDigit(password) {
		errs = append(errs, apperr.FieldError{Field: "password", Message: "Password must contain at least one lowercase letter, one uppercase letter, and one number"})
	}
	return errs
}

// Login validates a credential payload.
func Login(email, password string) []apperr.FieldError {
	var errs []apperr.FieldError
	errs = appendErr(errs, checkEmail(email))
	if password == "" {
		errs = append(errs, apperr.FieldError{Field: "password", Message: "Password is required"})
	}
	return errs
}

// Transaction validates a full transaction payload. The date must fall
// within one year of now in either direction.
func Transaction(typ string, amount float64, category, description string, date time.Time) []apperr.FieldError {
	var errs []apperr.FieldError
	if !models.IsValidType(typ) {
		errs = append(errs, apperr.FieldError{Field: "type", Message: "Transaction type must be either income or expense"})
	}
	errs = appendErr(errs, checkAmount("amount", amount))
	if !models.IsValidCategory(category) {
		errs = append(errs, apperr.FieldError{Field: "category", Message: "Invalid category"})
	}
	errs = appendErr(errs, checkDescription(description))
	errs = appendErr(errs, checkDate(date))
	return errs
}

// Budget validates a budget payload.
func Budget(category string, limit float64, month, year int) []apperr.FieldError {
	var errs []apperr.FieldError
	if !models.IsValidBudgetCategory(category) {
		errs = append(errs, apperr.FieldError{Field: "category", Message: "Invalid category"})
	}
	if limit < LimitMin || limit > AmountMax {
		errs = append(errs, apperr.FieldError{Field: "limit", Message: "Budget limit must be between 1 and 999999.99"})
	}
	if month < 1 || month > 12 {
		errs = append(errs, apperr.FieldError{Field: "month", Message: "Month must be between 1 and 12"})
	}
	if year < YearMin || year > YearMax {
		errs = append(errs, apperr.FieldError{Field: "year", Message: "Year must be between 2020 and 2030"})
	}
	return errs
}

// Profile validates a profile update; nil fields are untouched.
func Profile(name, email *string) []apperr.FieldError {
	var errs []apperr.FieldError
	if name != nil {
		errs = appendErr(errs, checkName(*name))
	}
	if email != nil {
		errs = appendErr(errs, checkEmail(*email))
	}
	return errs
}

func checkName(name string) *apperr.FieldError {
	name = strings.TrimSpace(name)
	if len(name) < NameMin || len(name) > NameMax {
		return &apperr.FieldError{Field: "name", Message: "Name must be between 2 and 50 characters"}
	}
	if !nameRe.MatchString(name) {
		return &apperr.FieldError{Field: "name", Message: "Name can only contain letters and spaces"}
	}
	return nil
}

func checkEmail(email string) *apperr.FieldError {
	if !emailRe.MatchString(email) {
		return &apperr.FieldError{Field: "email", Message: "Please provide a valid email"}
	}
	return nil
}

func checkAmount(field string, amount float64) *apperr.FieldError {
	if amount < AmountMin || amount > AmountMax {
		return &apperr.FieldError{Field: field, Message: "Amount must be between 0.01 and 999999.99"}
	}
	return nil
}

func checkDescription(description string) *apperr.FieldError {
	n := len(strings.TrimSpace(description))
	if n < DescriptionMin || n > DescriptionMax {
		return &apperr.FieldError{Field: "description", Message: "Description must be between 1 and 200 characters"}
	}
	return nil
}

func checkDate(date time.Time) *apperr.FieldError {
	now := time.Now()
	if date.Before(now.AddDate(-1, 0, 0)) || date.After(now.AddDate(1, 0, 0)) {
		return &apperr.FieldError{Field: "date", Message: "Date must be within one year of current date"}
	}
	return nil
}

func appendErr(errs []apperr.FieldError, e *apperr.FieldError) []apperr.FieldError {
	if e != nil {
		errs = append(errs, *e)
	}
	return errs
}

func hasLower(s string) bool { return strings.IndexFunc(s, func(r rune) bool { return r >= 'a' && r <= 'z' }) >= 0 }
func hasUpper(s string) bool { return strings.IndexFunc(s, func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0 }
func hasDigit(s string) bool { return strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0 }
