package app

import (
	"fmt"
	"net/http"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Every engine failure is a typed, recoverable outcome scoped to a single
// aggregate operation; none of these leaves partial state behind.

func validationError(message string) *DomainError {
	return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, nil)
}

func invalidStateError(message string, details any) *DomainError {
	return domainError(http.StatusConflict, "INVALID_STATE", message, details)
}

func insufficientMaturityError(score int) *DomainError {
	return domainError(http.StatusConflict, "INSUFFICIENT_MATURITY",
		"Fragment needs more community input before promotion", map[string]any{
			"maturityScore": score,
			"requiredScore": 40,
		})
}

func alreadyPromotedError(ideaID string) *DomainError {
	return domainError(http.StatusConflict, "ALREADY_PROMOTED",
		"Fragment has already been promoted", map[string]any{
			"ideaId": ideaID,
		})
}

func conflictError() *DomainError {
	return domainError(http.StatusConflict, "CONCURRENCY_CONFLICT",
		"The record changed while the request was in flight; retry against the latest state", nil)
}
