package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorClass is the closed classification of remote failures. It is
// assigned exactly once, here at the network boundary; the engine branches
// on the class and never inspects raw codes or messages.
type ErrorClass string

const (
	// ClassUniqueViolation: the idempotency key was already recorded. The
	// mutation is known to have been applied, so callers treat this as
	// success.
	ClassUniqueViolation ErrorClass = "unique_violation"
	// ClassIdempotencyConflict: a dedicated already-processed signal some
	// backends emit instead of a raw duplicate-key error. Semantically
	// identical to ClassUniqueViolation.
	ClassIdempotencyConflict ErrorClass = "idempotency_conflict"
	// ClassBusiness: a domain rule rejected the mutation (insufficient
	// stock, inactive account, permission denied). Needs human review.
	ClassBusiness ErrorClass = "business"
	// ClassUnauthorized: credentials missing or expired.
	ClassUnauthorized ErrorClass = "unauthorized"
	// ClassUnreachable: the request never produced a service-level answer.
	ClassUnreachable ErrorClass = "unreachable"
)

// APIError is a classified remote failure.
type APIError struct {
	Class   ErrorClass
	Code    string // raw machine code from the server, for logs only
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// AlreadyApplied reports whether the error means the mutation was applied
// in an earlier attempt whose response was lost.
func (e *APIError) AlreadyApplied() bool {
	return e.Class == ClassUniqueViolation || e.Class == ClassIdempotencyConflict
}

// Classify extracts the ErrorClass from any error returned by this package.
// Unrecognized errors classify as unreachable: they came from transport,
// not from the service.
func Classify(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class
	}
	return ClassUnreachable
}

// errorBody is the standard error envelope from the server.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// duplicateCodes are the server codes that mean "this idempotency key was
// already applied". Postgres unique_violation (23505) is the primary
// signal; idempotency_conflict covers backends with a dedicated code.
var duplicateCodes = map[string]ErrorClass{
	"23505":                ClassUniqueViolation,
	"unique_violation":     ClassUniqueViolation,
	"duplicate_key":        ClassUniqueViolation,
	"idempotency_conflict": ClassIdempotencyConflict,
	"already_processed":    ClassIdempotencyConflict,
}

func classifyResponse(status int, body []byte) *APIError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Code == "" && eb.Message == "" {
		eb.Message = string(body)
	}

	if class, ok := duplicateCodes[eb.Code]; ok {
		return &APIError{Class: class, Code: eb.Code, Message: eb.Message}
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &APIError{Class: ClassUnauthorized, Code: eb.Code, Message: eb.Message}
	case http.StatusConflict:
		// 409 without a recognized code still means the row exists
		return &APIError{Class: ClassUniqueViolation, Code: eb.Code, Message: eb.Message}
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &APIError{Class: ClassUnreachable, Code: eb.Code, Message: eb.Message}
	default:
		return &APIError{Class: ClassBusiness, Code: eb.Code, Message: eb.Message}
	}
}
