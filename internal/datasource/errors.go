package datasource

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

// ErrorKind classifies a store failure
type ErrorKind string

const (
	ErrorTimeout      ErrorKind = "timeout"
	ErrorSyntax       ErrorKind = "syntax"
	ErrorPermission   ErrorKind = "permission"
	ErrorConnectivity ErrorKind = "connectivity"
	ErrorUnknown      ErrorKind = "unknown"
)

// StoreError is a structured failure of the remote store
type StoreError struct {
	Kind ErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline expiry
func (e *StoreError) Timeout() bool {
	return e.Kind == ErrorTimeout
}

// Classify maps an error from the BigQuery SDK onto a StoreError. Errors that
// already are StoreErrors are returned unchanged.
func Classify(err error) *StoreError {
	if err == nil {
		return nil
	}

	var se *StoreError
	if errors.As(err, &se) {
		return se
	}

	return &StoreError{Kind: classifyKind(err), Err: err}
}

func classifyKind(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrorConnectivity
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusBadRequest || gerr.Code == http.StatusNotFound:
			return ErrorSyntax
		case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden:
			return ErrorPermission
		case gerr.Code == http.StatusRequestTimeout || gerr.Code == http.StatusGatewayTimeout:
			return ErrorTimeout
		case gerr.Code >= 500 || gerr.Code == http.StatusTooManyRequests:
			return ErrorConnectivity
		}
	}

	var berr *bigquery.Error
	if errors.As(err, &berr) {
		switch berr.Reason {
		case "invalidQuery", "invalid", "notFound", "duplicate":
			return ErrorSyntax
		case "accessDenied", "billingNotEnabled", "quotaExceeded":
			return ErrorPermission
		case "timeout":
			return ErrorTimeout
		case "backendError", "internalError", "jobInternalError", "rateLimitExceeded", "resourceUnavailable":
			return ErrorConnectivity
		}
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return ErrorTimeout
		}
		return ErrorConnectivity
	}

	if strings.Contains(strings.ToLower(err.Error()), "connection refused") {
		return ErrorConnectivity
	}

	return ErrorUnknown
}
