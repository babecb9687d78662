package contracts

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies gateway failures
type ErrorKind string

const (
	KindNetwork          ErrorKind = "network"
	KindServer           ErrorKind = "server"
	KindModelUnavailable ErrorKind = "model_unavailable"
)

// Default human-readable messages
const (
	MsgNetworkError     = "Network error - please check your connection"
	MsgServerError      = "API request failed"
	MsgModelUnavailable = "Prediction not available"
)

// GatewayError is the uniform error shape of every Gateway implementation.
// Error() returns Message verbatim so it can be shown to the user as-is.
type GatewayError struct {
	Kind       ErrorKind
	Op         string // list_companies, get_history, ...
	StatusCode int    // 0 when no response was received
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a transport failure or timeout
func NewNetworkError(op string, err error) *GatewayError {
	return &GatewayError{Kind: KindNetwork, Op: op, Message: MsgNetworkError, Err: err}
}

// NewServerError builds an error from a backend response
func NewServerError(op string, status int, detail string) *GatewayError {
	if detail == "" {
		detail = MsgServerError
	}
	return &GatewayError{Kind: KindServer, Op: op, StatusCode: status, Message: detail}
}

// NewModelUnavailableError marks a forecast the model could not produce
func NewModelUnavailableError(op string, status int, detail string) *GatewayError {
	if detail == "" {
		detail = MsgModelUnavailable
	}
	return &GatewayError{Kind: KindModelUnavailable, Op: op, StatusCode: status, Message: detail}
}

// AsGatewayError normalizes any error into a *GatewayError. Context deadline
// and cancellation become network errors; unknown errors become server errors.
func AsGatewayError(op string, err error) *GatewayError {
	if err == nil {
		return nil
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewNetworkError(op, err)
	}
	return &GatewayError{Kind: KindServer, Op: op, Message: MsgServerError, Err: err}
}

// IsKind reports whether err is a GatewayError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr) && gwErr.Kind == kind
}

// CatalogLoadError is fatal to the initial display: no selection is possible
type CatalogLoadError struct {
	Err error
}

func (e *CatalogLoadError) Error() string {
	return fmt.Sprintf("load company catalog: %v", e.Err)
}

func (e *CatalogLoadError) Unwrap() error {
	return e.Err
}

// RequiredDataError fails one selection load. Error() is the message of the
// first failing fetch, verbatim.
type RequiredDataError struct {
	Symbol string
	Err    error
}

func (e *RequiredDataError) Error() string {
	return e.Err.Error()
}

func (e *RequiredDataError) Unwrap() error {
	return e.Err
}
