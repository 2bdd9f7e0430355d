package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"pulseadmin/internal/catalog"
)

// Sentinel errors; match with errors.Is.
var (
	// ErrUnauthorized: the server rejected the credentials (401/403), or no
	// token was available to send.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound: the server has no such product (404).
	ErrNotFound = errors.New("not found")

	// ErrNetwork: no response was received.
	ErrNetwork = errors.New("network error")
)

// Operation names, used in errors and logs.
const (
	OpLogin  = "login"
	OpList   = "list products"
	OpGet    = "get product"
	OpCreate = "create product"
	OpUpdate = "update product"
	OpDelete = "delete product"
)

// defaultMessages is shown when the server gives no message of its own.
var defaultMessages = map[string]string{
	OpLogin:  "Login failed",
	OpList:   "Failed to fetch products",
	OpGet:    "Failed to fetch product",
	OpCreate: "Failed to create product",
	OpUpdate: "Failed to update product",
	OpDelete: "Failed to delete product",
}

// RemoteError is any non-2xx response. 401/403 match ErrUnauthorized and
// 404 matches ErrNotFound.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	RequestID  string
}

func newRemoteError(op string, status int, message, reqID string) *RemoteError {
	if message == "" {
		message = defaultMessages[op]
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &RemoteError{Op: op, StatusCode: status, Message: message, RequestID: reqID}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.StatusCode)
}

func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// NetworkError means the request never produced a usable response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// UserMessage is the single human-readable text for err shown by every page.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var remote *RemoteError
	var network *NetworkError
	var invalid *catalog.ValidationError

	switch {
	case errors.As(err, &remote):
		return remote.Message
	case errors.As(err, &invalid):
		return invalid.Error()
	case errors.Is(err, ErrUnauthorized):
		return "You are not signed in. Please log in again."
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond"
	case errors.As(err, &network):
		return "Cannot reach the server. Check your connection and try again."
	default:
		return err.Error()
	}
}
