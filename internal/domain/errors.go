package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrEntryNotFound indicates the requested library entry does not exist
	ErrEntryNotFound = errors.New("library entry not found")

	// ErrServerOffline indicates the backend is unreachable
	ErrServerOffline = errors.New("backend is unreachable")

	// ErrNotASeries indicates an episode operation on a movie entry
	ErrNotASeries = errors.New("entry is not a series")
)

// ErrorKind classifies failures for display and recovery
type ErrorKind int

const (
	NetworkError ErrorKind = iota
	ValidationErrorKind
	ServerErrorKind
	StaleResponse
)

// String returns a human-readable representation of the error kind
func (k ErrorKind) String() string {
	switch k {
	case NetworkError:
		return "Network"
	case ValidationErrorKind:
		return "Validation"
	case ServerErrorKind:
		return "Server"
	case StaleResponse:
		return "Stale"
	default:
		return "Unknown"
	}
}

// ServerError is a non-2xx response from the backend
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d", e.Status)
	}
	return e.Message
}

// ValidationError is raised locally before a request is issued
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrorInfo is the display form of a failure
type ErrorInfo struct {
	Kind      ErrorKind
	Message   string
	RetryHint string // Optional suggestion shown next to the message
}

func (e ErrorInfo) Error() string {
	return e.Message
}

// ErrorInfoFrom classifies err into an ErrorInfo
func ErrorInfoFrom(err error) ErrorInfo {
	var info ErrorInfo
	if errors.As(err, &info) {
		return info
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return ErrorInfo{Kind: ValidationErrorKind, Message: valErr.Message}
	}

	var srvErr *ServerError
	if errors.As(err, &srvErr) {
		info := ErrorInfo{Kind: ServerErrorKind, Message: srvErr.Error()}
		if srvErr.Status >= 500 {
			info.RetryHint = "try again in a moment"
		}
		return info
	}

	if errors.Is(err, ErrServerOffline) {
		return ErrorInfo{Kind: NetworkError, Message: err.Error(), RetryHint: "check that the backend is running"}
	}

	return ErrorInfo{Kind: NetworkError, Message: err.Error()}
}
