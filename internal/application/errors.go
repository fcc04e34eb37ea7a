package application

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNetwork    ErrorKind = "network"
	KindAPI        ErrorKind = "api"
	KindBusy       ErrorKind = "busy"
	KindInternal   ErrorKind = "internal"
)

// NetworkError reports a non-2xx response from the explorer.
type NetworkError struct {
	StatusCode int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("API request failed with status %d", e.StatusCode)
}

// APIError reports an explorer envelope with a failure status.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "Failed to fetch transactions"
	}
	return e.Message
}

// KindOf maps err onto the user-facing error taxonomy.
func KindOf(err error) ErrorKind {
	var networkErr *NetworkError
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyAddress):
		return KindValidation
	case errors.Is(err, ErrFetchInFlight):
		return KindBusy
	case errors.As(err, &networkErr):
		return KindNetwork
	case errors.As(err, &apiErr):
		return KindAPI
	default:
		return KindInternal
	}
}

// Message reduces err to the text shown to the user.
func Message(err error) string {
	var networkErr *NetworkError
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &networkErr):
		return networkErr.Error()
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, ErrEmptyAddress):
		return "Please enter a valid address"
	case errors.Is(err, ErrFetchInFlight):
		return "A fetch is already in progress"
	default:
		return "Failed to fetch transaction data"
	}
}
