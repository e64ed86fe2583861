package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoaded is returned when a selection no longer resolves against
	// the current catalog generation.
	ErrNotLoaded = errors.New("products not loaded")
	// ErrSameProduct is returned when both comparison slots hold the same index.
	ErrSameProduct = errors.New("select two different products")
	// ErrNoPricingData is returned by the distribution aggregator on empty input.
	ErrNoPricingData = errors.New("no pricing data available")
	// ErrNoAnalysis is returned by export when no analysis has completed.
	ErrNoAnalysis = errors.New("no analysis to download")
	// ErrActionInProgress is returned when an action is triggered again
	// before its previous run finished.
	ErrActionInProgress = errors.New("action already in progress")
)

// ValidationError is a local input failure. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
