package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownLocation reports a state with no districts or a district
	// that does not belong to the selected state.
	ErrUnknownLocation = errors.New("unknown location")
	// ErrEmptyRecordSet reports an aggregation over zero usable records.
	ErrEmptyRecordSet = errors.New("empty record set")
	// ErrInvalidRange reports an input value outside its accepted bounds.
	ErrInvalidRange = errors.New("invalid range")
	// ErrModelUnavailable reports a predictor that could not be loaded or reached.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrPredictionFailed reports a predictor invocation that returned an error.
	ErrPredictionFailed = errors.New("prediction failed")
)

// LocationError names the state/district selection that could not be resolved.
type LocationError struct {
	State    string
	District string
}

func (e *LocationError) Error() string {
	if e.District == "" {
		return fmt.Sprintf("%s: state %q has no districts", ErrUnknownLocation, e.State)
	}
	return fmt.Sprintf("%s: district %q not found in state %q", ErrUnknownLocation, e.District, e.State)
}

func (e *LocationError) Unwrap() error { return ErrUnknownLocation }

// RangeError names the input field that failed validation.
type RangeError struct {
	Field     string
	Value     float64
	Min       float64
	Max       float64
	Missing   bool
	Duplicate bool
}

func (e *RangeError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s: %s is required", ErrInvalidRange, e.Field)
	}
	if e.Duplicate {
		return fmt.Sprintf("%s: %s given more than once", ErrInvalidRange, e.Field)
	}
	return fmt.Sprintf("%s: %s=%g outside [%g, %g]", ErrInvalidRange, e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }
