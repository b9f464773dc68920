package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.LocationError{State: "Goa", District: "Pune"}, http.StatusNotFound},
		{&domain.RangeError{Field: "JAN", Value: -1, Max: 2000}, http.StatusBadRequest},
		{fmt.Errorf("summary: %w", domain.ErrEmptyRecordSet), http.StatusUnprocessableEntity},
		{domain.ErrModelUnavailable, http.StatusServiceUnavailable},
		{domain.ErrPredictionFailed, http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
