package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/couchcryptid/rainfall-intel/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const maxRequestBody = 1 << 20

// RainfallService is the query and prediction surface served over HTTP.
type RainfallService interface {
	States() []string
	Districts(state string) ([]string, error)
	Years() []int
	Summary(state, district string) (domain.Summary, error)
	PredictMonthly(ctx context.Context, req domain.PredictionRequest) (domain.PredictionResult, error)
	PredictLocationYear(ctx context.Context, loc domain.LocationYear) (domain.LocationPrediction, error)
	ClassifyLocationYear(ctx context.Context, loc domain.LocationYear) (string, error)
}

type apiHandler struct {
	svc    RainfallService
	logger *slog.Logger
}

func (h *apiHandler) listStates(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"states": h.svc.States()})
}

func (h *apiHandler) listDistricts(w http.ResponseWriter, r *http.Request) {
	state := r.PathValue("state")
	districts, err := h.svc.Districts(state)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"state": state, "districts": districts})
}

func (h *apiHandler) listYears(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"years": h.svc.Years()})
}

func (h *apiHandler) summary(w http.ResponseWriter, r *http.Request) {
	state := strings.TrimSpace(r.URL.Query().Get("state"))
	district := strings.TrimSpace(r.URL.Query().Get("district"))
	if state == "" || district == "" {
		writeMessage(w, http.StatusBadRequest, "state and district query parameters are required")
		return
	}

	s, err := h.svc.Summary(state, district)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s)
}

// predict serves POST /v1/predictions. With ?format=csv the response is the
// downloadable one-row record instead of JSON.
func (h *apiHandler) predict(w http.ResponseWriter, r *http.Request) {
	var req domain.PredictionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.svc.PredictMonthly(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", domain.CSVFilename(result.District)))
		w.WriteHeader(http.StatusOK)
		if err := domain.WriteCSV(w, result); err != nil {
			h.logger.Error("write csv response", "error", err)
		}
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

func (h *apiHandler) predictLocation(w http.ResponseWriter, r *http.Request) {
	var loc domain.LocationYear
	if !decodeBody(w, r, &loc) {
		return
	}

	out, err := h.svc.PredictLocationYear(r.Context(), loc)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (h *apiHandler) classifyLocation(w http.ResponseWriter, r *http.Request) {
	var loc domain.LocationYear
	if !decodeBody(w, r, &loc) {
		return
	}

	label, err := h.svc.ClassifyLocationYear(r.Context(), loc)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"state":     loc.State,
		"district":  loc.District,
		"year":      loc.Year,
		"condition": label,
	})
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func (h *apiHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		h.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeMessage(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownLocation):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyRecordSet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrPredictionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
