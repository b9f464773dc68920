package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// exportHeader is the header row of the downloadable prediction record.
var exportHeader = []string{"District", "State", "Prediction_mm", "Category"}

// NewPredictionResult classifies a model output and stamps it with an ID and
// the current time.
func NewPredictionResult(req PredictionRequest, features FeatureVector, predictedMM float64) PredictionResult {
	return PredictionResult{
		ID:          uuid.NewString(),
		RequestID:   req.RequestID,
		State:       req.State,
		District:    req.District,
		PredictedMM: predictedMM,
		Category:    Classify(predictedMM),
		Features:    features,
		PredictedAt: clock.Now().UTC(),
	}
}

// WriteCSV writes the downloadable record: a header and one data row with the
// prediction formatted to 2 decimal places.
func WriteCSV(w io.Writer, result PredictionResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	row := []string{
		result.District,
		result.State,
		strconv.FormatFloat(result.PredictedMM, 'f', 2, 64),
		string(result.Category),
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("write export row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// CSVFilename names the exported record after the district, replacing
// anything outside [A-Za-z0-9] with an underscore.
func CSVFilename(district string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, district)
	return "rainfall_prediction_" + name + ".csv"
}
