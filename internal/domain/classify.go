package domain

// Category is a discrete rainfall severity bucket.
type Category string

const (
	CategoryLow      Category = "Low"
	CategoryModerate Category = "Moderate"
	CategoryHeavy    Category = "Heavy"
)

// Category thresholds in millimetres. Lower bounds are inclusive.
const (
	ModerateThresholdMM = 500.0
	HeavyThresholdMM    = 1500.0
)

// Classify maps a rainfall amount to its category. It is total: negative
// values (which a model may emit) classify as Low.
func Classify(mm float64) Category {
	switch {
	case mm < ModerateThresholdMM:
		return CategoryLow
	case mm < HeavyThresholdMM:
		return CategoryModerate
	default:
		return CategoryHeavy
	}
}
