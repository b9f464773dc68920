// Package domain models district-level rainfall data and the feature pipeline
// that feeds the rainfall prediction models.
//
// # Data Source
//
// Records come from tabular rainfall datasets keyed by an Indian state/union
// territory and a district. Two layouts are in circulation:
//
//	Monthly layout:   STATE/UT, DISTRICT, JAN..DEC, [JAN-FEB, MAR-MAY, JUN-SEP, OCT-DEC], [ANNUAL]
//	Year-wise layout: STATE/UT, DISTRICT, YEAR, RAINFALL (MM), [WEATHER CONDITION]
//
// Headers are case-insensitive; the dataset package upper-cases them before
// lookup. Wide per-year columns ("2015", "2016", ...) are also accepted and land
// in [RainfallRecord.Yearly]. All rainfall values are millimetres.
//
// # Location Hierarchy
//
// A [LocationIndex] is built once from the full record set and is read-only
// afterwards. A district observed under two states is not reconciled: the last
// record wins for [LocationIndex.StateOf] and the clash is reported by
// [LocationIndex.Conflicts].
//
// # Feature Vector
//
// The rainfall regressor consumes exactly 16 values in a fixed order:
//
//	JAN FEB MAR APR MAY JUN JUL AUG SEP OCT NOV DEC  Jan-Feb Mar-May Jun-Sep Oct-Dec
//
// Monthly inputs are accepted in [0, 2000] mm, seasonal totals in [0, 4000] mm.
// Seasonal totals are either derived from the months ([DeriveSeasonal]) or
// supplied by the caller. Derived values only replace caller-supplied ones when
// the caller explicitly asks for it ([ResolveSeasonal] with autoFill).
//
// # Category Thresholds
//
// Predicted rainfall is bucketed into three categories:
//
//	Low:      < 500 mm
//	Moderate: 500 mm to < 1500 mm
//	Heavy:    >= 1500 mm
package domain
