// Package model holds the core domain records shared across pipelines.
package model

// Property is one row of the Properties registry: a managed building with
// its per-property financial rates. Loaded once per run and immutable for
// the run's duration.
type Property struct {
	// Name is the canonical property name, also used as the report sheet title.
	Name string
	// KeyPattern is a comma-separated token list used to match free-text
	// property names from external sources. Any token found as a substring
	// (case-insensitive, in order) counts as a match.
	KeyPattern string
	// MarkupRate is multiplied into debits flagged as markup-included.
	MarkupRate float64
	// AdminFeeRate is the per-credit component of the monthly admin fee.
	AdminFeeRate float64
	// AirbnbFeeRate is the management cut of Airbnb income.
	AirbnbFeeRate float64
	// HasAirbnb controls whether the report carries an Airbnb block.
	HasAirbnb bool
	// AdminFeeOverride, when set, replaces the computed monthly admin fee
	// with a flat amount.
	AdminFeeOverride *float64
}
