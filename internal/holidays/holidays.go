package holidays

import "time"

// Category labels attached to resolved holidays. The calendar model filters
// on these; the taxonomy itself belongs to the provider.
const (
	CategoryPublic     = "public"
	CategoryBank       = "bank"
	CategoryReligious  = "religious"
	CategoryObservance = "observance"
)

// Holiday is one resolved holiday occurrence for a given year.
type Holiday struct {
	Date     time.Time
	Name     string
	Category string
}

// Provider resolves the holidays observed in a country (and optional
// subdivision) for a year.
type Provider interface {
	// Lookup returns all holiday occurrences for the triple. The subdivision
	// code may be empty. Implementations return an error when the country is
	// unknown; callers are expected to degrade rather than fail.
	Lookup(year int, countryCode, subdivisionCode string) ([]Holiday, error)
}
