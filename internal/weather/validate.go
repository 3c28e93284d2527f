package weather

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minCityNameLen = 2
	maxCityNameLen = 100
)

// spaceClass widens RE2's ASCII-only \s to the Unicode spaces browsers treat
// as whitespace, NBSP included.
const spaceClass = `\s\p{Zs}\x{2028}\x{2029}\x{FEFF}`

var (
	cityNamePattern = regexp.MustCompile(`^[A-Za-z` + spaceClass + `\-'.,]+$`)
	whitespaceRun   = regexp.MustCompile(`[` + spaceClass + `]+`)
)

// ValidationResult is the outcome of ValidateCityName.
type ValidationResult struct {
	Valid      bool   `json:"valid"`
	Normalized string `json:"normalized,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Err returns the failure as a *ValidationError, or nil when valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Message: r.Error}
}

// ValidateCityName checks raw city input before any network call is made.
// The first failing rule determines the error message.
func ValidateCityName(raw string) ValidationResult {
	if raw == "" {
		return ValidationResult{Error: "City name is required"}
	}

	trimmed := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n == 0:
		return ValidationResult{Error: "City name cannot be empty"}
	case n < minCityNameLen:
		return ValidationResult{Error: "City name must be at least 2 characters long"}
	case n > maxCityNameLen:
		return ValidationResult{Error: "City name is too long"}
	}

	if !cityNamePattern.MatchString(trimmed) {
		return ValidationResult{Error: "City name contains invalid characters"}
	}

	return ValidationResult{
		Valid:      true,
		Normalized: whitespaceRun.ReplaceAllString(trimmed, " "),
	}
}

// LookupKey is the case-folded, space-collapsed form used for cache keys
// and batch keys.
func LookupKey(city string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(city), " "))
}
