// Package coerce converts raw CSV cells into typed values. Every function is
// total: failures yield nil, never an error.
package coerce

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"lcaload/internal/domain"
)

// DateLayout is the calendar representation of coerced dates.
const DateLayout = "2006-01-02"

// sentinel is the upstream marker for "not available".
const sentinel = "NA"

func blank(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	return s, s == "" || s == sentinel
}

// Date parses raw with a permissive parser and returns it as YYYY-MM-DD in UTC.
func Date(raw string) *string {
	s, isBlank := blank(raw)
	if isBlank {
		return nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	out := t.UTC().Format(DateLayout)
	return &out
}

// Number strips currency symbols and thousands separators before parsing.
func Number(raw string) *float64 {
	s, isBlank := blank(raw)
	if isBlank {
		return nil
	}
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Bool is true for Y, YES or 1 (any case) and nil for blank or NA. Every
// other value, including TRUE and T, is false.
func Bool(raw string) *bool {
	s, isBlank := blank(raw)
	if isBlank {
		return nil
	}
	var v bool
	switch strings.ToUpper(s) {
	case "Y", "YES", "1":
		v = true
	}
	return &v
}

// String trims raw; blank becomes nil. NA is kept as text.
func String(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// Value coerces raw for a field kind and unwraps the result, so a missing
// value is an untyped nil suitable for a NULL parameter.
func Value(kind domain.FieldKind, raw string) any {
	switch kind {
	case domain.FieldDate:
		if v := Date(raw); v != nil {
			return *v
		}
	case domain.FieldNumber:
		if v := Number(raw); v != nil {
			return *v
		}
	case domain.FieldBool:
		if v := Bool(raw); v != nil {
			return *v
		}
	default:
		if v := String(raw); v != nil {
			return *v
		}
	}
	return nil
}

// Annualize converts an hourly wage to a 2080-hour annual wage, rounded to cents.
func Annualize(hourly float64) float64 {
	return math.Round(hourly*2080*100) / 100
}
