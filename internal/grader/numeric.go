package grader

import (
	"math"
	"strconv"
	"strings"

	"github.com/stellarlinkco/mathbench/internal/dataset"
)

const (
	relTolerance = 1e-3
	absTolerance = 1e-6
)

// numericEqual applies the relative tolerance, switching to an absolute
// tolerance when the expected value sits near zero.
func numericEqual(got, want float64) bool {
	if math.IsNaN(got) || math.IsNaN(want) {
		return false
	}
	if math.Abs(want) < absTolerance {
		return math.Abs(got-want) <= absTolerance
	}
	return math.Abs(got-want)/math.Abs(want) <= relTolerance
}

// parseQuantity reads the first number in s, with fraction notation and,
// for physics, a trailing unit whose SI prefix scales the magnitude.
func parseQuantity(s string, subject dataset.Subject) (float64, bool) {
	s = normalizeNumberText(s)
	if s == "" {
		return 0, false
	}

	if v, ok := parseFraction(s); ok {
		return v, true
	}

	loc := numberRe.FindStringIndex(s)
	if loc == nil {
		return 0, false
	}

	v, err := strconv.ParseFloat(s[loc[0]:loc[1]], 64)
	if err != nil {
		return 0, false
	}

	rest := strings.TrimSpace(s[loc[1]:])
	if rest == "" {
		return v, true
	}

	if subject == dataset.SubjectPhysics {
		if mult, ok := unitMultiplier(rest); ok {
			return v * mult, true
		}
	}

	// Trailing non-unit text after the number: "3 or 4" is not a single
	// quantity, but "3 apples" still reads as 3.
	if strings.ContainsAny(rest, "0123456789") {
		return 0, false
	}
	return v, true
}

func normalizeNumberText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "\\%", "")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, "≈", "")
	s = strings.ReplaceAll(s, "~", "")
	return strings.TrimSpace(s)
}

// parseFraction handles "a/b" where both sides are plain numbers.
func parseFraction(s string) (float64, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	den, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}
