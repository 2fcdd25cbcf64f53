package bucket

import (
	"strconv"

	"github.com/vanderheijden86/eoview/pkg/model"
)

// Impact domain.
const (
	MinImpact = 1
	MaxImpact = 5
)

// Intensity is one of five ordered impact tokens, "impact-1" (lightest)
// through "impact-5" (darkest).
type Intensity string

// Levels returns the valid impact scores in ascending order.
func Levels() []int {
	out := make([]int, 0, MaxImpact-MinImpact+1)
	for i := MinImpact; i <= MaxImpact; i++ {
		out = append(out, i)
	}
	return out
}

// ValidImpact reports whether impact is in 1..5.
func ValidImpact(impact int) bool {
	return impact >= MinImpact && impact <= MaxImpact
}

// ImpactColorClass maps an impact score onto its intensity token.
func ImpactColorClass(impact int) (Intensity, error) {
	if !ValidImpact(impact) {
		return "", &model.FieldError{
			Field:  model.FieldImpact,
			Value:  strconv.Itoa(impact),
			Reason: "outside 1..5",
		}
	}
	return Intensity("impact-" + strconv.Itoa(impact)), nil
}

// ImpactOf returns the intensity token of r, attributing errors to r.
func ImpactOf(r model.Record) (Intensity, error) {
	in, err := ImpactColorClass(r.Impact)
	if err != nil {
		return "", attribute(err, r.ID)
	}
	return in, nil
}

// Level returns the 1..5 ordinal encoded in the token, or 0 for an invalid one.
func (in Intensity) Level() int {
	const prefix = "impact-"
	s := string(in)
	if len(s) != len(prefix)+1 || s[:len(prefix)] != prefix {
		return 0
	}
	n := int(s[len(prefix)] - '0')
	if !ValidImpact(n) {
		return 0
	}
	return n
}
