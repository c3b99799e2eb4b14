package preprocessing

import (
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

// Strategy selects how several values in one cell are reduced to a scalar.
type Strategy string

const (
	// StrategyMax keeps the largest value.
	StrategyMax Strategy = "max"
	// StrategySum adds all values.
	StrategySum Strategy = "sum"
	// StrategyAvg takes the arithmetic mean.
	StrategyAvg Strategy = "avg"
)

// reduce applies s to a non-empty slice.
func (s Strategy) reduce(values []float64) float64 {
	switch s {
	case StrategySum:
		return floats.Sum(values)
	case StrategyAvg:
		return floats.Sum(values) / float64(len(values))
	default:
		return floats.Max(values)
	}
}

func validateStrategy(s Strategy, allowed ...Strategy) error {
	names := make([]string, len(allowed))
	for i, a := range allowed {
		if s == a {
			return nil
		}
		names[i] = string(a)
	}
	return errors.NewValidationError("strategy", "must be one of "+strings.Join(names, ", "), string(s))
}
