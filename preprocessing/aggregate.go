package preprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/trackfeat/core/model"
	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

// NumericAggregator reduces a column of integers, or delimiter-separated lists
// of integers (one per collaborating artist), to one number per row.
//
// Missing cells stay missing and numeric cells are truncated toward zero. A
// token that is not an integer fails the whole call with a ParseError.
type NumericAggregator struct {
	Column    string
	Strategy  Strategy
	Delimiter string
}

// NewNumericAggregator creates an aggregator for column using strategy (max or avg).
func NewNumericAggregator(column string, strategy Strategy) *NumericAggregator {
	return &NumericAggregator{
		Column:    column,
		Strategy:  strategy,
		Delimiter: ",",
	}
}

// Fit validates the configuration and returns no state.
func (a *NumericAggregator) Fit(*frame.Table) (model.State, error) {
	return nil, validateStrategy(a.Strategy, StrategyMax, StrategyAvg)
}

// Transform replaces the column with the reduced numbers.
func (a *NumericAggregator) Transform(t *frame.Table, _ model.State) (*frame.Table, error) {
	const op = "NumericAggregator.Transform"
	if err := validateStrategy(a.Strategy, StrategyMax, StrategyAvg); err != nil {
		return nil, err
	}
	col, ok := t.Column(a.Column)
	if !ok {
		return nil, errors.NewColumnNotFoundError(op, a.Column)
	}

	for i, v := range col.Values {
		switch v.Kind() {
		case frame.KindNull:
			continue
		case frame.KindNumber:
			f, _ := v.Float()
			col.Values[i] = frame.Number(math.Trunc(f))
			continue
		}
		raw, _ := v.Text()
		if a.Delimiter == "" || !strings.Contains(raw, a.Delimiter) {
			n, err := parseInt(raw)
			if err != nil {
				return nil, errors.NewParseError(op, a.Column, i, raw, err)
			}
			col.Values[i] = frame.Number(n)
			continue
		}
		tokens := strings.Split(raw, a.Delimiter)
		numbers := make([]float64, len(tokens))
		for j, tok := range tokens {
			n, err := parseInt(tok)
			if err != nil {
				return nil, errors.NewParseError(op, a.Column, i, tok, err)
			}
			numbers[j] = n
		}
		col.Values[i] = frame.Number(a.Strategy.reduce(numbers))
	}
	return t.With(col)
}

func parseInt(s string) (float64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return float64(n), nil
}

// String returns the aggregator description.
func (a *NumericAggregator) String() string {
	return fmt.Sprintf("NumericAggregator(column=%s, strategy=%s)", a.Column, a.Strategy)
}
