package preprocessing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/YuminosukeSato/trackfeat/core/model"
	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

func init() {
	model.RegisterState(&FrequencyTable{})
}

// FrequencyTable is the fitted state of a FrequencyEncoder: how many times each
// label occurred in the training column.
type FrequencyTable struct {
	Column string
	Counts map[string]float64
}

// Count returns the frequency of label and whether it was seen during Fit.
func (f *FrequencyTable) Count(label string) (float64, bool) {
	c, ok := f.Counts[label]
	return c, ok
}

// Labels returns the seen labels in sorted order.
func (f *FrequencyTable) Labels() []string {
	labels := make([]string, 0, len(f.Counts))
	for l := range f.Counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// FrequencyEncoder replaces a categorical column by how common its labels were
// in the training data.
//
// With a non-empty Delimiter each cell is a list of labels (several artists on
// one track) whose frequencies are reduced by Strategy. With an empty Delimiter
// each cell is a single label. Labels unseen at Fit time count as Default.
// Missing cells stay missing.
type FrequencyEncoder struct {
	Column    string
	Delimiter string
	Strategy  Strategy
	Default   float64
	TrimSpace bool
}

// FrequencyOption configures a FrequencyEncoder.
type FrequencyOption func(*FrequencyEncoder)

// WithDelimiter sets the list delimiter; "" disables splitting.
func WithDelimiter(d string) FrequencyOption {
	return func(e *FrequencyEncoder) { e.Delimiter = d }
}

// WithStrategy sets the reduction for multi-label cells (max or sum).
func WithStrategy(s Strategy) FrequencyOption {
	return func(e *FrequencyEncoder) { e.Strategy = s }
}

// WithDefault sets the value used for unseen labels.
func WithDefault(v float64) FrequencyOption {
	return func(e *FrequencyEncoder) { e.Default = v }
}

// WithTrimSpace trims whitespace around each label after splitting.
func WithTrimSpace() FrequencyOption {
	return func(e *FrequencyEncoder) { e.TrimSpace = true }
}

// NewFrequencyEncoder creates a multi-valued encoder: delimiter ",", strategy max, default 0.
func NewFrequencyEncoder(column string, opts ...FrequencyOption) *FrequencyEncoder {
	e := &FrequencyEncoder{
		Column:    column,
		Delimiter: ",",
		Strategy:  StrategyMax,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewLabelFrequencyEncoder creates a single-valued encoder, one label per cell.
func NewLabelFrequencyEncoder(column string, opts ...FrequencyOption) *FrequencyEncoder {
	return NewFrequencyEncoder(column, append([]FrequencyOption{WithDelimiter("")}, opts...)...)
}

func (e *FrequencyEncoder) labels(v frame.Value) []string {
	raw := v.String()
	if e.Delimiter == "" {
		return []string{raw}
	}
	parts := strings.Split(raw, e.Delimiter)
	if e.TrimSpace {
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
	}
	return parts
}

// Fit counts every label of the column and returns a *FrequencyTable.
func (e *FrequencyEncoder) Fit(t *frame.Table) (model.State, error) {
	if err := validateStrategy(e.Strategy, StrategyMax, StrategySum); err != nil {
		return nil, err
	}
	col, ok := t.Column(e.Column)
	if !ok {
		return nil, errors.NewColumnNotFoundError("FrequencyEncoder.Fit", e.Column)
	}
	counts := make(map[string]float64)
	for _, v := range col.Values {
		if v.IsNull() {
			continue
		}
		for _, label := range e.labels(v) {
			counts[label]++
		}
	}
	return &FrequencyTable{Column: e.Column, Counts: counts}, nil
}

// Transform replaces the column with the reduced label frequencies.
func (e *FrequencyEncoder) Transform(t *frame.Table, state model.State) (*frame.Table, error) {
	if state == nil {
		return nil, errors.NewNotFittedError("FrequencyEncoder", "Transform")
	}
	freqs, ok := state.(*FrequencyTable)
	if !ok {
		return nil, errors.NewValueError("FrequencyEncoder.Transform", fmt.Sprintf("unexpected state type %T", state))
	}
	col, ok := t.Column(e.Column)
	if !ok {
		return nil, errors.NewColumnNotFoundError("FrequencyEncoder.Transform", e.Column)
	}

	buf := make([]float64, 0, 4)
	for i, v := range col.Values {
		if v.IsNull() {
			continue
		}
		buf = buf[:0]
		for _, label := range e.labels(v) {
			c, seen := freqs.Counts[label]
			if !seen {
				c = e.Default
			}
			buf = append(buf, c)
		}
		col.Values[i] = frame.Number(e.Strategy.reduce(buf))
	}
	return t.With(col)
}

// String returns the encoder description.
func (e *FrequencyEncoder) String() string {
	return fmt.Sprintf("FrequencyEncoder(column=%s, delimiter=%q, strategy=%s, default=%g)",
		e.Column, e.Delimiter, e.Strategy, e.Default)
}
