package preprocessing

import (
	"github.com/YuminosukeSato/trackfeat/core/model"
	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

// NullConverter rewrites a sentinel cell value to a replacement (missing by
// default) in a fixed set of columns. It has no fitted state.
//
// Configured columns that are absent from the table are skipped with a
// MissingColumnWarning unless Strict is set, in which case they are an error.
type NullConverter struct {
	Columns     []string
	InputValue  frame.Value
	OutputValue frame.Value
	Strict      bool
}

// NullOption configures a NullConverter.
type NullOption func(*NullConverter)

// WithInputValue sets the sentinel to replace. Default: -1.
func WithInputValue(v frame.Value) NullOption {
	return func(c *NullConverter) { c.InputValue = v }
}

// WithOutputValue sets the replacement. Default: missing.
func WithOutputValue(v frame.Value) NullOption {
	return func(c *NullConverter) { c.OutputValue = v }
}

// WithStrictColumns makes absent configured columns an error.
func WithStrictColumns() NullOption {
	return func(c *NullConverter) { c.Strict = true }
}

// NewNullConverter creates a converter for columns.
func NewNullConverter(columns []string, opts ...NullOption) *NullConverter {
	c := &NullConverter{
		Columns:     append([]string(nil), columns...),
		InputValue:  frame.Int(-1),
		OutputValue: frame.Null(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fit checks the configured columns in strict mode and returns no state.
func (c *NullConverter) Fit(t *frame.Table) (model.State, error) {
	return nil, c.checkColumns(t, "NullConverter.Fit")
}

// Transform returns a copy of t with the sentinel replaced in the configured columns.
func (c *NullConverter) Transform(t *frame.Table, _ model.State) (*frame.Table, error) {
	if err := c.checkColumns(t, "NullConverter.Transform"); err != nil {
		return nil, err
	}
	out := t
	for _, name := range c.Columns {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		for i, v := range col.Values {
			if v.Equal(c.InputValue) {
				col.Values[i] = c.OutputValue
			}
		}
		next, err := out.With(col)
		if err != nil {
			return nil, err
		}
		out = next
	}
	if out == t {
		out = t.Clone()
	}
	return out, nil
}

func (c *NullConverter) checkColumns(t *frame.Table, op string) error {
	for _, name := range c.Columns {
		if t.Has(name) {
			continue
		}
		if c.Strict {
			return errors.NewColumnNotFoundError(op, name)
		}
		errors.Warn(errors.NewMissingColumnWarning(op, name))
	}
	return nil
}

// String returns the converter description.
func (c *NullConverter) String() string {
	return "NullConverter(input_value=" + c.InputValue.String() + ", output_value=" + c.OutputValue.String() + ")"
}
