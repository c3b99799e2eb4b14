// Package compose routes disjoint column subsets of a table to their own
// encoders and concatenates the encoded blocks side by side.
//
// Columns that no assignment claims are dropped unless the transformer is
// built with RemainderPassthrough. Callers relying on a column reaching the
// output must assign it explicitly or enable passthrough.
package compose

import (
	"fmt"

	"github.com/YuminosukeSato/trackfeat/core/model"
	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

func init() {
	model.RegisterState(&ColumnState{})
}

// Remainder decides what happens to columns not claimed by any assignment.
type Remainder string

const (
	// RemainderDrop discards unclaimed columns.
	RemainderDrop Remainder = "drop"
	// RemainderPassthrough appends unclaimed columns, unchanged, after all blocks.
	RemainderPassthrough Remainder = "passthrough"
)

// Assignment binds a named set of source columns to the encoder responsible
// for them. An assignment with no columns produces no output.
type Assignment struct {
	Name    string
	Columns []string
	Encoder model.Encoder
}

// ColumnState is the fitted state of a ColumnTransformer.
type ColumnState struct {
	// States holds one encoder state per assignment, nil for empty slots.
	States []model.State
	// Passthrough lists the unclaimed columns kept by RemainderPassthrough.
	Passthrough []string
}

// ColumnTransformer applies each assignment's encoder to its columns and
// concatenates the results in declaration order.
type ColumnTransformer struct {
	Assignments []Assignment
	Remainder   Remainder
}

// Option configures a ColumnTransformer.
type Option func(*ColumnTransformer)

// WithRemainder sets the policy for unclaimed columns. Default: drop.
func WithRemainder(r Remainder) Option {
	return func(c *ColumnTransformer) { c.Remainder = r }
}

// NewColumnTransformer creates a transformer over assignments.
func NewColumnTransformer(assignments []Assignment, opts ...Option) *ColumnTransformer {
	c := &ColumnTransformer{
		Assignments: append([]Assignment(nil), assignments...),
		Remainder:   RemainderDrop,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks assignment names are unique and column sets are disjoint.
func (c *ColumnTransformer) Validate() error {
	switch c.Remainder {
	case RemainderDrop, RemainderPassthrough:
	default:
		return errors.NewValidationError("remainder", "must be drop or passthrough", string(c.Remainder))
	}
	names := make(map[string]bool, len(c.Assignments))
	owner := make(map[string]string)
	for _, a := range c.Assignments {
		if a.Name == "" {
			return errors.NewValidationError("assignment.name", "must not be empty", a.Name)
		}
		if names[a.Name] {
			return errors.NewValidationError("assignment.name", "duplicate assignment name", a.Name)
		}
		names[a.Name] = true
		if len(a.Columns) > 0 && a.Encoder == nil {
			return errors.NewValidationError("assignment.encoder", "missing encoder for "+a.Name, nil)
		}
		for _, col := range a.Columns {
			if prev, taken := owner[col]; taken {
				return errors.NewValidationError("assignment.columns",
					fmt.Sprintf("column %q claimed by both %q and %q", col, prev, a.Name), col)
			}
			owner[col] = a.Name
		}
	}
	return nil
}

// Fit fits every non-empty assignment's encoder on its own columns.
func (c *ColumnTransformer) Fit(t *frame.Table) (model.State, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	state := &ColumnState{States: make([]model.State, len(c.Assignments))}
	claimed := make(map[string]bool)
	for i, a := range c.Assignments {
		if len(a.Columns) == 0 {
			continue
		}
		sub, err := t.Select(a.Columns...)
		if err != nil {
			return nil, errors.Wrapf(err, "assignment %q", a.Name)
		}
		s, err := a.Encoder.Fit(sub)
		if err != nil {
			return nil, errors.Wrapf(err, "assignment %q", a.Name)
		}
		state.States[i] = s
		for _, col := range a.Columns {
			claimed[col] = true
		}
	}
	if c.Remainder == RemainderPassthrough {
		for _, name := range t.Names() {
			if !claimed[name] {
				state.Passthrough = append(state.Passthrough, name)
			}
		}
	}
	return state, nil
}

// Transform encodes each assignment's columns with its fitted state and
// concatenates the blocks. Output columns must not collide.
func (c *ColumnTransformer) Transform(t *frame.Table, state model.State) (*frame.Table, error) {
	if state == nil {
		return nil, errors.NewNotFittedError("ColumnTransformer", "Transform")
	}
	st, ok := state.(*ColumnState)
	if !ok {
		return nil, errors.NewValueError("ColumnTransformer.Transform", fmt.Sprintf("unexpected state type %T", state))
	}
	if len(st.States) != len(c.Assignments) {
		return nil, errors.NewDimensionError("ColumnTransformer.Transform", len(c.Assignments), len(st.States), 1)
	}

	blocks := make([]*frame.Table, 0, len(c.Assignments)+1)
	for i, a := range c.Assignments {
		if len(a.Columns) == 0 {
			continue
		}
		sub, err := t.Select(a.Columns...)
		if err != nil {
			return nil, errors.Wrapf(err, "assignment %q", a.Name)
		}
		out, err := a.Encoder.Transform(sub, st.States[i])
		if err != nil {
			return nil, errors.Wrapf(err, "assignment %q", a.Name)
		}
		if out.NumRows() != t.NumRows() {
			return nil, errors.NewDimensionError("ColumnTransformer.Transform", t.NumRows(), out.NumRows(), 0)
		}
		blocks = append(blocks, out)
	}
	if len(st.Passthrough) > 0 {
		rest, err := t.Select(st.Passthrough...)
		if err != nil {
			return nil, errors.Wrap(err, "remainder")
		}
		blocks = append(blocks, rest)
	}
	return frame.Concat(t.NumRows(), blocks...)
}

// FitTransform fits the transformer and transforms t in one call.
func (c *ColumnTransformer) FitTransform(t *frame.Table) (model.State, *frame.Table, error) {
	return model.FitTransform(c, t)
}

// String returns a summary of the assignments.
func (c *ColumnTransformer) String() string {
	s := "ColumnTransformer(remainder=" + string(c.Remainder)
	for _, a := range c.Assignments {
		s += fmt.Sprintf(", %s=%v", a.Name, a.Columns)
	}
	return s + ")"
}
