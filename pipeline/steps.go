package pipeline

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/trackfeat/core/model"
	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

func init() {
	model.RegisterState(&StepsState{})
}

// Step is a named encoder inside Steps.
type Step struct {
	Name    string
	Encoder model.Encoder
}

// StepsState holds one state per step.
type StepsState struct {
	States []model.State
}

// Steps chains encoders so that each one is fitted on the output of the
// previous. It is itself an Encoder and can serve as a single assignment of a
// ColumnTransformer, for example frequency encoding followed by scaling.
type Steps struct {
	steps []Step
}

// NewSteps creates a chain from steps in order.
func NewSteps(steps ...Step) *Steps {
	return &Steps{steps: append([]Step(nil), steps...)}
}

// Len returns the number of steps.
func (s *Steps) Len() int { return len(s.steps) }

// Fit fits each step on the transformed output of the step before it.
func (s *Steps) Fit(t *frame.Table) (model.State, error) {
	state := &StepsState{States: make([]model.State, len(s.steps))}
	cur := t
	for i, step := range s.steps {
		st, err := step.Encoder.Fit(cur)
		if err != nil {
			return nil, errors.Wrapf(err, "step %q", step.Name)
		}
		state.States[i] = st
		// the last step's output is not needed to finish fitting
		if i == len(s.steps)-1 {
			break
		}
		if cur, err = step.Encoder.Transform(cur, st); err != nil {
			return nil, errors.Wrapf(err, "step %q", step.Name)
		}
	}
	return state, nil
}

// Transform runs every step in order with its fitted state.
func (s *Steps) Transform(t *frame.Table, state model.State) (*frame.Table, error) {
	if state == nil {
		return nil, errors.NewNotFittedError("Steps", "Transform")
	}
	st, ok := state.(*StepsState)
	if !ok {
		return nil, errors.NewValueError("Steps.Transform", fmt.Sprintf("unexpected state type %T", state))
	}
	if len(st.States) != len(s.steps) {
		return nil, errors.NewDimensionError("Steps.Transform", len(s.steps), len(st.States), 1)
	}
	cur := t.Clone()
	for i, step := range s.steps {
		next, err := step.Encoder.Transform(cur, st.States[i])
		if err != nil {
			return nil, errors.Wrapf(err, "step %q", step.Name)
		}
		cur = next
	}
	return cur, nil
}

// String lists the step names.
func (s *Steps) String() string {
	names := make([]string, len(s.steps))
	for i, step := range s.steps {
		names[i] = step.Name
	}
	return "Steps(" + strings.Join(names, " -> ") + ")"
}
