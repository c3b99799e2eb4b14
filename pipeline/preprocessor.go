// Package pipeline sequences null normalization, column-wise composition and
// global scaling into a two-phase preprocessor: fit once on training data,
// then transform any number of tables with the fitted state.
//
// A Preprocessor follows a single-writer, many-reader discipline. Fit and
// Load must not run concurrently with any other call; once fitting has
// completed, concurrent Transform calls are safe because fitted states are
// never modified.
package pipeline

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trackfeat/compose"
	"github.com/YuminosukeSato/trackfeat/core/model"
	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
	"github.com/YuminosukeSato/trackfeat/pkg/log"
	"github.com/YuminosukeSato/trackfeat/preprocessing"
)

func init() {
	model.RegisterState(&Snapshot{})
}

// Snapshot is the complete fitted state of a Preprocessor, as persisted by Save.
type Snapshot struct {
	ID          string
	Assignments []string
	Features    []string
	Normalize   model.State
	Compose     model.State
	Scale       model.State
}

// Preprocessor is the UNFITTED → FITTED state machine running
// normalize → compose → scale.
type Preprocessor struct {
	model.BaseEstimator

	id       string
	nulls    model.Encoder
	composer *compose.ColumnTransformer
	scaler   model.Encoder
	logger   log.Logger

	mu     sync.RWMutex
	fitted *Snapshot
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithNullConverter sets the normalization stage. Default: a converter with no columns.
func WithNullConverter(e model.Encoder) Option {
	return func(p *Preprocessor) { p.nulls = e }
}

// WithScaler sets the global scaling stage. Default: StandardScaler.
func WithScaler(e model.Encoder) Option {
	return func(p *Preprocessor) { p.scaler = e }
}

// WithLogger sets the logger; the preprocessor id is attached to it.
func WithLogger(l log.Logger) Option {
	return func(p *Preprocessor) { p.logger = l }
}

// NewPreprocessor creates an unfitted preprocessor composing with composer.
func NewPreprocessor(composer *compose.ColumnTransformer, opts ...Option) *Preprocessor {
	p := &Preprocessor{
		id:       uuid.NewString(),
		nulls:    preprocessing.NewNullConverter(nil),
		composer: composer,
		scaler:   preprocessing.NewStandardScalerDefault(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.GetLoggerWithName("pipeline.preprocessor")
	}
	p.logger = p.logger.With(log.ModelNameKey, "Preprocessor", log.EstimatorIDKey, p.id)
	return p
}

// ID returns the identifier attached to this preprocessor's log lines.
func (p *Preprocessor) ID() string { return p.id }

// Composer returns the column-wise composition stage.
func (p *Preprocessor) Composer() *compose.ColumnTransformer { return p.composer }

// Fit fits every stage on t. On error the previously fitted state, if any,
// is kept.
func (p *Preprocessor) Fit(t *frame.Table) (err error) {
	start := time.Now()
	defer func() {
		recordOperation(log.OperationFit, t.NumRows(), time.Since(start), err)
	}()
	defer errors.Recover(&err, "Preprocessor.Fit")

	p.logger.Debug("Fitting preprocessor",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, t.NumRows(),
		log.FeaturesKey, t.NumCols())

	snap, err := p.fit(t)
	if err != nil {
		p.logger.Error("Preprocessor fit failed", err, log.OperationKey, log.OperationFit)
		return err
	}

	p.mu.Lock()
	p.fitted = snap
	p.SetFitted()
	p.mu.Unlock()
	FeaturesOutput.Set(float64(len(snap.Features)))

	p.logger.Info("Preprocessor fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, t.NumRows(),
		log.FeaturesKey, len(snap.Features),
		log.DurationMsKey, time.Since(start).Milliseconds())
	return nil
}

func (p *Preprocessor) fit(t *frame.Table) (*Snapshot, error) {
	if p.composer == nil {
		return nil, errors.NewValidationError("composer", "must not be nil", nil)
	}
	snap := &Snapshot{ID: p.id, Assignments: assignmentNames(p.composer)}

	var (
		normalized, composed *frame.Table
		err                  error
	)
	if snap.Normalize, normalized, err = model.FitTransform(p.nulls, t); err != nil {
		return nil, errors.Wrap(err, log.StageNormalize)
	}
	if snap.Compose, composed, err = model.FitTransform(p.composer, normalized); err != nil {
		return nil, errors.Wrap(err, log.StageCompose)
	}
	if snap.Scale, err = p.scaler.Fit(composed); err != nil {
		return nil, errors.Wrap(err, log.StageScale)
	}
	snap.Features = composed.Names()
	return snap, nil
}

// Transform runs normalize → compose → scale with the fitted state. It fails
// with a NotFittedError before the first successful Fit or Load.
func (p *Preprocessor) Transform(t *frame.Table) (out *frame.Table, err error) {
	start := time.Now()
	defer func() {
		recordOperation(log.OperationTransform, t.NumRows(), time.Since(start), err)
	}()
	defer errors.Recover(&err, "Preprocessor.Transform")

	p.mu.RLock()
	snap := p.fitted
	p.mu.RUnlock()
	if snap == nil {
		return nil, errors.Wrap(errors.NewNotFittedError("Preprocessor", "Transform"), "uninitialized pipeline")
	}

	out, err = p.transform(t, snap)
	if err != nil {
		p.logger.Error("Preprocessor transform failed", err, log.OperationKey, log.OperationTransform)
		return nil, err
	}
	p.logger.Debug("Preprocessor transformed table",
		log.OperationKey, log.OperationTransform,
		log.SamplesKey, t.NumRows(),
		log.FeaturesKey, out.NumCols(),
		log.DurationMsKey, time.Since(start).Milliseconds())
	return out, nil
}

func (p *Preprocessor) transform(t *frame.Table, snap *Snapshot) (*frame.Table, error) {
	normalized, err := p.nulls.Transform(t, snap.Normalize)
	if err != nil {
		return nil, errors.Wrap(err, log.StageNormalize)
	}
	composed, err := p.composer.Transform(normalized, snap.Compose)
	if err != nil {
		return nil, errors.Wrap(err, log.StageCompose)
	}
	scaled, err := p.scaler.Transform(composed, snap.Scale)
	if err != nil {
		return nil, errors.Wrap(err, log.StageScale)
	}
	return scaled, nil
}

// FitTransform fits on t and returns its transformed form.
func (p *Preprocessor) FitTransform(t *frame.Table) (*frame.Table, error) {
	if err := p.Fit(t); err != nil {
		return nil, err
	}
	return p.Transform(t)
}

// TransformDense transforms t and returns the features as a matrix with
// missing values as NaN.
func (p *Preprocessor) TransformDense(t *frame.Table) (*mat.Dense, error) {
	out, err := p.Transform(t)
	if err != nil {
		return nil, err
	}
	return out.Dense()
}

// FeatureNames returns the output column names, or nil before fitting.
func (p *Preprocessor) FeatureNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.fitted == nil {
		return nil
	}
	return append([]string(nil), p.fitted.Features...)
}

// Save writes the fitted state to w.
func (p *Preprocessor) Save(w io.Writer) error {
	p.mu.RLock()
	snap := p.fitted
	p.mu.RUnlock()
	if snap == nil {
		return errors.NewNotFittedError("Preprocessor", "Save")
	}
	if err := model.SaveState(snap, w); err != nil {
		return err
	}
	p.logger.Info("Preprocessor state saved", log.OperationKey, log.OperationSave)
	return nil
}

// Load reads state written by Save. The preprocessor must be built with the
// same assignments as the one that was saved.
func (p *Preprocessor) Load(r io.Reader) error {
	var snap Snapshot
	if err := model.LoadState(&snap, r); err != nil {
		return err
	}
	want := assignmentNames(p.composer)
	if len(want) != len(snap.Assignments) {
		return errors.NewDimensionError("Preprocessor.Load", len(want), len(snap.Assignments), 1)
	}
	for i, name := range want {
		if snap.Assignments[i] != name {
			return errors.NewValueError("Preprocessor.Load",
				fmt.Sprintf("assignment %d is %q, saved state has %q", i, name, snap.Assignments[i]))
		}
	}

	p.mu.Lock()
	p.fitted = &snap
	p.SetFitted()
	p.mu.Unlock()
	p.logger.Info("Preprocessor state loaded",
		log.OperationKey, log.OperationLoad,
		"saved_id", snap.ID,
		log.FeaturesKey, len(snap.Features))
	return nil
}

// String describes the stages.
func (p *Preprocessor) String() string {
	return fmt.Sprintf("Preprocessor(%v -> %v -> %v, state=%s)", p.nulls, p.composer, p.scaler, p.State())
}

func assignmentNames(c *compose.ColumnTransformer) []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.Assignments))
	for i, a := range c.Assignments {
		names[i] = a.Name
	}
	return names
}
