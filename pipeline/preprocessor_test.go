package pipeline

import (
	"bytes"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/trackfeat/compose"
	"github.com/YuminosukeSato/trackfeat/core/model"
	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
	"github.com/YuminosukeSato/trackfeat/pkg/log"
	"github.com/YuminosukeSato/trackfeat/preprocessing"
)

func trainTracks() *frame.Table {
	return frame.MustTable(
		frame.Strings("artist_name", "A", "A", "A,B", "C"),
		frame.NewColumn("artist_followers", frame.Str("10, 20, 30"), frame.Int(-1), frame.Int(5), frame.Str("7")),
		frame.NewColumn("artist_popularities", frame.Int(50), frame.Str("40,60"), frame.Int(-1), frame.Int(10)),
		frame.Strings("album_name", "Discovery", "Discovery", "Homework", "Alive"),
		frame.Numbers("key", 0, 7, 2, 11),
		frame.Numbers("tempo", 120, 90, 100, 110),
		frame.Strings("track_id", "t1", "t2", "t3", "t4"),
	)
}

func validTracks() *frame.Table {
	return frame.MustTable(
		frame.Strings("artist_name", "B", "Z"),
		frame.NewColumn("artist_followers", frame.Int(100), frame.Int(-1)),
		frame.NewColumn("artist_popularities", frame.Int(30), frame.Str("1,2")),
		frame.Strings("album_name", "Homework", "Unknown"),
		frame.Numbers("key", 5, 12),
		frame.Numbers("tempo", 95, 130),
		frame.Strings("track_id", "v1", "v2"),
	)
}

func trackPreprocessor(t *testing.T) (*Preprocessor, *log.TestLogger) {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	layout := TrackLayout{Numeric: []string{"tempo"}}
	return DefaultTrackPreprocessor(layout, WithLogger(logger)), logger
}

func TestPreprocessorTransformBeforeFit(t *testing.T) {
	p, _ := trackPreprocessor(t)
	assert.False(t, p.IsFitted())
	assert.Equal(t, model.NotFitted, p.State())

	_, err := p.Transform(trainTracks())
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, err.Error(), "uninitialized pipeline")
	assert.Nil(t, p.FeatureNames())

	assert.Error(t, p.Save(&bytes.Buffer{}))
}

func TestPreprocessorFitTransform(t *testing.T) {
	p, logger := trackPreprocessor(t)
	train := trainTracks()
	snapshot := train.Clone()

	out, err := p.FitTransform(train)
	require.NoError(t, err)
	assert.True(t, p.IsFitted())
	assert.Equal(t, "FITTED", p.State().String())

	want := []string{"key_x", "key_y", "artist_name", "artist_followers", "artist_popularities", "album_name", "tempo"}
	assert.Equal(t, want, out.Names())
	assert.Equal(t, want, p.FeatureNames())
	assert.Equal(t, 4, out.NumRows())
	assert.False(t, out.Has("track_id"))

	// -1 became missing and survives scaling as missing
	assert.True(t, out.At("artist_followers", 1).IsNull())
	assert.True(t, out.At("artist_popularities", 2).IsNull())

	// every non-missing column is standardized
	for _, name := range out.Names() {
		col, _ := out.Column(name)
		var sum float64
		var n int
		for _, v := range col.Values {
			if f, ok := v.Float(); ok {
				sum += f
				n++
			}
		}
		assert.InDelta(t, 0.0, sum/float64(n), 1e-9, name)
	}

	assert.True(t, train.Equal(snapshot), "input must not be mutated")
	assert.True(t, logger.ContainsMessage("Preprocessor fitted"))
	assert.True(t, logger.ContainsField(log.EstimatorIDKey, p.ID()))
}

func TestPreprocessorRepeatedTransform(t *testing.T) {
	p, _ := trackPreprocessor(t)
	require.NoError(t, p.Fit(trainTracks()))

	first, err := p.Transform(validTracks())
	require.NoError(t, err)
	_, err = p.Transform(trainTracks())
	require.NoError(t, err)
	second, err := p.Transform(validTracks())
	require.NoError(t, err)
	assert.True(t, first.Equal(second), "transform must not alter fitted state")

	// unseen key maps to missing
	assert.True(t, first.At("key_x", 1).IsNull())
	assert.False(t, first.At("album_name", 1).IsNull())
}

func TestPreprocessorParseErrorAborts(t *testing.T) {
	p, logger := trackPreprocessor(t)
	require.NoError(t, p.Fit(trainTracks()))

	bad := validTracks().Drop("artist_popularities")
	bad, err := bad.With(frame.Strings("artist_popularities", "1", "2,x"))
	require.NoError(t, err)

	out, err := p.Transform(bad)
	assert.Nil(t, out)
	var pe *errors.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "x", pe.Token)
	assert.True(t, logger.ContainsMessage("Preprocessor transform failed"))
}

func TestPreprocessorFailedRefitKeepsState(t *testing.T) {
	p, _ := trackPreprocessor(t)
	require.NoError(t, p.Fit(trainTracks()))
	before, err := p.Transform(validTracks())
	require.NoError(t, err)

	err = p.Fit(trainTracks().Drop("key"))
	var colErr *errors.ColumnNotFoundError
	require.True(t, errors.As(err, &colErr))

	assert.True(t, p.IsFitted())
	after, err := p.Transform(validTracks())
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
}

func TestPreprocessorRefitReplacesState(t *testing.T) {
	p, _ := trackPreprocessor(t)
	require.NoError(t, p.Fit(trainTracks()))
	first, err := p.Transform(validTracks())
	require.NoError(t, err)

	// validation data as training data: B now occurs once in fit data
	require.NoError(t, p.Fit(validTracks()))
	second, err := p.Transform(validTracks())
	require.NoError(t, err)
	assert.False(t, first.Equal(second))
}

func TestPreprocessorSaveLoad(t *testing.T) {
	p, _ := trackPreprocessor(t)
	require.NoError(t, p.Fit(trainTracks()))
	want, err := p.Transform(validTracks())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Save(&buf))

	restored, _ := trackPreprocessor(t)
	require.NoError(t, restored.Load(&buf))
	assert.True(t, restored.IsFitted())
	assert.Equal(t, p.FeatureNames(), restored.FeatureNames())

	got, err := restored.Transform(validTracks())
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestPreprocessorLoadMismatch(t *testing.T) {
	p, _ := trackPreprocessor(t)
	require.NoError(t, p.Fit(trainTracks()))
	var buf bytes.Buffer
	require.NoError(t, p.Save(&buf))

	logger, _ := log.NewTestLogger(log.LevelInfo)
	other := NewPreprocessor(compose.NewColumnTransformer([]compose.Assignment{
		{Name: "tempo", Columns: []string{"tempo"}, Encoder: model.Identity{}},
	}), WithLogger(logger))
	err := other.Load(&buf)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
	assert.False(t, other.IsFitted())
}

func TestPreprocessorTransformDense(t *testing.T) {
	p, _ := trackPreprocessor(t)
	require.NoError(t, p.Fit(trainTracks()))
	m, err := p.TransformDense(validTracks())
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 7, c)
	assert.True(t, math.IsNaN(m.At(1, 0)))
}

func TestPreprocessorCustomScaler(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	p := NewPreprocessor(
		compose.NewColumnTransformer([]compose.Assignment{
			{Name: "tempo", Columns: []string{"tempo"}, Encoder: model.Identity{}},
		}),
		WithScaler(preprocessing.NewMinMaxScalerDefault()),
		WithLogger(logger),
	)
	out, err := p.FitTransform(trainTracks())
	require.NoError(t, err)
	lo, _ := out.At("tempo", 1).Float()
	hi, _ := out.At("tempo", 0).Float()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestPreprocessorRecoversPanics(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	p := NewPreprocessor(
		compose.NewColumnTransformer([]compose.Assignment{
			{Name: "boom", Columns: []string{"tempo"}, Encoder: panicEncoder{}},
		}),
		WithLogger(logger),
	)
	err := p.Fit(trainTracks())
	var pe *errors.PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "Preprocessor.Fit", pe.Stage)
	assert.False(t, p.IsFitted())
}

func TestPreprocessorMetrics(t *testing.T) {
	p, _ := trackPreprocessor(t)
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues(log.OperationFit, "success"))
	rowsBefore := testutil.ToFloat64(RowsProcessedTotal.WithLabelValues(log.OperationFit))

	require.NoError(t, p.Fit(trainTracks()))
	assert.Equal(t, before+1, testutil.ToFloat64(OperationsTotal.WithLabelValues(log.OperationFit, "success")))
	assert.Equal(t, rowsBefore+4, testutil.ToFloat64(RowsProcessedTotal.WithLabelValues(log.OperationFit)))
	assert.Equal(t, 7.0, testutil.ToFloat64(FeaturesOutput))

	errBefore := testutil.ToFloat64(OperationsTotal.WithLabelValues(log.OperationTransform, "error"))
	_, _ = p.Transform(frame.Empty(1))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(OperationsTotal.WithLabelValues(log.OperationTransform, "error")))
}

type panicEncoder struct{}

func (panicEncoder) Fit(*frame.Table) (model.State, error) { panic("encoder exploded") }

func (panicEncoder) Transform(t *frame.Table, _ model.State) (*frame.Table, error) { return t, nil }
