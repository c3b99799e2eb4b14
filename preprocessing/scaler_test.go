package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

func TestStandardScaler(t *testing.T) {
	// テストデータ: 平均 [2, 20]、母標準偏差 [sqrt(2/3), sqrt(200/3)]
	tbl := frame.MustTable(
		frame.Numbers("a", 1, 2, 3),
		frame.Numbers("b", 10, 20, 30),
	)
	scaler := NewStandardScalerDefault()

	state, err := scaler.Fit(tbl)
	require.NoError(t, err)
	st := state.(*ScalerState)
	assert.Equal(t, []string{"a", "b"}, st.Columns)
	assert.InDelta(t, 2.0, st.Mean[0], 1e-12)
	assert.InDelta(t, 20.0, st.Mean[1], 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3.0), st.Scale[0], 1e-12)

	out, err := scaler.Transform(tbl, state)
	require.NoError(t, err)
	mid, _ := out.At("a", 1).Float()
	assert.InDelta(t, 0.0, mid, 1e-12)
	hi, _ := out.At("b", 2).Float()
	assert.InDelta(t, 10/math.Sqrt(200.0/3.0), hi, 1e-12)

	back, err := scaler.InverseTransform(out, state)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		want, _ := tbl.At("b", i).Float()
		got, _ := back.At("b", i).Float()
		assert.InDelta(t, want, got, 1e-9)
	}
}

func TestStandardScalerNulls(t *testing.T) {
	tbl := frame.MustTable(
		frame.NewColumn("x", frame.Number(1), frame.Null(), frame.Number(3)),
		frame.Numbers("const", 5, 5, 5),
		frame.NewColumn("empty", frame.Null(), frame.Null(), frame.Null()),
	)
	scaler := NewStandardScalerDefault()
	state, err := scaler.Fit(tbl)
	require.NoError(t, err)
	st := state.(*ScalerState)
	assert.InDelta(t, 2.0, st.Mean[0], 1e-12)
	assert.Equal(t, 1.0, st.Scale[1], "constant column keeps scale 1")
	assert.Equal(t, 1.0, st.Scale[2])

	out, err := scaler.Transform(tbl, state)
	require.NoError(t, err)
	assert.True(t, out.At("x", 1).IsNull())
	c, _ := out.At("const", 0).Float()
	assert.Equal(t, 0.0, c)
}

func TestStandardScalerErrors(t *testing.T) {
	scaler := NewStandardScalerDefault()
	tbl := frame.MustTable(frame.Numbers("a", 1, 2))

	_, err := scaler.Transform(tbl, nil)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	_, err = scaler.Fit(frame.Empty(0))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = scaler.Fit(frame.MustTable(frame.Strings("s", "x")))
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))

	state, err := scaler.Fit(tbl)
	require.NoError(t, err)

	_, err = scaler.Transform(frame.MustTable(frame.Numbers("a", 1), frame.Numbers("b", 2)), state)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = scaler.Transform(frame.MustTable(frame.Numbers("z", 1)), state)
	assert.True(t, errors.As(err, &valErr))
}

func TestStandardScalerZeroColumns(t *testing.T) {
	scaler := NewStandardScalerDefault()
	state, err := scaler.Fit(frame.Empty(3))
	require.NoError(t, err)
	out, err := scaler.Transform(frame.Empty(3), state)
	require.NoError(t, err)
	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, 0, out.NumCols())
}

func TestStandardScalerWithoutMean(t *testing.T) {
	tbl := frame.MustTable(frame.Numbers("a", 2, 4))
	scaler := NewStandardScaler(false, true)
	state, err := scaler.Fit(tbl)
	require.NoError(t, err)
	out, err := scaler.Transform(tbl, state)
	require.NoError(t, err)
	v, _ := out.At("a", 0).Float()
	assert.InDelta(t, 2.0, v, 1e-12)
	assert.Equal(t, "StandardScaler(with_mean=false, with_std=true)", scaler.String())
}

func TestMinMaxScaler(t *testing.T) {
	tbl := frame.MustTable(frame.Numbers("a", 0, 5, 10), frame.Numbers("b", 3, 3, 3))

	scaler := NewMinMaxScalerDefault()
	state, err := scaler.Fit(tbl)
	require.NoError(t, err)
	out, err := scaler.Transform(tbl, state)
	require.NoError(t, err)
	mid, _ := out.At("a", 1).Float()
	assert.InDelta(t, 0.5, mid, 1e-12)
	flat, _ := out.At("b", 0).Float()
	assert.InDelta(t, 0.0, flat, 1e-12)

	ranged := NewMinMaxScaler([2]float64{-1, 1})
	state, err = ranged.Fit(tbl)
	require.NoError(t, err)
	out, err = ranged.Transform(tbl, state)
	require.NoError(t, err)
	lo, _ := out.At("a", 0).Float()
	assert.InDelta(t, -1.0, lo, 1e-12)

	_, err = NewMinMaxScaler([2]float64{1, 1}).Fit(tbl)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestOneHotEncoder(t *testing.T) {
	train := frame.MustTable(
		frame.NewColumn("album_type", frame.Str("single"), frame.Str("album"), frame.Null()),
		frame.Numbers("mode", 1, 0, 1),
	)
	enc := NewOneHotEncoderDefault()
	state, err := enc.Fit(train)
	require.NoError(t, err)
	st := state.(*OneHotState)
	assert.Equal(t, [][]string{{"NaN", "album", "single"}, {"0", "1"}}, st.Categories)

	out, err := enc.Transform(train, state)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"album_type_NaN", "album_type_album", "album_type_single", "mode_0", "mode_1",
	}, out.Names())
	assert.Equal(t, "1", out.At("album_type_single", 0).String())
	assert.Equal(t, "0", out.At("album_type_album", 0).String())
	assert.Equal(t, "1", out.At("album_type_NaN", 2).String())

	unseen := frame.MustTable(
		frame.Strings("album_type", "compilation"),
		frame.Numbers("mode", 0),
	)
	_, err = enc.Transform(unseen, state)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))

	lenient := NewOneHotEncoder(HandleUnknownIgnore)
	state, err = lenient.Fit(train)
	require.NoError(t, err)
	out, err = lenient.Transform(unseen, state)
	require.NoError(t, err)
	for _, name := range []string{"album_type_NaN", "album_type_album", "album_type_single"} {
		assert.Equal(t, "0", out.At(name, 0).String())
	}
	assert.Equal(t, "1", out.At("mode_0", 0).String())

	_, err = NewOneHotEncoder("bogus").Fit(train)
	var vErr *errors.ValidationError
	assert.True(t, errors.As(err, &vErr))
}
