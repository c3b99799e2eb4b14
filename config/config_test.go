package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pipeline"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
	"github.com/YuminosukeSato/trackfeat/pkg/log"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trackfeat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"artist_followers", "artist_popularities"}, cfg.Nulls.Columns)
	assert.Equal(t, -1.0, cfg.Nulls.InputValue)
	assert.Equal(t, "drop", cfg.Remainder)
	assert.Equal(t, "standard", cfg.Scaler.Kind)
	assert.Empty(t, cfg.Assignments)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
remainder: passthrough
scaler:
  kind: minmax
assignments:
  - name: artist_encoding
    encoder: frequency
    columns: [artist_name]
    strategy: sum
    scale: standard
  - name: trigonometric_encoding
    encoder: circle_of_fifths
    columns: [key]
  - name: onehot_encoding
    encoder: onehot
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "passthrough", cfg.Remainder)
	require.Len(t, cfg.Assignments, 3)
	assert.Equal(t, "sum", cfg.Assignments[0].Strategy)
	assert.Equal(t, []string{"key"}, cfg.Assignments[1].Columns)
	assert.Empty(t, cfg.Assignments[2].Columns)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
nulls:
  columns: [a]
`)
	t.Setenv("TRACKFEAT_LOG__LEVEL", "warn")
	t.Setenv("TRACKFEAT_NULLS__COLUMNS", "artist_followers, tempo")
	t.Setenv("TRACKFEAT_NULLS__INPUT_VALUE", "-2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"artist_followers", "tempo"}, cfg.Nulls.Columns)
	assert.Equal(t, -2.0, cfg.Nulls.InputValue)
}

func TestLoadPathFromEnv(t *testing.T) {
	path := writeConfig(t, "remainder: passthrough\n")
	t.Setenv(PathEnvVar, path)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "passthrough", cfg.Remainder)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeConfig(t, `
assignments:
  - name: bad
    encoder: word2vec
    columns: [artist_name]
`)
	_, err = Load(path)
	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.ParamName, "Encoder")

	path = writeConfig(t, "log:\n  level: loud\n")
	_, err = Load(path)
	assert.True(t, errors.As(err, &valErr))
}

func TestBuildCanonicalLayout(t *testing.T) {
	cfg := Default()
	cfg.Layout.Numeric = []string{"tempo"}
	logger, _ := log.NewTestLogger(log.LevelInfo)

	p, err := Build(cfg, pipeline.WithLogger(logger))
	require.NoError(t, err)
	require.Len(t, p.Composer().Assignments, 7)
	assert.Equal(t, pipeline.AssignmentOneHot, p.Composer().Assignments[0].Name)

	tbl := frame.MustTable(
		frame.Strings("artist_name", "A", "B"),
		frame.NewColumn("artist_followers", frame.Int(-1), frame.Int(3)),
		frame.Numbers("artist_popularities", 1, 2),
		frame.Strings("album_name", "x", "y"),
		frame.Numbers("key", 0, 7),
		frame.Numbers("tempo", 100, 120),
	)
	out, err := p.FitTransform(tbl)
	require.NoError(t, err)
	assert.True(t, out.At("artist_followers", 0).IsNull())
	assert.Equal(t, 7, out.NumCols())
}

func TestBuildCustomAssignments(t *testing.T) {
	cfg := Default()
	cfg.Scaler.Kind = "none"
	cfg.Remainder = "passthrough"
	cfg.Assignments = []AssignmentConfig{
		{Name: "artist", Encoder: "frequency", Columns: []string{"artist_name"}, Strategy: "sum"},
		{Name: "album", Encoder: "label_frequency", Columns: []string{"album_name"}},
		{Name: "followers", Encoder: "aggregate", Columns: []string{"artist_followers"}, Strategy: "avg"},
	}
	logger, _ := log.NewTestLogger(log.LevelInfo)
	p, err := Build(cfg, pipeline.WithLogger(logger))
	require.NoError(t, err)

	tbl := frame.MustTable(
		frame.Strings("artist_name", "A,B", "A"),
		frame.Strings("album_name", "x, y", "x, y"),
		frame.Strings("artist_followers", "10,20", "4"),
		frame.Numbers("tempo", 1, 2),
	)
	out, err := p.FitTransform(tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"artist_name", "album_name", "artist_followers", "tempo"}, out.Names())
	assert.Equal(t, "3", out.At("artist_name", 0).String())
	assert.Equal(t, "2", out.At("album_name", 0).String())
	assert.Equal(t, "15", out.At("artist_followers", 0).String())
}

func TestBuildRejectsInvalidAssignments(t *testing.T) {
	cfg := Default()
	cfg.Assignments = []AssignmentConfig{
		{Name: "key", Encoder: "circle_of_fifths", Columns: []string{"key", "mode"}},
	}
	_, err := Build(cfg)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	cfg.Assignments = []AssignmentConfig{
		{Name: "a", Encoder: "passthrough", Columns: []string{"tempo"}},
		{Name: "b", Encoder: "standard", Columns: []string{"tempo"}},
	}
	_, err = Build(cfg)
	assert.True(t, errors.As(err, &valErr))
}

func TestBuildEmptySlotsAreNoOps(t *testing.T) {
	cfg := Default()
	cfg.Scaler.Kind = "none"
	cfg.Assignments = []AssignmentConfig{
		{Name: pipeline.AssignmentKey, Encoder: "circle_of_fifths"},
		{Name: pipeline.AssignmentArtist, Encoder: "frequency", Columns: []string{}, Strategy: "sum"},
		{Name: pipeline.AssignmentNumeric, Encoder: "passthrough", Columns: []string{"tempo"}},
	}
	logger, _ := log.NewTestLogger(log.LevelInfo)
	p, err := Build(cfg, pipeline.WithLogger(logger))
	require.NoError(t, err)
	require.Len(t, p.Composer().Assignments, 3)
	assert.Nil(t, p.Composer().Assignments[0].Encoder)

	tbl := frame.MustTable(
		frame.Numbers("key", 0, 7),
		frame.Numbers("tempo", 100, 120),
	)
	out, err := p.FitTransform(tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"tempo"}, out.Names())

	// a populated slot still needs exactly one column
	cfg.Assignments[0].Columns = []string{"key", "mode"}
	_, err = Build(cfg)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestBuildRejectsStrategyForEncoder(t *testing.T) {
	tests := []struct {
		name string
		ac   AssignmentConfig
	}{
		{"frequency avg", AssignmentConfig{Name: "artist", Encoder: "frequency", Columns: []string{"artist_name"}, Strategy: "avg"}},
		{"label frequency avg", AssignmentConfig{Name: "album", Encoder: "label_frequency", Columns: []string{"album_name"}, Strategy: "avg"}},
		{"aggregate sum", AssignmentConfig{Name: "followers", Encoder: "aggregate", Columns: []string{"artist_followers"}, Strategy: "sum"}},
		{"circle with strategy", AssignmentConfig{Name: "key", Encoder: "circle_of_fifths", Columns: []string{"key"}, Strategy: "max"}},
		{"empty slot avg", AssignmentConfig{Name: "artist", Encoder: "frequency", Strategy: "avg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Assignments = []AssignmentConfig{tt.ac}
			_, err := Build(cfg)
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, "assignments."+tt.ac.Name+".strategy", valErr.ParamName)
		})
	}
}

func TestBuildNullOutputValue(t *testing.T) {
	path := writeConfig(t, `
nulls:
  columns: [artist_followers]
  output_value: 0
scaler:
  kind: none
assignments:
  - name: followers
    encoder: aggregate
    columns: [artist_followers]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0", cfg.Nulls.OutputValue)

	logger, _ := log.NewTestLogger(log.LevelInfo)
	p, err := Build(cfg, pipeline.WithLogger(logger))
	require.NoError(t, err)
	out, err := p.FitTransform(frame.MustTable(frame.Numbers("artist_followers", -1, 5)))
	require.NoError(t, err)
	assert.Equal(t, "0", out.At("artist_followers", 0).String())

	// the default keeps the sentinel as missing
	cfg = Default()
	assert.Empty(t, cfg.Nulls.OutputValue)
}
