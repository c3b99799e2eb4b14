package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tferrors "github.com/YuminosukeSato/trackfeat/pkg/errors"
)

func TestTestLoggerLevels(t *testing.T) {
	logger, buffer := NewTestLogger(LevelInfo)

	logger.Debug("hidden")
	logger.Info("fit completed", OperationKey, OperationFit, SamplesKey, 42)
	logger.Error("transform failed", tferrors.New("boom"), OperationKey, OperationTransform)

	assert.NotContains(t, buffer.String(), "hidden")
	assert.True(t, logger.ContainsMessage("fit completed"))
	assert.True(t, logger.ContainsField(SamplesKey, 42.0))
	assert.True(t, logger.ContainsField(ErrAttrKey, "boom"))

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestTestLoggerWith(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)

	child := logger.With(ModelNameKey, "Preprocessor", EstimatorIDKey, "p-1")
	child.Info("contextual message", OperationKey, OperationTransform)

	assert.True(t, logger.ContainsField(ModelNameKey, "Preprocessor"))
	assert.True(t, logger.ContainsField(EstimatorIDKey, "p-1"))
	assert.True(t, logger.Enabled(context.Background(), LevelWarn))
	assert.True(t, logger.Enabled(context.Background(), LevelDebug))
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("dropped")
	logger.With(ComponentKey, "compose").Info("assignment fitted", AssignmentKey, "artist_encoding", SamplesKey, 3)
	logger.Error("fit failed", tferrors.NewValueError("Fit", "bad"), StageKey, StageScale)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "assignment fitted", first["message"])
	assert.Equal(t, "compose", first[ComponentKey])
	assert.Equal(t, "artist_encoding", first[AssignmentKey])
	assert.Equal(t, 3.0, first[SamplesKey])

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "error", second["level"])
	assert.Contains(t, second[ErrAttrKey], "bad")
	assert.Equal(t, StageScale, second[StageKey])

	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestInitRoutesWarnings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Config{Level: "warn", Output: &buf}))
	defer SetLogger(NewZerologLogger(&bytes.Buffer{}, LevelInfo))

	tferrors.Warn(tferrors.NewMissingColumnWarning("NullConverter.Transform", "artist_followers"))

	assert.Contains(t, buf.String(), "artist_followers")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestSetLevelRebuildsGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Config{Level: "error", Output: &buf}))
	defer SetLogger(NewZerologLogger(&bytes.Buffer{}, LevelInfo))

	GetLoggerWithName("pipeline").Info("hidden")
	assert.Empty(t, buf.String())
	assert.False(t, GetLogger().Enabled(context.Background(), LevelDebug))

	SetLevel(LevelDebug)
	GetLoggerWithName("pipeline").Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), `"ml.component":"pipeline"`)
	assert.True(t, GetLogger().Enabled(context.Background(), LevelDebug))
}
