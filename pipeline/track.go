package pipeline

import (
	"github.com/YuminosukeSato/trackfeat/compose"
	"github.com/YuminosukeSato/trackfeat/core/model"
	"github.com/YuminosukeSato/trackfeat/preprocessing"
)

// Column names of the track dataset.
const (
	ColumnArtistName         = "artist_name"
	ColumnArtistFollowers    = "artist_followers"
	ColumnArtistPopularities = "artist_popularities"
	ColumnAlbumName          = "album_name"
	ColumnKey                = "key"
)

// Assignment names of the canonical track layout, in output order.
const (
	AssignmentOneHot     = "onehot_encoding"
	AssignmentKey        = "trigonometric_encoding"
	AssignmentArtist     = "artist_encoding"
	AssignmentFollowers  = "follower_count_encoding"
	AssignmentPopularity = "popularity_encoding"
	AssignmentAlbum      = "album_encoding"
	AssignmentNumeric    = "numeric_processing"
)

// DefaultNumericColumns are the audio features passed through unchanged
// before global scaling.
var DefaultNumericColumns = []string{
	"danceability", "energy", "loudness", "speechiness", "acousticness",
	"instrumentalness", "liveness", "valence", "tempo", "duration_ms",
}

// TrackLayout selects the dataset-dependent slots of the canonical layout.
// Empty slots produce no columns.
type TrackLayout struct {
	Categorical []string
	Numeric     []string
}

// DefaultTrackLayout has no one-hot columns and DefaultNumericColumns.
func DefaultTrackLayout() TrackLayout {
	return TrackLayout{Numeric: append([]string(nil), DefaultNumericColumns...)}
}

// TrackAssignments returns the canonical column assignments for tracks.
func TrackAssignments(layout TrackLayout) []compose.Assignment {
	return []compose.Assignment{
		{Name: AssignmentOneHot, Columns: layout.Categorical, Encoder: preprocessing.NewOneHotEncoder(preprocessing.HandleUnknownIgnore)},
		{Name: AssignmentKey, Columns: []string{ColumnKey}, Encoder: preprocessing.NewCircleOfFifthsEncoder(ColumnKey)},
		{Name: AssignmentArtist, Columns: []string{ColumnArtistName}, Encoder: preprocessing.NewFrequencyEncoder(ColumnArtistName)},
		{Name: AssignmentFollowers, Columns: []string{ColumnArtistFollowers}, Encoder: preprocessing.NewNumericAggregator(ColumnArtistFollowers, preprocessing.StrategyMax)},
		{Name: AssignmentPopularity, Columns: []string{ColumnArtistPopularities}, Encoder: preprocessing.NewNumericAggregator(ColumnArtistPopularities, preprocessing.StrategyMax)},
		{Name: AssignmentAlbum, Columns: []string{ColumnAlbumName}, Encoder: preprocessing.NewLabelFrequencyEncoder(ColumnAlbumName)},
		{Name: AssignmentNumeric, Columns: layout.Numeric, Encoder: model.Identity{}},
	}
}

// DefaultTrackPreprocessor builds the canonical track preprocessor: -1 in the
// follower and popularity columns means missing, each column family gets its
// encoder, and the composed output is standardized.
func DefaultTrackPreprocessor(layout TrackLayout, opts ...Option) *Preprocessor {
	nulls := preprocessing.NewNullConverter([]string{ColumnArtistFollowers, ColumnArtistPopularities})
	composer := compose.NewColumnTransformer(TrackAssignments(layout))
	return NewPreprocessor(composer, append([]Option{WithNullConverter(nulls)}, opts...)...)
}
