package preprocessing

import (
	"math"

	"github.com/YuminosukeSato/trackfeat/core/model"
	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

// circleOfFifths maps a chromatic pitch class to its position on the circle of
// fifths. Consecutive positions are a perfect fifth (7 semitones) apart.
var circleOfFifths = [12]int{
	0: 0, 7: 1, 2: 2, 9: 3, 4: 4, 11: 5,
	6: 6, 1: 7, 8: 8, 3: 9, 10: 10, 5: 11,
}

var pitchClassNames = [12]string{
	"C", "C#/Db", "D", "D#/Eb", "E", "F", "F#/Gb", "G", "G#/Ab", "A", "A#/Bb", "B",
}

// FifthStep is the angle between two keys a perfect fifth apart.
const FifthStep = 2 * math.Pi / 12

// CirclePosition returns the circle-of-fifths position of a chromatic pitch class.
func CirclePosition(key int) (int, bool) {
	if key < 0 || key > 11 {
		return 0, false
	}
	return circleOfFifths[key], true
}

// PitchClassName returns the note name of a chromatic pitch class, or "" when out of range.
func PitchClassName(key int) string {
	if key < 0 || key > 11 {
		return ""
	}
	return pitchClassNames[key]
}

// CircleOfFifthsEncoder replaces an integer key column (0–11, chromatic order)
// with two Cartesian columns placing the key on the circle of fifths.
//
// Values that are not an integer in 0..11 produce missing coordinates.
type CircleOfFifthsEncoder struct {
	Column string
	XName  string
	YName  string
}

// NewCircleOfFifthsEncoder creates an encoder writing <column>_x and <column>_y.
func NewCircleOfFifthsEncoder(column string) *CircleOfFifthsEncoder {
	return &CircleOfFifthsEncoder{
		Column: column,
		XName:  column + "_x",
		YName:  column + "_y",
	}
}

// Fit returns no state; the mapping is fixed.
func (e *CircleOfFifthsEncoder) Fit(*frame.Table) (model.State, error) {
	return nil, nil
}

// Transform drops the key column and appends the x and y coordinates.
func (e *CircleOfFifthsEncoder) Transform(t *frame.Table, _ model.State) (*frame.Table, error) {
	col, ok := t.Column(e.Column)
	if !ok {
		return nil, errors.NewColumnNotFoundError("CircleOfFifthsEncoder.Transform", e.Column)
	}

	xs := frame.Column{Name: e.XName, Values: make([]frame.Value, col.Len())}
	ys := frame.Column{Name: e.YName, Values: make([]frame.Value, col.Len())}
	for i, v := range col.Values {
		pos, ok := keyPosition(v)
		if !ok {
			continue
		}
		theta := FifthStep * float64(pos)
		xs.Values[i] = frame.Number(math.Cos(theta))
		ys.Values[i] = frame.Number(math.Sin(theta))
	}

	out, err := t.Drop(e.Column).With(xs)
	if err != nil {
		return nil, err
	}
	return out.With(ys)
}

func keyPosition(v frame.Value) (int, bool) {
	f, ok := v.Float()
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return CirclePosition(int(f))
}

// String returns the encoder description.
func (e *CircleOfFifthsEncoder) String() string {
	return "CircleOfFifthsEncoder(column=" + e.Column + ")"
}
