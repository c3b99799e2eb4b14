// Package frame provides the in-memory table that flows through every
// preprocessing stage: ordered, named columns of typed cells aligned by row.
//
// Tables are treated as immutable values. Every operation that changes the
// shape or content of a table returns a new Table and leaves its receiver
// untouched, so a caller can keep using its input after a transform.
package frame

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the type tag of a cell.
type Kind uint8

const (
	// KindNull marks a missing value.
	KindNull Kind = iota
	// KindNumber marks a float64 value.
	KindNumber
	// KindString marks a string value.
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// Value is a single table cell. The zero Value is Null.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Null returns the missing value.
func Null() Value { return Value{} }

// Number returns a numeric cell. NaN is stored as Null so that missing numbers
// have a single representation.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Int returns a numeric cell holding i.
func Int(i int64) Value { return Number(float64(i)) }

// Str returns a string cell.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Kind returns the type tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is missing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric content of v. ok is false for Null and String cells.
func (v Value) Float() (f float64, ok bool) {
	if v.kind != KindNumber {
		return math.NaN(), false
	}
	return v.num, true
}

// Text returns the string content of v. ok is false for Null and Number cells.
func (v Value) Text() (s string, ok bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// String renders v. Numbers use the shortest representation that round-trips
// ("3", "2.5"), so a label reads the same whether it was loaded as a number or
// as text. Null renders as "NaN".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	default:
		return "NaN"
	}
}

// Equal reports whether v and o have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	default:
		return true
	}
}

// Parse infers a cell from raw text: empty text and NaN/null spellings become
// Null, anything strconv.ParseFloat accepts becomes a Number, the rest a String.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "nan", "null", "na", "none":
		return Null()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
		return Number(f)
	}
	return Str(raw)
}
