package frame

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

// Column is a named sequence of cells.
type Column struct {
	Name   string
	Values []Value
}

// NewColumn copies values into a new Column.
func NewColumn(name string, values ...Value) Column {
	return Column{Name: name, Values: append([]Value(nil), values...)}
}

// Numbers builds a numeric column. NaN entries become Null.
func Numbers(name string, values ...float64) Column {
	c := Column{Name: name, Values: make([]Value, len(values))}
	for i, f := range values {
		c.Values[i] = Number(f)
	}
	return c
}

// Strings builds a string column.
func Strings(name string, values ...string) Column {
	c := Column{Name: name, Values: make([]Value, len(values))}
	for i, s := range values {
		c.Values[i] = Str(s)
	}
	return c
}

// Len returns the number of cells.
func (c Column) Len() int { return len(c.Values) }

func (c Column) clone() Column {
	return Column{Name: c.Name, Values: append([]Value(nil), c.Values...)}
}

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from columns, copying their cells. It fails on
// duplicate names or columns of different lengths.
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := t.index[c.Name]; dup {
			return nil, errors.NewValueError("frame.NewTable", "duplicate column name "+c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, errors.NewDimensionError("frame.NewTable", t.rows, c.Len(), 0)
		}
		t.index[c.Name] = len(t.columns)
		t.columns = append(t.columns, c.clone())
	}
	return t, nil
}

// MustTable is NewTable for fixtures; it panics on error.
func MustTable(columns ...Column) *Table {
	t, err := NewTable(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Empty returns a table with no columns and the given number of rows.
func Empty(rows int) *Table {
	return &Table{index: map[string]int{}, rows: rows}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the table has a column called name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i].clone(), true
}

// At returns the cell at row in the named column; Null if either is out of range.
func (t *Table) At(name string, row int) Value {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= t.rows {
		return Null()
	}
	return t.columns[i].Values[row]
}

// Columns returns copies of all columns in order.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.clone()
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		columns: make([]Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
		rows:    t.rows,
	}
	for i, c := range t.columns {
		out.columns[i] = c.clone()
		out.index[c.Name] = i
	}
	return out
}

// Select returns a new table holding the named columns in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	out := Empty(t.rows)
	for _, name := range names {
		i, ok := t.index[name]
		if !ok {
			return nil, errors.NewColumnNotFoundError("frame.Select", name)
		}
		if _, dup := out.index[name]; dup {
			return nil, errors.NewValueError("frame.Select", "duplicate column name "+name)
		}
		out.index[name] = len(out.columns)
		out.columns = append(out.columns, t.columns[i].clone())
	}
	return out, nil
}

// Drop returns a new table without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	out := Empty(t.rows)
	for _, c := range t.columns {
		if skip[c.Name] {
			continue
		}
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c.clone())
	}
	return out
}

// With returns a new table where c replaces the column of the same name in place,
// or is appended when no such column exists.
func (t *Table) With(c Column) (*Table, error) {
	if c.Len() != t.rows && !(len(t.columns) == 0 && t.rows == 0) {
		return nil, errors.NewDimensionError("frame.With", t.rows, c.Len(), 0)
	}
	out := t.Clone()
	if len(out.columns) == 0 {
		out.rows = c.Len()
	}
	if i, ok := out.index[c.Name]; ok {
		out.columns[i] = c.clone()
		return out, nil
	}
	out.index[c.Name] = len(out.columns)
	out.columns = append(out.columns, c.clone())
	return out, nil
}

// Concat places tables side by side in order. All tables must have the same
// number of rows and there must be no repeated column name.
func Concat(rows int, tables ...*Table) (*Table, error) {
	out := Empty(rows)
	for _, part := range tables {
		if part == nil {
			continue
		}
		if part.rows != rows {
			return nil, errors.NewDimensionError("frame.Concat", rows, part.rows, 0)
		}
		for _, c := range part.columns {
			if _, dup := out.index[c.Name]; dup {
				return nil, errors.NewValueError("frame.Concat", "duplicate output column "+c.Name)
			}
			out.index[c.Name] = len(out.columns)
			out.columns = append(out.columns, c.clone())
		}
	}
	return out, nil
}

// Equal reports whether both tables have the same names, order and cells.
func (t *Table) Equal(o *Table) bool {
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i, c := range t.columns {
		oc := o.columns[i]
		if c.Name != oc.Name {
			return false
		}
		for r := range c.Values {
			if !c.Values[r].Equal(oc.Values[r]) {
				return false
			}
		}
	}
	return true
}

// Dense converts an all-numeric table to a rows × columns matrix. Null cells
// become NaN; a String cell is an error.
func (t *Table) Dense() (*mat.Dense, error) {
	if t.rows == 0 || len(t.columns) == 0 {
		return nil, errors.NewModelError("frame.Dense", "empty data", errors.ErrEmptyData)
	}
	m := mat.NewDense(t.rows, len(t.columns), nil)
	for j, c := range t.columns {
		for i, v := range c.Values {
			switch v.Kind() {
			case KindNumber:
				f, _ := v.Float()
				m.Set(i, j, f)
			case KindNull:
				m.Set(i, j, math.NaN())
			default:
				return nil, errors.NewValueError("frame.Dense",
					"column "+c.Name+" holds non-numeric value "+v.String())
			}
		}
	}
	return m, nil
}

// Distinct returns the distinct cells of the named column ordered by their
// String form.
func (t *Table) Distinct(name string) []Value {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	seen := make(map[string]Value)
	for _, v := range t.columns[i].Values {
		seen[v.String()] = v
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Value, len(keys))
	for i, k := range keys {
		out[i] = seen[k]
	}
	return out
}
