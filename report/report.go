// Package report summarizes and plots feature tables.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

// ColumnSummary describes the numeric content of one column.
type ColumnSummary struct {
	Name    string
	Count   int
	Missing int
	Mean    float64
	Std     float64
	Min     float64
	Max     float64
}

// Describe summarizes every column that holds only numbers and missing values.
// Columns containing strings are skipped.
func Describe(t *frame.Table) []ColumnSummary {
	var out []ColumnSummary
	for _, col := range t.Columns() {
		values, missing, ok := numeric(col)
		if !ok {
			continue
		}
		s := ColumnSummary{Name: col.Name, Count: len(values), Missing: missing}
		if len(values) > 0 {
			s.Mean, s.Std = stat.PopMeanStdDev(values, nil)
			s.Min, s.Max = floats.Min(values), floats.Max(values)
		} else {
			s.Mean, s.Std, s.Min, s.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		}
		out = append(out, s)
	}
	return out
}

// Histograms writes one PNG histogram per numeric column into dir and returns
// the written paths. bins <= 0 lets the plotter choose.
func Histograms(t *frame.Table, dir string, bins int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", dir)
	}
	var paths []string
	for _, col := range t.Columns() {
		values, _, ok := numeric(col)
		if !ok || len(values) == 0 {
			continue
		}
		p := plot.New()
		p.Title.Text = col.Name
		p.X.Label.Text = "value"
		p.Y.Label.Text = "count"

		h, err := plotter.NewHist(plotter.Values(values), bins)
		if err != nil {
			return paths, errors.Wrapf(err, "histogram of %s", col.Name)
		}
		p.Add(h)

		path := filepath.Join(dir, fileName(col.Name)+".png")
		if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
			return paths, errors.Wrapf(err, "failed to save %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// String renders summaries as an aligned text table.
func String(summaries []ColumnSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %8s %8s %12s %12s %12s %12s\n", "column", "count", "missing", "mean", "std", "min", "max")
	for _, s := range summaries {
		fmt.Fprintf(&b, "%-24s %8d %8d %12.4f %12.4f %12.4f %12.4f\n",
			s.Name, s.Count, s.Missing, s.Mean, s.Std, s.Min, s.Max)
	}
	return b.String()
}

func numeric(col frame.Column) (values []float64, missing int, ok bool) {
	values = make([]float64, 0, col.Len())
	for _, v := range col.Values {
		switch v.Kind() {
		case frame.KindNull:
			missing++
		case frame.KindNumber:
			f, _ := v.Float()
			values = append(values, f)
		default:
			return nil, 0, false
		}
	}
	return values, missing, true
}

func fileName(column string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, column)
}
