package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/trackfeat/core/model"
	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

func init() {
	model.RegisterState(&ScalerState{})
	model.RegisterState(&MinMaxState{})
}

// ScalerState はStandardScalerの学習済み統計情報
type ScalerState struct {
	// Columns は学習時の列名（順序付き）
	Columns []string

	// Mean は各列の平均値
	Mean []float64

	// Scale は各列の標準偏差
	Scale []float64
}

// StandardScaler はscikit-learn互換の標準化スケーラー
// 各列を平均0、標準偏差1に変換する。欠損値は統計計算から除外され、変換後も欠損のまま残る。
type StandardScaler struct {
	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// パラメータ:
//   - withMean: 平均を引くかどうか
//   - withStd: 標準偏差で割るかどうか
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	state, err := scaler.Fit(train)
//	scaled, err := scaler.Transform(valid, state)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから各列の平均と標準偏差を計算する
//
// 戻り値:
//   - model.State: *ScalerState
//   - error: 空データや非数値セルの場合
func (s *StandardScaler) Fit(t *frame.Table) (model.State, error) {
	if t.NumRows() == 0 {
		return nil, errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	c := t.NumCols()
	state := &ScalerState{
		Columns: t.Names(),
		Mean:    make([]float64, c),
		Scale:   make([]float64, c),
	}
	for j, col := range t.Columns() {
		values, err := observed("StandardScaler.Fit", col)
		if err != nil {
			return nil, err
		}
		state.Scale[j] = 1.0
		if len(values) == 0 {
			continue
		}
		mean, variance := stat.PopMeanVariance(values, nil)
		if s.WithMean {
			state.Mean[j] = mean
		}
		// 標準偏差が0に近い場合は1のまま（ゼロ除算を避ける）
		if s.WithStd && math.Sqrt(variance) >= 1e-8 {
			state.Scale[j] = math.Sqrt(variance)
		}
	}
	return state, nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(t *frame.Table, state model.State) (*frame.Table, error) {
	if state == nil {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	st, ok := state.(*ScalerState)
	if !ok {
		return nil, errors.NewValueError("StandardScaler.Transform", fmt.Sprintf("unexpected state type %T", state))
	}
	if err := checkColumns("StandardScaler.Transform", st.Columns, t); err != nil {
		return nil, err
	}
	return mapColumns("StandardScaler.Transform", t, func(j int, v float64) float64 {
		return (v - st.Mean[j]) / st.Scale[j]
	})
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(t *frame.Table, state model.State) (*frame.Table, error) {
	st, ok := state.(*ScalerState)
	if !ok || st == nil {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}
	if err := checkColumns("StandardScaler.InverseTransform", st.Columns, t); err != nil {
		return nil, err
	}
	return mapColumns("StandardScaler.InverseTransform", t, func(j int, v float64) float64 {
		return v*st.Scale[j] + st.Mean[j]
	})
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
}

// MinMaxState はMinMaxScalerの学習済み統計情報
type MinMaxState struct {
	Columns []string

	// DataMin は学習データの最小値
	DataMin []float64

	// Scale は各列の範囲 (max - min)
	Scale []float64
}

// MinMaxScaler はscikit-learn互換のMin-Maxスケーラー
// データを指定した範囲（デフォルト[0,1]）にスケーリングする
type MinMaxScaler struct {
	// FeatureRange はスケーリング後の範囲 [min, max]
	FeatureRange [2]float64
}

// NewMinMaxScaler は新しいMinMaxScalerを作成する
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{FeatureRange: featureRange}
}

// NewMinMaxScalerDefault はデフォルト設定([0,1]範囲)でMinMaxScalerを作成する
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0.0, 1.0})
}

// Fit は訓練データから各列の最小値・最大値を計算する
func (m *MinMaxScaler) Fit(t *frame.Table) (model.State, error) {
	if t.NumRows() == 0 {
		return nil, errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if m.FeatureRange[0] >= m.FeatureRange[1] {
		return nil, errors.NewValidationError("feature_range", "minimum must be smaller than maximum", m.FeatureRange)
	}

	c := t.NumCols()
	state := &MinMaxState{
		Columns: t.Names(),
		DataMin: make([]float64, c),
		Scale:   make([]float64, c),
	}
	for j, col := range t.Columns() {
		values, err := observed("MinMaxScaler.Fit", col)
		if err != nil {
			return nil, err
		}
		state.Scale[j] = 1.0
		if len(values) == 0 {
			continue
		}
		lo, hi := floats.Min(values), floats.Max(values)
		state.DataMin[j] = lo
		// 定数特徴量の場合、スケールを1に設定
		if math.Abs(hi-lo) >= 1e-8 {
			state.Scale[j] = hi - lo
		}
	}
	return state, nil
}

// Transform は学習済みの統計情報を使ってデータをスケーリングする
func (m *MinMaxScaler) Transform(t *frame.Table, state model.State) (*frame.Table, error) {
	if state == nil {
		return nil, errors.NewNotFittedError("MinMaxScaler", "Transform")
	}
	st, ok := state.(*MinMaxState)
	if !ok {
		return nil, errors.NewValueError("MinMaxScaler.Transform", fmt.Sprintf("unexpected state type %T", state))
	}
	if err := checkColumns("MinMaxScaler.Transform", st.Columns, t); err != nil {
		return nil, err
	}
	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	// X_scaled = (X - X.min) / (X.max - X.min) * (max - min) + min
	return mapColumns("MinMaxScaler.Transform", t, func(j int, v float64) float64 {
		return (v-st.DataMin[j])/st.Scale[j]*featureRange + m.FeatureRange[0]
	})
}

// String はスケーラーの文字列表現を返す
func (m *MinMaxScaler) String() string {
	return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f])", m.FeatureRange[0], m.FeatureRange[1])
}

// observed は列の非欠損値を返す。文字列セルはエラー。
func observed(op string, col frame.Column) ([]float64, error) {
	values := make([]float64, 0, col.Len())
	for _, v := range col.Values {
		switch v.Kind() {
		case frame.KindNull:
		case frame.KindNumber:
			f, _ := v.Float()
			values = append(values, f)
		default:
			return nil, errors.NewValueError(op, "column "+col.Name+" holds non-numeric value "+v.String())
		}
	}
	return values, nil
}

func checkColumns(op string, fitted []string, t *frame.Table) error {
	if t.NumCols() != len(fitted) {
		return errors.NewDimensionError(op, len(fitted), t.NumCols(), 1)
	}
	for j, name := range t.Names() {
		if name != fitted[j] {
			return errors.NewValueError(op, fmt.Sprintf("column %d is %q, fitted on %q", j, name, fitted[j]))
		}
	}
	return nil
}

// mapColumns は各数値セルに fn を適用した新しいテーブルを返す。欠損値はそのまま。
func mapColumns(op string, t *frame.Table, fn func(j int, v float64) float64) (*frame.Table, error) {
	cols := t.Columns()
	for j := range cols {
		for i, v := range cols[j].Values {
			switch v.Kind() {
			case frame.KindNull:
			case frame.KindNumber:
				f, _ := v.Float()
				cols[j].Values[i] = frame.Number(fn(j, f))
			default:
				return nil, errors.NewValueError(op, "column "+cols[j].Name+" holds non-numeric value "+v.String())
			}
		}
	}
	out := frame.Empty(t.NumRows())
	var err error
	for _, c := range cols {
		if out, err = out.With(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}
