package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/trackfeat/core/model"
	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

func init() {
	model.RegisterState(&OneHotState{})
}

// HandleUnknown の取りうる値
const (
	// HandleUnknownError は未知のカテゴリでエラーを返す
	HandleUnknownError = "error"
	// HandleUnknownIgnore は未知のカテゴリを全て0の行として出力する
	HandleUnknownIgnore = "ignore"
)

// OneHotState はOneHotEncoderの学習済みカテゴリ
type OneHotState struct {
	Columns    []string
	Categories [][]string
}

// OneHotEncoder はscikit-learn互換のOne-Hotエンコーダー
// 各列のカテゴリを <列名>_<カテゴリ> という0/1列に展開する。欠損値は "NaN" カテゴリとして扱う。
type OneHotEncoder struct {
	// HandleUnknown は未知カテゴリの扱い ("error" または "ignore")
	HandleUnknown string
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
func NewOneHotEncoder(handleUnknown string) *OneHotEncoder {
	return &OneHotEncoder{HandleUnknown: handleUnknown}
}

// NewOneHotEncoderDefault は未知カテゴリでエラーを返すOneHotEncoderを作成する
func NewOneHotEncoderDefault() *OneHotEncoder {
	return NewOneHotEncoder(HandleUnknownError)
}

// Fit は各列のカテゴリを文字列表現の昇順で学習する
func (o *OneHotEncoder) Fit(t *frame.Table) (model.State, error) {
	switch o.HandleUnknown {
	case HandleUnknownError, HandleUnknownIgnore:
	default:
		return nil, errors.NewValidationError("handle_unknown", "must be error or ignore", o.HandleUnknown)
	}
	state := &OneHotState{
		Columns:    t.Names(),
		Categories: make([][]string, t.NumCols()),
	}
	for j, name := range state.Columns {
		distinct := t.Distinct(name)
		cats := make([]string, len(distinct))
		for k, v := range distinct {
			cats[k] = v.String()
		}
		state.Categories[j] = cats
	}
	return state, nil
}

// Transform は学習済みカテゴリでテーブルを0/1列に展開する
func (o *OneHotEncoder) Transform(t *frame.Table, state model.State) (*frame.Table, error) {
	const op = "OneHotEncoder.Transform"
	if state == nil {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	st, ok := state.(*OneHotState)
	if !ok {
		return nil, errors.NewValueError(op, fmt.Sprintf("unexpected state type %T", state))
	}
	if err := checkColumns(op, st.Columns, t); err != nil {
		return nil, err
	}

	n := t.NumRows()
	out := frame.Empty(n)
	for j, col := range t.Columns() {
		index := make(map[string]int, len(st.Categories[j]))
		block := make([]frame.Column, len(st.Categories[j]))
		for k, cat := range st.Categories[j] {
			index[cat] = k
			block[k] = frame.Numbers(col.Name+"_"+cat, make([]float64, n)...)
		}
		for i, v := range col.Values {
			k, seen := index[v.String()]
			if !seen {
				if o.HandleUnknown == HandleUnknownIgnore {
					continue
				}
				return nil, errors.NewValueError(op,
					fmt.Sprintf("found unknown category %q in column %q at row %d", v.String(), col.Name, i))
			}
			block[k].Values[i] = frame.Number(1)
		}
		var err error
		for _, c := range block {
			if out, err = out.With(c); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// String はエンコーダーの文字列表現を返す
func (o *OneHotEncoder) String() string {
	return fmt.Sprintf("OneHotEncoder(handle_unknown=%s)", o.HandleUnknown)
}
