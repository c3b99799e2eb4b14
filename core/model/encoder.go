package model

import (
	"github.com/YuminosukeSato/trackfeat/frame"
)

// State は Fit が返す学習済みの統計情報。Fit 後は変更されず、Transform に渡される。
// ステートレスな変換器は nil を返す。
type State interface{}

// Encoder は1つ以上の列を数値特徴量に変換するコンポーネントのインターフェース
//
// Fit は入力テーブルから状態を計算して返し、レシーバを変更しない。
// Transform は入力テーブルを変更せず、常に新しいテーブルを返す。
// 状態が必要な変換器は nil の状態を受け取ると NotFittedError を返す。
type Encoder interface {
	// Fit は変換に必要な統計情報を学習する
	Fit(t *frame.Table) (State, error)

	// Transform は学習済みの状態を使ってテーブルを変換する
	Transform(t *frame.Table, state State) (*frame.Table, error)
}

// FitTransform は Fit と Transform を続けて実行する
func FitTransform(e Encoder, t *frame.Table) (State, *frame.Table, error) {
	state, err := e.Fit(t)
	if err != nil {
		return nil, nil, err
	}
	out, err := e.Transform(t, state)
	if err != nil {
		return nil, nil, err
	}
	return state, out, nil
}

// Identity は何も変換しないエンコーダ。パススルー列やテストに使う。
type Identity struct{}

// Fit は何も学習しない
func (Identity) Fit(*frame.Table) (State, error) { return nil, nil }

// Transform は入力のコピーを返す
func (Identity) Transform(t *frame.Table, _ State) (*frame.Table, error) {
	return t.Clone(), nil
}

// String は変換器名を返す
func (Identity) String() string { return "Identity" }
