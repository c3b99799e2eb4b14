package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/trackfeat/pkg/errors"
)

// RegisterState は学習済み状態の具象型を gob に登録する。
// State インターフェース経由で保存される型は各パッケージの init で登録すること。
func RegisterState(value interface{}) {
	gob.Register(value)
}

// SaveState は学習済み状態をio.Writerに保存する
//
// パラメータ:
//   - state: 保存する状態（登録済みの具象型を含む構造体）
//   - w: 保存先のWriter
func SaveState(state interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return errors.Wrap(err, "failed to encode fitted state")
	}
	return nil
}

// LoadState はio.Readerから学習済み状態を読み込む
//
// パラメータ:
//   - state: 読み込み先（ポインタ）
//   - r: 読み込み元のReader
func LoadState(state interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(state); err != nil {
		return errors.Wrap(err, "failed to decode fitted state")
	}
	return nil
}

// SaveStateFile は学習済み状態をファイルに保存する
//
// 使用例:
//
//	err := model.SaveStateFile(snapshot, "preprocessor.gob")
func SaveStateFile(state interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	defer file.Close()
	return SaveState(state, file)
}

// LoadStateFile はファイルから学習済み状態を読み込む
func LoadStateFile(state interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()
	return LoadState(state, file)
}
