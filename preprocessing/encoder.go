package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// FallbackCode is the code assigned to values absent from the vocabulary.
const FallbackCode = 0

// EncodingStatus tells whether a value was found in the vocabulary.
type EncodingStatus int

const (
	// Known means the value was observed during Fit.
	Known EncodingStatus = iota
	// Fallback means the value was unseen and FallbackCode was used instead.
	Fallback
)

func (s EncodingStatus) String() string {
	if s == Fallback {
		return "fallback"
	}
	return "known"
}

// Encoding is the tagged result of LabelEncoder.Transform.
type Encoding struct {
	Code   int
	Status EncodingStatus
}

// IsFallback reports whether the value was defaulted.
func (e Encoding) IsFallback() bool { return e.Status == Fallback }

// LabelEncoder はカテゴリ文字列を整数コードに変換する
//
// 語彙は Fit に渡された値の初出順に 0, 1, 2, ... を割り当てる。
// 未知の値は失敗させずに FallbackCode (0) へ写像し、Status を Fallback にする。
// 推論を止めないための意図的な寛容さで、コード0が既知のカテゴリと衝突する点は許容している。
type LabelEncoder struct {
	model.BaseEstimator

	// Field はログや警告に使うフィールド名
	Field string

	classes []string
	index   map[string]int
}

// NewLabelEncoder は field 用の LabelEncoder を作成する
func NewLabelEncoder(field string) *LabelEncoder {
	return &LabelEncoder{Field: field}
}

// Fit は初出順に語彙を構築する
func (e *LabelEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	classes := make([]string, 0, 8)
	index := make(map[string]int, 8)
	for _, v := range values {
		if _, ok := index[v]; ok {
			continue
		}
		index[v] = len(classes)
		classes = append(classes, v)
	}

	e.classes = classes
	e.index = index
	e.SetFitted()
	return nil
}

// Transform は値をコードに変換する。学習前は NotFittedError を返す。
func (e *LabelEncoder) Transform(value string) (Encoding, error) {
	if err := e.CheckFitted("LabelEncoder", "Transform"); err != nil {
		return Encoding{}, err
	}
	return e.encode(value), nil
}

func (e *LabelEncoder) encode(value string) Encoding {
	if code, ok := e.index[value]; ok {
		return Encoding{Code: code, Status: Known}
	}
	errors.Warn(errors.NewUnseenCategoryWarning(e.Field, value, FallbackCode))
	return Encoding{Code: FallbackCode, Status: Fallback}
}

// TransformAll は学習済みの語彙で複数の値を変換する
func (e *LabelEncoder) TransformAll(values []string) ([]Encoding, error) {
	if err := e.CheckFitted("LabelEncoder", "TransformAll"); err != nil {
		return nil, err
	}
	out := make([]Encoding, len(values))
	for i, v := range values {
		out[i] = e.encode(v)
	}
	return out, nil
}

// FitTransform は Fit の後に全ての値のコードを返す
func (e *LabelEncoder) FitTransform(values []string) ([]int, error) {
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	codes := make([]int, len(values))
	for i, v := range values {
		codes[i] = e.index[v]
	}
	return codes, nil
}

// InverseTransform はコードから元のカテゴリ文字列を返す
func (e *LabelEncoder) InverseTransform(code int) (string, error) {
	if err := e.CheckFitted("LabelEncoder", "InverseTransform"); err != nil {
		return "", err
	}
	if code < 0 || code >= len(e.classes) {
		return "", errors.NewValueError("LabelEncoder.InverseTransform",
			fmt.Sprintf("code %d out of range [0, %d)", code, len(e.classes)))
	}
	return e.classes[code], nil
}

// Classes は語彙をコード順に返す（コピー）
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// String はエンコーダの文字列表現を返す
func (e *LabelEncoder) String() string {
	return fmt.Sprintf("LabelEncoder(field=%s, n_classes=%d)", e.Field, len(e.classes))
}
