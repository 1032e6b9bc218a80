// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 学習・推論パイプラインの各段階で発生するエラーを構造化し、
// 種類ごとに判別できるようにします。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("houseprice-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler は警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// UnseenCategoryWarning は学習時に存在しなかったカテゴリが推論時に渡された場合の警告です。
// エラーではなく、フォールバックコードで処理が継続されたことを示します。
type UnseenCategoryWarning struct {
	Field        string
	Value        string
	FallbackCode int
}

func (w *UnseenCategoryWarning) Error() string {
	return fmt.Sprintf("unseen category %q for %s; encoded with fallback code %d", w.Value, w.Field, w.FallbackCode)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UnseenCategoryWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("field", w.Field).
		Str("value", w.Value).
		Int("fallback_code", w.FallbackCode).
		Str("type", "UnseenCategoryWarning")
}

// NewUnseenCategoryWarning は新しいUnseenCategoryWarningを作成します。
func NewUnseenCategoryWarning(field, value string, fallbackCode int) *UnseenCategoryWarning {
	return &UnseenCategoryWarning{Field: field, Value: value, FallbackCode: fallbackCode}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError は推定器が未学習の状態で `Predict` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("houseprice: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// NotReadyError は学習が完了していないパイプラインに予測を要求した場合のエラーです。
// 初期化が同期的に行われる限り発生しませんが、未学習モデルからの予測を防ぐために検査します。
type NotReadyError struct {
	Component string
	Operation string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("houseprice: %s is not ready: training has not completed, cannot %s", e.Component, e.Operation)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotReadyError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("component", e.Component).
		Str("operation", e.Operation).
		Str("type", "NotReadyError")
}

// NewNotReadyError は新しいNotReadyErrorを作成し、スタックトレースを付与します。
func NewNotReadyError(component, operation string) error {
	return errors.WithStack(&NotReadyError{Component: component, Operation: operation})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("houseprice: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は推定器や設定のパラメータ検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("houseprice: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// MalformedInputError は予測リクエストの必須フィールドが欠けている、
// または型・値が不正な場合のエラーです。デフォルト値での補完は行いません。
type MalformedInputError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *MalformedInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("houseprice: malformed input: %s", e.Reason)
	}
	if e.Value == nil {
		return fmt.Sprintf("houseprice: malformed input: field '%s' %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("houseprice: malformed input: field '%s' %s (got: %v)", e.Field, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *MalformedInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("field", e.Field).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "MalformedInputError")
}

// NewMalformedInputError は新しいMalformedInputErrorを作成し、スタックトレースを付与します。
func NewMalformedInputError(field, reason string, value interface{}) error {
	return errors.WithStack(&MalformedInputError{Field: field, Reason: reason, Value: value})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("houseprice: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError は機械学習モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("houseprice: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("houseprice: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// TrainingDataError は起動時の学習で生成データの不整合が見つかった場合の致命的エラーです。
// 部分的に学習されたモデルは決して使用されません。
type TrainingDataError struct {
	Stage string
	Err   error
}

func (e *TrainingDataError) Error() string {
	return fmt.Sprintf("houseprice: training aborted at %s: %v", e.Stage, e.Err)
}

func (e *TrainingDataError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *TrainingDataError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", e.Stage).
		Str("cause", fmt.Sprint(e.Err)).
		Str("type", "TrainingDataError")
}

// NewTrainingDataError は原因エラーをステージ名付きで包みます。
func NewTrainingDataError(stage string, err error) error {
	return errors.WithStack(&TrainingDataError{Stage: stage, Err: err})
}

// ===========================================================================
//
//	エラーコード
//
// ===========================================================================

// Stable codes for programmatic handling and log attributes.
const (
	CodeNotReady          = "NOT_READY"
	CodeNotFitted         = "NOT_FITTED"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidParameter  = "INVALID_PARAMETER"
	CodeDimensionMismatch = "DIMENSION_MISMATCH"
	CodeTrainingData      = "TRAINING_DATA"
	CodeNumerical         = "NUMERICAL_INSTABILITY"
	CodePanic             = "PANIC"
	CodeInternal          = "INTERNAL"
)

// Code はエラーの種類を表す安定したコードを返します。nil の場合は空文字列です。
// 外側の型が優先されるため、TrainingDataError に包まれた DimensionError は TRAINING_DATA になります。
func Code(err error) string {
	if err == nil {
		return ""
	}

	var (
		trainingErr *TrainingDataError
		notReady    *NotReadyError
		malformed   *MalformedInputError
		notFitted   *NotFittedError
		validation  *ValidationError
		dimension   *DimensionError
		numerical   *NumericalInstabilityError
		panicErr    *PanicError
	)
	switch {
	case errors.As(err, &trainingErr):
		return CodeTrainingData
	case errors.As(err, &notReady):
		return CodeNotReady
	case errors.As(err, &malformed):
		return CodeInvalidInput
	case errors.As(err, &notFitted):
		return CodeNotFitted
	case errors.As(err, &validation):
		return CodeInvalidParameter
	case errors.As(err, &dimension):
		return CodeDimensionMismatch
	case errors.As(err, &numerical):
		return CodeNumerical
	case errors.As(err, &panicErr):
		return CodePanic
	default:
		return CodeInternal
	}
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	数値計算エラー型
//
// ===========================================================================

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf などを検出します。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "ols_weights", "scaler_mean"）
	Values    []float64 // 問題のある値
	Index     int       // 最初に問題が見つかった位置
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("houseprice: numerical instability detected in %s at index %d. Values: [%s]",
		e.Operation, e.Index, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, index int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Index:     index,
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")
)
