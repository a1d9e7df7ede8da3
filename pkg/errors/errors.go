// Package errors provides the error taxonomy and warning system used across the predictor.
// Every constructor attaches a stack trace through cockroachdb/errors, and the structured
// error types can be logged as zerolog objects.
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
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("predict2k-warning: %v\n", w)
	}
	// set by pkg/log to avoid an import cycle
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the handler used by Warn when no zerolog sink is installed.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a structured sink for warnings.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a non-fatal warning through the zerolog sink when present,
// otherwise through the plain handler. The sink runs outside the lock, so it
// may itself call Warn.
func Warn(w error) {
	warningMutex.Lock()
	sink, handler := zerologWarnFunc, warningHandler
	warningMutex.Unlock()

	if sink != nil {
		sink(w)
		return
	}
	if handler != nil {
		handler(w)
	}
}

// UndefinedMetricWarning reports a sample that could not contribute to a metric.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Sample    int
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is undefined for sample %d due to %s; sample excluded.", w.Metric, w.Sample, w.Condition)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Int("sample", w.Sample).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning creates an UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string, sample int) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Sample: sample}
}

// ===========================================================================
//
//	Sentinels
//
// ===========================================================================

var (
	// ErrDomain matches every DomainError.
	ErrDomain = New("domain error")

	// ErrInvalidArgument matches ValidationError, DimensionError and InputShapeError.
	ErrInvalidArgument = New("invalid argument")

	// ErrNotFitted matches every NotFittedError.
	ErrNotFitted = New("not fitted")

	// ErrEmptyData is returned when an operation receives no rows.
	ErrEmptyData = New("empty data")
)

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// DomainError is returned when a value lies outside the mathematical domain of an
// operation: a degenerate column (max == min) during scaling, or a non-positive
// power, pace or stroke rate.
type DomainError struct {
	Op     string
	Reason string
	Value  float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("predict2k: %s: %s (got: %v)", e.Op, e.Reason, e.Value)
}

// Is makes errors.Is(err, ErrDomain) true.
func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *DomainError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Float64("value", e.Value).
		Str("type", "DomainError")
}

// NewDomainError creates a DomainError with a stack trace.
func NewDomainError(op, reason string, value float64) error {
	return errors.WithStack(&DomainError{Op: op, Reason: reason, Value: value})
}

// NotFittedError is returned when Transform or Predict style methods run before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("predict2k: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// Is makes errors.Is(err, ErrNotFitted) true.
func (e *NotFittedError) Is(target error) bool {
	return target == ErrNotFitted
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError is returned when row or column counts disagree.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("predict2k: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName(e.Axis), e.Expected, e.Got)
}

// Is makes errors.Is(err, ErrInvalidArgument) true.
func (e *DimensionError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName(e.Axis)).
		Str("type", "DimensionError")
}

func axisName(axis int) string {
	if axis == 0 {
		return "rows"
	}
	return "features"
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError is returned when a parameter fails validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("predict2k: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// Is makes errors.Is(err, ErrInvalidArgument) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// InputShapeError is returned when a feature vector does not match the width a
// model was configured with.
type InputShapeError struct {
	Phase    string // "training", "prediction", "transform"
	Expected []int
	Got      []int
}

func (e *InputShapeError) Error() string {
	return fmt.Sprintf("predict2k: input shape mismatch in %s phase. Expected shape %v, got %v",
		e.Phase, e.Expected, e.Got)
}

// Is makes errors.Is(err, ErrInvalidArgument) true.
func (e *InputShapeError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NewInputShapeError creates an InputShapeError with a stack trace.
func NewInputShapeError(phase string, expected, got []int) error {
	return errors.WithStack(&InputShapeError{Phase: phase, Expected: expected, Got: got})
}

// ValueError is returned when an argument has an unusable value that is not a
// parameter validation failure, e.g. a metric with no valid samples.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("predict2k: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError wraps a lower level failure with the operation that hit it.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("predict2k: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("predict2k: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace.
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError is returned when NaN or Inf shows up in a computation.
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
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
	return fmt.Sprintf("predict2k: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError creates a NumericalInstabilityError with a stack trace.
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	})
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates an error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to err.
func WithStack(err error) error {
	return errors.WithStack(err)
}
