package deepdream

import (
	"errors"
	"fmt"
)

var (
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrModelEvaluation  = errors.New("model evaluation failed")
)

// ShapeMismatchError reports two images (or an image and its gradient) that
// cannot be combined.
type ShapeMismatchError struct {
	Op   string
	Want Shape
	Got  Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: want %v, got %v", e.Op, e.Want, e.Got)
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }

// InvalidParameterError reports a rejected numeric parameter.
type InvalidParameterError struct {
	Name  string
	Value any
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %v", e.Name, e.Value)
}

func (e *InvalidParameterError) Unwrap() error { return ErrInvalidParameter }

// ModelEvaluationError is returned by a GradientOracle that cannot evaluate
// an image/objective pair. The renderers pass it through untouched.
type ModelEvaluationError struct {
	Layer string
	Err   error
}

func (e *ModelEvaluationError) Error() string {
	if e.Layer == "" {
		return fmt.Sprintf("model evaluation: %v", e.Err)
	}
	return fmt.Sprintf("model evaluation at %q: %v", e.Layer, e.Err)
}

func (e *ModelEvaluationError) Unwrap() []error { return []error{ErrModelEvaluation, e.Err} }

func invalid(name string, value any) error {
	return &InvalidParameterError{Name: name, Value: value}
}
