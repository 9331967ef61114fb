package predictor

import "fmt"

// Kind names a failure class of the prediction pipeline.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindTransform      Kind = "transform"
	KindClassification Kind = "classification"
)

// ValidationError reports a questionnaire that cannot be turned into a feature vector.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid questionnaire: %s", e.Reason)
	}
	return fmt.Sprintf("invalid questionnaire: field %q %s", e.Field, e.Reason)
}

// Kind implements KindError.
func (e *ValidationError) Kind() Kind { return KindValidation }

// TransformError reports a feature selector failure.
type TransformError struct {
	Err error
}

func (e *TransformError) Error() string { return fmt.Sprintf("feature selection: %v", e.Err) }

func (e *TransformError) Unwrap() error { return e.Err }

// Kind implements KindError.
func (e *TransformError) Kind() Kind { return KindTransform }

// ClassificationError reports a classifier failure.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string { return fmt.Sprintf("classification: %v", e.Err) }

func (e *ClassificationError) Unwrap() error { return e.Err }

// Kind implements KindError.
func (e *ClassificationError) Kind() Kind { return KindClassification }

// KindError is implemented by every error returned from Predictor.Predict.
type KindError interface {
	error
	Kind() Kind
}
