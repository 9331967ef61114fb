// Package predictor turns an aptitude questionnaire into a career label using a
// pre-fit feature selector and classifier.
package predictor

import (
	"fmt"

	"go.uber.org/zap"
)

// Transformer is a pre-fit feature transform.
type Transformer interface {
	Transform(x []float64) ([]float64, error)
}

// Predictor is immutable after construction and safe for concurrent use.
type Predictor struct {
	selector   Transformer
	classifier Classifier
	logger     *zap.Logger
}

// New wires an already built selector and classifier.
func New(selector Transformer, classifier Classifier, logger *zap.Logger) *Predictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Predictor{
		selector:   selector,
		classifier: classifier,
		logger:     logger,
	}
}

// FromArtifact builds a Predictor from a validated artifact.
func FromArtifact(artifact *Artifact, logger *zap.Logger) (*Predictor, error) {
	if err := artifact.Validate(); err != nil {
		return nil, err
	}

	clf, err := artifact.Classifier.Build()
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	return New(artifact.Selector, clf, logger), nil
}

// Load reads the artifact at path and builds a Predictor from it.
func Load(path string, logger *zap.Logger) (*Predictor, error) {
	artifact, err := ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	return FromArtifact(artifact, logger)
}

// Predict runs the whole pipeline for a raw questionnaire. Returned errors
// implement KindError.
func (p *Predictor) Predict(raw map[string]any) (int, error) {
	q, err := DecodeQuestionnaire(raw)
	if err != nil {
		return 0, err
	}
	return p.PredictQuestionnaire(q)
}

// PredictQuestionnaire runs the pipeline for an already decoded questionnaire.
func (p *Predictor) PredictQuestionnaire(q *Questionnaire) (int, error) {
	return p.PredictVector(q.Vector())
}

// PredictVector classifies a raw feature vector in questionnaire field order.
func (p *Predictor) PredictVector(features []float64) (int, error) {
	if len(features) != FeatureCount {
		return 0, &ValidationError{Reason: fmt.Sprintf("expected %d features, got %d", FeatureCount, len(features))}
	}

	selected, err := p.selector.Transform(features)
	if err != nil {
		return 0, &TransformError{Err: err}
	}

	label, err := p.classifier.Predict(selected)
	if err != nil {
		return 0, &ClassificationError{Err: err}
	}

	p.logger.Debug("prediction",
		zap.Float64s("features", features),
		zap.Float64s("selected", selected),
		zap.Int("label", label),
	)

	return label, nil
}
