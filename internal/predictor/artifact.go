package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Artifact is the serialized (feature selector, classifier) pair.
type Artifact struct {
	Selector   *Selector       `json:"selector"`
	Classifier *ClassifierSpec `json:"classifier"`
}

// ReadArtifact reads and validates the artifact stored at path.
func ReadArtifact(path string) (*Artifact, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer file.Close()

	var artifact Artifact
	if err := json.NewDecoder(file).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("decode model artifact %q: %w", path, err)
	}

	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("model artifact %q: %w", path, err)
	}

	return &artifact, nil
}

// Validate checks that the selector and classifier shapes fit together.
func (a *Artifact) Validate() error {
	if a.Selector == nil {
		return errors.New("selector is missing")
	}
	if a.Classifier == nil {
		return errors.New("classifier is missing")
	}

	if err := a.Selector.Validate(); err != nil {
		return fmt.Errorf("selector: %w", err)
	}
	if a.Selector.NFeaturesIn != FeatureCount {
		return fmt.Errorf("selector expects %d input features, questionnaire produces %d", a.Selector.NFeaturesIn, FeatureCount)
	}

	clf, err := a.Classifier.Build()
	if err != nil {
		return fmt.Errorf("classifier: %w", err)
	}

	if got, want := len(a.Selector.Support), clf.NFeatures(); got != want {
		return fmt.Errorf("selector keeps %d features, classifier expects %d", got, want)
	}

	return nil
}
