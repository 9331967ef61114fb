package predictor

import (
	"errors"
	"fmt"
)

// Selector is a pre-fit feature selection transform. It keeps the columns
// listed in Support, in that order.
type Selector struct {
	NFeaturesIn int   `json:"n_features_in"`
	Support     []int `json:"support"`
}

func (s *Selector) Validate() error {
	if s.NFeaturesIn <= 0 {
		return errors.New("n_features_in must be positive")
	}
	if len(s.Support) == 0 {
		return errors.New("support must select at least one feature")
	}
	for _, idx := range s.Support {
		if idx < 0 || idx >= s.NFeaturesIn {
			return fmt.Errorf("support index %d is out of range [0, %d)", idx, s.NFeaturesIn)
		}
	}
	return nil
}

// Transform reduces a raw feature row to the selected columns.
func (s *Selector) Transform(x []float64) ([]float64, error) {
	if len(x) != s.NFeaturesIn {
		return nil, fmt.Errorf("expected %d features, got %d", s.NFeaturesIn, len(x))
	}

	out := make([]float64, len(s.Support))
	for i, idx := range s.Support {
		out[i] = x[idx]
	}
	return out, nil
}
