package predictor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

const testArtifact = "testdata/model.json"

func loadTestPredictor(t *testing.T) *Predictor {
	t.Helper()
	p, err := Load(testArtifact, zap.NewNop())
	if err != nil {
		t.Fatalf("loading test artifact: %v", err)
	}
	return p
}

func TestPredict(t *testing.T) {
	t.Parallel()

	p := loadTestPredictor(t)

	tests := []struct {
		name        string
		schoolType  string
		programming float64
		expect      int
	}{
		{name: "public low programming", schoolType: "Public", programming: 3, expect: 0},
		{name: "public high programming", schoolType: "Public", programming: 8, expect: 1},
		{name: "public boundary", schoolType: "Public", programming: 5, expect: 1},
		{name: "private high programming", schoolType: "Private", programming: 8, expect: 2},
		{name: "private low programming", schoolType: "Private", programming: 3, expect: 2},
		{name: "unknown school type", schoolType: "Homeschool", programming: 8, expect: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := validQuestionnaire()
			raw["school_type"] = tt.schoolType
			raw["programming_skill"] = tt.programming

			got, err := p.Predict(raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestPredictDeterministic(t *testing.T) {
	p := loadTestPredictor(t)
	raw := validQuestionnaire()

	first, err := p.Predict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]int, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = p.Predict(raw)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != first {
			t.Fatalf("call %d: expected %d, got %d", i, first, got)
		}
	}
}

func TestPredictMissingField(t *testing.T) {
	p := loadTestPredictor(t)
	raw := validQuestionnaire()
	delete(raw, "sslc")

	_, err := p.Predict(raw)
	var kerr KindError
	if !errors.As(err, &kerr) {
		t.Fatalf("expected KindError, got %v", err)
	}
	if kerr.Kind() != KindValidation {
		t.Fatalf("expected validation kind, got %q", kerr.Kind())
	}
	if !strings.Contains(err.Error(), "sslc") {
		t.Fatalf("expected error to name the field, got %q", err.Error())
	}
}

type failingTransformer struct{}

func (failingTransformer) Transform([]float64) ([]float64, error) {
	return nil, errors.New("broken selector")
}

type failingClassifier struct{}

func (failingClassifier) Predict([]float64) (int, error) { return 0, errors.New("broken model") }

func (failingClassifier) NFeatures() int { return 3 }

func TestPredictErrorKinds(t *testing.T) {
	t.Parallel()

	selector := &Selector{NFeaturesIn: FeatureCount, Support: []int{0, 1, 5}}

	tests := []struct {
		name      string
		predictor *Predictor
		kind      Kind
	}{
		{
			name:      "transform failure",
			predictor: New(failingTransformer{}, failingClassifier{}, nil),
			kind:      KindTransform,
		},
		{
			name:      "classification failure",
			predictor: New(selector, failingClassifier{}, nil),
			kind:      KindClassification,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.predictor.Predict(validQuestionnaire())
			var kerr KindError
			if !errors.As(err, &kerr) {
				t.Fatalf("expected KindError, got %v", err)
			}
			if kerr.Kind() != tt.kind {
				t.Fatalf("expected kind %q, got %q", tt.kind, kerr.Kind())
			}
		})
	}
}

func TestPredictVectorLength(t *testing.T) {
	p := loadTestPredictor(t)
	if _, err := p.PredictVector([]float64{1, 2, 3}); err == nil {
		t.Fatalf("expected error for short vector")
	}
}

func TestReadArtifactErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid json",
			content: "{",
			wantErr: "decode model artifact",
		},
		{
			name:    "missing classifier",
			content: `{"selector": {"n_features_in": 17, "support": [0]}}`,
			wantErr: "classifier is missing",
		},
		{
			name:    "selector out of range",
			content: `{"selector": {"n_features_in": 17, "support": [17]}, "classifier": {"kind": "linear"}}`,
			wantErr: "out of range",
		},
		{
			name:    "wrong input width",
			content: `{"selector": {"n_features_in": 16, "support": [0]}, "classifier": {"kind": "linear"}}`,
			wantErr: "expects 16 input features",
		},
		{
			name: "selector and classifier disagree",
			content: `{"selector": {"n_features_in": 17, "support": [0, 1]},
				"classifier": {"kind": "linear", "classes": [0, 1], "coef": [[1, 2, 3]], "intercept": [0]}}`,
			wantErr: "classifier expects 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "model.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("write artifact: %v", err)
			}

			_, err := ReadArtifact(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReadArtifactMissingFile(t *testing.T) {
	if _, err := ReadArtifact(filepath.Join(t.TempDir(), "absent.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
