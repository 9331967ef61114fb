package predictor

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	ClassifierLinear = "linear"
	ClassifierSVC    = "svc"

	KernelLinear  = "linear"
	KernelRBF     = "rbf"
	KernelPoly    = "poly"
	KernelSigmoid = "sigmoid"
)

// Classifier maps a selected feature row to a single label.
type Classifier interface {
	Predict(x []float64) (int, error)
	NFeatures() int
}

// ClassifierSpec is the serialized form of a pre-fit classifier.
//
// A "linear" classifier is one-vs-rest: one coefficient row per class, or a
// single row for binary problems where a positive score selects Classes[1].
//
// An "svc" classifier is a one-vs-one kernel machine. DualCoef has
// len(Classes)-1 rows over all support vectors, Intercept has one entry per
// class pair (i, j) with i < j in lexical pair order, and a positive
// decision value votes for class i. This is the libsvm sign convention.
// scikit-learn's public dual_coef_ and intercept_ are negated relative to it
// for binary models, so exporters must negate them (or read the private
// _dual_coef_ and _intercept_) or the predicted class is inverted.
type ClassifierSpec struct {
	Kind    string `json:"kind"`
	Classes []int  `json:"classes"`

	Coef      [][]float64 `json:"coef,omitempty"`
	Intercept []float64   `json:"intercept"`

	Kernel         string      `json:"kernel,omitempty"`
	Gamma          float64     `json:"gamma,omitempty"`
	Coef0          float64     `json:"coef0,omitempty"`
	Degree         int         `json:"degree,omitempty"`
	SupportVectors [][]float64 `json:"support_vectors,omitempty"`
	NSupport       []int       `json:"n_support,omitempty"`
	DualCoef       [][]float64 `json:"dual_coef,omitempty"`
}

// Build validates the parameters and returns a ready classifier.
func (s *ClassifierSpec) Build() (Classifier, error) {
	if len(s.Classes) < 2 {
		return nil, fmt.Errorf("at least 2 classes are required, got %d", len(s.Classes))
	}

	switch strings.ToLower(strings.TrimSpace(s.Kind)) {
	case ClassifierLinear:
		return newLinear(s)
	case ClassifierSVC, "":
		return newSVC(s)
	default:
		return nil, fmt.Errorf("unsupported classifier kind %q", s.Kind)
	}
}

type linearClassifier struct {
	classes   []int
	coef      [][]float64
	intercept []float64
	features  int
}

func newLinear(s *ClassifierSpec) (*linearClassifier, error) {
	rows := len(s.Classes)
	if rows == 2 {
		rows = 1
	}
	if len(s.Coef) != rows {
		return nil, fmt.Errorf("linear: expected %d coefficient rows, got %d", rows, len(s.Coef))
	}
	if len(s.Intercept) != rows {
		return nil, fmt.Errorf("linear: expected %d intercepts, got %d", rows, len(s.Intercept))
	}

	features := len(s.Coef[0])
	if features == 0 {
		return nil, errors.New("linear: coefficient rows are empty")
	}
	for i, row := range s.Coef {
		if len(row) != features {
			return nil, fmt.Errorf("linear: coefficient row %d has %d values, expected %d", i, len(row), features)
		}
	}

	return &linearClassifier{
		classes:   s.Classes,
		coef:      s.Coef,
		intercept: s.Intercept,
		features:  features,
	}, nil
}

func (c *linearClassifier) NFeatures() int { return c.features }

func (c *linearClassifier) Predict(x []float64) (int, error) {
	if len(x) != c.features {
		return 0, fmt.Errorf("expected %d features, got %d", c.features, len(x))
	}

	if len(c.coef) == 1 {
		if dot(c.coef[0], x)+c.intercept[0] > 0 {
			return c.classes[1], nil
		}
		return c.classes[0], nil
	}

	best := 0
	bestScore := math.Inf(-1)
	for k, row := range c.coef {
		score := dot(row, x) + c.intercept[k]
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	return c.classes[best], nil
}

type kernelFunc func(a, b []float64) float64

type svcClassifier struct {
	classes   []int
	vectors   [][]float64
	starts    []int
	counts    []int
	dualCoef  [][]float64
	intercept []float64
	kernel    kernelFunc
	features  int
}

func newSVC(s *ClassifierSpec) (*svcClassifier, error) {
	n := len(s.Classes)

	if len(s.NSupport) != n {
		return nil, fmt.Errorf("svc: expected %d n_support entries, got %d", n, len(s.NSupport))
	}

	total := 0
	starts := make([]int, n)
	for i, count := range s.NSupport {
		if count < 0 {
			return nil, fmt.Errorf("svc: negative support count for class %d", s.Classes[i])
		}
		starts[i] = total
		total += count
	}
	if total == 0 || total != len(s.SupportVectors) {
		return nil, fmt.Errorf("svc: n_support sums to %d, got %d support vectors", total, len(s.SupportVectors))
	}

	features := len(s.SupportVectors[0])
	if features == 0 {
		return nil, errors.New("svc: support vectors are empty")
	}
	for i, sv := range s.SupportVectors {
		if len(sv) != features {
			return nil, fmt.Errorf("svc: support vector %d has %d values, expected %d", i, len(sv), features)
		}
	}

	if len(s.DualCoef) != n-1 {
		return nil, fmt.Errorf("svc: expected %d dual_coef rows, got %d", n-1, len(s.DualCoef))
	}
	for i, row := range s.DualCoef {
		if len(row) != total {
			return nil, fmt.Errorf("svc: dual_coef row %d has %d values, expected %d", i, len(row), total)
		}
	}

	if pairs := n * (n - 1) / 2; len(s.Intercept) != pairs {
		return nil, fmt.Errorf("svc: expected %d intercepts, got %d", pairs, len(s.Intercept))
	}

	kernel, err := buildKernel(s)
	if err != nil {
		return nil, err
	}

	return &svcClassifier{
		classes:   s.Classes,
		vectors:   s.SupportVectors,
		starts:    starts,
		counts:    s.NSupport,
		dualCoef:  s.DualCoef,
		intercept: s.Intercept,
		kernel:    kernel,
		features:  features,
	}, nil
}

func buildKernel(s *ClassifierSpec) (kernelFunc, error) {
	kernel := strings.ToLower(strings.TrimSpace(s.Kernel))
	if kernel == "" {
		kernel = KernelRBF
	}

	if kernel != KernelLinear && s.Gamma <= 0 {
		return nil, fmt.Errorf("svc: %s kernel requires a positive gamma", kernel)
	}

	gamma, coef0 := s.Gamma, s.Coef0

	switch kernel {
	case KernelLinear:
		return dot, nil
	case KernelRBF:
		return func(a, b []float64) float64 {
			var sum float64
			for i := range a {
				d := a[i] - b[i]
				sum += d * d
			}
			return math.Exp(-gamma * sum)
		}, nil
	case KernelPoly:
		degree := s.Degree
		if degree <= 0 {
			degree = 3
		}
		return func(a, b []float64) float64 {
			return math.Pow(gamma*dot(a, b)+coef0, float64(degree))
		}, nil
	case KernelSigmoid:
		return func(a, b []float64) float64 {
			return math.Tanh(gamma*dot(a, b) + coef0)
		}, nil
	default:
		return nil, fmt.Errorf("svc: unsupported kernel %q", s.Kernel)
	}
}

func (c *svcClassifier) NFeatures() int { return c.features }

func (c *svcClassifier) Predict(x []float64) (int, error) {
	if len(x) != c.features {
		return 0, fmt.Errorf("expected %d features, got %d", c.features, len(x))
	}

	k := make([]float64, len(c.vectors))
	for i, sv := range c.vectors {
		k[i] = c.kernel(sv, x)
	}

	n := len(c.classes)
	votes := make([]int, n)
	p := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum := c.intercept[p]
			for s := c.starts[i]; s < c.starts[i]+c.counts[i]; s++ {
				sum += c.dualCoef[j-1][s] * k[s]
			}
			for s := c.starts[j]; s < c.starts[j]+c.counts[j]; s++ {
				sum += c.dualCoef[i][s] * k[s]
			}

			if sum > 0 {
				votes[i]++
			} else {
				votes[j]++
			}
			p++
		}
	}

	// ties go to the lowest class index
	winner := 0
	for i := 1; i < n; i++ {
		if votes[i] > votes[winner] {
			winner = i
		}
	}
	return c.classes[winner], nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
