// Package wheel implements weighted prize selection and the mapping between a
// prize index and the rotation that lands the wheel pointer on it.
//
// Everything here is stateless. Callers own the spin state and pass it in.
package wheel

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"prizewheel/internal/models"
)

// ErrInvalidWeights is matched by every InvalidWeightsError.
var ErrInvalidWeights = errors.New("wheel: no prize with a positive weight")

// InvalidWeightsError reports a prize list that cannot be drawn from: it is
// empty or none of its weights is positive.
type InvalidWeightsError struct {
	Count int
	Total float64
}

func (e *InvalidWeightsError) Error() string {
	return fmt.Sprintf("wheel: invalid weights (prizes=%d, total=%g)", e.Count, e.Total)
}

// Is lets errors.Is(err, ErrInvalidWeights) match.
func (e *InvalidWeightsError) Is(target error) bool {
	return target == ErrInvalidWeights
}

// Source yields uniformly distributed values in [0, 1).
// A Source shared by a Selector used from several goroutines must be safe for
// concurrent use.
type Source interface {
	Float64() float64
}

// SourceFunc adapts a function to a Source.
type SourceFunc func() float64

func (f SourceFunc) Float64() float64 { return f() }

// Selector draws prize indexes according to their weights.
type Selector struct {
	src Source
}

// NewSelector returns a Selector reading from src. A nil src uses the
// package-level math/rand/v2 generator.
func NewSelector(src Source) *Selector {
	if src == nil {
		src = SourceFunc(rand.Float64)
	}
	return &Selector{src: src}
}

// Draw picks a prize index with probability weight_i/total.
func (s *Selector) Draw(prizes []models.Prize) (int, error) {
	weights := make([]float64, len(prizes))
	for i, p := range prizes {
		weights[i] = p.Probability
	}
	return s.DrawWeights(weights)
}

// DrawWeights draws r from [0, total) and returns the first index whose
// cumulative weight is >= r. Non-positive weights add nothing to the
// cumulative sum and are never returned.
func (s *Selector) DrawWeights(weights []float64) (int, error) {
	total := 0.0
	last := -1
	for i, w := range weights {
		if w > 0 {
			total += w
			last = i
		}
	}
	if total <= 0 {
		return 0, &InvalidWeightsError{Count: len(weights), Total: total}
	}

	r := s.src.Float64() * total
	acc := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		if acc >= r {
			return i, nil
		}
	}
	// Rounding can leave acc a hair below r.
	return last, nil
}
