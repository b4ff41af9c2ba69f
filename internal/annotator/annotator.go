// Package annotator defines the entity recognition capability consumed by the
// extractors and the implementations that back it: a dictionary gazetteer, an
// LLM-backed recognizer, an LRU cache and a per-call deadline.
package annotator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/fmuoria/resume-matcher/internal/models"
)

// ErrModelUnavailable is returned when an annotator model cannot be loaded
var ErrModelUnavailable = errors.New("annotator model unavailable")

// Annotator returns typed entity spans found in text.
// Implementations are safe for concurrent use and are not mutated by Extract.
type Annotator interface {
	Extract(ctx context.Context, text string) ([]models.EntityCandidate, error)
	ModelName() string
}

// ModelError reports which model failed to load
type ModelError struct {
	Model string
	Err   error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrModelUnavailable, e.Model)
	}
	return fmt.Sprintf("%s: %s: %v", ErrModelUnavailable, e.Model, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrModelUnavailable) true for every ModelError
func (e *ModelError) Is(target error) bool {
	return target == ErrModelUnavailable
}

func unavailable(model string, err error) error {
	return &ModelError{Model: model, Err: err}
}

// InDocumentOrder returns a copy of candidates sorted by position.
// Candidates at the same position keep their relative order.
func InDocumentOrder(candidates []models.EntityCandidate) []models.EntityCandidate {
	ordered := make([]models.EntityCandidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})
	return ordered
}

// First returns the leftmost candidate carrying label
func First(candidates []models.EntityCandidate, label models.Label) (models.EntityCandidate, bool) {
	for _, c := range InDocumentOrder(candidates) {
		if c.Label == label {
			return c, true
		}
	}
	return models.EntityCandidate{}, false
}

// Filter returns the candidates carrying label, in document order
func Filter(candidates []models.EntityCandidate, label models.Label) []models.EntityCandidate {
	out := make([]models.EntityCandidate, 0, len(candidates))
	for _, c := range InDocumentOrder(candidates) {
		if c.Label == label {
			out = append(out, c)
		}
	}
	return out
}
