// Package extraction pulls structured résumé fields out of free text by
// combining annotator output with pattern fallbacks.
package extraction

import (
	"context"

	"github.com/fmuoria/resume-matcher/internal/annotator"
	"github.com/fmuoria/resume-matcher/internal/logger"
	"github.com/fmuoria/resume-matcher/internal/models"
)

// FieldExtractor finds the name, email and phone of a résumé.
// For every field an annotator result wins over a pattern match.
type FieldExtractor struct {
	annotator annotator.Annotator
}

// NewFieldExtractor creates a field extractor over the generic annotator
func NewFieldExtractor(a annotator.Annotator) *FieldExtractor {
	return &FieldExtractor{annotator: a}
}

// Extract returns the fields found in text. Missing fields are nil.
func (e *FieldExtractor) Extract(ctx context.Context, text string) models.ExtractedFields {
	candidates := annotate(ctx, e.annotator, text)

	return models.ExtractedFields{
		Name:  pick(candidates, models.LabelPerson, text, MatchName),
		Email: pick(candidates, models.LabelEmail, text, MatchEmail),
		Phone: pick(candidates, models.LabelPhone, text, MatchPhone),
	}
}

// pick prefers the leftmost annotator entity, then the pattern fallback
func pick(candidates []models.EntityCandidate, label models.Label, text string, fallback func(string) (string, bool)) *string {
	if c, ok := annotator.First(candidates, label); ok {
		return models.StringPtr(c.Text)
	}
	if m, ok := fallback(text); ok {
		return models.StringPtr(m)
	}
	return nil
}

// annotate runs a and treats a failed call as "no entities"
func annotate(ctx context.Context, a annotator.Annotator, text string) []models.EntityCandidate {
	candidates, err := a.Extract(ctx, text)
	if err != nil {
		logger.Ctx(ctx).Warn().
			Err(err).
			Str("model", a.ModelName()).
			Msg("annotator failed, continuing without entities")
		return nil
	}
	return annotator.InDocumentOrder(candidates)
}
