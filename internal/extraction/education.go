package extraction

import (
	"context"
	"strings"

	"github.com/fmuoria/resume-matcher/internal/annotator"
	"github.com/fmuoria/resume-matcher/internal/models"
)

// EducationKeywords mark an organization as an educational institution
var EducationKeywords = []string{"university", "college", "institute"}

// EducationExtractor lists the educational institutions named in a résumé
type EducationExtractor struct {
	annotator annotator.Annotator
}

// NewEducationExtractor creates an education extractor over the generic annotator
func NewEducationExtractor(a annotator.Annotator) *EducationExtractor {
	return &EducationExtractor{annotator: a}
}

// Extract returns every ORG entity that looks like a school, in document
// order and without deduplication
func (e *EducationExtractor) Extract(ctx context.Context, text string) []string {
	institutions := make([]string, 0)
	for _, c := range annotate(ctx, e.annotator, text) {
		if c.Label == models.LabelOrg && isEducational(c.Text) {
			institutions = append(institutions, c.Text)
		}
	}
	return institutions
}

func isEducational(org string) bool {
	lower := strings.ToLower(org)
	for _, kw := range EducationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
