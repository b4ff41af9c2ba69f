package extraction

import (
	"context"
	"sort"
	"strings"

	"github.com/fmuoria/resume-matcher/internal/annotator"
	"github.com/fmuoria/resume-matcher/internal/models"
)

// SkillExtractor lists the skills recognized by a dedicated skill annotator
type SkillExtractor struct {
	annotator annotator.Annotator
}

// NewSkillExtractor creates a skill extractor over the skill annotator
func NewSkillExtractor(a annotator.Annotator) *SkillExtractor {
	return &SkillExtractor{annotator: a}
}

// Extract returns the lower-cased text of every SKILL entity in document
// order, duplicates included
func (e *SkillExtractor) Extract(ctx context.Context, text string) []string {
	skills := make([]string, 0)
	for _, c := range annotate(ctx, e.annotator, text) {
		if c.Label == models.LabelSkill {
			skills = append(skills, strings.ToLower(c.Text))
		}
	}
	return skills
}

// Frequencies counts skill occurrences, most frequent first. Ties keep the
// order of first appearance.
func Frequencies(skills []string) []models.SkillCount {
	index := make(map[string]int)
	counts := make([]models.SkillCount, 0)

	for _, s := range skills {
		if i, ok := index[s]; ok {
			counts[i].Count++
			continue
		}
		index[s] = len(counts)
		counts = append(counts, models.SkillCount{Skill: s, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}
