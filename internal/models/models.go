package models

import "strings"

// Label is the category an annotator assigns to a text span
type Label string

// Entity labels produced by annotators
const (
	LabelPerson Label = "PERSON"
	LabelEmail  Label = "EMAIL"
	LabelPhone  Label = "PHONE"
	LabelOrg    Label = "ORG"
	LabelSkill  Label = "SKILL"
)

// Valid reports whether l is one of the known labels
func (l Label) Valid() bool {
	switch l {
	case LabelPerson, LabelEmail, LabelPhone, LabelOrg, LabelSkill:
		return true
	}
	return false
}

// EntityCandidate is a typed span returned by an annotator.
// Position is the byte offset of Text in the annotated document.
type EntityCandidate struct {
	Text     string `json:"text"`
	Label    Label  `json:"label"`
	Position int    `json:"position"`
}

// ExtractedFields holds the identity and contact fields of a résumé.
// A nil field means the value was not found.
type ExtractedFields struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// SkillCount is the number of occurrences of a skill in a skill list
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// ExtractRequest is the payload for field, education and skill extraction
type ExtractRequest struct {
	Resume string `json:"resume"`
}

// ExtractResponse is the result of extracting a résumé
type ExtractResponse struct {
	Fields    ExtractedFields `json:"fields"`
	Education []string        `json:"education"`
	Skills    []string        `json:"skills"`
}

// CompareRequest is the payload for scoring and graph building
type CompareRequest struct {
	JobDescription string   `json:"job_description"`
	Skills         []string `json:"skills"`
}

// CompareResponse carries a similarity score
type CompareResponse struct {
	Score        float64 `json:"score"`
	ScorePercent float64 `json:"score_percent"`
}

// AnalyzeRequest is the payload for a full résumé analysis
type AnalyzeRequest struct {
	Resume         string `json:"resume"`
	JobDescription string `json:"job_description"`
}

// AnalysisResult is the output of one full extraction, comparison and graph build
type AnalysisResult struct {
	RequestID         string          `json:"request_id"`
	Fields            ExtractedFields `json:"fields"`
	Education         []string        `json:"education"`
	Skills            []string        `json:"skills"`
	JobSkills         []string        `json:"job_skills"`
	SkillFrequencies  []SkillCount    `json:"skill_frequencies"`
	Score             float64         `json:"score"`
	ScorePercent      float64         `json:"score_percent"`
	Graph             KnowledgeGraph  `json:"graph"`
	HasJobDescription bool            `json:"has_job_description"`
	Timestamp         string          `json:"timestamp"`
}

// NormalizeSkill returns the identity used for a skill node
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to string or fallback when p is nil
func Deref(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
