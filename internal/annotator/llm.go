package annotator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fmuoria/resume-matcher/internal/models"
)

// Generator sends a prompt to a language model and returns its text reply
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

// LLM recognizes entities by prompting a language model for JSON spans.
// Spans that do not occur verbatim in the text are discarded.
type LLM struct {
	gen    Generator
	labels []models.Label
}

// NewLLM creates an LLM annotator restricted to labels
func NewLLM(gen Generator, labels ...models.Label) (*LLM, error) {
	if gen == nil {
		return nil, unavailable("llm", fmt.Errorf("no generator configured"))
	}
	if len(labels) == 0 {
		return nil, unavailable(gen.ModelName(), fmt.Errorf("no labels requested"))
	}
	for _, l := range labels {
		if !l.Valid() {
			return nil, unavailable(gen.ModelName(), fmt.Errorf("unknown label %q", l))
		}
	}
	return &LLM{gen: gen, labels: labels}, nil
}

// ModelName identifies the backing model and the requested labels
func (a *LLM) ModelName() string {
	names := make([]string, len(a.labels))
	for i, l := range a.labels {
		names[i] = string(l)
	}
	return a.gen.ModelName() + "[" + strings.Join(names, ",") + "]"
}

// Extract prompts the model and resolves the returned spans against text
func (a *LLM) Extract(ctx context.Context, text string) ([]models.EntityCandidate, error) {
	if strings.TrimSpace(text) == "" {
		return []models.EntityCandidate{}, nil
	}

	response, err := a.gen.GenerateContent(ctx, a.buildPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM response: %w", err)
	}

	spans, err := parseEntities(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse entities: %w", err)
	}

	return a.resolve(text, spans), nil
}

// verifyDocument is the sample sent by Verify
const verifyDocument = "Jane Doe, Python developer at Delta University."

// Verify sends one small document to the model and checks that the reply
// parses. A failing or unparseable reply is reported as ErrModelUnavailable.
func (a *LLM) Verify(ctx context.Context) error {
	response, err := a.gen.GenerateContent(ctx, a.buildPrompt(verifyDocument))
	if err != nil {
		return unavailable(a.gen.ModelName(), err)
	}
	if _, err := parseEntities(response); err != nil {
		return unavailable(a.gen.ModelName(), err)
	}
	return nil
}

// buildPrompt asks for verbatim spans in a fixed JSON shape
func (a *LLM) buildPrompt(text string) string {
	var sb strings.Builder

	sb.WriteString("You are a named entity recognizer for résumés and job descriptions.\n")
	sb.WriteString("Find every span in the DOCUMENT that belongs to one of these labels:\n")
	for _, l := range a.labels {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", l, labelDescription(l)))
	}
	sb.WriteString("\nCopy each span exactly as it appears in the document, in the order it appears. ")
	sb.WriteString("Report repeated mentions every time they occur.\n\n")
	sb.WriteString("Respond in the following JSON format:\n")
	sb.WriteString(`{"entities": [{"text": "<exact span>", "label": "<LABEL>"}]}` + "\n\n")
	sb.WriteString("## DOCUMENT\n")
	sb.WriteString(text)
	sb.WriteString("\n\nReturn ONLY the JSON object, no additional text.\n")

	return sb.String()
}

func labelDescription(l models.Label) string {
	switch l {
	case models.LabelPerson:
		return "a person's full name"
	case models.LabelEmail:
		return "an email address"
	case models.LabelPhone:
		return "a telephone number"
	case models.LabelOrg:
		return "an organization such as a company, university, college or institute"
	case models.LabelSkill:
		return "a professional or technical skill, tool, language or framework"
	}
	return string(l)
}

type entitySpan struct {
	Text  string       `json:"text"`
	Label models.Label `json:"label"`
}

type entityResponse struct {
	Entities []entitySpan `json:"entities"`
}

// parseEntities extracts the JSON object from a model reply
func parseEntities(response string) ([]entitySpan, error) {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var parsed entityResponse
	if err := json.Unmarshal([]byte(response[startIdx:endIdx+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return parsed.Entities, nil
}

// resolve assigns positions to spans. Repeated spans advance through their
// occurrences; spans with no remaining occurrence or a foreign label are dropped.
func (a *LLM) resolve(text string, spans []entitySpan) []models.EntityCandidate {
	allowed := make(map[models.Label]bool, len(a.labels))
	for _, l := range a.labels {
		allowed[l] = true
	}

	next := make(map[string]int)
	candidates := make([]models.EntityCandidate, 0, len(spans))

	for _, span := range spans {
		label := models.Label(strings.ToUpper(string(span.Label)))
		if !allowed[label] || strings.TrimSpace(span.Text) == "" {
			continue
		}

		from := next[span.Text]
		idx := strings.Index(text[from:], span.Text)
		if idx == -1 {
			continue
		}
		pos := from + idx
		next[span.Text] = pos + len(span.Text)

		candidates = append(candidates, models.EntityCandidate{
			Text:     span.Text,
			Label:    label,
			Position: pos,
		})
	}

	return InDocumentOrder(candidates)
}
