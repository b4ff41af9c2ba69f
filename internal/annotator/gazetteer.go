package annotator

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/fmuoria/resume-matcher/internal/models"
)

//go:embed data/skills.yaml
var defaultSkillsYAML []byte

// GazetteerFile is the on-disk format of a gazetteer model
type GazetteerFile struct {
	Name     string           `yaml:"name"`
	Version  string           `yaml:"version"`
	Entities []GazetteerGroup `yaml:"entities"`
}

// GazetteerGroup lists the terms recognized under one label
type GazetteerGroup struct {
	Label models.Label `yaml:"label"`
	Terms []string     `yaml:"terms"`
}

type gazetteerTerm struct {
	term  string
	label models.Label
}

// Gazetteer recognizes entities by dictionary lookup.
// Matching is case-insensitive, word-bounded, leftmost and longest-first;
// returned spans never overlap.
type Gazetteer struct {
	name    string
	byFirst map[rune][]gazetteerTerm
	size    int
}

// NewGazetteer builds a gazetteer from a parsed model file
func NewGazetteer(file GazetteerFile) (*Gazetteer, error) {
	name := file.Name
	if name == "" {
		name = "gazetteer"
	}
	if file.Version != "" {
		name = name + "@" + file.Version
	}

	g := &Gazetteer{
		name:    name,
		byFirst: make(map[rune][]gazetteerTerm),
	}
	seen := make(map[string]bool)

	for _, group := range file.Entities {
		if !group.Label.Valid() {
			return nil, unavailable(name, fmt.Errorf("unknown label %q", group.Label))
		}
		for _, term := range group.Terms {
			term = strings.TrimSpace(term)
			if term == "" || seen[strings.ToLower(term)] {
				continue
			}
			seen[strings.ToLower(term)] = true

			first, _ := utf8.DecodeRuneInString(term)
			key := unicode.ToLower(first)
			g.byFirst[key] = append(g.byFirst[key], gazetteerTerm{term: term, label: group.Label})
			g.size++
		}
	}

	if g.size == 0 {
		return nil, unavailable(name, fmt.Errorf("no terms defined"))
	}

	for key := range g.byFirst {
		terms := g.byFirst[key]
		sort.SliceStable(terms, func(i, j int) bool {
			return len(terms[i].term) > len(terms[j].term)
		})
	}

	return g, nil
}

// ParseGazetteer builds a gazetteer from YAML
func ParseGazetteer(data []byte) (*Gazetteer, error) {
	var file GazetteerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, unavailable("gazetteer", fmt.Errorf("failed to parse gazetteer: %w", err))
	}
	return NewGazetteer(file)
}

// LoadGazetteer reads a YAML gazetteer from path
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, unavailable(path, fmt.Errorf("failed to read gazetteer: %w", err))
	}
	return ParseGazetteer(data)
}

// DefaultSkillGazetteer returns the built-in SKILL taxonomy
func DefaultSkillGazetteer() (*Gazetteer, error) {
	return ParseGazetteer(defaultSkillsYAML)
}

// ModelName identifies the gazetteer and its version
func (g *Gazetteer) ModelName() string {
	return g.name
}

// Len returns the number of distinct terms
func (g *Gazetteer) Len() int {
	return g.size
}

// Extract scans text left to right and returns every dictionary hit
func (g *Gazetteer) Extract(ctx context.Context, text string) ([]models.EntityCandidate, error) {
	candidates := make([]models.EntityCandidate, 0)
	prev := rune(-1)

	for i := 0; i < len(text); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r, width := utf8.DecodeRuneInString(text[i:])
		if end, label, ok := g.matchAt(text, i, r, prev); ok {
			candidates = append(candidates, models.EntityCandidate{
				Text:     text[i:end],
				Label:    label,
				Position: i,
			})
			prev, _ = utf8.DecodeLastRuneInString(text[i:end])
			i = end
			continue
		}

		prev = r
		i += width
	}

	return candidates, nil
}

// matchAt returns the end offset of the longest term starting at i
func (g *Gazetteer) matchAt(text string, i int, r, prev rune) (int, models.Label, bool) {
	terms := g.byFirst[unicode.ToLower(r)]
	if len(terms) == 0 {
		return 0, "", false
	}
	if prev >= 0 && isWordRune(prev) && isWordRune(r) {
		return 0, "", false
	}

	for _, t := range terms {
		end := i + len(t.term)
		if end > len(text) || !strings.EqualFold(text[i:end], t.term) {
			continue
		}
		last, _ := utf8.DecodeLastRuneInString(t.term)
		if end < len(text) && isWordRune(last) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if isWordRune(next) {
				continue
			}
		}
		return end, t.label, true
	}
	return 0, "", false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
