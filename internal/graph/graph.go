// Package graph relates a résumé and a job description through their skills.
package graph

import (
	"context"
	"strings"

	"github.com/fmuoria/resume-matcher/internal/models"
)

// Display hints carried on nodes and edges
const (
	RootNodeSize  = 1500
	SkillNodeSize = 700

	ResumeColor         = "skyblue"
	JobDescriptionColor = "orange"
	ResumeSkillColor    = "lightgreen"
	JobSkillColor       = "lightcoral"
	EdgeColor           = "gray"
	MatchedEdgeColor    = "blue"
)

// SkillSource extracts skills from a job description
type SkillSource interface {
	Extract(ctx context.Context, text string) []string
}

// Builder builds knowledge graphs from a job description and a résumé skill list
type Builder struct {
	skills SkillSource
}

// NewBuilder creates a builder that reads job description skills from src
func NewBuilder(src SkillSource) *Builder {
	return &Builder{skills: src}
}

// Build extracts the skills of jdText and relates them to resumeSkills
func (b *Builder) Build(ctx context.Context, jdText string, resumeSkills []string) models.KnowledgeGraph {
	jdSkills := b.skills.Extract(ctx, strings.ToLower(jdText))
	return Build(resumeSkills, jdSkills)
}

// Build relates two skill lists. Skills are identified by their trimmed,
// lower-cased text; empty skills are ignored.
func Build(resumeSkills, jdSkills []string) models.KnowledgeGraph {
	g := newGraph()

	g.addNode(models.ResumeNodeID, models.NodeKindRoot, RootNodeSize, ResumeColor)
	g.addNode(models.JobDescriptionNodeID, models.NodeKindRoot, RootNodeSize, JobDescriptionColor)

	resumeSet := g.attach(models.ResumeNodeID, resumeSkills, ResumeSkillColor)
	jdSet := g.attach(models.JobDescriptionNodeID, jdSkills, JobSkillColor)

	for _, skill := range resumeSet.order {
		if !jdSet.has(skill) {
			continue
		}
		g.addEdge(models.ResumeNodeID, skill, true)
		g.addEdge(models.JobDescriptionNodeID, skill, true)
	}

	return models.NewKnowledgeGraph(g.nodes, g.edges)
}

// builder is a small insertion-ordered graph where re-adding replaces attributes
type builder struct {
	nodes     []models.Node
	edges     []models.Edge
	nodeIndex map[string]int
	edgeIndex map[[2]string]int
}

func newGraph() *builder {
	return &builder{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[[2]string]int),
	}
}

func (g *builder) addNode(id string, kind models.NodeKind, size int, color string) {
	n := models.Node{ID: id, Kind: kind, Size: size, Color: color}
	if i, ok := g.nodeIndex[id]; ok {
		g.nodes[i] = n
		return
	}
	g.nodeIndex[id] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

func (g *builder) addEdge(a, b string, matched bool) {
	color := EdgeColor
	if matched {
		color = MatchedEdgeColor
	}
	key := edgeKey(a, b)
	if i, ok := g.edgeIndex[key]; ok {
		g.edges[i].Matched = matched
		g.edges[i].Color = color
		return
	}
	g.edgeIndex[key] = len(g.edges)
	g.edges = append(g.edges, models.Edge{Source: a, Target: b, Matched: matched, Color: color})
}

// attach links every skill to root and returns the unique skills seen
func (g *builder) attach(root string, skills []string, color string) skillSet {
	set := skillSet{seen: make(map[string]struct{})}
	for _, raw := range skills {
		skill := models.NormalizeSkill(raw)
		if skill == "" {
			continue
		}
		g.addNode(skill, models.NodeKindSkill, SkillNodeSize, color)
		g.addEdge(root, skill, false)
		set.add(skill)
	}
	return set
}

func edgeKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

type skillSet struct {
	seen  map[string]struct{}
	order []string
}

func (s *skillSet) add(skill string) {
	if _, ok := s.seen[skill]; ok {
		return
	}
	s.seen[skill] = struct{}{}
	s.order = append(s.order, skill)
}

func (s skillSet) has(skill string) bool {
	_, ok := s.seen[skill]
	return ok
}
