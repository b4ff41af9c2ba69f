package models

import "encoding/json"

// Root node identities of a knowledge graph
const (
	ResumeNodeID         = "Resume"
	JobDescriptionNodeID = "Job Description"
)

// NodeKind distinguishes root nodes from skill nodes
type NodeKind string

const (
	NodeKindRoot  NodeKind = "root"
	NodeKindSkill NodeKind = "skill"
)

// Node is a vertex of a knowledge graph. Size and Color are display hints only.
type Node struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"kind"`
	Size  int      `json:"size"`
	Color string   `json:"color"`
}

// Edge is an undirected edge between two nodes
type Edge struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Matched bool   `json:"matched"`
	Color   string `json:"color"`
}

// Connects reports whether the edge joins a and b in either direction
func (e Edge) Connects(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}

// GraphStats summarizes a knowledge graph
type GraphStats struct {
	TotalNodes   int `json:"total_nodes"`
	TotalEdges   int `json:"total_edges"`
	SkillNodes   int `json:"skill_nodes"`
	MatchedEdges int `json:"matched_edges"`
}

// KnowledgeGraph relates a résumé, a job description and their skills.
// It is a read-only value: accessors return copies.
type KnowledgeGraph struct {
	nodes []Node
	edges []Edge
}

// NewKnowledgeGraph freezes the given nodes and edges into a graph value
func NewKnowledgeGraph(nodes []Node, edges []Edge) KnowledgeGraph {
	g := KnowledgeGraph{
		nodes: make([]Node, len(nodes)),
		edges: make([]Edge, len(edges)),
	}
	copy(g.nodes, nodes)
	copy(g.edges, edges)
	return g
}

// Nodes returns the nodes in insertion order
func (g KnowledgeGraph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edges in insertion order
func (g KnowledgeGraph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Node looks up a node by identity
func (g KnowledgeGraph) Node(id string) (Node, bool) {
	for _, n := range g.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge looks up the edge joining a and b
func (g KnowledgeGraph) Edge(a, b string) (Edge, bool) {
	for _, e := range g.edges {
		if e.Connects(a, b) {
			return e, true
		}
	}
	return Edge{}, false
}

// SkillIDs returns the identities of all skill nodes in insertion order
func (g KnowledgeGraph) SkillIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.Kind == NodeKindSkill {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// MatchedSkills returns the skills present on both sides, in node order
func (g KnowledgeGraph) MatchedSkills() []string {
	matched := make([]string, 0)
	for _, id := range g.SkillIDs() {
		if e, ok := g.Edge(ResumeNodeID, id); ok && e.Matched {
			matched = append(matched, id)
		}
	}
	return matched
}

// Stats returns node and edge counts
func (g KnowledgeGraph) Stats() GraphStats {
	stats := GraphStats{
		TotalNodes: len(g.nodes),
		TotalEdges: len(g.edges),
	}
	for _, n := range g.nodes {
		if n.Kind == NodeKindSkill {
			stats.SkillNodes++
		}
	}
	for _, e := range g.edges {
		if e.Matched {
			stats.MatchedEdges++
		}
	}
	return stats
}

type graphJSON struct {
	Nodes         []Node     `json:"nodes"`
	Edges         []Edge     `json:"edges"`
	MatchedSkills []string   `json:"matched_skills"`
	Stats         GraphStats `json:"stats"`
}

// MarshalJSON encodes the graph as node and edge lists
func (g KnowledgeGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(graphJSON{
		Nodes:         g.Nodes(),
		Edges:         g.Edges(),
		MatchedSkills: g.MatchedSkills(),
		Stats:         g.Stats(),
	})
}

// UnmarshalJSON decodes a graph produced by MarshalJSON
func (g *KnowledgeGraph) UnmarshalJSON(data []byte) error {
	var raw graphJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = NewKnowledgeGraph(raw.Nodes, raw.Edges)
	return nil
}
