package entities

import (
	"researchflow-backend/domain/core/valueobjects"
	pkgerrors "researchflow-backend/pkg/errors"
)

// NodeKind represents the type of a canvas node
type NodeKind string

const (
	NodeKindProcess   NodeKind = "process"
	NodeKindReference NodeKind = "reference"
	NodeKindWaypoint  NodeKind = "waypoint"
)

// Metadata holds node fields whose relevance varies by node kind.
// Reference nodes use Title/Year/Conference/SourcePath, process nodes
// use ModuleName/ModuleType.
type Metadata struct {
	Title      string `json:"title,omitempty"`
	Year       string `json:"year,omitempty"`
	Conference string `json:"conference,omitempty"`
	SourcePath string `json:"source_path,omitempty"`
	ModuleName string `json:"module_name,omitempty"`
	ModuleType string `json:"module_type,omitempty"`
}

// Field returns the value of a named metadata field
func (m *Metadata) Field(field string) (string, bool) {
	switch field {
	case "title":
		return m.Title, true
	case "year":
		return m.Year, true
	case "conference":
		return m.Conference, true
	case "source_path":
		return m.SourcePath, true
	case "module_name":
		return m.ModuleName, true
	case "module_type":
		return m.ModuleType, true
	}
	return "", false
}

// SetField sets a named metadata field
func (m *Metadata) SetField(field, value string) bool {
	switch field {
	case "title":
		m.Title = value
	case "year":
		m.Year = value
	case "conference":
		m.Conference = value
	case "source_path":
		m.SourcePath = value
	case "module_name":
		m.ModuleName = value
	case "module_type":
		m.ModuleType = value
	default:
		return false
	}
	return true
}

// Node is a positioned canvas entity: a process module, a reference
// paper, or a connection waypoint. Nodes serialize as full snapshots so
// creation/deletion commands can reinsert them byte-for-byte.
type Node struct {
	ID       string                `json:"id"`
	Kind     NodeKind              `json:"kind"`
	Position valueobjects.Position `json:"position"`
	Size     valueobjects.Size     `json:"size,omitempty"`
	Tags     []string              `json:"tags,omitempty"`
	Metadata Metadata              `json:"metadata"`
	Snippets []Snippet             `json:"snippets,omitempty"`
	Locked   bool                  `json:"is_locked,omitempty"`
	Flagged  bool                  `json:"is_flagged,omitempty"`
}

// NewNode creates a node of the given kind with a fresh id
func NewNode(kind NodeKind, pos valueobjects.Position) *Node {
	return &Node{
		ID:       valueobjects.NewID(),
		Kind:     kind,
		Position: pos,
	}
}

// Validate checks structural validity of a node snapshot
func (n *Node) Validate() error {
	if err := valueobjects.ValidateID(n.ID); err != nil {
		return pkgerrors.NewValidationError("node: " + err.Error())
	}
	switch n.Kind {
	case NodeKindProcess, NodeKindReference, NodeKindWaypoint:
	default:
		return pkgerrors.NewValidationError("node: unknown kind '" + string(n.Kind) + "'")
	}
	seen := make(map[string]bool, len(n.Snippets))
	for _, s := range n.Snippets {
		if seen[s.ID] {
			return pkgerrors.NewConflictError("node: duplicate snippet id " + s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Clone returns a deep copy of the node
func (n *Node) Clone() *Node {
	cp := *n
	cp.Tags = append([]string(nil), n.Tags...)
	cp.Snippets = make([]Snippet, len(n.Snippets))
	copy(cp.Snippets, n.Snippets)
	return &cp
}

// HasTag reports whether the node carries the given tag
func (n *Node) HasTag(name string) bool {
	for _, t := range n.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// AddTag appends a tag if not already present
func (n *Node) AddTag(name string) {
	if !n.HasTag(name) {
		n.Tags = append(n.Tags, name)
	}
}

// RemoveTag removes a tag if present
func (n *Node) RemoveTag(name string) {
	for i, t := range n.Tags {
		if t == name {
			n.Tags = append(n.Tags[:i], n.Tags[i+1:]...)
			return
		}
	}
}

// SnippetIndex returns the position of a snippet by id, or -1
func (n *Node) SnippetIndex(snippetID string) int {
	for i := range n.Snippets {
		if n.Snippets[i].ID == snippetID {
			return i
		}
	}
	return -1
}

// DisplayTitle is the human-facing name used for snippet attribution
func (n *Node) DisplayTitle() string {
	if n.Kind == NodeKindReference {
		return n.Metadata.Title
	}
	return n.Metadata.ModuleName
}
