package aggregates

import "researchflow-backend/domain/core/entities"

// EntityKind discriminates the entity collections a mutation targets
type EntityKind string

const (
	KindNode    EntityKind = "node"
	KindEdge    EntityKind = "edge"
	KindGroup   EntityKind = "group"
	KindSnippet EntityKind = "snippet"
	KindTag     EntityKind = "tag"
	KindTodo    EntityKind = "todo"
	// KindMember addresses a group's membership list rather than an
	// entity proper; Owner is the group id, ID the node id.
	KindMember EntityKind = "member"
	// KindProject addresses project-level singletons: description and
	// palette colors.
	KindProject EntityKind = "project"
)

// EntityRef addresses an entity for removal or field edits. Tags are
// addressed by name (ID), todos by Index, snippets by ID within Owner.
type EntityRef struct {
	ID    string `json:"id,omitempty"`
	Owner string `json:"owner,omitempty"`
	Index int    `json:"index,omitempty"`
}

// Snapshot is a tagged union carrying a full entity copy for insertion.
// Exactly one entity pointer is set, matching the kind. Index is the
// insertion position for ordered collections (-1 appends); Owner names
// the containing node (snippets) or group (members).
type Snapshot struct {
	Node    *entities.Node    `json:"node,omitempty"`
	Edge    *entities.Edge    `json:"edge,omitempty"`
	Group   *entities.Group   `json:"group,omitempty"`
	Snippet *entities.Snippet `json:"snippet,omitempty"`
	Tag     *entities.Tag     `json:"tag,omitempty"`
	Todo    *entities.Todo    `json:"todo,omitempty"`
	Owner   string            `json:"owner,omitempty"`
	Member  string            `json:"member,omitempty"`
	Index   int               `json:"index"`
}

// Field names accepted by SetField, per entity kind. Node metadata
// fields ("title", "year", "conference", "source_path", "module_name",
// "module_type") pass through verbatim.
const (
	FieldPosition    = "position"     // node: valueobjects.Position
	FieldLocked      = "locked"       // node/group: bool
	FieldFlagged     = "flagged"      // node: bool
	FieldContent     = "content"      // snippet: string
	FieldSourceLabel = "source_label" // snippet: string
	FieldName        = "name"         // group/tag: string
	FieldRect        = "rect"         // group: valueobjects.Rect
	FieldColor       = "color"        // group/tag: string
	FieldText        = "text"         // todo: string
	FieldDone        = "done"         // todo: bool
	FieldDescription = "description"  // project: string
	FieldModuleColor = "module_color" // project (ref.ID = module type): string
	FieldEdgeColors  = "edge_colors"  // project: entities.EdgeColors
)
