package services

import (
	"researchflow-backend/domain/core/entities"
	"researchflow-backend/domain/core/valueobjects"
)

// Intent is one validated editing request raised by the interactive
// face of the editor. Each kind has exactly one registered handler;
// handlers construct the matching command and submit it to history.
type Intent interface {
	IntentKind() string
}

// Intent kinds, one per interactive operation.
const (
	IntentAddNode          = "add_node"
	IntentRemoveNode       = "remove_node"
	IntentMoveNode         = "move_node"
	IntentConnect          = "connect"
	IntentDisconnect       = "disconnect"
	IntentAddGroup         = "add_group"
	IntentRemoveGroup      = "remove_group"
	IntentMoveGroup        = "move_group"
	IntentResizeGroup      = "resize_group"
	IntentRenameGroup      = "rename_group"
	IntentReparentNode     = "reparent_node"
	IntentToggleNodeTag    = "toggle_node_tag"
	IntentToggleNodeFlag   = "toggle_node_flag"
	IntentToggleLock       = "toggle_lock"
	IntentEditNodeMetadata = "edit_node_metadata"
	IntentAddSnippet       = "add_snippet"
	IntentRemoveSnippet    = "remove_snippet"
	IntentEditSnippet      = "edit_snippet"
	IntentMoveSnippet      = "move_snippet"
	IntentAddTag           = "add_tag"
	IntentRemoveTag        = "remove_tag"
	IntentRenameTag        = "rename_tag"
	IntentRecolorTag       = "recolor_tag"
	IntentMoveTag          = "move_tag"
	IntentAddTodo          = "add_todo"
	IntentRemoveTodo       = "remove_todo"
	IntentEditTodo         = "edit_todo"
	IntentToggleTodo       = "toggle_todo"
	IntentMoveTodo         = "move_todo"
	IntentEditDescription  = "edit_description"
	IntentSetEdgeColors    = "set_edge_colors"
	IntentSetModuleColor   = "set_module_color"
)

// AddNodeIntent carries a fully constructed node snapshot; the editor
// assigns the id before raising it.
type AddNodeIntent struct {
	Node *entities.Node `validate:"required"`
}

func (AddNodeIntent) IntentKind() string { return IntentAddNode }

type RemoveNodeIntent struct {
	NodeID string `validate:"required,uuid4"`
}

func (RemoveNodeIntent) IntentKind() string { return IntentRemoveNode }

// MoveNodeIntent records a finished drag. The node already sits at
// NewPos when the intent is raised; OldPos was captured at drag start.
type MoveNodeIntent struct {
	NodeID string `validate:"required,uuid4"`
	OldPos valueobjects.Position
	NewPos valueobjects.Position
}

func (MoveNodeIntent) IntentKind() string { return IntentMoveNode }

// ConnectIntent carries the new edge plus the ids of any snippets the
// connect already cloned onto the target node.
type ConnectIntent struct {
	Edge         *entities.Edge `validate:"required"`
	TargetNodeID string
	ClonedIDs    []string
}

func (ConnectIntent) IntentKind() string { return IntentConnect }

type DisconnectIntent struct {
	EdgeID string `validate:"required,uuid4"`
}

func (DisconnectIntent) IntentKind() string { return IntentDisconnect }

type AddGroupIntent struct {
	Group *entities.Group `validate:"required"`
}

func (AddGroupIntent) IntentKind() string { return IntentAddGroup }

type RemoveGroupIntent struct {
	GroupID string `validate:"required,uuid4"`
}

func (RemoveGroupIntent) IntentKind() string { return IntentRemoveGroup }

// MoveGroupIntent records a finished group drag; the group and its
// members already sit at their new positions.
type MoveGroupIntent struct {
	GroupID         string `validate:"required,uuid4"`
	OldPos          valueobjects.Position
	NewPos          valueobjects.Position
	MemberPositions map[string]valueobjects.Position
}

func (MoveGroupIntent) IntentKind() string { return IntentMoveGroup }

type ResizeGroupIntent struct {
	GroupID string `validate:"required,uuid4"`
	NewRect valueobjects.Rect
}

func (ResizeGroupIntent) IntentKind() string { return IntentResizeGroup }

type RenameGroupIntent struct {
	GroupID string `validate:"required,uuid4"`
	NewName string `validate:"required"`
}

func (RenameGroupIntent) IntentKind() string { return IntentRenameGroup }

// ReparentNodeIntent moves a node into NewGroupID, or out of any group
// when NewGroupID is empty.
type ReparentNodeIntent struct {
	NodeID     string `validate:"required,uuid4"`
	NewGroupID string `validate:"omitempty,uuid4"`
}

func (ReparentNodeIntent) IntentKind() string { return IntentReparentNode }

type ToggleNodeTagIntent struct {
	NodeID string `validate:"required,uuid4"`
	Tag    string `validate:"required"`
}

func (ToggleNodeTagIntent) IntentKind() string { return IntentToggleNodeTag }

type ToggleNodeFlagIntent struct {
	NodeID string `validate:"required,uuid4"`
}

func (ToggleNodeFlagIntent) IntentKind() string { return IntentToggleNodeFlag }

type ToggleLockIntent struct {
	EntityID string `validate:"required,uuid4"`
	IsGroup  bool
}

func (ToggleLockIntent) IntentKind() string { return IntentToggleLock }

type EditNodeMetadataIntent struct {
	NodeID   string `validate:"required,uuid4"`
	Field    string `validate:"required,oneof=title year conference source_path module_name module_type"`
	NewValue string
}

func (EditNodeMetadataIntent) IntentKind() string { return IntentEditNodeMetadata }

type AddSnippetIntent struct {
	NodeID  string            `validate:"required,uuid4"`
	Snippet *entities.Snippet `validate:"required"`
}

func (AddSnippetIntent) IntentKind() string { return IntentAddSnippet }

type RemoveSnippetIntent struct {
	NodeID    string `validate:"required,uuid4"`
	SnippetID string `validate:"required,uuid4"`
}

func (RemoveSnippetIntent) IntentKind() string { return IntentRemoveSnippet }

type EditSnippetIntent struct {
	NodeID    string `validate:"required,uuid4"`
	SnippetID string `validate:"required,uuid4"`
	Field     string `validate:"required,oneof=content source_label"`
	NewValue  string
}

func (EditSnippetIntent) IntentKind() string { return IntentEditSnippet }

type MoveSnippetIntent struct {
	NodeID    string `validate:"required,uuid4"`
	SnippetID string `validate:"required,uuid4"`
	From      int    `validate:"min=0"`
	To        int    `validate:"min=0"`
}

func (MoveSnippetIntent) IntentKind() string { return IntentMoveSnippet }

type AddTagIntent struct {
	Name string `validate:"required"`
}

func (AddTagIntent) IntentKind() string { return IntentAddTag }

type RemoveTagIntent struct {
	Name string `validate:"required"`
}

func (RemoveTagIntent) IntentKind() string { return IntentRemoveTag }

type RenameTagIntent struct {
	OldName string `validate:"required"`
	NewName string `validate:"required"`
}

func (RenameTagIntent) IntentKind() string { return IntentRenameTag }

type RecolorTagIntent struct {
	Name  string `validate:"required"`
	Color string `validate:"required,hexcolor"`
}

func (RecolorTagIntent) IntentKind() string { return IntentRecolorTag }

type MoveTagIntent struct {
	From int `validate:"min=0"`
	To   int `validate:"min=0"`
}

func (MoveTagIntent) IntentKind() string { return IntentMoveTag }

type AddTodoIntent struct {
	Text string `validate:"required"`
}

func (AddTodoIntent) IntentKind() string { return IntentAddTodo }

type RemoveTodoIntent struct {
	Index int `validate:"min=0"`
}

func (RemoveTodoIntent) IntentKind() string { return IntentRemoveTodo }

type EditTodoIntent struct {
	Index   int `validate:"min=0"`
	NewText string
}

func (EditTodoIntent) IntentKind() string { return IntentEditTodo }

type ToggleTodoIntent struct {
	Index int `validate:"min=0"`
}

func (ToggleTodoIntent) IntentKind() string { return IntentToggleTodo }

type MoveTodoIntent struct {
	From int `validate:"min=0"`
	To   int `validate:"min=0"`
}

func (MoveTodoIntent) IntentKind() string { return IntentMoveTodo }

type EditDescriptionIntent struct {
	NewText string
}

func (EditDescriptionIntent) IntentKind() string { return IntentEditDescription }

type SetEdgeColorsIntent struct {
	PipelineColor  string `validate:"required,hexcolor"`
	ReferenceColor string `validate:"required,hexcolor"`
}

func (SetEdgeColorsIntent) IntentKind() string { return IntentSetEdgeColors }

type SetModuleColorIntent struct {
	ModuleType string `validate:"required"`
	Color      string `validate:"required,hexcolor"`
}

func (SetModuleColorIntent) IntentKind() string { return IntentSetModuleColor }
