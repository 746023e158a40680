// Package commands holds the reversible command kinds that make up the
// edit history. Every command is a value object carrying full snapshots
// or (id, field, old, new) pairs; commands address entities by id only
// and run against the narrow Mutator surface of the document owner,
// never against render state.
package commands

import (
	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
)

// Mutator is the replay-path mutation surface of the document owner.
// It is passed explicitly into every Apply/Revert, so commands need no
// shared replay flag and can never re-enter the recording path.
type Mutator interface {
	InsertEntity(kind aggregates.EntityKind, snap aggregates.Snapshot) error
	RemoveEntity(kind aggregates.EntityKind, ref aggregates.EntityRef) error
	SetField(kind aggregates.EntityKind, ref aggregates.EntityRef, field string, value interface{}) error
	Reorder(kind aggregates.EntityKind, containerID string, from, to int) error

	// LookupSnippet returns a copy of a node's snippet. AddEdge uses it
	// on first undo to capture clone content that did not exist when
	// the command was constructed.
	LookupSnippet(nodeID, snippetID string) (entities.Snippet, bool)
}

// Command is one reversible edit. Apply and Revert are symmetric; a
// missing entity id makes either a safe no-op (the error is logged by
// the history manager, never fatal).
type Command interface {
	Kind() string
	Apply(m Mutator) error
	Revert(m Mutator) error
}

// Mergeable commands can absorb an immediately following command of the
// same kind, collapsing keystroke-level edits into one undo step.
type Mergeable interface {
	Command
	CanMergeWith(next Command) bool
	MergeWith(next Command)
}

// validatable commands check for required payload fields after decode;
// a failing check marks the persisted entry malformed and it is skipped.
type validatable interface {
	validate() error
}

// Discriminators form the closed, versioned type set of the persistence
// format. Renaming one breaks old history files; add, never repurpose.
const (
	KindDescriptionChange        = "DescriptionChange"
	KindTodoAdd                  = "TodoAdd"
	KindTodoRemove               = "TodoRemove"
	KindTodoEdit                 = "TodoEdit"
	KindTodoToggle               = "TodoToggle"
	KindTodoMove                 = "TodoMove"
	KindTagAdd                   = "TagAdd"
	KindTagRemove                = "TagRemove"
	KindTagRename                = "TagRename"
	KindTagColorChange           = "TagColorChange"
	KindTagMove                  = "TagMove"
	KindNodePosition             = "NodePosition"
	KindAddNode                  = "AddNode"
	KindRemoveNode               = "RemoveNode"
	KindAddEdge                  = "AddEdge"
	KindRemoveEdge               = "RemoveEdge"
	KindAddGroup                 = "AddGroup"
	KindRemoveGroup              = "RemoveGroup"
	KindGroupMove                = "GroupMove"
	KindNodeGroupChange          = "NodeGroupChange"
	KindGroupNameEdit            = "GroupNameEdit"
	KindGroupSize                = "GroupSize"
	KindNodeTagToggle            = "NodeTagToggle"
	KindNodeFlagToggle           = "NodeFlagToggle"
	KindNodeLockToggle           = "NodeLockToggle"
	KindGlobalEdgeColorChange    = "GlobalEdgeColorChange"
	KindModulePaletteColorChange = "ModulePaletteColorChange"
	KindSnippetAdd               = "SnippetAdd"
	KindSnippetRemove            = "SnippetRemove"
	KindSnippetEdit              = "SnippetEdit"
	KindSnippetMove              = "SnippetMove"
	KindNodeMetadataEdit         = "NodeMetadataEdit"
)
