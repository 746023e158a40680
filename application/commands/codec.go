package commands

import (
	"encoding/json"

	pkgerrors "researchflow-backend/pkg/errors"
)

// registry maps persistence discriminators to command constructors.
// Loading tolerates unknown discriminators by skipping the entry, so
// history written by a newer build degrades instead of failing.
var registry = map[string]func() Command{
	KindDescriptionChange:        func() Command { return &DescriptionChange{} },
	KindTodoAdd:                  func() Command { return &TodoAdd{} },
	KindTodoRemove:               func() Command { return &TodoRemove{} },
	KindTodoEdit:                 func() Command { return &TodoEdit{} },
	KindTodoToggle:               func() Command { return &TodoToggle{} },
	KindTodoMove:                 func() Command { return &TodoMove{} },
	KindTagAdd:                   func() Command { return &TagAdd{} },
	KindTagRemove:                func() Command { return &TagRemove{} },
	KindTagRename:                func() Command { return &TagRename{} },
	KindTagColorChange:           func() Command { return &TagColorChange{} },
	KindTagMove:                  func() Command { return &TagMove{} },
	KindNodePosition:             func() Command { return &NodePosition{} },
	KindAddNode:                  func() Command { return &AddNode{} },
	KindRemoveNode:               func() Command { return &RemoveNode{} },
	KindAddEdge:                  func() Command { return &AddEdge{} },
	KindRemoveEdge:               func() Command { return &RemoveEdge{} },
	KindAddGroup:                 func() Command { return &AddGroup{} },
	KindRemoveGroup:              func() Command { return &RemoveGroup{} },
	KindGroupMove:                func() Command { return &GroupMove{} },
	KindNodeGroupChange:          func() Command { return &NodeGroupChange{} },
	KindGroupNameEdit:            func() Command { return &GroupNameEdit{} },
	KindGroupSize:                func() Command { return &GroupSize{} },
	KindNodeTagToggle:            func() Command { return &NodeTagToggle{} },
	KindNodeFlagToggle:           func() Command { return &NodeFlagToggle{} },
	KindNodeLockToggle:           func() Command { return &NodeLockToggle{} },
	KindGlobalEdgeColorChange:    func() Command { return &GlobalEdgeColorChange{} },
	KindModulePaletteColorChange: func() Command { return &ModulePaletteColorChange{} },
	KindSnippetAdd:               func() Command { return &SnippetAdd{} },
	KindSnippetRemove:            func() Command { return &SnippetRemove{} },
	KindSnippetEdit:              func() Command { return &SnippetEdit{} },
	KindSnippetMove:              func() Command { return &SnippetMove{} },
	KindNodeMetadataEdit:         func() Command { return &NodeMetadataEdit{} },
}

// Marshal serializes a command as a flat JSON object tagged with its
// discriminator: {"type": "...", ...fields}.
func Marshal(cmd Command) ([]byte, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, pkgerrors.NewMalformedError("encode command "+cmd.Kind(), err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, pkgerrors.NewMalformedError("encode command "+cmd.Kind(), err)
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage, 1)
	}
	fields["type"], _ = json.Marshal(cmd.Kind())
	return json.Marshal(fields)
}

// Unmarshal reconstructs a command from its tagged payload. Commands
// built this way never carry first-apply suppression: replayed history
// always needs full re-application.
func Unmarshal(data []byte) (Command, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, pkgerrors.NewMalformedError("decode command envelope", err)
	}
	ctor, ok := registry[env.Type]
	if !ok {
		return nil, pkgerrors.NewMalformedError("unknown command type '"+env.Type+"'", nil)
	}
	cmd := ctor()
	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, pkgerrors.NewMalformedError("decode command "+env.Type, err)
	}
	if v, ok := cmd.(validatable); ok {
		if err := v.validate(); err != nil {
			return nil, pkgerrors.NewMalformedError("command "+env.Type+" payload", err)
		}
	}
	return cmd, nil
}
