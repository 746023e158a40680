package services

import (
	"context"

	"go.uber.org/zap"

	"researchflow-backend/application/commands"
	"researchflow-backend/pkg/errors"
)

// Controller binds one handler per intent kind. Handlers capture the
// pre-mutation state a command needs from the document, construct the
// command and submit it to history. They run under the editor's lock,
// so document reads here see exactly the state the command will apply
// against.
type Controller struct {
	editor *Editor
	logger *zap.Logger
}

func NewController(editor *Editor, logger *zap.Logger) (*Controller, error) {
	c := &Controller{editor: editor, logger: logger}
	bindings := map[string]Handler{
		IntentAddNode:          c.handleAddNode,
		IntentRemoveNode:       c.handleRemoveNode,
		IntentMoveNode:         c.handleMoveNode,
		IntentConnect:          c.handleConnect,
		IntentDisconnect:       c.handleDisconnect,
		IntentAddGroup:         c.handleAddGroup,
		IntentRemoveGroup:      c.handleRemoveGroup,
		IntentMoveGroup:        c.handleMoveGroup,
		IntentResizeGroup:      c.handleResizeGroup,
		IntentRenameGroup:      c.handleRenameGroup,
		IntentReparentNode:     c.handleReparentNode,
		IntentToggleNodeTag:    c.handleToggleNodeTag,
		IntentToggleNodeFlag:   c.handleToggleNodeFlag,
		IntentToggleLock:       c.handleToggleLock,
		IntentEditNodeMetadata: c.handleEditNodeMetadata,
		IntentAddSnippet:       c.handleAddSnippet,
		IntentRemoveSnippet:    c.handleRemoveSnippet,
		IntentEditSnippet:      c.handleEditSnippet,
		IntentMoveSnippet:      c.handleMoveSnippet,
		IntentAddTag:           c.handleAddTag,
		IntentRemoveTag:        c.handleRemoveTag,
		IntentRenameTag:        c.handleRenameTag,
		IntentRecolorTag:       c.handleRecolorTag,
		IntentMoveTag:          c.handleMoveTag,
		IntentAddTodo:          c.handleAddTodo,
		IntentRemoveTodo:       c.handleRemoveTodo,
		IntentEditTodo:         c.handleEditTodo,
		IntentToggleTodo:       c.handleToggleTodo,
		IntentMoveTodo:         c.handleMoveTodo,
		IntentEditDescription:  c.handleEditDescription,
		IntentSetEdgeColors:    c.handleSetEdgeColors,
		IntentSetModuleColor:   c.handleSetModuleColor,
	}
	for kind, h := range bindings {
		if err := editor.RegisterHandler(kind, h); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func badIntent(kind string) error {
	return errors.NewInternalError("handler for '" + kind + "' received a mismatched intent")
}

func (c *Controller) handleAddNode(ctx context.Context, intent Intent) error {
	in, ok := intent.(AddNodeIntent)
	if !ok {
		return badIntent(IntentAddNode)
	}
	return c.editor.history.Execute(ctx, &commands.AddNode{Node: in.Node})
}

func (c *Controller) handleRemoveNode(ctx context.Context, intent Intent) error {
	in, ok := intent.(RemoveNodeIntent)
	if !ok {
		return badIntent(IntentRemoveNode)
	}
	node, found := c.editor.doc.Node(in.NodeID)
	if !found {
		return errors.NewNotFoundError("node " + in.NodeID)
	}
	edges := c.editor.doc.EdgesOf(in.NodeID)
	return c.editor.history.Execute(ctx, &commands.RemoveNode{Node: node, Edges: edges})
}

func (c *Controller) handleMoveNode(ctx context.Context, intent Intent) error {
	in, ok := intent.(MoveNodeIntent)
	if !ok {
		return badIntent(IntentMoveNode)
	}
	if in.OldPos.Equals(in.NewPos) {
		return nil
	}
	return c.editor.history.Execute(ctx, commands.NewNodePosition(in.NodeID, in.OldPos, in.NewPos))
}

func (c *Controller) handleConnect(ctx context.Context, intent Intent) error {
	in, ok := intent.(ConnectIntent)
	if !ok {
		return badIntent(IntentConnect)
	}
	return c.editor.history.Execute(ctx, commands.NewAddEdge(in.Edge, in.TargetNodeID, in.ClonedIDs))
}

func (c *Controller) handleDisconnect(ctx context.Context, intent Intent) error {
	in, ok := intent.(DisconnectIntent)
	if !ok {
		return badIntent(IntentDisconnect)
	}
	edge, found := c.editor.doc.Edge(in.EdgeID)
	if !found {
		return errors.NewNotFoundError("edge " + in.EdgeID)
	}
	return c.editor.history.Execute(ctx, &commands.RemoveEdge{Edge: edge})
}

func (c *Controller) handleAddGroup(ctx context.Context, intent Intent) error {
	in, ok := intent.(AddGroupIntent)
	if !ok {
		return badIntent(IntentAddGroup)
	}
	return c.editor.history.Execute(ctx, &commands.AddGroup{Group: in.Group})
}

func (c *Controller) handleRemoveGroup(ctx context.Context, intent Intent) error {
	in, ok := intent.(RemoveGroupIntent)
	if !ok {
		return badIntent(IntentRemoveGroup)
	}
	group, found := c.editor.doc.Group(in.GroupID)
	if !found {
		return errors.NewNotFoundError("group " + in.GroupID)
	}
	return c.editor.history.Execute(ctx, &commands.RemoveGroup{Group: group})
}

func (c *Controller) handleMoveGroup(ctx context.Context, intent Intent) error {
	in, ok := intent.(MoveGroupIntent)
	if !ok {
		return badIntent(IntentMoveGroup)
	}
	if in.OldPos.Equals(in.NewPos) {
		return nil
	}
	return c.editor.history.Execute(ctx, commands.NewGroupMove(in.GroupID, in.OldPos, in.NewPos, in.MemberPositions))
}

func (c *Controller) handleResizeGroup(ctx context.Context, intent Intent) error {
	in, ok := intent.(ResizeGroupIntent)
	if !ok {
		return badIntent(IntentResizeGroup)
	}
	group, found := c.editor.doc.Group(in.GroupID)
	if !found {
		return errors.NewNotFoundError("group " + in.GroupID)
	}
	if group.Rect.Equals(in.NewRect) {
		return nil
	}
	return c.editor.history.Execute(ctx, &commands.GroupSize{
		GroupID: in.GroupID,
		OldRect: group.Rect,
		NewRect: in.NewRect,
	})
}

func (c *Controller) handleRenameGroup(ctx context.Context, intent Intent) error {
	in, ok := intent.(RenameGroupIntent)
	if !ok {
		return badIntent(IntentRenameGroup)
	}
	group, found := c.editor.doc.Group(in.GroupID)
	if !found {
		return errors.NewNotFoundError("group " + in.GroupID)
	}
	if group.Name == in.NewName {
		return nil
	}
	return c.editor.history.Execute(ctx, &commands.GroupNameEdit{
		GroupID: in.GroupID,
		OldName: group.Name,
		NewName: in.NewName,
	})
}

func (c *Controller) handleReparentNode(ctx context.Context, intent Intent) error {
	in, ok := intent.(ReparentNodeIntent)
	if !ok {
		return badIntent(IntentReparentNode)
	}
	if _, found := c.editor.doc.Node(in.NodeID); !found {
		return errors.NewNotFoundError("node " + in.NodeID)
	}
	oldGroupID, _ := c.editor.doc.GroupOf(in.NodeID)
	if oldGroupID == in.NewGroupID {
		return nil
	}
	return c.editor.history.Execute(ctx, &commands.NodeGroupChange{
		NodeID:     in.NodeID,
		OldGroupID: oldGroupID,
		NewGroupID: in.NewGroupID,
	})
}

func (c *Controller) handleToggleNodeTag(ctx context.Context, intent Intent) error {
	in, ok := intent.(ToggleNodeTagIntent)
	if !ok {
		return badIntent(IntentToggleNodeTag)
	}
	node, found := c.editor.doc.Node(in.NodeID)
	if !found {
		return errors.NewNotFoundError("node " + in.NodeID)
	}
	return c.editor.history.Execute(ctx, &commands.NodeTagToggle{
		NodeID: in.NodeID,
		Tag:    in.Tag,
		Added:  !node.HasTag(in.Tag),
	})
}

func (c *Controller) handleToggleNodeFlag(ctx context.Context, intent Intent) error {
	in, ok := intent.(ToggleNodeFlagIntent)
	if !ok {
		return badIntent(IntentToggleNodeFlag)
	}
	node, found := c.editor.doc.Node(in.NodeID)
	if !found {
		return errors.NewNotFoundError("node " + in.NodeID)
	}
	return c.editor.history.Execute(ctx, &commands.NodeFlagToggle{
		NodeID:   in.NodeID,
		NewState: !node.Flagged,
	})
}

func (c *Controller) handleToggleLock(ctx context.Context, intent Intent) error {
	in, ok := intent.(ToggleLockIntent)
	if !ok {
		return badIntent(IntentToggleLock)
	}
	var locked bool
	if in.IsGroup {
		group, found := c.editor.doc.Group(in.EntityID)
		if !found {
			return errors.NewNotFoundError("group " + in.EntityID)
		}
		locked = group.Locked
	} else {
		node, found := c.editor.doc.Node(in.EntityID)
		if !found {
			return errors.NewNotFoundError("node " + in.EntityID)
		}
		locked = node.Locked
	}
	return c.editor.history.Execute(ctx, &commands.NodeLockToggle{
		EntityID: in.EntityID,
		NewState: !locked,
		IsGroup:  in.IsGroup,
	})
}

func (c *Controller) handleEditNodeMetadata(ctx context.Context, intent Intent) error {
	in, ok := intent.(EditNodeMetadataIntent)
	if !ok {
		return badIntent(IntentEditNodeMetadata)
	}
	node, found := c.editor.doc.Node(in.NodeID)
	if !found {
		return errors.NewNotFoundError("node " + in.NodeID)
	}
	oldValue, known := node.Metadata.Field(in.Field)
	if !known {
		return errors.NewValidationError("unknown metadata field '" + in.Field + "'")
	}
	if oldValue == in.NewValue {
		return nil
	}
	return c.editor.history.Execute(ctx, &commands.NodeMetadataEdit{
		NodeID:   in.NodeID,
		Field:    in.Field,
		OldValue: oldValue,
		NewValue: in.NewValue,
	})
}

func (c *Controller) handleAddSnippet(ctx context.Context, intent Intent) error {
	in, ok := intent.(AddSnippetIntent)
	if !ok {
		return badIntent(IntentAddSnippet)
	}
	if _, found := c.editor.doc.Node(in.NodeID); !found {
		return errors.NewNotFoundError("node " + in.NodeID)
	}
	return c.editor.history.Execute(ctx, &commands.SnippetAdd{NodeID: in.NodeID, Snippet: in.Snippet})
}

func (c *Controller) handleRemoveSnippet(ctx context.Context, intent Intent) error {
	in, ok := intent.(RemoveSnippetIntent)
	if !ok {
		return badIntent(IntentRemoveSnippet)
	}
	node, found := c.editor.doc.Node(in.NodeID)
	if !found {
		return errors.NewNotFoundError("node " + in.NodeID)
	}
	i := node.SnippetIndex(in.SnippetID)
	if i < 0 {
		return errors.NewNotFoundError("snippet " + in.SnippetID)
	}
	s := node.Snippets[i]
	return c.editor.history.Execute(ctx, &commands.SnippetRemove{
		NodeID:  in.NodeID,
		Snippet: &s,
		Index:   i,
	})
}

func (c *Controller) handleEditSnippet(ctx context.Context, intent Intent) error {
	in, ok := intent.(EditSnippetIntent)
	if !ok {
		return badIntent(IntentEditSnippet)
	}
	node, found := c.editor.doc.Node(in.NodeID)
	if !found {
		return errors.NewNotFoundError("node " + in.NodeID)
	}
	i := node.SnippetIndex(in.SnippetID)
	if i < 0 {
		return errors.NewNotFoundError("snippet " + in.SnippetID)
	}
	var oldValue string
	switch in.Field {
	case "content":
		oldValue = node.Snippets[i].Content
	case "source_label":
		oldValue = node.Snippets[i].SourceLabel
	}
	if oldValue == in.NewValue {
		return nil
	}
	return c.editor.history.Execute(ctx, &commands.SnippetEdit{
		NodeID:    in.NodeID,
		SnippetID: in.SnippetID,
		Field:     in.Field,
		OldValue:  oldValue,
		NewValue:  in.NewValue,
	})
}

func (c *Controller) handleMoveSnippet(ctx context.Context, intent Intent) error {
	in, ok := intent.(MoveSnippetIntent)
	if !ok {
		return badIntent(IntentMoveSnippet)
	}
	node, found := c.editor.doc.Node(in.NodeID)
	if !found {
		return errors.NewNotFoundError("node " + in.NodeID)
	}
	// The document's ordering is authoritative over the caller's idea
	// of the source index.
	from := node.SnippetIndex(in.SnippetID)
	if from < 0 {
		return errors.NewNotFoundError("snippet " + in.SnippetID)
	}
	if from == in.To {
		return nil
	}
	return c.editor.history.Execute(ctx, &commands.SnippetMove{
		NodeID:    in.NodeID,
		SnippetID: in.SnippetID,
		From:      from,
		To:        in.To,
	})
}

func (c *Controller) handleAddTag(ctx context.Context, intent Intent) error {
	in, ok := intent.(AddTagIntent)
	if !ok {
		return badIntent(IntentAddTag)
	}
	if c.editor.doc.TagIndex(in.Name) >= 0 {
		return errors.NewConflictError("tag " + in.Name + " already exists")
	}
	return c.editor.history.Execute(ctx, &commands.TagAdd{
		Name:  in.Name,
		Index: len(c.editor.doc.Tags()),
	})
}

func (c *Controller) handleRemoveTag(ctx context.Context, intent Intent) error {
	in, ok := intent.(RemoveTagIntent)
	if !ok {
		return badIntent(IntentRemoveTag)
	}
	i := c.editor.doc.TagIndex(in.Name)
	if i < 0 {
		return errors.NewNotFoundError("tag " + in.Name)
	}
	tag, _ := c.editor.doc.Tag(in.Name)
	return c.editor.history.Execute(ctx, &commands.TagRemove{
		Name:  in.Name,
		Color: tag.Color,
		Index: i,
	})
}

func (c *Controller) handleRenameTag(ctx context.Context, intent Intent) error {
	in, ok := intent.(RenameTagIntent)
	if !ok {
		return badIntent(IntentRenameTag)
	}
	if in.OldName == in.NewName {
		return nil
	}
	if c.editor.doc.TagIndex(in.OldName) < 0 {
		return errors.NewNotFoundError("tag " + in.OldName)
	}
	if c.editor.doc.TagIndex(in.NewName) >= 0 {
		return errors.NewConflictError("tag " + in.NewName + " already exists")
	}
	return c.editor.history.Execute(ctx, &commands.TagRename{
		OldName: in.OldName,
		NewName: in.NewName,
	})
}

func (c *Controller) handleRecolorTag(ctx context.Context, intent Intent) error {
	in, ok := intent.(RecolorTagIntent)
	if !ok {
		return badIntent(IntentRecolorTag)
	}
	tag, found := c.editor.doc.Tag(in.Name)
	if !found {
		return errors.NewNotFoundError("tag " + in.Name)
	}
	if tag.Color == in.Color {
		return nil
	}
	return c.editor.history.Execute(ctx, &commands.TagColorChange{
		Name:     in.Name,
		OldColor: tag.Color,
		NewColor: in.Color,
	})
}

func (c *Controller) handleMoveTag(ctx context.Context, intent Intent) error {
	in, ok := intent.(MoveTagIntent)
	if !ok {
		return badIntent(IntentMoveTag)
	}
	if in.From == in.To {
		return nil
	}
	return c.editor.history.Execute(ctx, &commands.TagMove{From: in.From, To: in.To})
}

func (c *Controller) handleAddTodo(ctx context.Context, intent Intent) error {
	in, ok := intent.(AddTodoIntent)
	if !ok {
		return badIntent(IntentAddTodo)
	}
	return c.editor.history.Execute(ctx, &commands.TodoAdd{
		Text:  in.Text,
		Index: len(c.editor.doc.Todos()),
	})
}

func (c *Controller) handleRemoveTodo(ctx context.Context, intent Intent) error {
	in, ok := intent.(RemoveTodoIntent)
	if !ok {
		return badIntent(IntentRemoveTodo)
	}
	todo, found := c.editor.doc.TodoAt(in.Index)
	if !found {
		return errors.NewNotFoundError("todo")
	}
	return c.editor.history.Execute(ctx, &commands.TodoRemove{
		Index: in.Index,
		Text:  todo.Text,
		Done:  todo.Done,
	})
}

func (c *Controller) handleEditTodo(ctx context.Context, intent Intent) error {
	in, ok := intent.(EditTodoIntent)
	if !ok {
		return badIntent(IntentEditTodo)
	}
	todo, found := c.editor.doc.TodoAt(in.Index)
	if !found {
		return errors.NewNotFoundError("todo")
	}
	if todo.Text == in.NewText {
		return nil
	}
	return c.editor.history.Execute(ctx, &commands.TodoEdit{
		Index:   in.Index,
		OldText: todo.Text,
		NewText: in.NewText,
	})
}

func (c *Controller) handleToggleTodo(ctx context.Context, intent Intent) error {
	in, ok := intent.(ToggleTodoIntent)
	if !ok {
		return badIntent(IntentToggleTodo)
	}
	todo, found := c.editor.doc.TodoAt(in.Index)
	if !found {
		return errors.NewNotFoundError("todo")
	}
	return c.editor.history.Execute(ctx, &commands.TodoToggle{
		Index:    in.Index,
		NewState: !todo.Done,
	})
}

func (c *Controller) handleMoveTodo(ctx context.Context, intent Intent) error {
	in, ok := intent.(MoveTodoIntent)
	if !ok {
		return badIntent(IntentMoveTodo)
	}
	if in.From == in.To {
		return nil
	}
	return c.editor.history.Execute(ctx, &commands.TodoMove{From: in.From, To: in.To})
}

func (c *Controller) handleEditDescription(ctx context.Context, intent Intent) error {
	in, ok := intent.(EditDescriptionIntent)
	if !ok {
		return badIntent(IntentEditDescription)
	}
	oldText := c.editor.doc.Description()
	if oldText == in.NewText {
		return nil
	}
	return c.editor.history.Execute(ctx, commands.NewDescriptionChange(oldText, in.NewText))
}

func (c *Controller) handleSetEdgeColors(ctx context.Context, intent Intent) error {
	in, ok := intent.(SetEdgeColorsIntent)
	if !ok {
		return badIntent(IntentSetEdgeColors)
	}
	palette := c.editor.doc.Palette()
	if palette.PipelineEdgeColor == in.PipelineColor && palette.ReferenceEdgeColor == in.ReferenceColor {
		return nil
	}
	return c.editor.history.Execute(ctx, &commands.GlobalEdgeColorChange{
		OldPipelineColor:  palette.PipelineEdgeColor,
		OldReferenceColor: palette.ReferenceEdgeColor,
		NewPipelineColor:  in.PipelineColor,
		NewReferenceColor: in.ReferenceColor,
	})
}

func (c *Controller) handleSetModuleColor(ctx context.Context, intent Intent) error {
	in, ok := intent.(SetModuleColorIntent)
	if !ok {
		return badIntent(IntentSetModuleColor)
	}
	palette := c.editor.doc.Palette()
	oldColor := palette.ModuleColors[in.ModuleType]
	if oldColor == in.Color {
		return nil
	}
	return c.editor.history.Execute(ctx, &commands.ModulePaletteColorChange{
		ModuleType: in.ModuleType,
		OldColor:   oldColor,
		NewColor:   in.Color,
	})
}
