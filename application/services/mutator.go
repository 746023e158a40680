package services

import (
	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
	"researchflow-backend/domain/core/valueobjects"
	"researchflow-backend/pkg/errors"
)

// The commands.Mutator implementation. These methods never take the
// editor lock: they only run inside command Apply/Revert, which an
// interactive call or undo/redo already holds the lock for.

func (e *Editor) InsertEntity(kind aggregates.EntityKind, snap aggregates.Snapshot) error {
	var err error
	var id string
	switch kind {
	case aggregates.KindNode:
		err = e.doc.InsertNode(snap.Node)
		if snap.Node != nil {
			id = snap.Node.ID
		}
	case aggregates.KindEdge:
		err = e.doc.InsertEdge(snap.Edge)
		if snap.Edge != nil {
			id = snap.Edge.ID
		}
	case aggregates.KindGroup:
		err = e.doc.InsertGroup(snap.Group)
		if snap.Group != nil {
			id = snap.Group.ID
		}
	case aggregates.KindSnippet:
		if snap.Snippet == nil {
			return errors.NewValidationError("snippet snapshot is nil")
		}
		err = e.doc.InsertSnippet(snap.Owner, snap.Index, *snap.Snippet)
		id = snap.Owner
	case aggregates.KindTag:
		if snap.Tag == nil {
			return errors.NewValidationError("tag snapshot is nil")
		}
		if snap.Owner != "" {
			// Node-scoped tag membership.
			err = e.doc.ToggleNodeTag(snap.Owner, snap.Tag.Name, true)
			id = snap.Owner
		} else {
			err = e.doc.InsertTag(snap.Index, *snap.Tag)
			id = snap.Tag.Name
		}
	case aggregates.KindTodo:
		if snap.Todo == nil {
			return errors.NewValidationError("todo snapshot is nil")
		}
		err = e.doc.InsertTodo(snap.Index, *snap.Todo)
	case aggregates.KindMember:
		err = e.doc.AddGroupMember(snap.Owner, snap.Member)
		id = snap.Owner
	default:
		return errors.NewValidationError("cannot insert entity kind '" + string(kind) + "'")
	}
	if err != nil {
		return err
	}
	e.notify(kind, id)
	return nil
}

func (e *Editor) RemoveEntity(kind aggregates.EntityKind, ref aggregates.EntityRef) error {
	var err error
	id := ref.ID
	switch kind {
	case aggregates.KindNode:
		err = e.doc.RemoveNode(ref.ID)
	case aggregates.KindEdge:
		err = e.doc.RemoveEdge(ref.ID)
	case aggregates.KindGroup:
		err = e.doc.RemoveGroup(ref.ID)
	case aggregates.KindSnippet:
		err = e.doc.RemoveSnippet(ref.Owner, ref.ID)
		id = ref.Owner
	case aggregates.KindTag:
		if ref.Owner != "" {
			err = e.doc.ToggleNodeTag(ref.Owner, ref.ID, false)
			id = ref.Owner
		} else {
			err = e.doc.RemoveTag(ref.ID)
		}
	case aggregates.KindTodo:
		err = e.doc.RemoveTodoAt(ref.Index)
	case aggregates.KindMember:
		err = e.doc.RemoveGroupMember(ref.Owner, ref.ID)
		id = ref.Owner
	default:
		return errors.NewValidationError("cannot remove entity kind '" + string(kind) + "'")
	}
	if err != nil {
		return err
	}
	e.notify(kind, id)
	return nil
}

func (e *Editor) SetField(kind aggregates.EntityKind, ref aggregates.EntityRef, field string, value interface{}) error {
	var err error
	id := ref.ID
	switch kind {
	case aggregates.KindNode:
		err = e.setNodeField(ref.ID, field, value)
	case aggregates.KindGroup:
		err = e.setGroupField(ref.ID, field, value)
	case aggregates.KindSnippet:
		var s string
		if s, err = asString(field, value); err == nil {
			err = e.doc.SetSnippetField(ref.Owner, ref.ID, field, s)
		}
		id = ref.Owner
	case aggregates.KindTag:
		err = e.setTagField(ref.ID, field, value)
	case aggregates.KindTodo:
		err = e.setTodoField(ref.Index, field, value)
	case aggregates.KindProject:
		err = e.setProjectField(ref.ID, field, value)
	default:
		return errors.NewValidationError("cannot set field on entity kind '" + string(kind) + "'")
	}
	if err != nil {
		return err
	}
	e.notify(kind, id)
	return nil
}

func (e *Editor) setNodeField(id, field string, value interface{}) error {
	switch field {
	case aggregates.FieldPosition:
		pos, err := asPosition(field, value)
		if err != nil {
			return err
		}
		return e.doc.SetNodePosition(id, pos)
	case aggregates.FieldLocked:
		b, err := asBool(field, value)
		if err != nil {
			return err
		}
		return e.doc.SetNodeLocked(id, b)
	case aggregates.FieldFlagged:
		b, err := asBool(field, value)
		if err != nil {
			return err
		}
		return e.doc.SetNodeFlagged(id, b)
	default:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		return e.doc.SetNodeMetadataField(id, field, s)
	}
}

func (e *Editor) setGroupField(id, field string, value interface{}) error {
	switch field {
	case aggregates.FieldPosition:
		pos, err := asPosition(field, value)
		if err != nil {
			return err
		}
		return e.doc.SetGroupPosition(id, pos)
	case aggregates.FieldRect:
		rect, err := asRect(field, value)
		if err != nil {
			return err
		}
		return e.doc.SetGroupRect(id, rect)
	case aggregates.FieldName:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		return e.doc.SetGroupName(id, s)
	case aggregates.FieldColor:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		return e.doc.SetGroupColor(id, s)
	case aggregates.FieldLocked:
		b, err := asBool(field, value)
		if err != nil {
			return err
		}
		return e.doc.SetGroupLocked(id, b)
	default:
		return errors.NewValidationError("unknown group field '" + field + "'")
	}
}

func (e *Editor) setTagField(name, field string, value interface{}) error {
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	switch field {
	case aggregates.FieldName:
		return e.doc.RenameTag(name, s)
	case aggregates.FieldColor:
		return e.doc.SetTagColor(name, s)
	default:
		return errors.NewValidationError("unknown tag field '" + field + "'")
	}
}

func (e *Editor) setTodoField(index int, field string, value interface{}) error {
	switch field {
	case aggregates.FieldText:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		return e.doc.SetTodoText(index, s)
	case aggregates.FieldDone:
		b, err := asBool(field, value)
		if err != nil {
			return err
		}
		return e.doc.SetTodoDone(index, b)
	default:
		return errors.NewValidationError("unknown todo field '" + field + "'")
	}
}

func (e *Editor) setProjectField(id, field string, value interface{}) error {
	switch field {
	case aggregates.FieldDescription:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		e.doc.SetDescription(s)
		return nil
	case aggregates.FieldModuleColor:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		e.doc.SetModuleColor(id, s)
		return nil
	case aggregates.FieldEdgeColors:
		colors, ok := value.(entities.EdgeColors)
		if !ok {
			return errors.NewValidationError("field '" + field + "' expects edge colors")
		}
		e.doc.SetEdgeColors(colors.Pipeline, colors.Reference)
		return nil
	default:
		return errors.NewValidationError("unknown project field '" + field + "'")
	}
}

func (e *Editor) Reorder(kind aggregates.EntityKind, containerID string, from, to int) error {
	var err error
	switch kind {
	case aggregates.KindSnippet:
		err = e.doc.MoveSnippet(containerID, from, to)
	case aggregates.KindTag:
		err = e.doc.MoveTag(from, to)
	case aggregates.KindTodo:
		err = e.doc.MoveTodo(from, to)
	default:
		return errors.NewValidationError("cannot reorder entity kind '" + string(kind) + "'")
	}
	if err != nil {
		return err
	}
	e.notify(kind, containerID)
	return nil
}

func (e *Editor) LookupSnippet(nodeID, snippetID string) (entities.Snippet, bool) {
	n, ok := e.doc.Node(nodeID)
	if !ok {
		return entities.Snippet{}, false
	}
	i := n.SnippetIndex(snippetID)
	if i < 0 {
		return entities.Snippet{}, false
	}
	return n.Snippets[i], true
}

func asString(field string, value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", errors.NewValidationError("field '" + field + "' expects a string")
	}
	return s, nil
}

func asBool(field string, value interface{}) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, errors.NewValidationError("field '" + field + "' expects a bool")
	}
	return b, nil
}

func asPosition(field string, value interface{}) (valueobjects.Position, error) {
	pos, ok := value.(valueobjects.Position)
	if !ok {
		return valueobjects.Position{}, errors.NewValidationError("field '" + field + "' expects a position")
	}
	return pos, nil
}

func asRect(field string, value interface{}) (valueobjects.Rect, error) {
	rect, ok := value.(valueobjects.Rect)
	if !ok {
		return valueobjects.Rect{}, errors.NewValidationError("field '" + field + "' expects a rect")
	}
	return rect, nil
}
