package commands

import (
	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
)

// TagAdd appends a tag to the global tag list
type TagAdd struct {
	Name  string `json:"tag_name"`
	Index int    `json:"tag_index"`
}

func (c *TagAdd) Kind() string { return KindTagAdd }

func (c *TagAdd) Apply(m Mutator) error {
	return m.InsertEntity(aggregates.KindTag, aggregates.Snapshot{
		Tag:   &entities.Tag{Name: c.Name},
		Index: c.Index,
	})
}

func (c *TagAdd) Revert(m Mutator) error {
	return m.RemoveEntity(aggregates.KindTag, aggregates.EntityRef{ID: c.Name})
}

// TagRemove deletes a tag from the global list, snapshotting color and
// position for undo.
type TagRemove struct {
	Name  string `json:"tag_name"`
	Color string `json:"tag_color"`
	Index int    `json:"tag_index"`
}

func (c *TagRemove) Kind() string { return KindTagRemove }

func (c *TagRemove) Apply(m Mutator) error {
	return m.RemoveEntity(aggregates.KindTag, aggregates.EntityRef{ID: c.Name})
}

func (c *TagRemove) Revert(m Mutator) error {
	return m.InsertEntity(aggregates.KindTag, aggregates.Snapshot{
		Tag:   &entities.Tag{Name: c.Name, Color: c.Color},
		Index: c.Index,
	})
}

// TagRename renames a tag; the document propagates the new name to
// every node carrying it.
type TagRename struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

func (c *TagRename) Kind() string { return KindTagRename }

func (c *TagRename) Apply(m Mutator) error {
	return m.SetField(aggregates.KindTag, aggregates.EntityRef{ID: c.OldName}, aggregates.FieldName, c.NewName)
}

func (c *TagRename) Revert(m Mutator) error {
	return m.SetField(aggregates.KindTag, aggregates.EntityRef{ID: c.NewName}, aggregates.FieldName, c.OldName)
}

// TagColorChange recolors a tag and, through the global list, every
// node badge showing it.
type TagColorChange struct {
	Name     string `json:"tag_name"`
	OldColor string `json:"old_color"`
	NewColor string `json:"new_color"`
}

func (c *TagColorChange) Kind() string { return KindTagColorChange }

func (c *TagColorChange) Apply(m Mutator) error {
	return m.SetField(aggregates.KindTag, aggregates.EntityRef{ID: c.Name}, aggregates.FieldColor, c.NewColor)
}

func (c *TagColorChange) Revert(m Mutator) error {
	return m.SetField(aggregates.KindTag, aggregates.EntityRef{ID: c.Name}, aggregates.FieldColor, c.OldColor)
}

// TagMove reorders the global tag list; revert swaps the indices
type TagMove struct {
	From int `json:"from_index"`
	To   int `json:"to_index"`
}

func (c *TagMove) Kind() string { return KindTagMove }

func (c *TagMove) Apply(m Mutator) error {
	return m.Reorder(aggregates.KindTag, "", c.From, c.To)
}

func (c *TagMove) Revert(m Mutator) error {
	return m.Reorder(aggregates.KindTag, "", c.To, c.From)
}
