package commands

import (
	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
)

// TodoAdd appends a todo item. The insertion index is captured at
// construction so undo removes exactly the added entry.
type TodoAdd struct {
	Text  string `json:"todo_text"`
	Index int    `json:"todo_index"`
}

func (c *TodoAdd) Kind() string { return KindTodoAdd }

func (c *TodoAdd) Apply(m Mutator) error {
	return m.InsertEntity(aggregates.KindTodo, aggregates.Snapshot{
		Todo:  &entities.Todo{Text: c.Text},
		Index: c.Index,
	})
}

func (c *TodoAdd) Revert(m Mutator) error {
	return m.RemoveEntity(aggregates.KindTodo, aggregates.EntityRef{Index: c.Index})
}

// TodoRemove deletes a todo item, snapshotting text and done state for undo
type TodoRemove struct {
	Index int    `json:"todo_index"`
	Text  string `json:"todo_text"`
	Done  bool   `json:"is_done"`
}

func (c *TodoRemove) Kind() string { return KindTodoRemove }

func (c *TodoRemove) Apply(m Mutator) error {
	return m.RemoveEntity(aggregates.KindTodo, aggregates.EntityRef{Index: c.Index})
}

func (c *TodoRemove) Revert(m Mutator) error {
	return m.InsertEntity(aggregates.KindTodo, aggregates.Snapshot{
		Todo:  &entities.Todo{Text: c.Text, Done: c.Done},
		Index: c.Index,
	})
}

// TodoEdit rewrites a todo's text
type TodoEdit struct {
	Index   int    `json:"todo_index"`
	OldText string `json:"old_text"`
	NewText string `json:"new_text"`
}

func (c *TodoEdit) Kind() string { return KindTodoEdit }

func (c *TodoEdit) Apply(m Mutator) error {
	return m.SetField(aggregates.KindTodo, aggregates.EntityRef{Index: c.Index}, aggregates.FieldText, c.NewText)
}

func (c *TodoEdit) Revert(m Mutator) error {
	return m.SetField(aggregates.KindTodo, aggregates.EntityRef{Index: c.Index}, aggregates.FieldText, c.OldText)
}

// TodoToggle flips a todo's done flag
type TodoToggle struct {
	Index    int  `json:"todo_index"`
	NewState bool `json:"new_state"`
}

func (c *TodoToggle) Kind() string { return KindTodoToggle }

func (c *TodoToggle) Apply(m Mutator) error {
	return m.SetField(aggregates.KindTodo, aggregates.EntityRef{Index: c.Index}, aggregates.FieldDone, c.NewState)
}

func (c *TodoToggle) Revert(m Mutator) error {
	return m.SetField(aggregates.KindTodo, aggregates.EntityRef{Index: c.Index}, aggregates.FieldDone, !c.NewState)
}

// TodoMove reorders the todo list; revert swaps the indices
type TodoMove struct {
	From int `json:"from_index"`
	To   int `json:"to_index"`
}

func (c *TodoMove) Kind() string { return KindTodoMove }

func (c *TodoMove) Apply(m Mutator) error {
	return m.Reorder(aggregates.KindTodo, "", c.From, c.To)
}

func (c *TodoMove) Revert(m Mutator) error {
	return m.Reorder(aggregates.KindTodo, "", c.To, c.From)
}
