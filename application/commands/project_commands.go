package commands

import (
	"sync/atomic"
	"time"

	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/domain/core/entities"
)

// DescriptionMergeWindow is how long a description edit stays open for
// absorbing the next one. Keystroke-level edits inside the window
// collapse into a single undo step.
const DescriptionMergeWindow = 3 * time.Second

// mergeWindowNanos overrides the default window when set at runtime.
var mergeWindowNanos atomic.Int64

// SetDescriptionMergeWindow adjusts the merge window for subsequently
// created description edits. Non-positive values are ignored.
func SetDescriptionMergeWindow(d time.Duration) {
	if d <= 0 {
		return
	}
	mergeWindowNanos.Store(int64(d))
}

func currentMergeWindow() time.Duration {
	if d := time.Duration(mergeWindowNanos.Load()); d > 0 {
		return d
	}
	return DescriptionMergeWindow
}

// DescriptionChange edits the project description. It is the only
// merge-capable command kind.
type DescriptionChange struct {
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`

	// mergedAt is the live timestamp of the last execute or merge. It
	// is never persisted: commands reloaded from history never merge.
	mergedAt time.Time
	window   time.Duration
}

// NewDescriptionChange creates a description edit open for merging
func NewDescriptionChange(oldValue, newValue string) *DescriptionChange {
	return &DescriptionChange{
		OldValue: oldValue,
		NewValue: newValue,
		mergedAt: time.Now(),
		window:   currentMergeWindow(),
	}
}

func (c *DescriptionChange) Kind() string { return KindDescriptionChange }

func (c *DescriptionChange) Apply(m Mutator) error {
	return m.SetField(aggregates.KindProject, aggregates.EntityRef{}, aggregates.FieldDescription, c.NewValue)
}

func (c *DescriptionChange) Revert(m Mutator) error {
	return m.SetField(aggregates.KindProject, aggregates.EntityRef{}, aggregates.FieldDescription, c.OldValue)
}

// CanMergeWith reports whether next is a description edit arriving
// inside the merge window.
func (c *DescriptionChange) CanMergeWith(next Command) bool {
	other, ok := next.(*DescriptionChange)
	if !ok || other == nil {
		return false
	}
	if c.mergedAt.IsZero() {
		return false
	}
	window := c.window
	if window == 0 {
		window = DescriptionMergeWindow
	}
	return time.Since(c.mergedAt) <= window
}

// MergeWith absorbs the next edit's new value and refreshes the window
func (c *DescriptionChange) MergeWith(next Command) {
	other, ok := next.(*DescriptionChange)
	if !ok {
		return
	}
	c.NewValue = other.NewValue
	c.mergedAt = time.Now()
}

// GlobalEdgeColorChange swaps both global edge colors at once
type GlobalEdgeColorChange struct {
	OldPipelineColor  string `json:"old_pipeline_color"`
	OldReferenceColor string `json:"old_reference_color"`
	NewPipelineColor  string `json:"new_pipeline_color"`
	NewReferenceColor string `json:"new_reference_color"`
}

func (c *GlobalEdgeColorChange) Kind() string { return KindGlobalEdgeColorChange }

func (c *GlobalEdgeColorChange) Apply(m Mutator) error {
	return m.SetField(aggregates.KindProject, aggregates.EntityRef{}, aggregates.FieldEdgeColors,
		entities.EdgeColors{Pipeline: c.NewPipelineColor, Reference: c.NewReferenceColor})
}

func (c *GlobalEdgeColorChange) Revert(m Mutator) error {
	return m.SetField(aggregates.KindProject, aggregates.EntityRef{}, aggregates.FieldEdgeColors,
		entities.EdgeColors{Pipeline: c.OldPipelineColor, Reference: c.OldReferenceColor})
}

// ModulePaletteColorChange recolors one module type in the palette
type ModulePaletteColorChange struct {
	ModuleType string `json:"module_type"`
	OldColor   string `json:"old_color"`
	NewColor   string `json:"new_color"`
}

func (c *ModulePaletteColorChange) Kind() string { return KindModulePaletteColorChange }

func (c *ModulePaletteColorChange) Apply(m Mutator) error {
	return m.SetField(aggregates.KindProject, aggregates.EntityRef{ID: c.ModuleType}, aggregates.FieldModuleColor, c.NewColor)
}

func (c *ModulePaletteColorChange) Revert(m Mutator) error {
	return m.SetField(aggregates.KindProject, aggregates.EntityRef{ID: c.ModuleType}, aggregates.FieldModuleColor, c.OldColor)
}
