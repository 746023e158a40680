package entities

// Tag is a named label in the project's ordered global tag list. Tag
// colors apply to every node badge carrying the tag.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Todo is an item on the project task list
type Todo struct {
	Text string `json:"text"`
	Done bool   `json:"done,omitempty"`
}

// Default edge colors shipped with a fresh project.
const (
	DefaultPipelineEdgeColor  = "#607D8B"
	DefaultReferenceEdgeColor = "#4CAF50"
)

// Palette holds the per-module-type fill colors plus the two global
// edge colors.
type Palette struct {
	ModuleColors       map[string]string `json:"module_colors,omitempty"`
	PipelineEdgeColor  string            `json:"pipeline_edge_color"`
	ReferenceEdgeColor string            `json:"reference_edge_color"`
}

// NewPalette creates a palette with default edge colors
func NewPalette() Palette {
	return Palette{
		ModuleColors:       make(map[string]string),
		PipelineEdgeColor:  DefaultPipelineEdgeColor,
		ReferenceEdgeColor: DefaultReferenceEdgeColor,
	}
}

// Clone returns a deep copy of the palette
func (p Palette) Clone() Palette {
	cp := p
	cp.ModuleColors = make(map[string]string, len(p.ModuleColors))
	for k, v := range p.ModuleColors {
		cp.ModuleColors[k] = v
	}
	return cp
}

// EdgeColors is the paired pipeline/reference edge color value used by
// palette field edits.
type EdgeColors struct {
	Pipeline  string `json:"pipeline"`
	Reference string `json:"reference"`
}
