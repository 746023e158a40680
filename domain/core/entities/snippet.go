package entities

import (
	"researchflow-backend/domain/core/valueobjects"
	pkgerrors "researchflow-backend/pkg/errors"
)

// SnippetKind represents the content type of a snippet
type SnippetKind string

const (
	SnippetKindText  SnippetKind = "text"
	SnippetKindImage SnippetKind = "image"
)

// Snippet is a text or image fragment owned by a node. Snippet order
// within a node is significant; the Content field holds text or, for
// images, a project-relative path resolved by the asset store.
type Snippet struct {
	ID          string      `json:"id"`
	Kind        SnippetKind `json:"kind"`
	Content     string      `json:"content"`
	SourceLabel string      `json:"source_label,omitempty"`
}

// NewTextSnippet creates an empty text snippet with a fresh id
func NewTextSnippet(content string) Snippet {
	return Snippet{ID: valueobjects.NewID(), Kind: SnippetKindText, Content: content}
}

// NewImageSnippet creates an image snippet referencing a relative path
func NewImageSnippet(relativePath string) Snippet {
	return Snippet{ID: valueobjects.NewID(), Kind: SnippetKindImage, Content: relativePath}
}

// Validate checks structural validity of a snippet
func (s Snippet) Validate() error {
	if err := valueobjects.ValidateID(s.ID); err != nil {
		return pkgerrors.NewValidationError("snippet: " + err.Error())
	}
	if s.Kind != SnippetKindText && s.Kind != SnippetKindImage {
		return pkgerrors.NewValidationError("snippet: unknown kind '" + string(s.Kind) + "'")
	}
	return nil
}

// CloneFrom creates an independent copy with a new id and source
// attribution, used when connecting a reference node clones its
// snippets onto the target.
func (s Snippet) CloneFrom(sourceTitle string) Snippet {
	label := s.SourceLabel
	if sourceTitle != "" {
		label = "From: " + sourceTitle
	}
	return Snippet{
		ID:          valueobjects.NewID(),
		Kind:        s.Kind,
		Content:     s.Content,
		SourceLabel: label,
	}
}
