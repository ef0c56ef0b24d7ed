package models

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CreateCampaignRequest represents the request body for creating a campaign
type CreateCampaignRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// CreateNoteRequest represents the request body for creating a note or folder
type CreateNoteRequest struct {
	Name     string   `json:"name" validate:"omitempty,max=100"`
	Type     NodeType `json:"type" validate:"required,oneof=folder file"`
	ParentID string   `json:"parentId" validate:"omitempty,max=64"`
}

// RenameNoteRequest represents the request body for renaming a node
type RenameNoteRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// UpdateContentRequest represents the request body for replacing a file's content
type UpdateContentRequest struct {
	Content string `json:"content"`
}

// DeleteNotesRequest represents the request body for a batch delete
type DeleteNotesRequest struct {
	IDs []string `json:"ids" validate:"dive,required"`
}

// MoveNoteRequest represents a drag-and-drop commit.
// When Position is empty it is inferred from OffsetY within Height.
type MoveNoteRequest struct {
	SourceID string  `json:"sourceId" validate:"required"`
	TargetID string  `json:"targetId" validate:"required"`
	Position string  `json:"position" validate:"omitempty,oneof=before after inside"`
	OffsetY  float64 `json:"offsetY" validate:"gte=0"`
	Height   float64 `json:"height" validate:"gte=0"`
}

// Validate validates the create campaign request
func (r *CreateCampaignRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the create note request
func (r *CreateNoteRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the rename request
func (r *RenameNoteRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the delete request
func (r *DeleteNotesRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the move request
func (r *MoveNoteRequest) Validate() error {
	return validate.Struct(r)
}
