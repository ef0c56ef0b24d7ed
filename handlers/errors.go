package handlers

import (
	"errors"
	"net/http"

	"github.com/ammiranda/notetree/repository"
	"github.com/ammiranda/notetree/service"
	"github.com/ammiranda/notetree/store"
	"github.com/ammiranda/notetree/tree"
	"github.com/ammiranda/notetree/workspace"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Warning bool   `json:"warning,omitempty"`
}

// StatusFor maps a service error to an HTTP status code
func StatusFor(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, tree.ErrCycle):
		return http.StatusConflict
	case errors.Is(err, tree.ErrLocked), errors.Is(err, tree.ErrLockedSelection):
		return http.StatusLocked
	case errors.Is(err, tree.ErrEmptySelection),
		errors.Is(err, tree.ErrInvalidPosition),
		errors.Is(err, tree.ErrNotAFile),
		errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidForest),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrCampaignNotFound),
		errors.Is(err, service.ErrNoteNotFound),
		errors.Is(err, workspace.ErrParentNotFound),
		errors.Is(err, tree.ErrSourceNotFound),
		errors.Is(err, tree.ErrTargetNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the body for err. Warnings carry their user-facing message.
func NewErrorResponse(err error) ErrorResponse {
	var warning *tree.Warning
	if errors.As(err, &warning) {
		return ErrorResponse{Error: warning.Message, Warning: true}
	}
	return ErrorResponse{Error: err.Error()}
}
