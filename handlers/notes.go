package handlers

import (
	"io"
	"net/http"

	"github.com/ammiranda/notetree/models"
	"github.com/ammiranda/notetree/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NotesHandler handles campaign and note HTTP requests
type NotesHandler struct {
	svc    *service.NotesService
	logger *logrus.Entry
}

// NewNotesHandler creates a new NotesHandler instance
func NewNotesHandler(svc *service.NotesService, logger *logrus.Entry) *NotesHandler {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &NotesHandler{svc: svc, logger: logger}
}

// Register mounts every route under group
func (h *NotesHandler) Register(group *gin.RouterGroup) {
	group.GET("/campaigns", h.ListCampaigns)
	group.POST("/campaigns", h.CreateCampaign)
	group.GET("/campaigns/:id", h.GetCampaign)
	group.DELETE("/campaigns/:id", h.DeleteCampaign)

	notes := group.Group("/campaigns/:id/notes")
	notes.GET("", h.GetNotes)
	notes.PUT("", h.ImportNotes)
	notes.POST("", h.CreateNote)
	notes.DELETE("", h.DeleteNotes)
	notes.GET("/search", h.SearchNotes)
	notes.POST("/move", h.MoveNote)
	notes.GET("/:noteId", h.GetNote)
	notes.PUT("/:noteId/name", h.RenameNote)
	notes.PUT("/:noteId/content", h.UpdateContent)
	notes.POST("/:noteId/lock", h.ToggleLock)
	notes.POST("/:noteId/toggle", h.ToggleOpen)
}

func (h *NotesHandler) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"campaign": c.Param("id"),
			"node":     c.Param("noteId"),
			"op":       c.Request.Method + " " + c.FullPath(),
		}).Error("Request failed")
	}
	c.JSON(status, NewErrorResponse(err))
}

// bind decodes the JSON body into req and runs its validation
func (h *NotesHandler) bind(c *gin.Context, req interface{ Validate() error }) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return false
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

// ListCampaigns returns every campaign without its notes
func (h *NotesHandler) ListCampaigns(c *gin.Context) {
	campaigns, err := h.svc.ListCampaigns(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

// CreateCampaign creates a campaign with an empty note tree
func (h *NotesHandler) CreateCampaign(c *gin.Context) {
	var req models.CreateCampaignRequest
	if !h.bind(c, &req) {
		return
	}
	campaign, err := h.svc.CreateCampaign(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

// GetCampaign returns a campaign with its notes
func (h *NotesHandler) GetCampaign(c *gin.Context) {
	campaign, err := h.svc.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// DeleteCampaign deletes a campaign and its notes
func (h *NotesHandler) DeleteCampaign(c *gin.Context) {
	if err := h.svc.DeleteCampaign(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetNotes returns the note forest of a campaign
func (h *NotesHandler) GetNotes(c *gin.Context) {
	forest, err := h.svc.Notes(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, forest)
}

// ImportNotes replaces the note forest with the request body
func (h *NotesHandler) ImportNotes(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	forest, err := h.svc.Import(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, forest)
}

// GetNote returns one note
func (h *NotesHandler) GetNote(c *gin.Context) {
	node, err := h.svc.Note(c.Request.Context(), c.Param("id"), c.Param("noteId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// SearchNotes returns notes whose name contains ?q=
func (h *NotesHandler) SearchNotes(c *gin.Context) {
	matches, err := h.svc.Search(c.Request.Context(), c.Param("id"), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if matches == nil {
		c.JSON(http.StatusOK, []struct{}{})
		return
	}
	c.JSON(http.StatusOK, matches)
}

// CreateNote creates a file or folder
func (h *NotesHandler) CreateNote(c *gin.Context) {
	var req models.CreateNoteRequest
	if !h.bind(c, &req) {
		return
	}
	node, err := h.svc.Create(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

// RenameNote renames a note
func (h *NotesHandler) RenameNote(c *gin.Context) {
	var req models.RenameNoteRequest
	if !h.bind(c, &req) {
		return
	}
	node, err := h.svc.Rename(c.Request.Context(), c.Param("id"), c.Param("noteId"), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// UpdateContent replaces the content of a file
func (h *NotesHandler) UpdateContent(c *gin.Context) {
	var req models.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	node, err := h.svc.UpdateContent(c.Request.Context(), c.Param("id"), c.Param("noteId"), req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// ToggleLock flips the lock of a note
func (h *NotesHandler) ToggleLock(c *gin.Context) {
	node, err := h.svc.ToggleLock(c.Request.Context(), c.Param("id"), c.Param("noteId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// ToggleOpen expands or collapses a folder
func (h *NotesHandler) ToggleOpen(c *gin.Context) {
	node, err := h.svc.ToggleOpen(c.Request.Context(), c.Param("id"), c.Param("noteId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// DeleteNotes deletes a batch of notes with their descendants
func (h *NotesHandler) DeleteNotes(c *gin.Context) {
	var req models.DeleteNotesRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), req.IDs); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MoveNote commits a drag-and-drop and returns the new forest
func (h *NotesHandler) MoveNote(c *gin.Context) {
	var req models.MoveNoteRequest
	if !h.bind(c, &req) {
		return
	}
	forest, err := h.svc.Move(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, forest)
}
