package lambda

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ammiranda/notetree/handlers"
	"github.com/ammiranda/notetree/models"
	"github.com/ammiranda/notetree/service"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// Handler represents the Lambda handler with its dependencies
type Handler struct {
	svc    *service.NotesService
	logger *logrus.Entry
}

// NewHandler creates a new Handler over the notes service
func NewHandler(svc *service.NotesService, logger *logrus.Entry) *Handler {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{svc: svc, logger: logger}
}

// route is a parsed request path: /api/campaigns[/{id}[/notes[/{noteId|search|move}[/{action}]]]]
type route struct {
	campaignID string
	notes      bool
	noteID     string
	action     string
}

func parseRoute(path string) (route, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "api" || parts[1] != "campaigns" {
		return route{}, false
	}
	parts = parts[2:]

	var r route
	if len(parts) > 0 {
		r.campaignID = parts[0]
	}
	if len(parts) > 1 {
		if parts[1] != "notes" {
			return route{}, false
		}
		r.notes = true
	}
	if len(parts) > 2 {
		r.noteID = parts[2]
	}
	if len(parts) > 3 {
		r.action = parts[3]
	}
	if len(parts) > 4 {
		return route{}, false
	}
	return r, true
}

// Handle processes API Gateway events
func (h *Handler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	r, ok := parseRoute(request.Path)
	if !ok {
		return notFound(), nil
	}
	method := request.HTTPMethod

	switch {
	case r.campaignID == "" && method == http.MethodGet:
		return h.respond(h.svc.ListCampaigns(ctx))
	case r.campaignID == "" && method == http.MethodPost:
		var req models.CreateCampaignRequest
		if resp, ok := decode(request.Body, &req, req.Validate); !ok {
			return resp, nil
		}
		return h.respondStatus(http.StatusCreated)(h.svc.CreateCampaign(ctx, &req))
	case r.campaignID == "":
		return notFound(), nil
	case !r.notes && method == http.MethodGet:
		return h.respond(h.svc.GetCampaign(ctx, r.campaignID))
	case !r.notes && method == http.MethodDelete:
		return h.empty(h.svc.DeleteCampaign(ctx, r.campaignID))
	case !r.notes:
		return notFound(), nil
	case r.noteID == "":
		return h.handleNotes(ctx, r, request)
	default:
		return h.handleNote(ctx, r, request)
	}
}

func (h *Handler) handleNotes(ctx context.Context, r route, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch request.HTTPMethod {
	case http.MethodGet:
		return h.respond(h.svc.Notes(ctx, r.campaignID))
	case http.MethodPut:
		return h.respond(h.svc.Import(ctx, r.campaignID, []byte(request.Body)))
	case http.MethodPost:
		var req models.CreateNoteRequest
		if resp, ok := decode(request.Body, &req, req.Validate); !ok {
			return resp, nil
		}
		return h.respondStatus(http.StatusCreated)(h.svc.Create(ctx, r.campaignID, &req))
	case http.MethodDelete:
		var req models.DeleteNotesRequest
		if resp, ok := decode(request.Body, &req, req.Validate); !ok {
			return resp, nil
		}
		return h.empty(h.svc.Delete(ctx, r.campaignID, req.IDs))
	}
	return notFound(), nil
}

func (h *Handler) handleNote(ctx context.Context, r route, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	method := request.HTTPMethod
	switch {
	case r.noteID == "search" && r.action == "" && method == http.MethodGet:
		matches, err := h.svc.Search(ctx, r.campaignID, request.QueryStringParameters["q"])
		if err == nil && matches == nil {
			return jsonResponse(http.StatusOK, []struct{}{}), nil
		}
		return h.respond(matches, err)
	case r.noteID == "move" && r.action == "" && method == http.MethodPost:
		var req models.MoveNoteRequest
		if resp, ok := decode(request.Body, &req, req.Validate); !ok {
			return resp, nil
		}
		return h.respond(h.svc.Move(ctx, r.campaignID, &req))
	case r.action == "" && method == http.MethodGet:
		return h.respond(h.svc.Note(ctx, r.campaignID, r.noteID))
	case r.action == "name" && method == http.MethodPut:
		var req models.RenameNoteRequest
		if resp, ok := decode(request.Body, &req, req.Validate); !ok {
			return resp, nil
		}
		return h.respond(h.svc.Rename(ctx, r.campaignID, r.noteID, req.Name))
	case r.action == "content" && method == http.MethodPut:
		var req models.UpdateContentRequest
		if resp, ok := decode(request.Body, &req, nil); !ok {
			return resp, nil
		}
		return h.respond(h.svc.UpdateContent(ctx, r.campaignID, r.noteID, req.Content))
	case r.action == "lock" && method == http.MethodPost:
		return h.respond(h.svc.ToggleLock(ctx, r.campaignID, r.noteID))
	case r.action == "toggle" && method == http.MethodPost:
		return h.respond(h.svc.ToggleOpen(ctx, r.campaignID, r.noteID))
	}
	return notFound(), nil
}

func decode(body string, req interface{}, validate func() error) (events.APIGatewayProxyResponse, bool) {
	if err := json.Unmarshal([]byte(body), req); err != nil {
		return jsonResponse(http.StatusBadRequest, handlers.ErrorResponse{Error: "Invalid request: " + err.Error()}), false
	}
	if validate != nil {
		if err := validate(); err != nil {
			return jsonResponse(http.StatusBadRequest, handlers.ErrorResponse{Error: err.Error()}), false
		}
	}
	return events.APIGatewayProxyResponse{}, true
}

func (h *Handler) respond(value interface{}, err error) (events.APIGatewayProxyResponse, error) {
	return h.respondStatus(http.StatusOK)(value, err)
}

func (h *Handler) respondStatus(status int) func(interface{}, error) (events.APIGatewayProxyResponse, error) {
	return func(value interface{}, err error) (events.APIGatewayProxyResponse, error) {
		if err != nil {
			return h.failure(err), nil
		}
		return jsonResponse(status, value), nil
	}
}

func (h *Handler) empty(err error) (events.APIGatewayProxyResponse, error) {
	if err != nil {
		return h.failure(err), nil
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent}, nil
}

func (h *Handler) failure(err error) events.APIGatewayProxyResponse {
	status := handlers.StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error("Request failed")
	}
	return jsonResponse(status, handlers.NewErrorResponse(err))
}

func jsonResponse(status int, value interface{}) events.APIGatewayProxyResponse {
	body, err := json.Marshal(value)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "Failed to marshal response"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func notFound() events.APIGatewayProxyResponse {
	return jsonResponse(http.StatusNotFound, handlers.ErrorResponse{Error: "Not found"})
}
