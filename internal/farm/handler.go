// AngelaMos | 2026
// handler.go

package farm

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/agriconnect/internal/core"
	"github.com/carterperez-dev/agriconnect/internal/middleware"
)

type CreateTaskRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

type TaskListResponse struct {
	Tasks []Task `json:"tasks"`
}

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/farm/tasks", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/{taskID}/toggle", h.Toggle)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetSessionUser(r.Context())
	core.OK(w, TaskListResponse{Tasks: h.service.List(r.Context(), user.Email)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user := middleware.GetSessionUser(r.Context())

	task, err := h.service.Add(r.Context(), user.Email, req.Text)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "text must not be blank")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, task)
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetSessionUser(r.Context())

	task, err := h.service.Toggle(r.Context(), user.Email, chi.URLParam(r, "taskID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "task")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, task)
}
