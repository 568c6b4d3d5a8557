// AngelaMos | 2026
// handler.go

package community

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/agriconnect/internal/core"
	"github.com/carterperez-dev/agriconnect/internal/middleware"
)

type CreatePostRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type PostListResponse struct {
	Posts []Post `json:"posts"`
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
	r.Route("/community/posts", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetSessionUser(r.Context())
	core.OK(w, PostListResponse{Posts: h.service.List(r.Context(), user.Email)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user := middleware.GetSessionUser(r.Context())

	post, err := h.service.Create(r.Context(), Author{Name: user.Name, Email: user.Email}, req.Content)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "content must not be blank")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, post)
}
