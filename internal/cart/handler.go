// AngelaMos | 2026
// handler.go

package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/agriconnect/internal/advisory"
	"github.com/carterperez-dev/agriconnect/internal/core"
	"github.com/carterperez-dev/agriconnect/internal/middleware"
)

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
	r.Route("/cart", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.Get)
		r.Post("/items", h.AddItem)
		r.Delete("/items", h.RemoveItem)
		r.Post("/checkout", h.Checkout)
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetSessionUser(r.Context())
	core.OK(w, h.service.Get(r.Context(), user.Email))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if req.Market.ID == "" || req.Crop.Name == "" {
		core.BadRequest(w, "market id and crop name are required")
		return
	}
	if req.Crop.Price < 0 {
		core.BadRequest(w, "price must be at least 0")
		return
	}
	req.Crop.Unit = advisory.PriceUnitKg

	user := middleware.GetSessionUser(r.Context())

	cart, err := h.service.Add(r.Context(), user.Email, req.Market, req.Crop, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrInvalidQuantity) {
			core.BadRequest(w, ErrInvalidQuantity.Error())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, cart)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var req RemoveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user := middleware.GetSessionUser(r.Context())
	core.OK(w, h.service.Remove(r.Context(), user.Email, req.MarketID, req.CropName))
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user := middleware.GetSessionUser(r.Context())

	order, err := h.service.Checkout(r.Context(), user.Email, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			core.JSONError(w, core.NewAppError(
				err,
				ErrEmptyCart.Error(),
				http.StatusConflict,
				"EMPTY_CART",
			))
		case errors.Is(err, ErrUnknownMethod):
			core.BadRequest(w, ErrUnknownMethod.Error())
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, order)
}
