// AngelaMos | 2026
// handler.go

package advisory

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/agriconnect/internal/core"
)

const (
	MaxImageBytes = 10 << 20

	GuideFallback = "Sorry, I couldn't generate a guide on that topic. Please try again."
	ImageFallback = "Sorry, I couldn't analyze the image. Please ensure it's a valid image file and try again."

	marketsFailure = "Sorry, I couldn't find market data. " +
		"The model may have returned an invalid format or an error occurred."
	conditionsFailure = "Sorry, I couldn't determine the local farm conditions. " +
		"The AI model may have returned an unexpected format."
	recommendationsFailure = "Sorry, I couldn't get crop recommendations. " +
		"The model may have returned an invalid format or an error occurred."
)

type Handler struct {
	gateway   *Gateway
	validator *validator.Validate
	logger    *slog.Logger
}

func NewHandler(gateway *Gateway, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		gateway:   gateway,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, limiter func(http.Handler) http.Handler,
) {
	r.Route("/advisory", func(r chi.Router) {
		r.Use(authenticator)
		if limiter != nil {
			r.Use(limiter)
		}

		r.Post("/guide", h.Guide)
		r.Post("/image", h.Image)
		r.Post("/markets", h.Markets)
		r.Post("/conditions", h.Conditions)
		r.Post("/recommendations", h.Recommendations)
		r.Post("/assess", h.Assess)
	})
}

func (h *Handler) Guide(w http.ResponseWriter, r *http.Request) {
	var req GuideRequest
	if !h.decode(w, r, &req) {
		return
	}

	content, err := h.gateway.GenerateGuide(
		r.Context(),
		req.Topic,
		languageOrDefault(req.Language),
	)
	if err != nil {
		h.logger.Warn("guide fallback", "error", err)
		core.OK(w, TextResponse{Content: GuideFallback, Fallback: true})
		return
	}

	core.OK(w, TextResponse{Content: content})
}

func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes+(1<<20))

	if err := r.ParseMultipartForm(MaxImageBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			core.JSONError(w, core.NewAppError(
				core.ErrPayloadTooBig,
				"image must be at most 10 MiB",
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
			))
			return
		}
		core.BadRequest(w, "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup
	}()

	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		core.BadRequest(w, "question is required")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		core.BadRequest(w, "image is required")
		return
	}
	defer file.Close() //nolint:errcheck // read-only upload

	if header.Size > MaxImageBytes {
		core.JSONError(w, core.NewAppError(
			core.ErrPayloadTooBig,
			"image must be at most 10 MiB",
			http.StatusRequestEntityTooLarge,
			"PAYLOAD_TOO_LARGE",
		))
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		core.BadRequest(w, "could not read image")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(image)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		core.BadRequest(w, "uploaded file is not an image")
		return
	}

	content, err := h.gateway.AnalyzeImage(
		r.Context(),
		image,
		mimeType,
		question,
		languageOrDefault(r.FormValue("language")),
	)
	if err != nil {
		h.logger.Warn("image analysis fallback", "error", err)
		core.OK(w, TextResponse{Content: ImageFallback, Fallback: true})
		return
	}

	core.OK(w, TextResponse{Content: content})
}

func (h *Handler) Markets(w http.ResponseWriter, r *http.Request) {
	var req MarketsRequest
	if !h.decode(w, r, &req) {
		return
	}

	markets, err := h.gateway.FindMarkets(
		r.Context(),
		req.Query,
		languageOrDefault(req.Language),
		req.Location,
	)
	if err != nil {
		core.JSONError(w, core.UpstreamError(marketsFailure, err))
		return
	}

	core.OK(w, MarketsResponse{Markets: markets})
}

func (h *Handler) Conditions(w http.ResponseWriter, r *http.Request) {
	var req ConditionsRequest
	if !h.decode(w, r, &req) {
		return
	}

	conditions, err := h.gateway.GetFarmConditions(
		r.Context(),
		*req.Lat,
		*req.Lon,
		languageOrDefault(req.Language),
	)
	if err != nil {
		core.JSONError(w, core.UpstreamError(conditionsFailure, err))
		return
	}

	core.OK(w, conditions)
}

func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationsRequest
	if !h.decode(w, r, &req) {
		return
	}

	recs, err := h.gateway.GetCropRecommendation(
		r.Context(),
		req.State,
		req.SoilType,
		*req.Rainfall,
		*req.Temperature,
		languageOrDefault(req.Language),
	)
	if err != nil {
		core.JSONError(w, core.UpstreamError(recommendationsFailure, err))
		return
	}

	core.OK(w, RecommendationsResponse{Recommendations: recs})
}

// Assess detects conditions at a location and then recommends crops for
// them, in one round trip for the client.
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	var req ConditionsRequest
	if !h.decode(w, r, &req) {
		return
	}

	language := languageOrDefault(req.Language)

	conditions, err := h.gateway.GetFarmConditions(r.Context(), *req.Lat, *req.Lon, language)
	if err != nil {
		core.JSONError(w, core.UpstreamError(conditionsFailure, err))
		return
	}

	recs, err := h.gateway.GetCropRecommendation(
		r.Context(),
		conditions.State,
		conditions.SoilType,
		conditions.Rainfall,
		conditions.Temperature,
		language,
	)
	if err != nil {
		core.JSONError(w, core.UpstreamError(recommendationsFailure, err))
		return
	}

	core.OK(w, AssessResponse{
		Conditions:      conditions,
		Recommendations: recs,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}
