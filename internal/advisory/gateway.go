// AngelaMos | 2026
// gateway.go

package advisory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/carterperez-dev/agriconnect/internal/core"
)

const (
	OpGuide           = "guide"
	OpImage           = "image"
	OpMarkets         = "markets"
	OpConditions      = "conditions"
	OpRecommendations = "recommendations"
)

type GatewayConfig struct {
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
	Tracer  trace.Tracer
}

// Gateway turns advisory requests into model prompts and model output into
// typed results. Identical concurrent structured requests share one
// provider call.
type Gateway struct {
	provider Provider
	model    string
	timeout  time.Duration
	logger   *slog.Logger
	tracer   trace.Tracer
	group    singleflight.Group
	stats    stats
}

type stats struct {
	calls      atomic.Int64
	failures   atomic.Int64
	shared     atomic.Int64
	empty      atomic.Int64
	malformed  atomic.Int64
	wrongShape atomic.Int64
	upstream   atomic.Int64
}

type Stats struct {
	Calls          int64 `json:"calls"`
	Failures       int64 `json:"failures"`
	SharedResults  int64 `json:"shared_results"`
	EmptyResponses int64 `json:"empty_responses"`
	MalformedJSON  int64 `json:"malformed_json"`
	WrongShape     int64 `json:"wrong_shape"`
	ProviderErrors int64 `json:"provider_errors"`
}

func NewGateway(provider Provider, cfg GatewayConfig) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("agriconnect/advisory")
	}

	return &Gateway{
		provider: provider,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		logger:   logger,
		tracer:   tracer,
	}
}

func (g *Gateway) Stats() Stats {
	return Stats{
		Calls:          g.stats.calls.Load(),
		Failures:       g.stats.failures.Load(),
		SharedResults:  g.stats.shared.Load(),
		EmptyResponses: g.stats.empty.Load(),
		MalformedJSON:  g.stats.malformed.Load(),
		WrongShape:     g.stats.wrongShape.Load(),
		ProviderErrors: g.stats.upstream.Load(),
	}
}

func (g *Gateway) GenerateGuide(ctx context.Context, topic, language string) (string, error) {
	return g.text(ctx, OpGuide, Request{
		Prompt: guidePrompt(topic, language),
	})
}

func (g *Gateway) AnalyzeImage(
	ctx context.Context,
	image []byte,
	mimeType, question, language string,
) (string, error) {
	return g.text(ctx, OpImage, Request{
		Prompt:   imagePrompt(question, language),
		Image:    image,
		MIMEType: mimeType,
	})
}

func (g *Gateway) FindMarkets(
	ctx context.Context,
	query, language string,
	loc *Location,
) ([]MarketInfo, error) {
	key := callKey(OpMarkets, query, language, locationKey(loc))

	return structured(ctx, g, OpMarkets, key, Request{
		Prompt:          marketsPrompt(query, language, loc),
		SearchGrounding: true,
	}, parseMarkets)
}

func (g *Gateway) GetFarmConditions(
	ctx context.Context,
	lat, lon float64,
	language string,
) (FarmConditions, error) {
	key := callKey(OpConditions, formatFloat(lat), formatFloat(lon), language)

	return structured(ctx, g, OpConditions, key, Request{
		Prompt:          conditionsPrompt(lat, lon, language),
		SearchGrounding: true,
	}, parseConditions)
}

func (g *Gateway) GetCropRecommendation(
	ctx context.Context,
	state, soilType string,
	rainfall, temperature float64,
	language string,
) ([]CropRecommendation, error) {
	key := callKey(OpRecommendations,
		state, soilType, formatFloat(rainfall), formatFloat(temperature), language)

	return structured(ctx, g, OpRecommendations, key, Request{
		Prompt: recommendationPrompt(state, soilType, rainfall, temperature, language),
	}, parseRecommendations)
}

func (g *Gateway) text(ctx context.Context, op string, req Request) (string, error) {
	out, err := g.call(ctx, op, req)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(out) == "" {
		g.fail(ctx, op, ErrEmptyResponse)
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	return out, nil
}

func structured[T any](
	ctx context.Context,
	g *Gateway,
	op, key string,
	req Request,
	parse func(string) (T, error),
) (T, error) {
	v, err, shared := g.group.Do(key, func() (any, error) {
		out, err := g.call(ctx, op, req)
		if err != nil {
			return nil, err
		}

		parsed, err := parse(out)
		if err != nil {
			g.fail(ctx, op, err)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return parsed, nil
	})

	if shared {
		g.stats.shared.Add(1)
	}

	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// call performs one provider round trip inside its own span and deadline.
func (g *Gateway) call(ctx context.Context, op string, req Request) (string, error) {
	if req.Model == "" {
		req.Model = g.model
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	ctx, span := g.tracer.Start(ctx, "advisory."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("advisory.operation", op),
			attribute.String("advisory.model", req.Model),
			attribute.Bool("advisory.search_grounding", req.SearchGrounding),
			attribute.Int("advisory.image_bytes", len(req.Image)),
		),
	)
	defer span.End()

	g.stats.calls.Add(1)
	start := time.Now()

	out, err := g.provider.Generate(ctx, req)
	latency := time.Since(start)

	if err != nil {
		err = fmt.Errorf("%s: %w: %w", op, core.ErrUpstream, err)
		g.stats.upstream.Add(1)
		g.fail(ctx, op, err)
		g.logger.Error("advisory call failed",
			"operation", op,
			"model", req.Model,
			"latency", latency,
			"error", err,
		)
		return "", err
	}

	core.AddSpanEvent(ctx, "advisory.response",
		attribute.Int("advisory.response_bytes", len(out)),
	)

	g.logger.Info("advisory call completed",
		"operation", op,
		"model", req.Model,
		"latency", latency,
		"response_bytes", len(out),
	)

	return out, nil
}

func (g *Gateway) fail(ctx context.Context, op string, err error) {
	g.stats.failures.Add(1)

	switch {
	case errors.Is(err, ErrEmptyResponse):
		g.stats.empty.Add(1)
	case errors.Is(err, ErrMalformedJSON):
		g.stats.malformed.Add(1)
	case errors.Is(err, ErrWrongShape):
		g.stats.wrongShape.Add(1)
	}

	if !errors.Is(err, core.ErrUpstream) {
		g.logger.Warn("advisory response rejected",
			"operation", op,
			"error", err,
		)
	}

	core.SetSpanError(ctx, err)
}

func callKey(parts ...string) string {
	return strings.Join(parts, "\x00")
}

func locationKey(loc *Location) string {
	if loc == nil {
		return ""
	}
	return formatFloat(loc.Lat) + "," + formatFloat(loc.Lon)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
