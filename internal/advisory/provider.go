// AngelaMos | 2026
// provider.go

package advisory

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/carterperez-dev/agriconnect/internal/config"
)

// Request is one call to the generative model.
type Request struct {
	Model           string
	Prompt          string
	Image           []byte
	MIMEType        string
	SearchGrounding bool
}

type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(
	ctx context.Context,
	cfg config.GeminiConfig,
) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if len(req.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Image, req.MIMEType))
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	var genCfg *genai.GenerateContentConfig
	if req.SearchGrounding {
		genCfg = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return resp.Text(), nil
}
