package ai

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// GeminiModel is the Gemini model asked to compare faces.
const GeminiModel = "gemini-2.5-flash"

// GeminiProvider compares faces with Gemini. The client is created on first use, so a
// provider without an API key can be constructed and fails only when asked to compare.
type GeminiProvider struct {
	usageTracker

	apiKey    string
	baseURL   string
	matchMode string

	clientMu sync.Mutex
	client   *genai.Client
}

func NewGeminiProvider(apiKey string, pricing RequestPricing, matchMode string) *GeminiProvider {
	return &GeminiProvider{
		usageTracker: usageTracker{pricing: pricing},
		apiKey:       apiKey,
		matchMode:    matchMode,
	}
}

func (p *GeminiProvider) Name() string {
	return GeminiModel
}

func (p *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.clientMu.Lock()
	defer p.clientMu.Unlock()
	if p.client != nil {
		return p.client, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client
	return client, nil
}

func (p *GeminiProvider) CompareFaces(ctx context.Context, reference, candidate []byte) (bool, error) {
	if p.apiKey == "" {
		return false, ErrNotConfigured
	}

	ref, cand, err := prepareImages(reference, candidate)
	if err != nil {
		return false, err
	}

	client, err := p.getClient(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrAPI, err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{Data: ref, MIMEType: "image/jpeg"}},
				{InlineData: &genai.Blob{Data: cand, MIMEType: "image/jpeg"}},
				{Text: CompareFacesPrompt()},
			},
		},
	}

	result, err := client.Models.GenerateContent(ctx, GeminiModel, contents, nil)
	if err != nil {
		return false, fmt.Errorf("%w: gemini: %w", ErrAPI, err)
	}

	if result.UsageMetadata != nil {
		p.track(int64(result.UsageMetadata.PromptTokenCount), int64(result.UsageMetadata.CandidatesTokenCount))
	} else {
		p.track(0, 0)
	}

	return ParseVerdict(result.Text(), p.matchMode), nil
}
