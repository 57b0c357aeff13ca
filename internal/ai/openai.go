package ai

import (
	"context"
	"fmt"

	"github.com/kozaktomas/smart-attendance/internal/imaging"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIModel is the OpenAI model asked to compare faces.
const OpenAIModel = openai.ChatModelGPT4_1Mini

type OpenAIProvider struct {
	usageTracker

	client    *openai.Client
	hasKey    bool
	matchMode string
}

func NewOpenAIProvider(apiKey string, pricing RequestPricing, matchMode string, opts ...option.RequestOption) *OpenAIProvider {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		usageTracker: usageTracker{pricing: pricing},
		client:       &client,
		hasKey:       apiKey != "",
		matchMode:    matchMode,
	}
}

func (p *OpenAIProvider) Name() string {
	return OpenAIModel
}

func (p *OpenAIProvider) CompareFaces(ctx context.Context, reference, candidate []byte) (bool, error) {
	if !p.hasKey {
		return false, ErrNotConfigured
	}

	ref, cand, err := prepareImages(reference, candidate)
	if err != nil {
		return false, err
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    imaging.ToDataURL(ref),
							Detail: "low",
						}),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    imaging.ToDataURL(cand),
							Detail: "low",
						}),
						openai.TextContentPart(CompareFacesPrompt()),
					},
				},
			},
		},
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     OpenAIModel,
		Messages:  messages,
		MaxTokens: openai.Int(5),
	})
	if err != nil {
		return false, fmt.Errorf("%w: OpenAI: %w", ErrAPI, err)
	}

	p.track(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return false, nil
	}
	return ParseVerdict(resp.Choices[0].Message.Content, p.matchMode), nil
}

