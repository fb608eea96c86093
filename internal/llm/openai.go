package llm

import (
	"context"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/postmortemhq/postmortem-engine/internal/models"
	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

// OpenAIClient generates post-mortems through the OpenAI chat completions API.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient constructs an OpenAI generation client.
func NewOpenAIClient(baseURL, apiKey string, timeout time.Duration) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &OpenAIClient{client: openai.NewClient(opts...)}
}

// GeneratePostMortem performs one chat completion call using the routed model
// and decodes the structured report from the first choice.
func (c *OpenAIClient) GeneratePostMortem(ctx context.Context, facts models.FactBundle, selection models.ModelSelection) (models.PostMortem, error) {
	prompt := BuildPrompt(facts, selection)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: selection.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return models.PostMortem{}, utils.NewGenerationError("llm.OpenAI", "call generation backend", err)
	}
	if len(resp.Choices) == 0 {
		return models.PostMortem{}, utils.NewGenerationError("llm.OpenAI", "no choices in response", nil)
	}

	report, err := ParseReport(resp.Choices[0].Message.Content)
	if err != nil {
		return models.PostMortem{}, utils.NewGenerationError("llm.OpenAI", "malformed report", err)
	}
	return report, nil
}
