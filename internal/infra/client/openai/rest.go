package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
	"github.com/goccy/go-json"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// reviewLimit keeps prompts small; phishing markup is near the top of a page.
const reviewLimit = 12000

const reviewPrompt = `You review static websites hosted on a public platform.
Decide whether the page is phishing, credential harvesting or impersonation of a known brand.
Answer with a JSON object {"blocked": boolean, "reason": string}.`

type OpenAIClient struct {
	cfg    OpenAIConfig
	client openai.Client
}

var _ interfaces.ContentReviewer = (*OpenAIClient)(nil)

func NewOpenAIClient(config OpenAIConfig) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(config.apiKey)}
	if config.baseURL != "" {
		opts = append(opts, option.WithBaseURL(config.baseURL))
	}
	return &OpenAIClient{
		config,
		openai.NewClient(opts...),
	}
}

type verdict struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason"`
}

func (c *OpenAIClient) Review(ctx context.Context, html string, patterns []string) (blocked bool, reason string, err error) {
	defer func(started time.Time) { metrics.ObserveProvider("openai", "review", started, err) }(time.Now())

	if len(html) > reviewLimit {
		html = html[:reviewLimit]
	}
	user := fmt.Sprintf("Flagged patterns: %s\n\n%s", strings.Join(patterns, ", "), html)

	chatCompletion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.cfg.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(reviewPrompt),
			openai.UserMessage(user),
		},
		MaxCompletionTokens: param.Opt[int64]{Value: c.cfg.maxTokens},
		N:                   param.Opt[int64]{Value: 1},
		Temperature:         param.Opt[float64]{Value: 0},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return false, "", fmt.Errorf("err reviewing content, %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return false, "", fmt.Errorf("review returned no choices")
	}

	var v verdict
	if err = json.Unmarshal([]byte(chatCompletion.Choices[0].Message.Content), &v); err != nil {
		return false, "", fmt.Errorf("err parsing review verdict, %w", err)
	}
	return v.Blocked, v.Reason, nil
}
