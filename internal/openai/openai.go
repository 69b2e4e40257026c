package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mktpassos/audiodescricao-app/describer"

	oagc "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultModel = "gpt-4o-mini"

type openai struct {
	oac    *oagc.Client
	apiKey string
	model  string
}

var _ describer.Describer = &openai{}

// Init returns a backend that sends the image as a data URL inside a chat
// completion. baseURL may be empty to use the public API. The client never
// retries: one describe is one round trip.
func Init(apiKey, model, baseURL string, httpClient *http.Client) *openai {
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	apiKey = strings.TrimSpace(apiKey)

	opts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}

	return &openai{
		oac:    oagc.NewClient(opts...),
		apiKey: apiKey,
		model:  model,
	}
}

func (o *openai) Name() string { return "openai" }

func (o *openai) Model() string { return o.model }

func (o *openai) Validate() error {
	if o.apiKey == "" {
		return describer.ErrMissingCredential
	}
	return nil
}

// IsHealthy only checks that a key is configured, probing the API would cost
// a billable request.
func (o *openai) IsHealthy(ctx context.Context) bool {
	return o.apiKey != ""
}

func (o *openai) DescribeImage(ctx context.Context, img describer.Image, prompt string) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}

	params := oagc.ChatCompletionNewParams{
		Messages: oagc.F([]oagc.ChatCompletionMessageParamUnion{
			oagc.UserMessageParts(
				oagc.TextPart(prompt),
				oagc.ImagePart(img.DataURL()),
			),
		}),
		Model: oagc.F(oagc.ChatModel(o.model)),
	}
	resp, err := o.oac.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
