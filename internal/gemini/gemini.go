package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mktpassos/audiodescricao-app/describer"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash"
)

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type generateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type generateContentResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

type gemini struct {
	apiKey string
	model  string

	client *resty.Client
}

var _ describer.Describer = &gemini{}

// Init returns a Gemini backend talking to the generateContent REST endpoint
// under baseURL. Empty baseURL and model select the public API and
// DefaultModel. If httpClient is nil a new http.Client is used.
func Init(apiKey, model, baseURL string, httpClient *http.Client) *gemini {
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &gemini{
		apiKey: strings.TrimSpace(apiKey),
		model:  model,
		client: resty.NewWithClient(httpClient).
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json"),
	}
}

func (g *gemini) Name() string { return "gemini" }

func (g *gemini) Model() string { return g.model }

func (g *gemini) Validate() error {
	if g.apiKey == "" {
		return describer.ErrMissingCredential
	}
	return nil
}

func (g *gemini) IsHealthy(ctx context.Context) bool {
	if g.apiKey == "" {
		return false
	}
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		Get("/models/" + url.PathEscape(g.model))
	if err != nil {
		return false
	}

	return resp.StatusCode() == http.StatusOK
}

func (g *gemini) DescribeImage(ctx context.Context, img describer.Image, prompt string) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}

	payload := generateContentRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{MimeType: img.MimeType, Data: img.Base64}},
			},
		}},
	}

	var (
		out    generateContentResponse
		apiErr errorResponse
	)
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(payload).
		SetResult(&out).
		SetError(&apiErr).
		Post(fmt.Sprintf("/models/%s:generateContent", url.PathEscape(g.model)))
	if err != nil {
		return "", fmt.Errorf("invoke gemini: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error.Message != "" {
			return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode(), apiErr.Error.Message)
		}
		if body := strings.TrimSpace(resp.String()); body != "" {
			return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode(), body)
		}
		return "", fmt.Errorf("gemini status %d", resp.StatusCode())
	}

	if len(out.Candidates) == 0 {
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini blocked the prompt: %s", out.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}
