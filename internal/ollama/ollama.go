package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mktpassos/audiodescricao-app/describer"
)

const DefaultModel = "llava"

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type ollama struct {
	model   string
	srvAddr string

	client *resty.Client
}

var _ describer.Describer = &ollama{}

// Init returns a backend for an Ollama server, typically
// http://localhost:11434, using a vision capable model.
func Init(model, srvAddr string, httpClient *http.Client) *ollama {
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	srvAddr = strings.TrimRight(srvAddr, "/")

	return &ollama{
		model:   model,
		srvAddr: srvAddr,
		client: resty.NewWithClient(httpClient).
			SetBaseURL(srvAddr).
			SetHeader("Content-Type", "application/json"),
	}
}

func (o *ollama) Name() string { return "ollama" }

func (o *ollama) Model() string { return o.model }

func (o *ollama) Validate() error {
	if o.srvAddr == "" {
		return fmt.Errorf("ollama: no server address configured")
	}
	return nil
}

func (o *ollama) IsHealthy(ctx context.Context) bool {
	resp, err := o.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return false
	}

	return resp.StatusCode() == http.StatusOK
}

func (o *ollama) DescribeImage(ctx context.Context, img describer.Image, prompt string) (string, error) {
	var (
		out    generateResponse
		apiErr errorResponse
	)
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Model:  o.model,
			Prompt: prompt,
			Images: []string{img.Base64},
			Stream: false,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("invoke ollama: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode(), apiErr.Error)
		}
		return "", fmt.Errorf("ollama status %d", resp.StatusCode())
	}

	return out.Response, nil
}
