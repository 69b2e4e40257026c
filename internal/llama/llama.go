package llama

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mktpassos/audiodescricao-app/describer"
)

const (
	imagePreamble = `A chat between a curious human and an artificial intelligence assistant. The assistant gives helpful, detailed, and polite answers to the human's questions.
USER:`
	imageSuffix = `
ASSISTANT:`

	// image_data entries are referenced from the prompt by id
	imageID = 10
)

type jsonmap map[string]any

// These were lifted from the web inspector for the server UI
var defaultparams = jsonmap{
	"n_predict":         400,
	"n_probs":           0,
	"temperature":       0.7,
	"stop":              []string{"</s>", "USER:", "ASSISTANT:"},
	"repeat_last_n":     256,
	"repeat_penalty":    1.18,
	"top_k":             40,
	"top_p":             0.5,
	"tfs_z":             1,
	"typical_p":         1,
	"presence_penalty":  0,
	"frequency_penalty": 0,
	"mirostat":          0,
	"mirostat_tau":      5,
	"mirostat_eta":      0.1,
	"grammar":           "",
	"slot_id":           -1,
	"cache_prompt":      true,
	"stream":            false,
}

type llama struct {
	srvAddr string
	seed    int

	client *resty.Client
}

var _ describer.Describer = &llama{}

// Init returns a backend for a llama.cpp server with multimodal support,
// typically http://localhost:8080.
func Init(srvAddr string, seed int, httpClient *http.Client) *llama {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	srvAddr = strings.TrimRight(srvAddr, "/")

	return &llama{
		srvAddr: srvAddr,
		seed:    seed,
		client:  resty.NewWithClient(httpClient).SetBaseURL(srvAddr),
	}
}

func (l *llama) Name() string { return "llama" }

// Model is whatever the server was started with, llama.cpp does not report it
// on the completion endpoint.
func (l *llama) Model() string { return "llama.cpp" }

func (l *llama) Validate() error {
	if l.srvAddr == "" {
		return fmt.Errorf("llama: no server address configured")
	}
	return nil
}

func (l *llama) IsHealthy(ctx context.Context) bool {
	resp, err := l.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return false
	}

	return resp.StatusCode() == http.StatusOK
}

func (l *llama) DescribeImage(ctx context.Context, img describer.Image, prompt string) (string, error) {
	return l.sendRequest(ctx, imagePrompt(prompt), jsonmap{
		"image_data": []jsonmap{
			{
				"data": img.Base64, "id": imageID,
			},
		},
	})
}

func imagePrompt(prompt string) string {
	return fmt.Sprintf("%s[img-%d]%s%s", imagePreamble, imageID, prompt, imageSuffix)
}

func (l *llama) sendRequest(ctx context.Context, prompt string, keys jsonmap) (string, error) {
	data := maps.Clone(defaultparams)
	maps.Copy(data, keys)
	data["prompt"] = prompt
	data["seed"] = l.seed

	respbody := struct {
		Content string `json:"content"`
		Stop    bool   `json:"stop"`
	}{}
	resp, err := l.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(data).
		SetResult(&respbody).
		Post("/completion")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("llama status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	return respbody.Content, nil
}
