package describer

import (
	"context"
	"errors"
)

// ErrMissingCredential is returned by backends that need an API key when none
// was configured.
var ErrMissingCredential = errors.New("describer: missing API credential")

// Image is an image ready to be sent to a backend: base64 encoded bytes (no
// data URL prefix) and the MIME type of the decoded data.
type Image struct {
	Base64   string
	MimeType string
}

// DataURL returns the image as a data: URL.
func (i Image) DataURL() string {
	return "data:" + i.MimeType + ";base64," + i.Base64
}

// Describer describes an image using a specific multimodal LLM.
type Describer interface {
	// Name returns the name of the backend, e.g. "gemini" or "ollama"
	Name() string

	// Model returns the model identifier requests are sent to.
	Model() string

	// Validate reports whether the backend is configured well enough to serve
	// a request. Backends without a key return ErrMissingCredential.
	Validate() error

	// DescribeImage sends prompt and img to the LLM in a single request and
	// returns the generated text untouched. The provided ctx is used as the
	// parent context for the request to the LLM server.
	DescribeImage(ctx context.Context, img Image, prompt string) (string, error)

	// IsHealthy returns whether the LLM server is healthy.
	IsHealthy(ctx context.Context) bool
}
