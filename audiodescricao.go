package audiodescricao

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mktpassos/audiodescricao-app/describer"
	"github.com/mktpassos/audiodescricao-app/internal/gemini"
	"github.com/mktpassos/audiodescricao-app/internal/llama"
	"github.com/mktpassos/audiodescricao-app/internal/ollama"
	"github.com/mktpassos/audiodescricao-app/internal/openai"
)

// Backend names accepted by InitOptions.Backend.
const (
	BackendGemini = "gemini"
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
	BackendLlama  = "llama"
)

type InitOptions struct {
	Backend string // one of the Backend* names, empty means gemini

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	OllamaServer string
	OllamaModel  string

	LlamaServer string
	LlamaSeed   int

	DefaultLanguage string
	MaxImageBytes   int64 // if <= 0 uses DefaultMaxImageBytes

	HttpClient *http.Client    // if nil a new http.Client is used
	Logger     *zerolog.Logger // if nil logs are discarded
}

// Service turns DescriptionRequests into descriptions using one backend. It
// holds no per-request state and is safe for concurrent use.
type Service struct {
	describer.Describer

	fetcher         *fetcher
	defaultLanguage string
	logger          zerolog.Logger
}

func Init(opts InitOptions) (*Service, error) {
	httpClient := opts.HttpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	var d describer.Describer
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendGemini, "":
		d = gemini.Init(opts.GeminiAPIKey, opts.GeminiModel, opts.GeminiBaseURL, httpClient)
	case BackendOpenAI:
		d = openai.Init(opts.OpenAIAPIKey, opts.OpenAIModel, opts.OpenAIBaseURL, httpClient)
	case BackendOllama:
		d = ollama.Init(opts.OllamaModel, opts.OllamaServer, httpClient)
	case BackendLlama:
		d = llama.Init(opts.LlamaServer, opts.LlamaSeed, httpClient)
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}

	return New(d, opts.DefaultLanguage, opts.MaxImageBytes, httpClient, opts.Logger), nil
}

// New builds a Service around an existing Describer. httpClient is used to
// fetch remote images.
func New(d describer.Describer, defaultLanguage string, maxImageBytes int64, httpClient *http.Client, logger *zerolog.Logger) *Service {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	l := zerolog.New(io.Discard)
	if logger != nil {
		l = *logger
	}

	return &Service{
		Describer:       d,
		fetcher:         newFetcher(httpClient, maxImageBytes),
		defaultLanguage: normalizeLanguage(defaultLanguage, DefaultLanguage),
		logger:          l.With().Str("backend", d.Name()).Logger(),
	}
}

// DefaultLanguage is the language used when a request names none.
func (s *Service) DefaultLanguage() string { return s.defaultLanguage }

// Normalize is the package level Normalize using the service's default
// language.
func (s *Service) Normalize(raw map[string]any) (DescriptionRequest, error) {
	return Normalize(raw, s.defaultLanguage)
}

// Describe resolves the request's image, asks the backend for a description
// exactly once and returns the trimmed text. Errors are always *Error.
func (s *Service) Describe(ctx context.Context, req DescriptionRequest) (*DescriptionResult, error) {
	if err := s.Describer.Validate(); err != nil {
		if errors.Is(err, describer.ErrMissingCredential) {
			return nil, NewError(KindMissingCredential, "the describer API key is not configured on the server", err)
		}
		return nil, NewError(KindMissingCredential, "the describer backend is not configured on the server", err)
	}

	img, err := s.resolve(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	lang := req.Language
	if lang == "" {
		lang = s.defaultLanguage
	}
	verbosity := ParseVerbosity(string(req.Verbosity))

	start := time.Now()
	text, err := s.Describer.DescribeImage(ctx, img, BuildPrompt(lang, verbosity))
	if err != nil {
		s.logger.Warn().Err(err).Str("model", s.Model()).Msg("describe failed")
		return nil, NewError(KindUpstream, "the describer backend call failed", err)
	}
	s.logger.Debug().
		Str("model", s.Model()).
		Str("mime_type", img.MimeType).
		Int("image_b64_len", len(img.Base64)).
		Dur("elapsed", time.Since(start)).
		Msg("image described")

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewError(KindEmptyResult, "could not generate an audio description", nil)
	}

	return &DescriptionResult{
		Text:      text,
		Language:  lang,
		Verbosity: verbosity,
		Model:     s.Model(),
	}, nil
}

func (s *Service) resolve(ctx context.Context, src ImageSource) (ResolvedImage, error) {
	switch img := src.(type) {
	case InlineImage:
		return ResolvedImage{
			Base64:   img.Base64,
			MimeType: firstNonEmpty(img.MimeType, DefaultMimeType),
		}, nil
	case RemoteImage:
		return s.fetcher.fetch(ctx, img)
	default:
		return ResolvedImage{}, NewError(KindMissingImage, "no image in request", nil)
	}
}
