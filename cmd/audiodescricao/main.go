package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/mktpassos/audiodescricao-app"
	"github.com/mktpassos/audiodescricao-app/internal/config"
	"github.com/mktpassos/audiodescricao-app/internal/logging"
	"github.com/mktpassos/audiodescricao-app/internal/metrics"
)

var (
	imagePath = flag.String("image", "", "Describe a local image file and exit")
	imageURL  = flag.String("url", "", "Describe a remote image and exit")
	lang      = flag.String("language", "", "Language tag for the description, defaults to DEFAULT_LANGUAGE")
	mode      = flag.String("mode", "standard", "Description length: short, standard or long")
	backend   = flag.String("backend", "", "Describer backend: gemini, openai, ollama or llama. Overrides DESCRIBER_BACKEND")
)

// describeOnce runs a single description from the command line, showing a
// spinner on stderr while the backend works.
func describeOnce(ctx context.Context, svc *audiodescricao.Service) error {
	raw := map[string]any{
		"language": *lang,
		"mode":     *mode,
	}
	if *imagePath != "" {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			return err
		}
		raw["image"] = map[string]any{"base64": base64.StdEncoding.EncodeToString(data)}
		raw["mimeType"] = mimetype.Detect(data).String()
	}
	if *imageURL != "" {
		raw["imageUrl"] = *imageURL
	}

	req, err := svc.Normalize(raw)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("describing with %s", svc.Model())),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				bar.Add(1)
			}
		}
	}()

	res, err := svc.Describe(ctx, req)
	close(done)
	bar.Finish()
	if err != nil {
		return err
	}

	fmt.Println(res.Text)
	return nil
}

func serve(ctx context.Context, svc *audiodescricao.Service, cfg *config.Config, logger zerolog.Logger) error {
	if err := svc.Validate(); err != nil {
		logger.Warn().Err(err).Str("backend", svc.Name()).Msg("describer is not configured, requests will fail")
	}

	srv := NewServer(svc, metrics.New(), cfg, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", srv.hs.Addr).
			Str("backend", svc.Name()).
			Str("model", svc.Model()).
			Msg("starting server")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}

	logger := logging.NewLogger(cfg.Environment, cfg.LogLevel)

	svc, err := audiodescricao.Init(audiodescricao.InitOptions{
		Backend:         cfg.Backend,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
		GeminiBaseURL:   cfg.GeminiBaseURL,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIModel:     cfg.OpenAIModel,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		OllamaServer:    cfg.OllamaServer,
		OllamaModel:     cfg.OllamaModel,
		LlamaServer:     cfg.LlamaServer,
		LlamaSeed:       cfg.LlamaSeed,
		DefaultLanguage: cfg.DefaultLanguage,
		MaxImageBytes:   cfg.MaxImageBytes,
		HttpClient: &http.Client{
			Timeout: cfg.UpstreamTimeout,
		},
		Logger: &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init describer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *imagePath != "" || *imageURL != "" {
		if err := describeOnce(ctx, svc); err != nil {
			stop()
			logger.Fatal().Err(err).Msg("describe")
		}
		return
	}

	if err := serve(ctx, svc, cfg, logger); err != nil {
		stop()
		logger.Fatal().Err(err).Msg("server exited")
	}
}
