// Command clausewise analyses contracts for risky clauses.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/custodia-labs/clausewise/internal/adapters/driven/ai"
	"github.com/custodia-labs/clausewise/internal/adapters/driven/config/file"
	"github.com/custodia-labs/clausewise/internal/adapters/driven/google"
	googlelang "github.com/custodia-labs/clausewise/internal/adapters/driven/language/google"
	"github.com/custodia-labs/clausewise/internal/adapters/driven/language/heuristic"
	"github.com/custodia-labs/clausewise/internal/adapters/driven/llm/jsonreply"
	"github.com/custodia-labs/clausewise/internal/adapters/driven/ocr/local"
	"github.com/custodia-labs/clausewise/internal/adapters/driven/ocr/vision"
	"github.com/custodia-labs/clausewise/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clausewise/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/cli"
	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
	"github.com/custodia-labs/clausewise/internal/core/services"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	ctx := context.Background()

	// Wiring logs before cobra parses flags.
	logger.SetVerbose(slices.Contains(os.Args[1:], "-v") || slices.Contains(os.Args[1:], "--verbose"))

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return cli.ExitError, fmt.Errorf("open configuration: %w", err)
	}
	settings := services.NewSettingsService(configStore)
	settings.SetAIValidator(ai.NewConfigValidator())

	cfg, err := settings.Config()
	if err != nil {
		// Still allow `clausewise config set` to repair the file.
		logger.Warn("Invalid configuration, using defaults: %v", err)
		d := domain.DefaultConfig()
		cfg = &d
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return cli.ExitError, fmt.Errorf("open prompts: %w", err)
	}
	aiResult := ai.Init(cfg, prompts, false)
	defer aiResult.Close()
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}

	status := services.NewStatusService(version)

	// Extraction: cloud Vision first when configured, local engine last.
	localOCR := local.New(local.Config{Settings: cfg.LocalOCR})
	var ocrProviders []driven.OCRProvider
	limiter := google.NewRateLimiter(cfg.Google.RequestsPerSecond, cfg.Google.Burst)
	if cfg.OCRProvider == domain.ProviderModeCloud {
		v, err := vision.New(ctx, vision.Config{Settings: cfg.Google, Limiter: limiter})
		switch {
		case err == nil:
			ocrProviders = append(ocrProviders, v)
		case errors.Is(err, google.ErrNoCredentials):
			logger.Info("Google Vision not configured, using local OCR")
		default:
			logger.Warn("Google Vision unavailable: %v", err)
		}
	}
	ocrProviders = append(ocrProviders, localOCR)
	status.AddOCR(ocrProviders...)

	// Language: cloud detection first, word-list heuristic last.
	var (
		detectors  []driven.LanguageDetector
		translator driven.Translator
	)
	if tr, err := googlelang.New(ctx, googlelang.Config{Settings: cfg.Google, Limiter: limiter}); err == nil {
		detectors = append(detectors, tr)
		translator = tr
	} else if !errors.Is(err, google.ErrNoCredentials) {
		logger.Warn("Google Translation unavailable: %v", err)
	}
	detectors = append(detectors, heuristic.New())
	status.AddLanguage(detectors...)
	status.AddTranslator(translator)
	status.AddLLM(aiResult.LLMService)

	store, err := sqlite.NewStore(cfg.DatabasePath)
	if err != nil {
		return cli.ExitError, fmt.Errorf("open history database: %w", err)
	}
	defer store.Close()
	cfg.DatabasePath = store.Path()
	status.AddStorage("sqlite", store)

	decoder, err := jsonreply.New()
	if err != nil {
		return cli.ExitError, fmt.Errorf("compile answer schema: %w", err)
	}

	segmenter := services.NewSegmenter(cfg)
	scorer := services.NewRiskScorer(cfg)
	pipeline := services.NewPipeline(
		services.NewTextExtractor(cfg, ocrProviders...),
		services.NewLanguageService(cfg, detectors...),
		segmenter,
		scorer,
		services.NewSummarizer(cfg, aiResult.LLMService, prompts),
	)
	analyses := store.AnalysisStore()

	chat := services.NewChatService(
		services.NewQAEngine(cfg, aiResult.LLMService, prompts, decoder),
		segmenter,
		scorer,
		memory.NewSessionStore(),
		analyses,
	)
	chat.SetHistoryStore(store.ChatHistoryStore())

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Analysis:    services.NewAnalysisService(cfg, pipeline, analyses),
		Chat:        chat,
		Status:      status,
		Translation: services.NewTranslationService(cfg, translator),
		Settings:    settings,
		Config:      cfg,
	})

	err = cli.Execute()
	return cli.ExitCode(err), err
}
