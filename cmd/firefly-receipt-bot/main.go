package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/mjovanovik/firefly-receipt-bot/internal/bot"
	"github.com/mjovanovik/firefly-receipt-bot/internal/expense"
	"github.com/mjovanovik/firefly-receipt-bot/internal/extraction"
	"github.com/mjovanovik/firefly-receipt-bot/internal/firefly"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// Local .env files take effect before flag/env parsing
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded configuration from .env file")
	}

	fs := ff.NewFlagSet("firefly-receipt-bot")
	var (
		telegramToken      = fs.StringLong("telegram-token", "", "Telegram bot API token")
		extractorType      = fs.StringLong("extractor", "openrouter", "Extractor type: 'openrouter' or 'gemini'")
		openRouterKey      = fs.StringLong("openrouter-key", "", "OpenRouter API key (or set OPENROUTER_API_KEY env var)")
		openRouterModel    = fs.StringLong("openrouter-model", "google/gemini-2.0-flash-001", "OpenRouter model name")
		geminiKey          = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel        = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		fireflyURL         = fs.StringLong("firefly-url", "", "Firefly III base URL")
		fireflyToken       = fs.StringLong("firefly-token", "", "Firefly III personal access token")
		fireflySourceID    = fs.StringLong("firefly-source-id", "1", "Firefly III source account id")
		defaultCurrency    = fs.StringLong("default-currency", "MKD", "Currency assumed for entries without one")
		settlementCurrency = fs.StringLong("settlement-currency", "EUR", "Currency all amounts are converted into")
		ratesFlag          = fs.StringLong("rates", "MKD=61.5,USD=1.09", "Conversion rates as CODE=rate pairs, units per 1 settlement unit")
		showVersion        = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("FIREFLY_BOT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	token := *telegramToken
	if token == "" {
		token = os.Getenv("TELEGRAM_TOKEN")
	}
	if token == "" {
		slog.Error("Telegram token is required. Set --telegram-token flag or TELEGRAM_TOKEN environment variable")
		os.Exit(1)
	}

	rates, err := expense.ParseRates(*ratesFlag)
	if err != nil {
		slog.Error("Failed to parse conversion rates", "error", err)
		os.Exit(1)
	}
	normalizer := expense.NewNormalizer(expense.Config{
		DefaultCurrency:    *defaultCurrency,
		SettlementCurrency: *settlementCurrency,
		SourceID:           *fireflySourceID,
		Rates:              rates,
	})

	// Initialize extractor based on type
	var extractor extraction.Extractor
	switch *extractorType {
	case "openrouter":
		apiKey := *openRouterKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENROUTER_API_KEY")
		}
		if apiKey == "" {
			slog.Error("OpenRouter API key is required. Set --openrouter-key flag or OPENROUTER_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing OpenRouter extractor...", "model", *openRouterModel)
		extractor, err = extraction.NewOpenRouter(apiKey, *openRouterModel)
		if err != nil {
			slog.Error("Failed to initialize OpenRouter", "error", err)
			os.Exit(1)
		}
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini extractor...", "model", *geminiModel)
		extractor, err = extraction.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid extractor type", "type", *extractorType, "valid", "openrouter or gemini")
		os.Exit(1)
	}
	defer extractor.Close()

	if *fireflyURL == "" || *fireflyToken == "" {
		slog.Warn("Firefly URL or token is missing. Expenses will NOT be saved until both are configured")
	}
	ledger := firefly.NewClient(*fireflyURL, *fireflyToken)

	service := expense.NewService(extractor, ledger, normalizer)

	b, err := bot.New(token, service)
	if err != nil {
		slog.Error("Failed to initialize Telegram bot", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Bot error", "error", err)
		os.Exit(1)
	}

	slog.Info("Shutting down...")
}
