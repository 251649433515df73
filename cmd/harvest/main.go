package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/gemini"
	"github.com/fwojciec/harvest/htmltomarkdown"
	hhttp "github.com/fwojciec/harvest/http"
	"github.com/fwojciec/harvest/pipeline"
	"github.com/fwojciec/harvest/readability"
	hslog "github.com/fwojciec/harvest/slog"
	"github.com/fwojciec/harvest/trafilatura"
	"github.com/fwojciec/harvest/youtube"
	"github.com/fwojciec/harvest/ytdata"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Pipeline replaces the wired pipeline when set. Used by end-to-end
	// tests to avoid network access.
	Pipeline harvest.Pipeline

	fetcher harvest.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.fetcher != nil {
		return m.fetcher.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("harvest"),
		kong.Description("Extract readable content from videos, articles and social posts"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Configuration(kong.JSON),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'harvest --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if strings.HasPrefix(kongCtx.Command(), "extract") {
		deps.Concurrency = cli.Concurrency
		if cli.RPS > 0 {
			deps.Limiter = pipeline.NewHostLimiter(cli.RPS)
		}

		deps.Pipeline = m.Pipeline
		if deps.Pipeline == nil {
			p, err := m.newPipeline(ctx, cli, stderr)
			if err != nil {
				return err
			}
			defer m.Close()
			deps.Pipeline = p
		}
	}

	return kongCtx.Run(deps)
}

// newPipeline wires the extraction pipeline from flags. Missing API keys
// drop their strategies instead of failing.
func (m *Main) newPipeline(ctx context.Context, cli *CLI, stderr io.Writer) (harvest.Pipeline, error) {
	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	m.fetcher = hslog.NewLoggingFetcher(hhttp.NewFetcher(hhttp.WithTimeout(cli.Timeout)), logger)

	video := &pipeline.VideoChain{
		Transcripts: youtube.NewTranscriptService(m.fetcher),
		Pages:       youtube.NewScraper(m.fetcher),
		OEmbed:      youtube.NewOEmbedService(m.fetcher),
		Logger:      logger,
	}

	if cli.YouTubeAPIKey != "" {
		videos, err := ytdata.NewService(ctx, cli.YouTubeAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube Data API client: %w", err)
		}
		video.Videos = videos
	}

	if cli.GeminiAPIKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cli.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		video.Transcriber = gemini.NewTranscriber(client)
	}

	article := &pipeline.ArticleChain{
		Fetcher:   m.fetcher,
		Extractor: newExtractor(cli.Extractor),
		Converter: htmltomarkdown.NewConverter(),
		Logger:    logger,
	}

	p := pipeline.NewPipeline(video, article)
	p.Logger = logger

	return hslog.NewLoggingPipeline(p, logger), nil
}

func newExtractor(name string) harvest.Extractor {
	if name == "readability" {
		return readability.NewExtractor()
	}
	return trafilatura.NewExtractor()
}
