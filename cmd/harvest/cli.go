package main

import (
	"context"
	"io"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/pipeline"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	Pipeline    harvest.Pipeline
	Limiter     *pipeline.HostLimiter
	Concurrency int
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config kong.ConfigFlag `help:"Load flag values from a JSON file"`

	YouTubeAPIKey string        `name:"youtube-api-key" env:"YOUTUBE_API_KEY" help:"YouTube Data API key (enables the API strategy)"`
	GeminiAPIKey  string        `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key (enables transcription of uncaptioned videos)"`
	Extractor     string        `enum:"trafilatura,readability" default:"trafilatura" help:"Main-content extractor for articles (trafilatura|readability)"`
	Concurrency   int           `short:"c" default:"4" help:"Concurrent extraction limit"`
	RPS           float64       `name:"rps" default:"1" help:"Requests per second per host (0 disables)"`
	Timeout       time.Duration `short:"t" default:"15s" help:"Fetch timeout per request"`
	Verbose       bool          `short:"v" help:"Log fetches and strategy outcomes to stderr"`

	Extract  ExtractCmd  `cmd:"" help:"Extract content from URLs as JSON lines"`
	Classify ClassifyCmd `cmd:"" help:"Print the content type of URLs"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	Type string   `help:"Content type for all URLs (youtube, tiktok, instagram, url); inferred when empty"`
	URLs []string `arg:"" name:"urls" help:"URLs to extract"`
}

// ClassifyCmd is the "classify" subcommand.
type ClassifyCmd struct {
	URLs []string `arg:"" name:"urls" help:"URLs to classify"`
}
