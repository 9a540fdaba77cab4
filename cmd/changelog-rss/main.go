package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/KonishchevDmitry/changelog-rss/internal/config"
	"github.com/KonishchevDmitry/changelog-rss/pkg/feed"
	"github.com/KonishchevDmitry/changelog-rss/pkg/fetch"
	"github.com/KonishchevDmitry/changelog-rss/pkg/server"
)

type cli struct {
	Listen        string        `name:"listen" short:"l" default:":3000" env:"LISTEN_ADDR" help:"Address to serve the feeds on."`
	MetricsListen string        `name:"metrics-listen" default:":9101" env:"METRICS_ADDR" help:"Address to serve Prometheus metrics on."`
	BaseURL       string        `name:"base-url" env:"BASE_URL" help:"Public base URL of the feeds (derived from the request by default)."`
	Config        string        `name:"config" short:"c" type:"path" env:"CONFIG" help:"Path to the YAML configuration file."`
	FetchTimeout  time.Duration `name:"fetch-timeout" env:"FETCH_TIMEOUT" help:"Changelog fetch timeout."`
	Verbose       bool          `name:"verbose" short:"v" help:"Enable debug logging."`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load .env file: %s.\n", err)
		os.Exit(1)
	}

	var args cli
	kong.Parse(&args,
		kong.Name("changelog-rss"),
		kong.Description("Serves RSS feeds generated from markdown changelogs."),
		kong.UsageOnError(),
	)

	logger, err := makeLogger(args.Verbose)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize the logger: %s.\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger.Sugar())

	if err := run(ctx, args); err != nil {
		logging.L(ctx).Errorf("%s.", err)
		stop()
		os.Exit(1) //nolint:gocritic
	}
}

func run(ctx context.Context, args cli) error {
	config, err := loadConfig(args)
	if err != nil {
		return err
	}

	server := server.New(config.ParsedBaseURL())
	for _, profile := range config.Feeds {
		if err := server.Register(feed.New(profile, fetch.Timeout(config.FetchTimeout))); err != nil {
			return err
		}
	}

	return server.Serve(ctx, args.Listen, args.MetricsListen)
}

// loadConfig applies command line overrides on top of the configuration file or the built-in defaults.
func loadConfig(args cli) (*config.Config, error) {
	cfg := config.Default()
	if args.Config != "" {
		var err error
		if cfg, err = config.Load(args.Config); err != nil {
			return nil, err
		}
	}

	if args.BaseURL != "" {
		cfg.BaseURL = args.BaseURL
	}
	if args.FetchTimeout != 0 {
		cfg.FetchTimeout = args.FetchTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func makeLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.Sampling = nil

	if verbose {
		config.Level.SetLevel(zapcore.DebugLevel)
	}

	return config.Build()
}
