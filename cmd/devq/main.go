package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/fwojciec/devq"
	"github.com/fwojciec/devq/chroma"
	"github.com/fwojciec/devq/config"
	"github.com/fwojciec/devq/fs"
	"github.com/fwojciec/devq/gemini"
	"github.com/fwojciec/devq/git"
	"github.com/fwojciec/devq/gitdiff"
	"github.com/fwojciec/devq/jsonl"
	"github.com/fwojciec/devq/lipgloss"
	"github.com/fwojciec/devq/llm"
	"github.com/fwojciec/devq/ollama"
	"github.com/fwojciec/devq/pipeline"
	"github.com/fwojciec/devq/static"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// ErrNoPullRequests is returned when the input file lists no pull requests.
var ErrNoPullRequests = errors.New("no pull requests to analyze")

// PullRequestLoader reads the pull request manifest.
type PullRequestLoader interface {
	Load(path string) (map[string][]devq.PullRequest, error)
}

// Analyzer runs one analysis per author.
type Analyzer interface {
	RunAll(ctx context.Context, jobs []pipeline.Job, workers int) []pipeline.Result
}

// ReportPrinter shows a finished report to the user.
type ReportPrinter interface {
	Print(report devq.RunReport) error
}

// App encapsulates the analyze command for testing.
type App struct {
	Loader   PullRequestLoader
	Analyzer Analyzer
	Saver    devq.ReportSaver
	Printer  ReportPrinter
	Workers  int
	Logger   zerolog.Logger
}

// Run analyzes every author in inputPath and appends the reports to
// outputPath. Every run is attempted; the failures are returned together.
func (a *App) Run(ctx context.Context, inputPath, outputPath string) error {
	byAuthor, err := a.Loader.Load(inputPath)
	if err != nil {
		return fmt.Errorf("loading pull requests: %w", err)
	}
	if len(byAuthor) == 0 {
		return ErrNoPullRequests
	}

	authors := make([]string, 0, len(byAuthor))
	for author := range byAuthor {
		authors = append(authors, author)
	}
	sort.Strings(authors)
	jobs := make([]pipeline.Job, 0, len(authors))
	for _, author := range authors {
		jobs = append(jobs, pipeline.Job{Author: author, PRs: byAuthor[author]})
	}

	var errs []error
	for _, res := range a.Analyzer.RunAll(ctx, jobs, a.Workers) {
		if res.Err != nil {
			a.Logger.Error().Err(res.Err).Str("author", res.Author).Msg("run failed")
			errs = append(errs, fmt.Errorf("%s: %w", res.Author, res.Err))
			continue
		}
		if err := a.Saver.Save(outputPath, *res.Report); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		if err := a.Printer.Print(*res.Report); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newCLI(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCLI(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "devq",
		Usage:     "score a developer's merged pull requests with a language model and static analyzers",
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "analyze the pull requests listed in a JSONL manifest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "path to the TOML configuration file",
						EnvVars: []string{"DEVQ_CONFIG"},
					},
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "JSONL file of pull requests, one per line",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Value:   "reports.jsonl",
						Usage:   "JSONL file the run reports are appended to",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "number of authors analyzed in parallel (overrides run.workers)",
					},
					&cli.BoolFlag{
						Name:  "cache",
						Usage: "cache model responses (in model.cache_dir, or the user cache directory)",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "enable debug logging",
					},
				},
				Action: func(c *cli.Context) error {
					return runAnalyze(c, stdout, stderr)
				},
			},
			{
				Name:      "init-config",
				Usage:     "write a sample configuration file",
				ArgsUsage: "<path>",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return errors.New("usage: devq init-config <path>")
					}
					if err := config.Init(path); err != nil {
						return err
					}
					fmt.Fprintf(stdout, "wrote %s\n", path)
					return nil
				},
			},
		},
	}
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
}

func runAnalyze(c *cli.Context, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, c.Bool("verbose"))

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("workers") {
		cfg.Run.Workers = c.Int("workers")
	}
	if c.Bool("cache") && cfg.Model.CacheDir == "" {
		cfg.Model.CacheDir = fs.DefaultCacheDir()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	runner, err := newRunner(c.Context, cfg, logger)
	if err != nil {
		return err
	}

	app := &App{
		Loader:   jsonl.NewPullRequestLoader(),
		Analyzer: runner,
		Saver:    jsonl.NewReportSaver(),
		Printer:  lipgloss.NewPrinter(stdout),
		Workers:  cfg.Run.Workers,
		Logger:   logger,
	}
	return app.Run(c.Context, c.String("input"), c.String("output"))
}

func newRunner(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pipeline.Runner, error) {
	weights, err := cfg.WeightTable()
	if err != nil {
		return nil, err
	}
	tools, err := cfg.Tools()
	if err != nil {
		return nil, err
	}
	endpoint, err := newEndpoint(ctx, cfg.Model)
	if err != nil {
		return nil, err
	}

	client := llm.NewClient(endpoint,
		llm.WithTimeout(cfg.Model.Timeout),
		llm.WithMaxRetries(cfg.Model.MaxRetries),
		llm.WithBackoff(cfg.Model.BaseDelay, cfg.Model.MaxDelay),
		llm.WithRequestsPerMinute(cfg.Model.RequestsPerMinute),
		llm.WithLogger(logger),
	)
	scanner := static.NewScanner(chroma.NewDetector(), tools,
		static.WithTimeout(cfg.Static.Timeout),
		static.WithTempDir(cfg.Scratch.Dir),
		static.WithLogger(logger),
	)

	return pipeline.NewRunner(
		git.NewDiffSource(git.NewRunner()),
		gitdiff.NewReconstructor(),
		llm.NewReviewer(client),
		scanner,
		weights,
		pipeline.WithScratchDir(cfg.Scratch.Dir),
		pipeline.WithKeepFailed(cfg.Scratch.KeepFailed),
		pipeline.WithThreadFileReviews(cfg.Model.ThreadFileReviews),
		pipeline.WithLogger(logger),
	), nil
}

func newEndpoint(ctx context.Context, cfg config.ModelConfig) (devq.Endpoint, error) {
	var endpoint devq.Endpoint
	name := cfg.Name
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		if name == "" {
			name = gemini.DefaultModel
		}
		endpoint = gemini.NewEndpoint(client, name)
	case config.ProviderOllama:
		endpoint = ollama.NewClient(cfg.URL, name, ollama.WithAPIKey(cfg.APIKey))
	default:
		return nil, fmt.Errorf("unsupported model provider %q", cfg.Provider)
	}

	if cfg.CacheDir != "" {
		endpoint = fs.NewEndpoint(endpoint, cfg.Provider+"/"+name, cfg.CacheDir)
	}
	return endpoint, nil
}
