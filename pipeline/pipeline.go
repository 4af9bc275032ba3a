// Package pipeline runs the analysis of one author's pull requests: diffs
// are rebuilt into files, each file is reviewed by the model, static
// analyzers run over the added lines, and a final summary is requested with
// the whole conversation as context.
package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/devq"
	"github.com/fwojciec/devq/fs"
	"github.com/fwojciec/devq/jsonl"
	"github.com/fwojciec/devq/llm"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Runner runs analyses. A Runner holds no per-run state and may be shared
// by concurrent runs.
type Runner struct {
	source        devq.DiffSource
	reconstructor devq.Reconstructor
	reviewer      devq.Reviewer
	scanner       devq.StaticScanner
	weights       devq.WeightTable

	scratchRoot string
	keepFailed  bool
	threadFiles bool
	newStore    func(path string) devq.HistoryStore
	newID       func() string
	now         func() time.Time
	logger      zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithScratchDir sets the directory under which run directories are created.
func WithScratchDir(dir string) Option {
	return func(r *Runner) {
		r.scratchRoot = dir
	}
}

// WithKeepFailed keeps the scratch directory of runs that fail.
func WithKeepFailed(keep bool) Option {
	return func(r *Runner) {
		r.keepFailed = keep
	}
}

// WithThreadFileReviews sends the run's history with every file review
// instead of only with the summary.
func WithThreadFileReviews(thread bool) Option {
	return func(r *Runner) {
		r.threadFiles = thread
	}
}

// WithHistoryStore replaces the factory for a run's history store. The
// factory receives the history path inside the run's scratch directory.
func WithHistoryStore(fn func(path string) devq.HistoryStore) Option {
	return func(r *Runner) {
		r.newStore = fn
	}
}

// WithIDFunc replaces the run ID generator.
func WithIDFunc(fn func() string) Option {
	return func(r *Runner) {
		r.newID = fn
	}
}

// WithClock replaces the time source for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a Runner.
func NewRunner(
	source devq.DiffSource,
	reconstructor devq.Reconstructor,
	reviewer devq.Reviewer,
	scanner devq.StaticScanner,
	weights devq.WeightTable,
	opts ...Option,
) *Runner {
	r := &Runner{
		source:        source,
		reconstructor: reconstructor,
		reviewer:      reviewer,
		scanner:       scanner,
		weights:       weights,
		scratchRoot:   filepath.Join(os.TempDir(), "devq"),
		newStore: func(path string) devq.HistoryStore {
			return jsonl.NewHistoryStore(path)
		},
		newID:  uuid.NewString,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// run is the state of a single analysis.
type run struct {
	id      string
	scratch *fs.Scratch
	store   devq.HistoryStore
	acc     *devq.ScoreAccumulator
	log     zerolog.Logger
}

// Run analyzes prs for author. Pull requests and their files are processed
// strictly in order.
//
// A malformed diff or a criterion without a weight aborts the run with a
// *devq.RunError. A file whose review fails for any other reason is marked
// incomplete and left out of the score. A failed summary is recorded on the
// report.
func (r *Runner) Run(ctx context.Context, author string, prs []devq.PullRequest) (report *devq.RunReport, err error) {
	if err := r.weights.Validate(); err != nil {
		return nil, err
	}

	id := r.newID()
	scratch, err := fs.NewScratch(r.scratchRoot, id, fs.WithKeepFailed(r.keepFailed))
	if err != nil {
		return nil, err
	}
	st := &run{
		id:      id,
		scratch: scratch,
		store:   r.newStore(scratch.HistoryPath()),
		acc:     devq.NewScoreAccumulator(r.weights),
		log:     r.logger.With().Str("run_id", id).Str("author", author).Logger(),
	}
	defer func() {
		kept, relErr := scratch.Release(err != nil)
		switch {
		case relErr != nil:
			st.log.Warn().Err(relErr).Msg("releasing scratch directory")
		case kept:
			st.log.Info().Str("dir", scratch.Dir()).Msg("kept scratch directory of failed run")
		}
	}()

	st.log.Info().Int("prs", len(prs)).Msg("starting run")
	report = &devq.RunReport{
		RunID:     id,
		Author:    author,
		StartedAt: r.now(),
		PRs:       make([]devq.PRReport, 0, len(prs)),
	}

	for _, pr := range prs {
		if err := ctx.Err(); err != nil {
			return nil, &devq.RunError{RunID: id, PR: pr.Number, Err: err}
		}
		prReport, err := r.runPR(ctx, st, pr)
		if err != nil {
			return nil, err
		}
		report.PRs = append(report.PRs, *prReport)
	}

	if score, ok := st.acc.Score(); ok {
		report.Score = &score
	}
	report.FilesAnalyzed = st.acc.Files()
	report.FilesIncomplete = st.acc.Incomplete()

	if err := r.summarize(ctx, st, report); err != nil {
		return nil, err
	}

	report.FinishedAt = r.now()
	st.log.Info().
		Int("files", report.FilesAnalyzed).
		Int("incomplete", report.FilesIncomplete).
		Msg("finished run")
	return report, nil
}

func (r *Runner) runPR(ctx context.Context, st *run, pr devq.PullRequest) (*devq.PRReport, error) {
	log := st.log.With().Int("pr", pr.Number).Logger()
	fail := func(file string, err error) error {
		return &devq.RunError{RunID: st.id, PR: pr.Number, File: file, Err: err}
	}

	rc, err := r.source.Open(ctx, pr)
	if err != nil {
		return nil, fail("", err)
	}
	files, err := r.reconstructor.Reconstruct(rc, st.scratch.PRDir(pr.Number))
	rc.Close()
	if err != nil {
		var malformed *devq.MalformedDiffError
		if errors.As(err, &malformed) && malformed.Source == "" {
			malformed.Source = diffSource(pr)
		}
		return nil, fail("", err)
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	log.Debug().Int("files", len(files)).Msg("reconstructed diff")

	out := &devq.PRReport{PR: pr, Files: []devq.FileReport{}}
	diffs := make([]devq.FileDiff, 0, len(files))
	for _, f := range files {
		diffs = append(diffs, f.Diff)
		if strings.TrimSpace(f.Content) == "" {
			log.Debug().Str("file", f.Path).Msg("skipping empty file")
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fail(f.Path, err)
		}

		fr, err := r.reviewFile(ctx, st, f)
		if err != nil {
			return nil, fail(f.Path, err)
		}
		if fr.Incomplete {
			log.Warn().Str("file", f.Path).Str("error", fr.Error).Msg("file review incomplete")
		}
		out.Files = append(out.Files, *fr)
	}

	out.Static = r.scanner.Scan(ctx, diffs)
	if err := st.store.Append(
		devq.Turn{Role: devq.RoleUser, Text: llm.StaticFindingsPrompt},
		devq.Turn{Role: devq.RoleAssistant, Text: llm.FormatStaticFindings(out.Static)},
	); err != nil {
		return nil, fail("", err)
	}
	return out, nil
}

// reviewFile reviews one file and adds its result to the run. It returns an
// error only for failures that end the run.
func (r *Runner) reviewFile(ctx context.Context, st *run, f devq.ReconstructedFile) (*devq.FileReport, error) {
	var history devq.History
	if r.threadFiles {
		h, err := st.store.Load()
		if err != nil {
			return nil, err
		}
		history = h
	}

	fr := &devq.FileReport{Path: f.Path}
	review, err := r.reviewer.ReviewFile(ctx, f.Content, history)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		st.acc.MarkIncomplete()
		fr.Incomplete = true
		fr.Error = err.Error()

		// Undecodable answers still go into the history verbatim.
		var soe *devq.StructuredOutputError
		if errors.As(err, &soe) && soe.Original != "" {
			if err := st.store.Append(
				devq.Turn{Role: devq.RoleUser, Text: llm.FilePrompt(f.Content)},
				devq.Turn{Role: devq.RoleAssistant, Text: soe.Original},
			); err != nil {
				return nil, err
			}
		}
		return fr, nil
	}

	if err := st.acc.Add(review.Result); err != nil {
		return nil, err
	}
	fr.Result = review.Result

	if err := st.store.Append(
		devq.Turn{Role: devq.RoleUser, Text: review.Prompt},
		devq.Turn{Role: devq.RoleAssistant, Text: review.Response},
	); err != nil {
		return nil, err
	}
	return fr, nil
}

func (r *Runner) summarize(ctx context.Context, st *run, report *devq.RunReport) error {
	history, err := st.store.Load()
	if err != nil {
		st.log.Warn().Err(err).Msg("history unreadable, skipping summary")
		report.SummaryError = "load history: " + err.Error()
		return nil
	}
	if len(history) == 0 {
		return nil
	}

	summary, err := r.reviewer.Summarize(ctx, history)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &devq.RunError{RunID: st.id, Err: ctxErr}
		}
		st.log.Warn().Err(err).Msg("summary failed")
		report.SummaryError = err.Error()
		return nil
	}
	report.Summary = &summary.Review
	return nil
}

func diffSource(pr devq.PullRequest) string {
	if pr.DiffPath != "" {
		return pr.DiffPath
	}
	return pr.CommitSHA
}

// Job is the input of one run.
type Job struct {
	Author string
	PRs    []devq.PullRequest
}

// Result is the outcome of one job. Exactly one of Report and Err is set.
type Result struct {
	Author string
	Report *devq.RunReport
	Err    error
}

// RunAll runs jobs with at most workers runs in flight. Runs are
// independent: a failed run does not stop the others. Results are returned
// in job order.
func (r *Runner) RunAll(ctx context.Context, jobs []Job, workers int) []Result {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(jobs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range jobs {
		job := jobs[i]
		g.Go(func() error {
			report, err := r.Run(ctx, job.Author, job.PRs)
			results[i] = Result{Author: job.Author, Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
