package mock

import (
	"context"

	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var (
	_ devq.Endpoint      = (*Endpoint)(nil)
	_ devq.Reviewer      = (*Reviewer)(nil)
	_ devq.StaticScanner = (*StaticScanner)(nil)
	_ devq.HistoryStore  = (*HistoryStore)(nil)
	_ devq.ReportSaver   = (*ReportSaver)(nil)
)

// Endpoint is a mock implementation of devq.Endpoint.
type Endpoint struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)
}

func (e *Endpoint) Generate(ctx context.Context, prompt string) (string, error) {
	return e.GenerateFn(ctx, prompt)
}

// Reviewer is a mock implementation of devq.Reviewer.
type Reviewer struct {
	ReviewFileFn func(ctx context.Context, code string, history devq.History) (*devq.FileReview, error)
	SummarizeFn  func(ctx context.Context, history devq.History) (*devq.SummaryReview, error)
}

func (r *Reviewer) ReviewFile(ctx context.Context, code string, history devq.History) (*devq.FileReview, error) {
	return r.ReviewFileFn(ctx, code, history)
}

func (r *Reviewer) Summarize(ctx context.Context, history devq.History) (*devq.SummaryReview, error) {
	return r.SummarizeFn(ctx, history)
}

// StaticScanner is a mock implementation of devq.StaticScanner.
type StaticScanner struct {
	ScanFn func(ctx context.Context, files []devq.FileDiff) []devq.StaticFindings
}

func (s *StaticScanner) Scan(ctx context.Context, files []devq.FileDiff) []devq.StaticFindings {
	return s.ScanFn(ctx, files)
}

// HistoryStore is an in-memory devq.HistoryStore. AppendFn, when set,
// replaces the default behavior.
type HistoryStore struct {
	AppendFn func(turns ...devq.Turn) error
	LoadFn   func() (devq.History, error)

	Turns devq.History
}

func (h *HistoryStore) Append(turns ...devq.Turn) error {
	if h.AppendFn != nil {
		return h.AppendFn(turns...)
	}
	h.Turns = append(h.Turns, turns...)
	return nil
}

func (h *HistoryStore) Load() (devq.History, error) {
	if h.LoadFn != nil {
		return h.LoadFn()
	}
	return append(devq.History(nil), h.Turns...), nil
}

// ReportSaver is a mock implementation of devq.ReportSaver.
type ReportSaver struct {
	SaveFn func(path string, report devq.RunReport) error
}

func (s *ReportSaver) Save(path string, report devq.RunReport) error {
	return s.SaveFn(path, report)
}
