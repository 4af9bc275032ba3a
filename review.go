package devq

import (
	"context"
	"fmt"
	"time"
)

// PullRequest is the metadata of one merged pull request, as produced by the
// retrieval step.
type PullRequest struct {
	Number    int       `json:"pr_number"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	MergedAt  time.Time `json:"merged_at"`
	CommitSHA string    `json:"commit_sha"`
	RepoOwner string    `json:"repo_owner,omitempty"`
	RepoName  string    `json:"repo_name,omitempty"`
	RepoPath  string    `json:"repo_path,omitempty"` // Local clone, used when DiffPath is empty
	DiffPath  string    `json:"diff_path,omitempty"`
}

// URL returns the pull request's GitHub URL.
func (p PullRequest) URL() string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", p.RepoOwner, p.RepoName, p.Number)
}

// Endpoint is a text-generating model that takes one flat prompt.
type Endpoint interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FileReview is the outcome of one file review call. Prompt and Response are
// kept so the caller can record the exchange in the run's history.
type FileReview struct {
	Prompt   string
	Response string
	Result   AnalysisResult
}

// SummaryReview is the outcome of the final summary call.
type SummaryReview struct {
	Prompt   string
	Response string
	Review   OverallReview
}

// Reviewer asks a model to evaluate code.
type Reviewer interface {
	// ReviewFile scores one file's content. A nil history sends a single-turn
	// prompt.
	ReviewFile(ctx context.Context, code string, history History) (*FileReview, error)
	// Summarize produces overall feedback threaded with the run's history.
	Summarize(ctx context.Context, history History) (*SummaryReview, error)
}

// FileReport is the per-file part of a run report.
type FileReport struct {
	Path       string         `json:"path"`
	Result     AnalysisResult `json:"result,omitempty"`
	Incomplete bool           `json:"incomplete,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// PRReport collects the results for one pull request.
type PRReport struct {
	PR     PullRequest      `json:"pr"`
	Files  []FileReport     `json:"files"`
	Static []StaticFindings `json:"static"`
}

// RunReport is everything an analysis run hands to the report renderer.
type RunReport struct {
	RunID           string         `json:"run_id"`
	Author          string         `json:"author"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
	PRs             []PRReport     `json:"prs"`
	Score           *float64       `json:"score"` // nil when there is no score
	FilesAnalyzed   int            `json:"files_analyzed"`
	FilesIncomplete int            `json:"files_incomplete"`
	Summary         *OverallReview `json:"summary,omitempty"`
	SummaryError    string         `json:"summary_error,omitempty"`
}

// ReportSaver persists run reports for the renderer.
type ReportSaver interface {
	Save(path string, report RunReport) error
}
