package preview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spellbook-app/spellbook/internal/config"
)

// Status classifies a run result.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// DefaultTimeout bounds a run when the runner config leaves it unset.
const DefaultTimeout = 5 * time.Second

// DefaultMaxCodeBytes caps the submitted code when unset.
const DefaultMaxCodeBytes = 256 * 1024

var ErrCodeTooLarge = errors.New("code exceeds maximum size")

// Result is what the client renders in its output pane. Preview, when set, is
// a document to load into a sandboxed iframe.
type Result struct {
	Output          string `json:"output"`
	Error           string `json:"error,omitempty"`
	Status          Status `json:"status"`
	HasPreview      bool   `json:"hasPreview"`
	Preview         string `json:"preview,omitempty"`
	ClientExecuted  bool   `json:"clientExecuted"`
	ExecutionTimeMs int64  `json:"executionTime"`
}

// Runner dispatches snippets by language.
type Runner struct {
	timeout      time.Duration
	maxCodeBytes int
	dispatch     func(language, code string) Result
}

// NewRunner creates a runner from config, applying defaults for zero values.
func NewRunner(cfg config.Runner) *Runner {
	r := &Runner{timeout: cfg.Timeout, maxCodeBytes: cfg.MaxCodeBytes, dispatch: dispatch}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.maxCodeBytes <= 0 {
		r.maxCodeBytes = DefaultMaxCodeBytes
	}
	return r
}

// MaxCodeBytes returns the accepted code size.
func (r *Runner) MaxCodeBytes() int {
	return r.maxCodeBytes
}

// Run produces the result for code in language. Scripts are handed back for
// the browser to execute; markup gets a preview document; SQL is simulated.
func (r *Runner) Run(ctx context.Context, language, code string) (Result, error) {
	if len(code) > r.maxCodeBytes {
		return Result{}, fmt.Errorf("%w (%d bytes)", ErrCodeTooLarge, r.maxCodeBytes)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	if err := ctx.Err(); err != nil {
		return aborted(err, start), nil
	}

	done := make(chan Result, 1)
	go func() {
		done <- r.dispatch(language, code)
	}()

	select {
	case result := <-done:
		result.ExecutionTimeMs = time.Since(start).Milliseconds()
		return result, nil
	case <-ctx.Done():
		return aborted(ctx.Err(), start), nil
	}
}

func aborted(err error, start time.Time) Result {
	return Result{
		Error:           fmt.Sprintf("Execution aborted: %v", err),
		Status:          StatusError,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}
}

func dispatch(language, code string) Result {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "html":
		return Result{
			Output:     "HTML Preview\n\nRendering HTML in preview pane...",
			Status:     StatusSuccess,
			HasPreview: true,
			Preview:    code,
		}
	case "css":
		return Result{
			Output:     "CSS Preview\n\nApplying styles to demo page...",
			Status:     StatusSuccess,
			HasPreview: true,
			Preview:    BuildCSSPreview(code),
		}
	case "sql":
		return SimulateSQL(code)
	case "javascript", "js", "typescript", "ts":
		return Result{Output: "Runs in your browser", Status: StatusSuccess, ClientExecuted: true}
	case "python", "py", "php":
		return Result{Output: "Simulated in your browser", Status: StatusWarning, ClientExecuted: true}
	default:
		return Result{Output: unsupported(language), Status: StatusWarning}
	}
}

func unsupported(language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Language %q is not yet supported\n\n", language)
	b.WriteString("Fully Supported:\n")
	b.WriteString("  • JavaScript - Real execution\n")
	b.WriteString("  • TypeScript - Real execution\n\n")
	b.WriteString("Simulated:\n")
	b.WriteString("  • Python - Output preview\n")
	b.WriteString("  • PHP - Output preview\n")
	b.WriteString("  • SQL - Query simulation\n\n")
	b.WriteString("Preview:\n")
	b.WriteString("  • HTML - Live preview\n")
	b.WriteString("  • CSS - Live preview")
	return b.String()
}
