package execute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jacoelho/qarray/internal/config"
	"github.com/jacoelho/qarray/internal/exit"
	"github.com/jacoelho/qarray/loader"
	"github.com/jacoelho/qarray/query"
)

// Runner executes one query described by a Config.
type Runner struct {
	config    *config.Config
	loaderOps []loader.Option
	input     io.Reader
	output    io.Writer
	errOutput io.Writer
}

func New(cfg *config.Config) (*Runner, *exit.Result) {
	client, err := cfg.HTTPClient()
	if err != nil {
		return nil, exit.Errorf("Error creating runner: %v\n", err)
	}

	return &Runner{
		config: cfg,
		loaderOps: []loader.Option{
			loader.WithFormat(cfg.InputFormat),
			loader.WithHTTPClient(client),
			loader.WithTimeout(cfg.RequestTimeout),
			loader.WithRateLimit(cfg.RateLimit),
		},
		input:     os.Stdin,
		output:    os.Stdout,
		errOutput: os.Stderr,
	}, nil
}

func (r *Runner) SetInput(reader io.Reader) {
	r.input = reader
}

func (r *Runner) SetOutput(w io.Writer) {
	r.output = w
}

func (r *Runner) SetErrorOutput(w io.Writer) {
	r.errOutput = w
}

func (r *Runner) payloadWriter() io.Writer {
	if r.output == nil {
		return io.Discard
	}
	return r.output
}

func (r *Runner) errorWriter() io.Writer {
	if r.errOutput == nil {
		return io.Discard
	}
	return r.errOutput
}

func (r *Runner) logger() *slog.Logger {
	if !r.config.Debug {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(r.errorWriter(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Run executes the query and prints the rendered result, or the error on
// the error output. It returns the process exit code.
func (r *Runner) Run(ctx context.Context) int {
	result := r.run(ctx)
	result.Print()
	return result.ExitCode
}

func (r *Runner) run(ctx context.Context) *exit.Result {
	rendered, err := r.Execute(ctx)
	if err != nil {
		if ctx.Err() != nil {
			err = interruptedError{err: err}
		}
		result := exit.FromError(err)
		result.Output = r.errorWriter()
		return result
	}
	return &exit.Result{Output: r.payloadWriter(), Message: string(rendered)}
}

// interruptedError exits with the conventional SIGINT status.
type interruptedError struct {
	err error
}

func (e interruptedError) Error() string { return "interrupted: " + e.err.Error() }
func (e interruptedError) Unwrap() error { return e.err }
func (interruptedError) ExitCode() int   { return 130 }

// Execute loads the source, runs the query and renders the result.
func (r *Runner) Execute(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := r.logger()

	data, err := r.load(ctx, logger)
	if err != nil {
		return nil, err
	}

	q, err := r.build(query.New(data, query.WithDelimiter(r.config.Delimiter), query.WithLogger(logger)))
	if err != nil {
		return nil, err
	}

	if r.config.Count {
		count, err := q.Count()
		if err != nil {
			return nil, err
		}
		return fmt.Appendf(nil, "%d\n", count), nil
	}

	return render(q, r.config.OutputFormat)
}

func (r *Runner) load(ctx context.Context, logger *slog.Logger) (any, error) {
	l := loader.New(append(r.loaderOps, loader.WithLogger(logger))...)
	if r.config.FromStdin() {
		if r.input == nil {
			return nil, loader.ErrEmptySource
		}
		return l.Read(r.input)
	}
	return l.Load(ctx, r.config.Source)
}

// build applies the flags in order: node and conditions, sort, columns, then
// the offset and limit window and finally the JSONPath search.
func (r *Runner) build(q *query.Query) (*query.Query, error) {
	cfg := r.config

	if cfg.From != "" {
		q.From(cfg.From)
	}

	for _, clause := range cfg.Clauses {
		if clause.Or {
			q.OrWhere(clause.Path, clause.Token, clause.Value)
		} else {
			q.Where(clause.Path, clause.Token, clause.Value)
		}
	}

	// Sorting sees the full rows, so the sort column need not be selected.
	if cfg.Sorted {
		order := "asc"
		if cfg.SortDesc {
			order = "desc"
		}

		sorted, err := q.SortBy(cfg.SortBy, order)
		if err != nil {
			return nil, err
		}
		q = sorted
	}

	if len(cfg.Select) > 0 {
		q.Select(cfg.Select...)
	}
	if len(cfg.Except) > 0 {
		q.Except(cfg.Except...)
	}

	if cfg.Offset > 0 {
		q.Offset(cfg.Offset)
	}
	if cfg.HasLimit {
		q.Take(cfg.Limit)
	}

	if cfg.Search != "" {
		return q.Search(cfg.Search)
	}
	return q, nil
}

func render(q *query.Query, format string) ([]byte, error) {
	if format == "yaml" {
		return q.ToYAML()
	}

	compact, err := q.ToJSON()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indent json: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
