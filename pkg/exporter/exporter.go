package exporter

import (
	"context"
	"errors"
	"fmt"

	"mdsexport/pkg/logger"
	"mdsexport/pkg/sink"
	"mdsexport/pkg/ui"
)

// ErrMissingToken is returned when a run is started without a resumption
// token. It is reported before any network or file I/O happens.
var ErrMissingToken = errors.New("resumption token is required")

// Options configures a single export run.
type Options struct {
	// Token is the resumption cursor to start from. Required.
	Token string

	// OutputPath is the sink file path. The extension is forced by the
	// sink based on Compress.
	OutputPath string

	// Compress wraps the output in a zstd stream.
	Compress bool

	// Updater, when non-nil, receives every cursor the server returns.
	Updater CursorUpdater

	// ShowProgress enables the terminal progress display.
	ShowProgress bool
}

// Summary describes a completed run.
type Summary struct {
	Pages   int
	Records int64
	Output  string
}

// Driver runs export sessions against an Extractor.
type Driver struct {
	client Extractor
	logger logger.Logger
}

// New creates an export driver. If log is nil the global logger is used.
func New(client Extractor, log logger.Logger) *Driver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Driver{client: client, logger: log}
}

// Run executes the export loop until the server reports no further pages.
// Any fetch or protocol error aborts the run; data written and cursors
// persisted before the failure remain valid resume points.
func (d *Driver) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Token == "" {
		return nil, ErrMissingToken
	}

	out, err := sink.Open(opts.OutputPath, opts.Compress)
	if err != nil {
		return nil, fmt.Errorf("failed to open output sink: %w", err)
	}

	d.logger.InfoWithFields("starting export", map[string]interface{}{
		"output":   out.Path(),
		"compress": opts.Compress,
	})

	page, err := d.client.FetchFirst(ctx, opts.Token)
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	// Completed-so-far comes from the first response only; later pages may
	// report counters inconsistent with pagination.
	var progress *ui.Progress
	if opts.ShowProgress {
		progress = ui.NewProgress(page.Stats.Total, page.Stats.Completed())
	}

	summary := &Summary{Output: out.Path()}

	for {
		summary.Pages++

		if err := out.WriteBatch(page.Data); err != nil {
			out.Close()
			return nil, fmt.Errorf("failed to write page %d: %w", summary.Pages, err)
		}
		if progress != nil {
			progress.Advance(len(page.Data))
		}

		d.logger.DebugWithFields("page written", map[string]interface{}{
			"page":      summary.Pages,
			"records":   len(page.Data),
			"remaining": page.Stats.Remaining,
			"has_next":  page.HasNext,
		})

		if page.Resume != "" && opts.Updater != nil {
			if err := opts.Updater.UpdateCursor(page.Resume, page.Stats.Remaining); err != nil {
				out.Close()
				return nil, fmt.Errorf("failed to persist cursor: %w", err)
			}
		}

		// The loop is driven by has_next alone. Stats.Remaining reaching
		// zero means nothing here.
		if !page.HasNext {
			break
		}

		page, err = d.client.FetchNext(ctx, page.NextURL)
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("failed to fetch page %d: %w", summary.Pages+1, err)
		}
	}

	summary.Records = out.Records()

	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize output: %w", err)
	}

	if progress != nil {
		progress.Finish(summary.Records, summary.Output)
	}

	d.logger.InfoWithFields("export complete", map[string]interface{}{
		"pages":   summary.Pages,
		"records": summary.Records,
		"output":  summary.Output,
	})

	return summary, nil
}
