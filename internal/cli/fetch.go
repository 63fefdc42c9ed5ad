package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/geofetch/internal/logger"
	"github.com/glorpus-work/geofetch/pkg/download"
	pkgerrors "github.com/glorpus-work/geofetch/pkg/errors"
	"github.com/glorpus-work/geofetch/pkg/fsutil"
	"github.com/glorpus-work/geofetch/pkg/result"
	"github.com/glorpus-work/geofetch/pkg/retriever"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Fetch statuses reported per URL.
const (
	StatusCached      = "cached"
	StatusDownloaded  = "downloaded"
	StatusNotModified = "not modified"
	StatusFailed      = "failed"
)

type fetchOptions struct {
	noCache     bool
	ifModified  bool
	output      string
	concurrency int
}

// fetchReport is one row of fetch output.
type fetchReport struct {
	URL          string     `json:"url"`
	Status       string     `json:"status"`
	Size         int64      `json:"size"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	Path         string     `json:"path,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	opts := fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch URL...",
		Short: "Fetch URLs through the cache",
		Long: `Fetch one or more http, https or file URLs. Cached entries are served
without touching the network unless --no-cache or --if-modified is given.
Every successful download is written to the cache.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Always download, ignoring cached entries")
	cmd.Flags().BoolVar(&opts.ifModified, "if-modified", false, "Revalidate cached entries with If-Modified-Since")
	cmd.Flags().StringVarP(&opts.output, "output", "O", "", "Write the body of a single URL to FILE ('-' for stdout)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Number of parallel fetches (default: configured workers)")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string, opts fetchOptions) error {
	if opts.noCache && opts.ifModified {
		return pkgerrors.ErrConflictingFlags
	}
	if opts.output != "" && len(args) != 1 {
		return pkgerrors.ErrOutputSingleURL
	}
	if cmd.Flags().Changed("concurrency") && opts.concurrency < 1 {
		return pkgerrors.ErrInvalidConcurrency
	}
	for _, raw := range args {
		if _, err := retriever.ParseURL(raw); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	d, err := newDownloader(cfg, store, opts.concurrency)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d.Start(ctx)
	defer d.Close()

	limit := opts.concurrency
	if limit <= 0 {
		limit = cfg.Settings.Workers
	}

	results := make([]result.Result, len(args))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, raw := range args {
		g.Go(func() error {
			res, err := fetchOne(gctx, d, raw, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	reports := make([]fetchReport, len(args))
	failed := 0
	for i, raw := range args {
		reports[i] = newFetchReport(raw, results[i])
		if reports[i].Status == StatusFailed {
			failed++
			logger.Warn("Fetch failed", logger.Fields{"url": raw, "error": reports[i].Error})
		}
	}

	if opts.output != "" {
		if err := writeOutput(cmd.OutOrStdout(), opts.output, results[0]); err != nil {
			return err
		}
		if opts.output == StdoutName {
			return failedError(failed, len(args))
		}
	}

	if err := printReports(cmd.OutOrStdout(), cfg.Settings.OutputFormat, reports); err != nil {
		return err
	}
	return failedError(failed, len(args))
}

func fetchOne(ctx context.Context, d *download.Downloader, raw string, opts fetchOptions) (result.Result, error) {
	if opts.ifModified {
		return d.DownloadImmediatelyIfModified(ctx, raw)
	}
	return d.DownloadImmediately(ctx, raw, !opts.noCache)
}

func newFetchReport(raw string, res result.Result) fetchReport {
	report := fetchReport{URL: raw}

	switch r := res.(type) {
	case *result.File:
		report.Status = StatusCached
		report.Path = r.Path()
		if fi, err := os.Stat(r.Path()); err == nil {
			report.Size = fi.Size()
		}
	case *result.Failure:
		report.Status = StatusFailed
		report.Error = r.Err().Error()
		return report
	default:
		if result.IsNotModified(res) {
			report.Status = StatusNotModified
			return report
		}
		report.Status = StatusDownloaded
		if data, err := res.Bytes(); err == nil {
			report.Size = int64(len(data))
		}
	}

	if lm, ok := res.LastModified(); ok && !lm.IsZero() {
		report.LastModified = &lm
	}
	return report
}

func writeOutput(stdout io.Writer, output string, res result.Result) error {
	if !res.HasData() {
		if err := res.Err(); err != nil {
			return err
		}
		return fmt.Errorf("%w: no data to write", pkgerrors.ErrDownloadFailed)
	}

	data, err := res.Bytes()
	if err != nil {
		return err
	}

	if output == StdoutName {
		_, err = stdout.Write(data)
		return err
	}

	lm, _ := res.LastModified()
	if err := fsutil.WriteFileAtomic(output, data, fsutil.FileModeDefault, lm); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	logger.Success("Saved", logger.Fields{"file": output, "size": humanize.IBytes(uint64(len(data)))})
	return nil
}

func printReports(w io.Writer, format string, reports []fetchReport) error {
	if format == string(logger.FormatJSON) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	table := uitable.New()
	table.MaxColWidth = MaxURLWidth
	table.AddRow("URL", "STATUS", "SIZE", "LAST MODIFIED")
	for _, r := range reports {
		size, modified := "-", "-"
		if r.Status == StatusCached || r.Status == StatusDownloaded {
			size = humanize.IBytes(uint64(r.Size))
		}
		if r.LastModified != nil {
			modified = humanize.Time(*r.LastModified)
		}
		status := r.Status
		if r.Error != "" {
			status = fmt.Sprintf("%s (%s)", r.Status, r.Error)
		}
		table.AddRow(r.URL, status, size, modified)
	}
	_, err := fmt.Fprintln(w, table)
	return err
}

func failedError(failed, total int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d URL(s)", pkgerrors.ErrDownloadFailed, failed, total)
}
