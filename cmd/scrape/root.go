package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"disclosure-feed/internal/infra/export"
	"disclosure-feed/internal/infra/scraper"
	"disclosure-feed/internal/observability/logging"
	discUC "disclosure-feed/internal/usecase/disclosure"
)

const defaultDate = "20250611"

type options struct {
	date     string
	outDir   string
	maxPages int
	preview  int
	format   string
	baseURL  string
}

// newRootCmd builds the CLI. Records and progress go to out, logs to errOut.
func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "scrape [--date YYYYMMDD] [--out <dir>] [--max-pages N] [--format csv|table]",
		Short: "Dumps every TDnet disclosure listed for a date.",
		Long: "Walks the TDnet listing pages for a date until a page yields nothing and " +
			"writes the records to tdnet_data_<date>.csv.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, out, errOut)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.date, "date", defaultDate, "listing date in YYYYMMDD")
	f.StringVar(&opts.outDir, "out", ".", "directory the CSV file is written to")
	f.IntVar(&opts.maxPages, "max-pages", 0, "page ceiling, 0 for none")
	f.IntVar(&opts.preview, "preview", 3, "number of records echoed after the dump")
	f.StringVar(&opts.format, "format", "csv", "output: csv writes a file, table prints an aligned table")
	f.StringVar(&opts.baseURL, "base-url", "", "override TDNET_BASE_URL")

	return cmd
}

func run(cmd *cobra.Command, opts options, out, errOut io.Writer) error {
	if opts.format != "csv" && opts.format != "table" {
		return fmt.Errorf("unknown format %q (want csv or table)", opts.format)
	}

	cfg, err := scraper.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	if opts.baseURL != "" {
		cfg.BaseURL = opts.baseURL
	}
	cfg.MaxPages = opts.maxPages
	if err := cfg.Validate(); err != nil {
		return err
	}

	extractor, err := scraper.NewTableExtractor(cfg.BaseURL)
	if err != nil {
		return err
	}
	svc := discUC.NewService(scraper.NewListFetcher(cfg), extractor, cfg.MaxPages)

	logger := logging.NewTextLogger(errOut)
	ctx := logging.WithLogger(cmd.Context(), logger)

	_, _ = fmt.Fprintf(out, "Scraping all pages for date: %s\n", opts.date)

	records, err := svc.ExtractAll(ctx, opts.date)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "\nExtracted %d total records\n", len(records))

	if len(records) == 0 {
		_, _ = fmt.Fprintln(out, "No data extracted")
		return nil
	}

	if opts.format == "table" {
		return export.WriteTable(out, records, 40)
	}

	path := filepath.Join(opts.outDir, export.FileName(opts.date))
	if err := export.WriteCSVFile(path, records); err != nil {
		return err
	}
	logger.Info("csv written", slog.String("path", path), slog.Int("records", len(records)))
	_, _ = fmt.Fprintf(out, "Data saved to %s\n", path)

	if opts.preview > 0 {
		_, _ = fmt.Fprintf(out, "\nFirst %d records:\n", min(opts.preview, len(records)))
		return export.WritePreview(out, records, opts.preview)
	}
	return nil
}
