package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/law-makers/goodscrawl/internal/batch"
	"github.com/law-makers/goodscrawl/internal/utils/output"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	var (
		pf          pageFlags
		format      string
		out         string
		concurrency int
		noProgress  bool
	)
	cmd := &cobra.Command{
		Use:   "batch <file|url...>",
		Short: "Extract records for many pages concurrently",
		Long: `Scrapes every URL given as an argument, or listed one per line in a file
(blank lines and lines starting with # are skipped). Results are written in
input order as JSON lines or CSV; failed pages are reported in place.`,
		Example: `  # Scrape URLs from a file into a CSV
  goodscrawl batch urls.txt --format=csv -o products.csv

  # Scrape two pages as JSON lines
  goodscrawl batch https://www.musinsa.com/products/1 https://www.musinsa.com/products/2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "jsonl" && format != "csv" {
				return fmt.Errorf("format must be jsonl or csv (got %q)", format)
			}
			urls, err := collectURLs(args)
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				return fmt.Errorf("no URLs to scrape")
			}

			a, err := appOf(cmd)
			if err != nil {
				return err
			}
			opts, err := pf.options()
			if err != nil {
				return err
			}
			svc, err := a.Scraper(opts)
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = a.Config.BatchConcurrency
			}
			runner := batch.New(svc, concurrency, a.PoolSize())

			rt := runtimeOf(cmd)
			var w io.Writer = rt.stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			bar := progressbar.NewOptions(len(urls),
				progressbar.OptionSetWriter(rt.stderr),
				progressbar.OptionSetDescription("scraping"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionSetVisibility(!noProgress && a.Config.LogLevel != "error" && !a.Config.JSONLog),
			)

			a.Logger.Debug().Int("urls", len(urls)).Int("concurrency", runner.Concurrency()).Msg("Batch started")

			csvw := output.NewCSVWriter(w)
			failed := 0
			for res := range runner.Run(cmd.Context(), urls) {
				if res.Err != nil {
					failed++
				}
				if format == "csv" {
					err = csvw.Write(res)
				} else {
					err = output.WriteResultLine(w, res)
				}
				if err != nil {
					return fmt.Errorf("failed to write result: %w", err)
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			a.Logger.Info().Int("total", len(urls)).Int("failed", failed).Msg("Batch completed")
			if failed == len(urls) {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Output format: jsonl or csv")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write results to this file instead of stdout")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "Pages scraped at once (0 = auto)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Hide the progress bar")
	return cmd
}

// collectURLs expands arguments: http(s) URLs are taken as is, anything
// else is read as a file of URLs
func collectURLs(args []string) ([]string, error) {
	var urls []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			urls = append(urls, arg)
			continue
		}
		f, err := os.Open(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to open URL list: %w", err)
		}
		lines, err := readURLList(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		urls = append(urls, lines...)
	}
	return urls, nil
}

func readURLList(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}
