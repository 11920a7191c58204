package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/poiesic/tradesearch"
	"github.com/poiesic/tradesearch/core"
	"github.com/poiesic/tradesearch/ingestion"
	"github.com/poiesic/tradesearch/search"
	"github.com/poiesic/tradesearch/sorting"
	"github.com/urfave/cli/v2"
)

func loadCommand(c *cli.Context) error {
	cfg := appConfig(c)
	csvPath := c.String("csv")
	dbPath := databasePath(c)

	ctx := c.Context
	if cfg.Ingestion.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Ingestion.Timeout.Duration)
		defer cancel()
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	db, err := tradesearch.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	opts := []ingestion.Option{
		ingestion.WithPoolSize(intFlagOr(c, "pool-size", cfg.Ingestion.PoolSize)),
		ingestion.WithBatchSize(intFlagOr(c, "batch-size", cfg.Ingestion.BatchSize)),
		ingestion.WithRetry(cfg.Ingestion.MaxRetries, cfg.Ingestion.RetryDelay.Duration),
	}
	if interval := intFlagOr(c, "report-interval", cfg.Ingestion.ReportInterval); interval > 0 && !c.Bool("quiet") {
		opts = append(opts, ingestion.WithProgress(c.App.ErrWriter, interval))
	}

	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", dbPath)
	fmt.Fprintf(c.App.ErrWriter, "Dataset: %s\n", csvPath)

	manifest, err := pipeline.Ingest(ctx, csvPath, f)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Loaded %d records (fingerprint %016x)\n", manifest.Records, uint64(manifest.Fingerprint))
	return nil
}

func searchCommand(c *cli.Context) error {
	cfg := appConfig(c)

	methodName := cfg.Search.Method
	if c.IsSet("method") {
		methodName = c.String("method")
	}
	method, err := search.ParseMethod(methodName)
	if err != nil {
		return err
	}

	dates := c.StringSlice("date")
	interactive := c.Bool("interactive")
	if len(dates) == 0 && !interactive {
		return errors.New("at least one --date is required unless --interactive is set")
	}

	db, err := openDataset(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(c.Context,
		search.WithMethod(method),
		search.WithPoolSize(cfg.Search.PoolSize),
	)
	if err != nil {
		return err
	}

	if len(dates) > 0 {
		results, err := searcher.SearchAll(c.Context, dates)
		if err != nil {
			return err
		}
		for _, result := range results {
			printResult(c.App.Writer, result)
		}
	}

	if interactive {
		return repl(c.Context, searcher, c.App.Reader, c.App.Writer)
	}
	return nil
}

// repl answers one date per input line until quit or end of input. A bad
// date is reported and the loop continues; "method NAME" switches algorithm.
func repl(ctx context.Context, searcher *search.Searcher, in io.Reader, out io.Writer) error {
	method := searcher.Method()
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "Enter a date (dd/mm/yyyy), 'method linear|improved', or 'quit'.")
	for {
		fmt.Fprintf(out, "[%s] date> ", method)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit" || line == "q":
			return nil
		case strings.HasPrefix(line, "method"):
			m, err := search.ParseMethod(strings.TrimPrefix(line, "method"))
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			method = m
			continue
		}

		result, err := searcher.SearchWith(ctx, method, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		printResult(out, result)
	}
}

func printResult(w io.Writer, result *core.SearchResult) {
	if !result.Found() {
		fmt.Fprintf(w, "Date %s (%s): not found\n", result.Date, result.Method)
	} else {
		fmt.Fprintf(w, "Date %s (%s): %d records\n", result.Date, result.Method, len(result.Matches))
		printMatches(w, result.Matches)
	}
	fmt.Fprintf(w, "Search time: %s (%d probes)\n", result.Elapsed, result.Probes)
}

// printMatches lists rows by CSV line number: the header is line 1 and
// position 0 is line 2.
func printMatches(w io.Writer, matches []core.Match) {
	for _, m := range matches {
		fmt.Fprintf(w, "  File Index: %d, Value: %d, Cumulative: %d\n", m.Position+2, m.Value, m.Cumulative)
	}
}

func extremesCommand(c *cli.Context) error {
	db, err := openDataset(c)
	if err != nil {
		return err
	}
	defer db.Close()

	idx, err := db.BuildIndex(c.Context)
	if err != nil {
		return err
	}
	if idx.Len() == 0 {
		return errors.New("dataset is empty")
	}

	ext := search.FindExtremes(idx)
	fmt.Fprintf(c.App.Writer, "Minimum value: %d (%d records)\n", ext.Min, len(ext.MinRows))
	printMatches(c.App.Writer, ext.MinRows)
	fmt.Fprintf(c.App.Writer, "Maximum value: %d (%d records)\n", ext.Max, len(ext.MaxRows))
	printMatches(c.App.Writer, ext.MaxRows)
	return nil
}

func infoCommand(c *cli.Context) error {
	dbPath := databasePath(c)
	db, err := openLoadedDatabase(c.Context, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	manifest, err := db.Manifest(c.Context)
	if err != nil {
		return err
	}
	idx, err := db.BuildIndex(c.Context)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Database:    %s\n", dbPath)
	fmt.Fprintf(w, "Source:      %s\n", manifest.Source)
	fmt.Fprintf(w, "Records:     %d\n", idx.Len())
	fmt.Fprintf(w, "Fingerprint: %016x\n", uint64(manifest.Fingerprint))
	fmt.Fprintf(w, "Loaded at:   %s\n", manifest.LoadedAt.Format("2006-01-02 15:04:05 MST"))
	if first, last, ok := idx.Bounds(); ok {
		fmt.Fprintf(w, "Date range:  %s - %s\n", first, last)
	}
	return nil
}

// openDataset opens the records a read command works on: a CSV loaded into
// memory when --csv (or source.csv in the config) is given, otherwise the
// database from --db or the config.
func openDataset(c *cli.Context) (*tradesearch.Database, error) {
	cfg := appConfig(c)
	csvPath := c.String("csv")
	if c.IsSet("csv") && c.IsSet("db") {
		return nil, errors.New("--db and --csv are mutually exclusive")
	}
	if csvPath == "" && !c.IsSet("db") {
		csvPath = cfg.Source.CSV
	}
	if csvPath == "" {
		return openLoadedDatabase(c.Context, databasePath(c))
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	db, err := tradesearch.NewMemoryDatabase()
	if err != nil {
		return nil, err
	}
	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithPoolSize(cfg.Ingestion.PoolSize),
		ingestion.WithBatchSize(cfg.Ingestion.BatchSize),
	)
	if err != nil {
		db.Close()
		return nil, err
	}
	defer pipeline.Release()

	if _, err := pipeline.Ingest(c.Context, csvPath, f); err != nil {
		db.Close()
		return nil, fmt.Errorf("load failed: %w", err)
	}
	return db, nil
}

// openLoadedDatabase opens an existing database that holds a dataset.
func openLoadedDatabase(ctx context.Context, dbPath string) (*tradesearch.Database, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database %s not found; run load first", dbPath)
	}

	db, err := tradesearch.NewDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Manifest(ctx); err != nil {
		db.Close()
		switch {
		case errors.Is(err, tradesearch.ErrNoDataset):
			return nil, fmt.Errorf("database %s holds no dataset; run load first", dbPath)
		case errors.Is(err, tradesearch.ErrInconsistentDataset):
			return nil, fmt.Errorf("database %s: %w; run load again", dbPath, err)
		}
		return nil, err
	}
	return db, nil
}

func modifyCommand(c *cli.Context) error {
	db, err := openLoadedDatabase(c.Context, databasePath(c))
	if err != nil {
		return err
	}
	defer db.Close()

	record, err := db.ModifyValue(c.Context, c.String("date"), c.Int64("old"), c.Int64("new"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Modified File Index %d on %s: %d -> %d\n",
		record.Position+2, record.Date, c.Int64("old"), record.Value)
	return nil
}

func deleteCommand(c *cli.Context) error {
	db, err := openLoadedDatabase(c.Context, databasePath(c))
	if err != nil {
		return err
	}
	defer db.Close()

	date := c.String("date")
	if c.IsSet("value") {
		match, err := db.DeleteValue(c.Context, date, c.Int64("value"))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Deleted File Index %d on %s (value %d)\n", match.Position+2, date, match.Value)
		return nil
	}

	deleted, err := db.DeleteDate(c.Context, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Deleted %d records dated %s\n", deleted, date)
	return nil
}

func sortedCommand(c *cli.Context) error {
	field, err := sorting.ParseField(c.String("by"))
	if err != nil {
		return err
	}
	algorithm, err := sorting.ParseAlgorithm(c.String("algorithm"))
	if err != nil {
		return err
	}

	db, err := openDataset(c)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.Records(c.Context)
	if err != nil {
		return err
	}

	start := time.Now()
	sorted, err := sorting.Sort(records, field, algorithm)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Sorted %d records by %s (%s) in %s\n", len(sorted), field, algorithm, time.Since(start))

	out := c.String("out")
	if out == "" {
		for i := range sorted {
			fmt.Fprintf(c.App.Writer, "%s: %d\n", sorted[i].Date, sorted[i].Value)
		}
		return nil
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := ingestion.WriteCSV(f, sorted); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Saved to %s\n", out)
	return nil
}

func databasePath(c *cli.Context) string {
	if c.IsSet("db") {
		return c.String("db")
	}
	return appConfig(c).Database.Path
}

func intFlagOr(c *cli.Context, name string, fallback int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	return fallback
}
