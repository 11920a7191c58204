// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/poiesic/tradesearch/config"
	"github.com/poiesic/tradesearch/logging"
	"github.com/urfave/cli/v2"
)

const (
	metaConfig = "config"
	metaCloser = "log-closer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "tradesearch",
		Usage:     "Date search over trade time series using interpolation-step search",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Metadata:  map[string]any{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to TOML configuration file",
				Value:   "tradesearch.toml",
				EnvVars: []string{"TRADESEARCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides config",
			},
		},
		Before: setupLogger,
		After:  closeLogger,
		Commands: []*cli.Command{
			{
				Name:   "load",
				Usage:  "Load a CSV dataset into the database, replacing any previous one",
				Action: loadCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "Path to the CSV dataset",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of rows per storage batch (default from config)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of ingestion workers (default from config)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N rows (default from config)",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not report progress",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Find every record on the given dates",
				Action: searchCommand,
				Flags: []cli.Flag{
					dbFlag(),
					csvFlag(),
					&cli.StringFlag{
						Name:    "method",
						Aliases: []string{"m"},
						Usage:   "Search method: linear or improved (default from config)",
					},
					&cli.StringSliceFlag{
						Name:  "date",
						Usage: "Date to search for, dd/mm/yyyy; may be repeated",
					},
					&cli.BoolFlag{
						Name:    "interactive",
						Aliases: []string{"i"},
						Usage:   "Read dates from standard input until quit",
					},
				},
			},
			{
				Name:   "extremes",
				Usage:  "Show the smallest and largest values with their records",
				Action: extremesCommand,
				Flags:  []cli.Flag{dbFlag(), csvFlag()},
			},
			{
				Name:   "sorted",
				Usage:  "List or export the records ordered by value or date",
				Action: sortedCommand,
				Flags: []cli.Flag{
					dbFlag(),
					csvFlag(),
					&cli.StringFlag{
						Name:  "by",
						Usage: "Sort key: value or date",
						Value: "value",
					},
					&cli.StringFlag{
						Name:    "algorithm",
						Aliases: []string{"a"},
						Usage:   "Sort algorithm: merge, quick, heap or counting",
						Value:   "merge",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write the sorted records to this CSV file instead of listing them",
					},
				},
			},
			{
				Name:   "modify",
				Usage:  "Change a value on a date in the loaded database",
				Action: modifyCommand,
				Flags: []cli.Flag{
					dbFlag(),
					dateFlag(),
					&cli.Int64Flag{
						Name:     "old",
						Usage:    "Value to replace; the first record on the date carrying it is changed",
						Required: true,
					},
					&cli.Int64Flag{
						Name:     "new",
						Usage:    "Replacement value",
						Required: true,
					},
				},
			},
			{
				Name:   "delete",
				Usage:  "Delete the records on a date, or one value on it, from the loaded database",
				Action: deleteCommand,
				Flags: []cli.Flag{
					dbFlag(),
					dateFlag(),
					&cli.Int64Flag{
						Name:  "value",
						Usage: "Delete only the first record on the date carrying this value",
					},
				},
			},
			{
				Name:   "info",
				Usage:  "Describe the dataset loaded in the database",
				Action: infoCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration as TOML",
				Action: configCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
		if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
			return err
		}
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaCloser] = closer
	return nil
}

func closeLogger(c *cli.Context) error {
	if closer, ok := c.App.Metadata[metaCloser].(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// appConfig returns the configuration loaded by setupLogger.
func appConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

func configCommand(c *cli.Context) error {
	return appConfig(c).Encode(c.App.Writer)
}

// Flags shared by several commands. urfave/cli flags carry parse state, so
// every command gets its own instance.
func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory (default from config)",
	}
}

func dateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "date",
		Usage:    "Date of the records, dd/mm/yyyy",
		Required: true,
	}
}

func csvFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "csv",
		Usage: "Read records from a CSV file instead of a loaded database",
	}
}
