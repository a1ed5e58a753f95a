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
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/spanbase"
	"github.com/poiesic/spanbase/extract"
	"github.com/poiesic/spanbase/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "spanbase",
		Usage: "Candidate span store for weak supervision pipelines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "create-set",
				Usage:     "Create an empty named candidate set",
				Action:    createSetCommand,
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "list-sets",
				Usage:  "List all candidate sets",
				Action: listSetsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:      "show-set",
				Usage:     "Show a candidate set and its candidates",
				Action:    showSetCommand,
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:      "delete-set",
				Usage:     "Delete a candidate set and all its candidates",
				Action:    deleteSetCommand,
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "extract",
				Usage:  "Extract ngram candidates from all stored contexts into a set",
				Action: extractCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "set",
						Aliases:  []string{"s"},
						Usage:    "Name of the target candidate set (created if absent)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-n",
						Usage: "Maximum ngram length in words",
						Value: 3,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size (0 uses the default)",
						Value: 0,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func createSetCommand(c *cli.Context) error {
	ctx := context.Background()

	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("set name is required")
	}

	db, err := spanbase.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	set, err := db.CreateCandidateSet(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create candidate set: %w", err)
	}

	fmt.Printf("created set %q (id %d)\n", set.Name, set.Id)
	return nil
}

func listSetsCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := spanbase.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	sets, err := db.CandidateRepository().ListCandidateSets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list candidate sets: %w", err)
	}

	for _, set := range sets {
		fmt.Printf("%d\t%s\n", set.Id, set.Name)
	}
	return nil
}

func showSetCommand(c *cli.Context) error {
	ctx := context.Background()

	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("set name is required")
	}

	db, err := spanbase.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	set, err := db.CandidateRepository().GetCandidateSetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load candidate set: %w", err)
	}

	fmt.Printf("%s (id %d, %d candidates)\n", set.Name, set.Id, set.Len())
	for _, cand := range set.Candidates() {
		fmt.Printf("  %d\t%s\n", cand.Id, cand)
	}
	return nil
}

func deleteSetCommand(c *cli.Context) error {
	ctx := context.Background()

	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("set name is required")
	}

	db, err := spanbase.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	set, err := db.CandidateRepository().GetCandidateSetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load candidate set: %w", err)
	}

	if err := db.CandidateRepository().DeleteCandidateSet(ctx, set.Id); err != nil {
		return fmt.Errorf("failed to delete candidate set: %w", err)
	}

	fmt.Printf("deleted set %q and %d candidates\n", set.Name, set.Len())
	return nil
}

func extractCommand(c *cli.Context) error {
	ctx := context.Background()

	maxN := c.Int("max-n")
	if maxN < 1 {
		return fmt.Errorf("max-n must be greater than 0")
	}

	db, err := spanbase.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	setName := c.String("set")
	set, err := db.CandidateRepository().GetCandidateSetByName(ctx, setName)
	if errors.Is(err, storage.ErrNotFound) {
		set, err = db.CreateCandidateSet(ctx, setName)
	}
	if err != nil {
		return fmt.Errorf("failed to load candidate set: %w", err)
	}

	contexts, err := db.ContextRepository().ListContexts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list contexts: %w", err)
	}
	if len(contexts) == 0 {
		return fmt.Errorf("no contexts stored: seed the database first")
	}

	var opts []extract.Option
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, extract.WithPoolSize(workers))
	}

	pipeline, err := db.NewExtractionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create extraction pipeline: %w", err)
	}
	defer pipeline.Release()

	candidates, err := pipeline.Extract(ctx, set, contexts, extract.NgramSpace{MaxN: maxN}, nil)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Printf("extracted %d candidates from %d contexts into %q\n",
		len(candidates), len(contexts), set.Name)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
