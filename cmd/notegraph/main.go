// Copyright 2026 Poiesic Systems
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/notegraph"
	"github.com/poiesic/notegraph/ai"
	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/pipeline"
	"github.com/poiesic/notegraph/vault"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "notegraph",
		Usage: "Ingest podcasts, videos and articles into a linked note vault",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "vault",
				Aliases:  []string{"v"},
				Usage:    "Path to the note vault directory",
				Required: true,
				EnvVars:  []string{"NOTEGRAPH_VAULT"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the staging/cache database directory",
				EnvVars: []string{"NOTEGRAPH_DB"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Ingest one or more source URLs into the vault",
				ArgsUsage: "URL [URL...]",
				Action:    addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "extractor-host",
						Usage: "Extraction service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "extractor-model",
						Usage: "Extraction model name",
						Value: "qwen2.5:3b",
					},
					&cli.StringFlag{
						Name:  "whisper-host",
						Usage: "Transcription service host URL",
						Value: "http://localhost:8080/v1",
					},
					&cli.StringFlag{
						Name:  "whisper-model",
						Usage: "Transcription model size (tiny, base, small, medium, large)",
						Value: "base",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent normalization/extraction workers",
						Value: 2,
					},
					&cli.Float64Flag{
						Name:  "confidence-threshold",
						Usage: "Resolution confidence below which candidates go to staging",
						Value: 0.75,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for transient failures",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 500 * time.Millisecond,
					},
				},
			},
			{
				Name:  "staging",
				Usage: "Review the staging queue",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List staging items",
						Action: stagingListCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "state",
								Usage: "Filter by state (pending, approved, all)",
								Value: "pending",
							},
						},
					},
					{
						Name:      "approve",
						Usage:     "Promote a staged candidate into the vault",
						ArgsUsage: "ID",
						Action:    stagingApproveCommand,
					},
					{
						Name:      "reject",
						Usage:     "Discard a staged candidate permanently",
						ArgsUsage: "ID",
						Action:    stagingRejectCommand,
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Regenerate the vault's index note",
				Action: indexCommand,
			},
			{
				Name:   "orphans",
				Usage:  "List notes with no inbound or outbound links",
				Action: orphansCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openGraph opens the knowledge graph from the global flags. The database
// defaults to a sibling of the vault.
func openGraph(c *cli.Context, opts ...notegraph.GraphOption) (*notegraph.Graph, error) {
	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = c.String("vault") + ".db"
	}
	return notegraph.Open(c.String("vault"), dbPath, opts...)
}

func addCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one source URL is required")
	}

	aiConfig := ai.NewConfig(
		ai.WithExtractorHost(c.String("extractor-host")),
		ai.WithExtractorModel(c.String("extractor-model")),
		ai.WithWhisperHost(c.String("whisper-host")),
		ai.WithWhisperModel(c.String("whisper-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	graph, err := openGraph(c, notegraph.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open graph: %w", err)
	}
	defer graph.Close()

	p, err := graph.NewIngestionPipeline(
		pipeline.WithPoolSize(c.Int("pool-size")),
		pipeline.WithConfidenceThreshold(c.Float64("confidence-threshold")),
		pipeline.WithRetryPolicy(c.Int("max-retries"), c.Duration("retry-delay")),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Release()

	results, err := p.Ingest(context.Background(), c.Args().Slice()...)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED  %s: %v\n", r.SourceRef, r.Err)
			continue
		}
		fmt.Printf("OK      %s: %d note(s) committed, %d staged for review\n",
			r.SourceRef, r.Committed, r.Staged)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(results))
	}
	return nil
}

func stagingListCommand(c *cli.Context) error {
	graph, err := openGraph(c)
	if err != nil {
		return err
	}
	defer graph.Close()

	var state core.StagingState
	switch strings.ToLower(c.String("state")) {
	case "pending":
		state = core.StagingPending
	case "approved":
		state = core.StagingApproved
	case "all":
		state = 0
	default:
		return fmt.Errorf("invalid state %q: must be one of pending, approved, all", c.String("state"))
	}

	items, err := graph.StagingGate().List(context.Background(), state)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("staging queue is empty")
		return nil
	}

	for _, item := range items {
		fmt.Printf("%s  [%s] %s (%s)\n", item.ID, item.State, item.Candidate.Name, item.Candidate.Kind)
		fmt.Printf("        reason: %s\n", item.Reason)
		if item.ConflictingWith != "" {
			fmt.Printf("        conflicts with: %s\n", item.ConflictingWith)
		}
	}
	return nil
}

func stagingApproveCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one staging item ID is required")
	}

	graph, err := openGraph(c)
	if err != nil {
		return err
	}
	defer graph.Close()

	lock := vault.NewLock(graph.VaultStore())
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	entity, err := graph.StagingGate().Approve(context.Background(), c.Args().First())
	if err != nil {
		return err
	}
	fmt.Printf("approved: %s written to %s\n", entity.Title, graph.VaultStore().NotePath(entity.ID))
	return nil
}

func stagingRejectCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one staging item ID is required")
	}

	graph, err := openGraph(c)
	if err != nil {
		return err
	}
	defer graph.Close()

	if err := graph.StagingGate().Reject(context.Background(), c.Args().First()); err != nil {
		return err
	}
	fmt.Println("rejected")
	return nil
}

func indexCommand(c *cli.Context) error {
	graph, err := openGraph(c)
	if err != nil {
		return err
	}
	defer graph.Close()

	lock := vault.NewLock(graph.VaultStore())
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	note, err := graph.Generator().WriteIndexNote()
	if err != nil {
		return err
	}
	fmt.Printf("index note written to %s\n", graph.VaultStore().NotePath(note.ID))
	return nil
}

func orphansCommand(c *cli.Context) error {
	graph, err := openGraph(c)
	if err != nil {
		return err
	}
	defer graph.Close()

	entities, err := graph.VaultStore().LoadAll()
	if err != nil {
		return err
	}
	orphans := vault.BuildIndex(entities).Orphans()
	if len(orphans) == 0 {
		fmt.Println("no orphaned notes")
		return nil
	}

	for _, ref := range orphans {
		fmt.Printf("%s  (%s) %s\n", ref.Slug, ref.Kind, ref.Title)
	}
	fmt.Printf("%d orphaned note(s)\n", len(orphans))
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
