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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/seeker"
	"github.com/poiesic/seeker/ai"
	"github.com/poiesic/seeker/ai/openai"
	"github.com/poiesic/seeker/core"
	"github.com/poiesic/seeker/ingestion"
	"github.com/poiesic/seeker/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "seeker",
		Usage: "In-process hybrid search engine for job postings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB snapshot directory",
				Value:   "./seeker_db",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index documents from a JSON file",
				ArgsUsage: "<file.json>",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL; empty disables embeddings",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the indexed corpus",
				ArgsUsage: "<query...>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "filter",
						Aliases: []string{"f"},
						Usage:   "Facet filter as name=value, repeatable",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort order: relevance, date, or a facet name",
						Value: core.SortRelevance,
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Zero-indexed result page",
					},
					&cli.IntFlag{
						Name:  "hits-per-page",
						Usage: "Page size",
						Value: 10,
					},
					&cli.StringSliceFlag{
						Name:  "facet",
						Usage: "Facet name to aggregate counts for, repeatable",
					},
					&cli.BoolFlag{
						Name:  "fuzzy",
						Usage: "Enable the edit-distance strategy",
					},
					&cli.BoolFlag{
						Name:  "highlight",
						Usage: "Highlight query terms in titles and descriptions",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL; set to enable semantic search",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
				},
			},
			{
				Name:      "suggest",
				Usage:     "Print autocomplete suggestions for a prefix",
				ArgsUsage: "[prefix]",
				Action:    suggestCommand,
			},
			{
				Name:   "stats",
				Usage:  "Print engine analytics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openEngine opens the snapshot store and restores the engine from it.
func openEngine(c *cli.Context) (*seeker.Engine, error) {
	store, err := badger.NewSnapshotStore(c.String("db"), false)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	engine, err := seeker.New(seeker.WithSnapshotStore(store))
	if err != nil {
		store.Close()
		return nil, err
	}
	return engine, nil
}

func indexCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one JSON file argument")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	docs, err := loadDocuments(c.Args().First())
	if err != nil {
		return err
	}

	host := c.String("embedding-host")
	if host == "" {
		// Lexical-only indexing; semantic search stays unavailable.
		for _, doc := range docs {
			if err := engine.Index(doc); err != nil {
				return fmt.Errorf("failed to index %q: %w", doc.ID, err)
			}
		}
		fmt.Fprintf(os.Stderr, "Indexed %d documents without embeddings\n", len(docs))
		return nil
	}

	embedder, err := openai.NewEmbedder(ai.NewConfig(
		ai.WithHost(host),
		ai.WithModel(c.String("embedding-model")),
	))
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	feed, err := ingestion.NewFeed(engine, embedder)
	if err != nil {
		return err
	}
	defer feed.Release()

	if err := feed.Ingest(c.Context, docs...); err != nil {
		return err
	}
	feed.Wait()

	fmt.Fprintf(os.Stderr, "Indexed %d documents\n", len(docs))
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("query argument required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := core.DefaultSearchOptions()
	opts.Sort = c.String("sort")
	opts.Page = c.Int("page")
	opts.HitsPerPage = c.Int("hits-per-page")
	opts.Facets = c.StringSlice("facet")
	opts.EnableFuzzy = c.Bool("fuzzy")
	if c.Bool("highlight") {
		opts.HighlightPreTag = "\033[1m"
		opts.HighlightPostTag = "\033[0m"
	}

	for _, filter := range c.StringSlice("filter") {
		name, value, ok := strings.Cut(filter, "=")
		if !ok {
			return fmt.Errorf("invalid filter %q: expected name=value", filter)
		}
		if opts.Filters == nil {
			opts.Filters = make(map[string]string)
		}
		opts.Filters[name] = value
	}

	if host := c.String("embedding-host"); host != "" {
		embedder, err := openai.NewEmbedder(ai.NewConfig(
			ai.WithHost(host),
			ai.WithModel(c.String("embedding-model")),
		))
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}
		vector, err := embedder.EmbedText(context.Background(), query)
		if err != nil {
			// Lexical strategies still run without a query vector.
			slog.Warn("embedding failed, semantic strategy skipped", "err", err)
		} else {
			opts.EnableSemantic = true
			opts.QueryVector = vector
		}
	}

	result, err := engine.Search(query, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d hits in %s\n", result.TotalHits, result.ProcessingTime)
	for i, hit := range result.Hits {
		title := hit.Document.Title
		if hit.HighlightedTitle != "" {
			title = hit.HighlightedTitle
		}
		fmt.Printf("%d: %s @ %s, %s (%s)[%0.3f]\n",
			result.Page*result.HitsPerPage+i,
			title, hit.Document.Company, hit.Document.Location,
			hit.MatchType, hit.Score)
	}
	for facet, counts := range result.FacetCounts {
		fmt.Printf("facet %s:\n", facet)
		for value, count := range counts {
			fmt.Printf("  %s: %d\n", value, count)
		}
	}
	return nil
}

func suggestCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	suggestions, ok := <-engine.Suggest(strings.Join(c.Args().Slice(), " "))
	if !ok {
		return nil
	}
	for _, s := range suggestions {
		fmt.Printf("%s (%s)\n", s.Term, s.Source)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	analytics := engine.Analytics()
	fmt.Printf("Documents indexed: %d\n", analytics.IndexSize)
	fmt.Printf("Total searches:    %d\n", analytics.TotalSearches)
	fmt.Printf("Avg response time: %s\n", analytics.AvgResponseTime)
	for _, qc := range analytics.PopularQueries {
		fmt.Printf("  %q: %d\n", qc.Query, qc.Count)
	}
	return nil
}

// loadDocuments reads a JSON array of documents.
func loadDocuments(filename string) ([]*core.Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []*core.Document
	if err := json.NewDecoder(f).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return docs, nil
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
