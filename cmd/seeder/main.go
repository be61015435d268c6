package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/seeker"
	"github.com/poiesic/seeker/ai"
	"github.com/poiesic/seeker/ai/openai"
	"github.com/poiesic/seeker/core"
	"github.com/poiesic/seeker/ingestion"
	"github.com/poiesic/seeker/storage/badger"
	"golang.org/x/sync/errgroup"
)

var postings = []*core.Document{
	{
		ID: "seed-001", Title: "Senior Go Engineer", Company: "Lattice Systems", Location: "Remote",
		Description:     "Build and operate distributed data pipelines handling billions of events per day.",
		Requirements:    []string{"golang", "kubernetes", "distributed systems"},
		Benefits:        []string{"remote work", "equity"},
		Salary:          "$170k-$210k", ExperienceYears: 6, CompanySize: "mid",
		Facets: map[string]string{"department": "platform", "seniority": "senior"},
	},
	{
		ID: "seed-002", Title: "Backend Engineer", Company: "Harborline", Location: "New York, NY",
		Description:     "Design APIs for a logistics marketplace connecting shippers and carriers.",
		Requirements:    []string{"golang", "postgresql", "grpc"},
		Benefits:        []string{"health insurance", "401k match"},
		Salary:          "$150k-$185k", ExperienceYears: 4, CompanySize: "startup",
		Facets: map[string]string{"department": "backend", "seniority": "mid"},
	},
	{
		ID: "seed-003", Title: "Staff Software Engineer", Company: "Northwind Labs", Location: "Seattle, WA",
		Description:     "Lead platform engineering across storage, caching, and search infrastructure.",
		Requirements:    []string{"golang", "architecture", "mentoring"},
		Benefits:        []string{"sabbatical", "equity"},
		Salary:          "$210k-$260k", ExperienceYears: 10, CompanySize: "large",
		Facets: map[string]string{"department": "platform", "seniority": "staff"},
	},
	{
		ID: "seed-004", Title: "Product Designer", Company: "Brightfold", Location: "Austin, TX",
		Description:     "Own the end-to-end design of our mobile experience, from research to polish.",
		Requirements:    []string{"figma", "user research", "prototyping"},
		Benefits:        []string{"remote fridays"},
		Salary:          "$130k-$160k", ExperienceYears: 5, CompanySize: "startup",
		Facets: map[string]string{"department": "design", "seniority": "senior"},
	},
	{
		ID: "seed-005", Title: "Site Reliability Engineer", Company: "Lattice Systems", Location: "Remote",
		Description:     "Keep a multi-region fleet healthy: observability, incident response, capacity planning.",
		Requirements:    []string{"kubernetes", "terraform", "golang"},
		Benefits:        []string{"remote work", "on-call premium"},
		Salary:          "$160k-$195k", ExperienceYears: 5, CompanySize: "mid",
		Facets: map[string]string{"department": "infrastructure", "seniority": "senior"},
	},
	{
		ID: "seed-006", Title: "Machine Learning Engineer", Company: "Veridian AI", Location: "San Francisco, CA",
		Description:     "Ship retrieval and ranking models powering semantic search over job listings.",
		Requirements:    []string{"python", "pytorch", "embeddings"},
		Benefits:        []string{"gpu budget", "conference travel"},
		Salary:          "$190k-$240k", ExperienceYears: 4, CompanySize: "startup",
		Facets: map[string]string{"department": "ml", "seniority": "mid"},
	},
	{
		ID: "seed-007", Title: "Frontend Engineer", Company: "Harborline", Location: "New York, NY",
		Description:     "Build the dashboards carriers use to track shipments in real time.",
		Requirements:    []string{"typescript", "react", "websockets"},
		Benefits:        []string{"health insurance"},
		Salary:          "$140k-$170k", ExperienceYears: 3, CompanySize: "startup",
		Facets: map[string]string{"department": "frontend", "seniority": "mid"},
	},
	{
		ID: "seed-008", Title: "Data Engineer", Company: "Northwind Labs", Location: "Seattle, WA",
		Description:     "Maintain the warehouse and streaming ingestion that analytics teams depend on.",
		Requirements:    []string{"sql", "spark", "airflow"},
		Benefits:        []string{"equity", "learning stipend"},
		Salary:          "$155k-$190k", ExperienceYears: 4, CompanySize: "large",
		Facets: map[string]string{"department": "data", "seniority": "mid"},
	},
	{
		ID: "seed-009", Title: "Engineering Manager", Company: "Brightfold", Location: "Austin, TX",
		Description:     "Grow a team of eight engineers building consumer payments features.",
		Requirements:    []string{"people management", "roadmapping", "hiring"},
		Benefits:        []string{"equity"},
		Salary:          "$200k-$235k", ExperienceYears: 8, CompanySize: "startup",
		Facets: map[string]string{"department": "engineering", "seniority": "manager"},
	},
	{
		ID: "seed-010", Title: "Junior Go Developer", Company: "Pinewood Soft", Location: "Denver, CO",
		Description:     "Learn backend development on a small team shipping internal tooling.",
		Requirements:    []string{"golang", "git"},
		Benefits:        []string{"mentorship", "flexible hours"},
		Salary:          "$95k-$115k", ExperienceYears: 1, CompanySize: "small",
		Facets: map[string]string{"department": "backend", "seniority": "junior"},
	},
	{
		ID: "seed-011", Title: "Security Engineer", Company: "Veridian AI", Location: "Remote",
		Description:     "Harden model-serving infrastructure and run internal penetration tests.",
		Requirements:    []string{"threat modeling", "golang", "aws"},
		Benefits:        []string{"remote work"},
		Salary:          "$175k-$215k", ExperienceYears: 6, CompanySize: "startup",
		Facets: map[string]string{"department": "security", "seniority": "senior"},
	},
	{
		ID: "seed-012", Title: "Database Administrator", Company: "Harborline", Location: "Chicago, IL",
		Description:     "Own PostgreSQL performance, replication, and backup strategy.",
		Requirements:    []string{"postgresql", "performance tuning"},
		Benefits:        []string{"401k match"},
		Salary:          "$135k-$165k", ExperienceYears: 7, CompanySize: "startup",
		Facets: map[string]string{"department": "infrastructure", "seniority": "senior"},
	},
	{
		ID: "seed-013", Title: "Platform Engineer", Company: "Copperfield Cloud", Location: "Remote",
		Description:     "Build the internal developer platform: CI, service templates, golden paths.",
		Requirements:    []string{"golang", "kubernetes", "ci/cd"},
		Benefits:        []string{"remote work", "home office budget"},
		Salary:          "$165k-$200k", ExperienceYears: 5, CompanySize: "mid",
		Facets: map[string]string{"department": "platform", "seniority": "senior"},
	},
	{
		ID: "seed-014", Title: "Technical Writer", Company: "Northwind Labs", Location: "Seattle, WA",
		Description:     "Document APIs and operational runbooks for the storage platform.",
		Requirements:    []string{"api documentation", "markdown"},
		Benefits:        []string{"learning stipend"},
		Salary:          "$110k-$135k", ExperienceYears: 3, CompanySize: "large",
		Facets: map[string]string{"department": "docs", "seniority": "mid"},
	},
	{
		ID: "seed-015", Title: "DevOps Engineer", Company: "Pinewood Soft", Location: "Denver, CO",
		Description:     "Automate deployments and manage cloud spend across three environments.",
		Requirements:    []string{"terraform", "aws", "bash"},
		Benefits:        []string{"flexible hours"},
		Salary:          "$125k-$155k", ExperienceYears: 4, CompanySize: "small",
		Facets: map[string]string{"department": "infrastructure", "seniority": "mid"},
	},
	{
		ID: "seed-016", Title: "Search Engineer", Company: "Veridian AI", Location: "San Francisco, CA",
		Description:     "Improve ranking quality across lexical and vector retrieval paths.",
		Requirements:    []string{"information retrieval", "golang", "embeddings"},
		Benefits:        []string{"gpu budget"},
		Salary:          "$185k-$230k", ExperienceYears: 5, CompanySize: "startup",
		Facets: map[string]string{"department": "ml", "seniority": "senior"},
	},
}

var (
	dbPath         = flag.String("db", "./seeker_db", "path to the snapshot database")
	seedFileName   = flag.String("src", "", "JSON file of seed documents")
	embeddingHost  = flag.String("embedding-host", "", "embedding service host URL; empty disables embeddings")
	embeddingModel = flag.String("embedding-model", "embeddinggemma", "embedding model name")
	batchSize      = flag.Int("batch", 4, "documents per ingestion batch")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// documentsFromFile reads a JSON array of documents from a file.
func documentsFromFile(filename string) ([]*core.Document, error) {
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

// stampPostedAt spreads posting dates over the past weeks so date sorting
// has something to work with.
func stampPostedAt(docs []*core.Document) {
	now := time.Now().UTC()
	for i, doc := range docs {
		if doc.PostedAt.IsZero() {
			doc.PostedAt = now.AddDate(0, 0, -i)
		}
	}
}

// ingestBatched fans document batches out to the feed, one goroutine per
// batch. The feed's own pool bounds the embedding concurrency.
func ingestBatched(ctx context.Context, feed *ingestion.Feed, docs []*core.Document, batchSize int) error {
	g, ctx := errgroup.WithContext(ctx)

	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))
		batch := docs[start:end]
		g.Go(func() error {
			return feed.Ingest(ctx, batch...)
		})
	}

	return g.Wait()
}

func main() {
	store, err := badger.NewSnapshotStore(*dbPath, false)
	if err != nil {
		panic(err)
	}

	engine, err := seeker.New(seeker.WithSnapshotStore(store))
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	docs := postings
	if *seedFileName != "" {
		docs, err = documentsFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	}
	stampPostedAt(docs)

	ctx := context.Background()

	if *embeddingHost == "" {
		for _, doc := range docs {
			if err := engine.Index(doc); err != nil {
				panic(err)
			}
		}
		slog.Info("seeded documents without embeddings", "count", len(docs))
		return
	}

	embedder, err := openai.NewEmbedder(ai.NewConfig(
		ai.WithHost(*embeddingHost),
		ai.WithModel(*embeddingModel),
	))
	if err != nil {
		panic(err)
	}

	feed, err := ingestion.NewFeed(engine, embedder)
	if err != nil {
		panic(err)
	}
	defer feed.Release()

	if err := ingestBatched(ctx, feed, docs, *batchSize); err != nil {
		panic(err)
	}
	feed.Wait()

	slog.Info("seeded documents", "count", len(docs))
}
