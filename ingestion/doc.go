// Package ingestion connects document adapters to the search engine.
//
// The Feed type accepts document batches, generates embeddings on a worker
// pool, and indexes the results. Embedding failures degrade to lexical-only
// indexing; errors during async processing are logged but never fail the
// ingestion operation.
package ingestion
