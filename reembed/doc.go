// Package reembed indexes the labels of a concept dictionary into a vector index.
//
// Every label text of every entry is embedded in batches, normalized to unit
// length so a dot product is a cosine similarity, and upserted into an
// ai.VectorIndex. Embedding and upsert calls are retried with exponential
// backoff. Progress is written to an io.Writer and a checkpoint recording
// the number of indexed labels is saved when a checkpoint repository is
// configured.
package reembed
