// Package chroma is an ai.VectorIndex backed by the chroma HTTP wrapper.
//
// The wrapper exposes collections under /chroma/collections/{name}. Labels are
// stored as documents whose metadata carries the concept uri and locale.
// Query distances are turned into similarities with 1 - d/2, clamped to
// [0, 1]. Every request passes through a gobreaker circuit breaker so a
// failing service is not hammered on every token of every query.
package chroma
