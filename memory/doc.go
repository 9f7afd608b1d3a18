// Package memory provides the agent's two memory tiers.
//
// Short-term memory is a bounded FIFO buffer of conversation turns owned by
// a single agent instance. Long-term memory is a durable retrieval-augmented
// store: content is split into overlapping chunks, embedded, persisted in a
// vector index, and retrieved by nearest-neighbor search with a normalized
// confidence score.
//
// Architecture:
//   - Embedder: text-to-vector conversion (OpenAI-compatible API, mock for
//     tests, optional ristretto cache decorator)
//   - Index: vector storage backend (embedded chromem-go adapter)
//   - Store: orchestrates splitting, embedding, persistence and retrieval,
//     and reports every retrieval to the metrics aggregator
//
// The Store treats its collaborators as always-available but fallible per
// call: failures degrade to empty or tagged results and never propagate past
// the store boundary.
package memory
