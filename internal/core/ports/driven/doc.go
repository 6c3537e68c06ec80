// Package driven provides interfaces for infrastructure collaborators
// (secondary/outbound ports): document loading, web fetching, embedding,
// and vector storage. Their implementations live under
// internal/adapters/driven and internal/loaders; their correctness is
// assumed — only the orchestration contract around them is owned by the
// core services.
package driven
