// Package services implements the collection lifecycle and query-routing
// orchestration: idempotent ingestion, retrieval, long-lived query
// sessions, and the request router that dispatches incoming envelopes.
//
// Everything downstream of "compute an embedding" or "store/search
// vectors" is a collaborator behind a port in core/ports/driven.
package services
