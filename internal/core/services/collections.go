package services

import (
	"context"

	"github.com/veldtlabs/querra/internal/core/ports/driven"
	"github.com/veldtlabs/querra/internal/logger"
)

// CollectionExists reports whether a collection key already has a
// populated index: present and non-empty. Lookup failures are treated as
// "does not exist" rather than propagated, so a zero-row collection left
// by an aborted ingestion is re-ingested on the next request.
func CollectionExists(ctx context.Context, store driven.VectorStore, key string) bool {
	count, err := store.Count(ctx, key)
	if err != nil {
		logger.Debug("collection %s lookup failed, treating as absent: %v", key, err)
		return false
	}
	return count > 0
}
