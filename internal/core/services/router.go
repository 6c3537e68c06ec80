package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veldtlabs/querra/internal/core/domain"
	"github.com/veldtlabs/querra/internal/core/ports/driven"
	"github.com/veldtlabs/querra/internal/logger"
	"github.com/veldtlabs/querra/internal/splitter"
)

// DefaultCollaboratorTimeout bounds a single request's collaborator
// work (loading, embedding, storing, searching).
const DefaultCollaboratorTimeout = 60 * time.Second

// RouterConfig carries the router's collaborators and tunables.
type RouterConfig struct {
	Loader   driven.DocumentLoader
	Fetcher  driven.PageFetcher
	Embedder driven.EmbeddingService
	Store    driven.VectorStore
	Sessions *SessionRegistry

	// TopK is the similarity search result count (default 10).
	TopK int

	// ChunkSize and ChunkOverlap configure size splitting on the agent
	// path, in runes.
	ChunkSize    int
	ChunkOverlap int

	// CollaboratorTimeout bounds collaborator calls per request.
	CollaboratorTimeout time.Duration
}

// Router is the entry point of the core: it inspects an incoming
// envelope's declared kind and session fields and dispatches to the
// correct pipeline. Dispatch is total — every request maps to exactly
// one handler — and no error ever escapes Handle; failures become
// `{success:false, error}` envelopes.
type Router struct {
	loader   driven.DocumentLoader
	fetcher  driven.PageFetcher
	embedder driven.EmbeddingService
	store    driven.VectorStore
	sessions *SessionRegistry
	ingestor *Ingestor

	topK         int
	chunkSize    int
	chunkOverlap int
	timeout      time.Duration
}

// NewRouter creates a router from its collaborators.
func NewRouter(cfg RouterConfig) *Router {
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = splitter.DefaultChunkSize
	}
	chunkOverlap := cfg.ChunkOverlap
	if chunkOverlap < 0 {
		chunkOverlap = splitter.DefaultOverlap
	}
	timeout := cfg.CollaboratorTimeout
	if timeout <= 0 {
		timeout = DefaultCollaboratorTimeout
	}

	return &Router{
		loader:       cfg.Loader,
		fetcher:      cfg.Fetcher,
		embedder:     cfg.Embedder,
		store:        cfg.Store,
		sessions:     cfg.Sessions,
		ingestor:     NewIngestor(cfg.Embedder, cfg.Store),
		topK:         topK,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		timeout:      timeout,
	}
}

// Handle dispatches one request and always returns a response envelope.
func (r *Router) Handle(ctx context.Context, req domain.Request) domain.Response {
	requestID := uuid.NewString()
	logger.Debug("request %s: type=%q chat_type=%q", requestID, req.Type, req.ChatType)

	if req.Type == domain.KindPing {
		return domain.Response{Success: true, Msg: "pong"}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.dispatch(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = domain.ErrCollaboratorTimeout
		}
		logger.Error("request %s failed: %v", requestID, err)
		return domain.Failure(err)
	}
	return resp
}

// dispatch maps a request to exactly one handler. An explicit type that
// is neither a dedicated kind nor a document kind hint is rejected
// instead of silently falling through to document handling.
func (r *Router) dispatch(ctx context.Context, req domain.Request) (domain.Response, error) {
	switch req.Type {
	case domain.KindCheckCollection:
		return r.handleCheckCollection(ctx, req)
	case domain.KindAgent:
		return r.handleAgent(ctx, req)
	case domain.KindCodebase:
		return r.handleCodebase(ctx, req)
	}

	switch req.ChatType {
	case domain.ChatInit:
		return r.handleInitChat(ctx, req)
	case domain.ChatMessage:
		return r.handleChatMessage(ctx, req)
	}

	if req.Type != "" && !domain.DocKinds[req.Type] {
		return domain.Response{}, fmt.Errorf("%w: %q", domain.ErrUnknownRequestKind, req.Type)
	}
	return r.handleDoc(ctx, req)
}

func (r *Router) handleCheckCollection(ctx context.Context, req domain.Request) (domain.Response, error) {
	source := req.Source()
	if source == "" {
		return domain.Response{}, fmt.Errorf("%w: path", domain.ErrMissingField)
	}

	key := domain.NormalizeCollectionKey(source)
	return domain.WithExists(CollectionExists(ctx, r.store, key)), nil
}

// handleDoc is the one-shot ingest-if-absent-then-query path over the
// generic document loader.
func (r *Router) handleDoc(ctx context.Context, req domain.Request) (domain.Response, error) {
	source := req.Source()
	if source == "" {
		return domain.Response{}, fmt.Errorf("%w: path", domain.ErrMissingField)
	}
	if req.Query == "" {
		return domain.Response{}, fmt.Errorf("%w: query", domain.ErrMissingField)
	}

	key := domain.NormalizeCollectionKey(source)
	if err := r.ensureDocIngested(ctx, key, source, req.DocKind()); err != nil {
		return domain.Response{}, err
	}

	retriever := NewRetriever(r.embedder, r.store, key, r.topK)
	hits, err := retriever.Query(ctx, req.Query)
	if err != nil {
		return domain.Response{}, err
	}
	return domain.WithResults(chunkTexts(hits)), nil
}

// handleAgent crawls each URL, splits by heading then by size, ingests
// into a key derived from the URL list, and queries.
func (r *Router) handleAgent(ctx context.Context, req domain.Request) (domain.Response, error) {
	if len(req.URLs) == 0 {
		return domain.Response{}, fmt.Errorf("%w: urls", domain.ErrMissingField)
	}
	if req.Query == "" {
		return domain.Response{}, fmt.Errorf("%w: query", domain.ErrMissingField)
	}

	// The key is derived from the serialised URL list so the same set
	// of pages maps to the same collection.
	serialised, err := json.Marshal(req.URLs)
	if err != nil {
		return domain.Response{}, fmt.Errorf("serialise urls: %w", err)
	}
	key := domain.NormalizeCollectionKey(string(serialised))

	if !CollectionExists(ctx, r.store, key) {
		segments, err := r.crawlSegments(ctx, req.URLs)
		if err != nil {
			return domain.Response{}, err
		}
		if err := r.ingestor.IngestSegments(ctx, key, segments); err != nil {
			return domain.Response{}, err
		}
	}

	retriever := NewRetriever(r.embedder, r.store, key, r.topK)
	hits, err := retriever.Query(ctx, req.Query)
	if err != nil {
		return domain.Response{}, err
	}
	return domain.WithResults(chunkTexts(hits)), nil
}

// handleCodebase ingests pre-parsed code entities (no crawling) when the
// collection is absent, then queries and formats scored code hits.
func (r *Router) handleCodebase(ctx context.Context, req domain.Request) (domain.Response, error) {
	if req.Path == "" {
		return domain.Response{}, fmt.Errorf("%w: path", domain.ErrMissingField)
	}
	if req.Query == "" {
		return domain.Response{}, fmt.Errorf("%w: query", domain.ErrMissingField)
	}

	key := domain.NormalizeCollectionKey(req.Path)

	if !CollectionExists(ctx, r.store, key) {
		if len(req.ParsedCodebase) == 0 {
			return domain.Response{}, fmt.Errorf("%w: parsedCodebase", domain.ErrMissingField)
		}
		if err := r.ingestor.IngestCodeEntities(ctx, key, req.ParsedCodebase); err != nil {
			return domain.Response{}, err
		}
	}

	start := time.Now()
	retriever := NewRetriever(r.embedder, r.store, key, r.topK)
	hits, err := retriever.Query(ctx, req.Query)
	if err != nil {
		return domain.Response{}, err
	}

	results := make([]domain.CodeHit, 0, len(hits))
	for _, hit := range hits {
		results = append(results, domain.CodeHit{
			Score:       hit.Score,
			FilePath:    metadataString(hit.Metadata, "file_path"),
			EntityName:  metadataString(hit.Metadata, "entity_name"),
			Code:        hit.Text,
			Description: metadataString(hit.Metadata, "description"),
		})
	}

	return domain.Response{
		Success:         true,
		Collection:      key,
		Query:           req.Query,
		DurationSeconds: time.Since(start).Seconds(),
		Results:         results,
	}, nil
}

// handleInitChat computes the collection key, ingests if absent, and
// binds a session to the retriever. An ingestion failure leaves no
// session registered.
func (r *Router) handleInitChat(ctx context.Context, req domain.Request) (domain.Response, error) {
	if req.SessionID == "" {
		return domain.Response{}, fmt.Errorf("%w: session_id", domain.ErrMissingField)
	}
	source := req.Source()
	if source == "" {
		return domain.Response{}, fmt.Errorf("%w: path", domain.ErrMissingField)
	}
	if req.Query == "" {
		return domain.Response{}, fmt.Errorf("%w: query", domain.ErrMissingField)
	}

	key := domain.NormalizeCollectionKey(source)
	if err := r.ensureDocIngested(ctx, key, source, req.DocKind()); err != nil {
		return domain.Response{}, err
	}

	retriever := NewRetriever(r.embedder, r.store, key, r.topK)
	if err := r.sessions.Bind(req.SessionID, retriever); err != nil {
		return domain.Response{}, err
	}

	return domain.Response{Success: true, Msg: "Chat Session Created"}, nil
}

// handleChatMessage queries the retriever bound at session init without
// re-deriving the collection key.
func (r *Router) handleChatMessage(ctx context.Context, req domain.Request) (domain.Response, error) {
	if req.SessionID == "" {
		return domain.Response{}, fmt.Errorf("%w: session_id", domain.ErrMissingField)
	}
	if req.Message == "" {
		return domain.Response{}, fmt.Errorf("%w: message", domain.ErrMissingField)
	}

	retriever, err := r.sessions.Retriever(req.SessionID)
	if err != nil {
		return domain.Response{}, err
	}

	hits, err := retriever.Query(ctx, req.Message)
	if err != nil {
		return domain.Response{}, err
	}
	return domain.WithResults(chunkTexts(hits)), nil
}

// ensureDocIngested loads and ingests a document source unless its
// collection already exists. The existence check runs before every
// ingestion attempt so a second request for the same source never
// re-embeds.
func (r *Router) ensureDocIngested(ctx context.Context, key, source, kind string) error {
	if CollectionExists(ctx, r.store, key) {
		logger.Debug("collection %s exists, skipping ingestion", key)
		return nil
	}

	segments, err := r.loader.Load(ctx, source, kind)
	if err != nil {
		return fmt.Errorf("load %s: %w", source, err)
	}
	return r.ingestor.IngestSegments(ctx, key, segments)
}

// crawlSegments fetches every URL and splits the page text by heading,
// then by size.
func (r *Router) crawlSegments(ctx context.Context, urls []string) ([]domain.Segment, error) {
	var segments []domain.Segment
	for _, url := range urls {
		text, err := r.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}

		for _, section := range splitter.Sections(text) {
			for _, chunk := range splitter.Split(section.Body, r.chunkSize, r.chunkOverlap) {
				segments = append(segments, domain.Segment{
					Content: chunk,
					Metadata: map[string]any{
						"source":  url,
						"section": section.Heading,
					},
				})
			}
		}
	}
	logger.Info("crawled %d urls into %d segments", len(urls), len(segments))
	return segments, nil
}

// chunkTexts flattens scored chunks to their raw texts, preserving rank
// order.
func chunkTexts(hits []domain.ScoredChunk) []string {
	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		texts = append(texts, hit.Text)
	}
	return texts
}
