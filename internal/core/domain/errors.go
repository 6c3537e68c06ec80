package domain

import "errors"

// Domain errors. All of them are converted into `{success:false, error}`
// envelopes at the router boundary; none of them crash the serving loop.
var (
	// ErrMissingField indicates a required request field is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownRequestKind indicates an explicit request type outside
	// the dispatch table. The original implementation silently fell
	// through to document handling; that was judged a latent bug.
	ErrUnknownRequestKind = errors.New("unknown request type")

	// ErrInvalidSession indicates a chat message referenced a session id
	// that was never initialised in this process.
	ErrInvalidSession = errors.New("invalid session_id")

	// ErrSessionExists indicates an init_chat reused a live session id.
	// Rebinding a session to a new source is rejected unless the
	// registry is configured to allow overwrites.
	ErrSessionExists = errors.New("session already exists")

	// ErrBatchMismatch indicates the embedding service returned a
	// different number of vectors than texts submitted. The ingestion
	// batch is aborted; nothing reaches the vector store.
	ErrBatchMismatch = errors.New("embedding count does not match input count")

	// ErrCollaboratorTimeout indicates an embedding, store, or loader
	// call exceeded the configured deadline.
	ErrCollaboratorTimeout = errors.New("collaborator call timed out")

	// ErrEmptySource indicates loading produced no segments to ingest.
	ErrEmptySource = errors.New("source produced no content")
)
