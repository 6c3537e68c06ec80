// Package natsrpc exposes the router over NATS request/reply. One
// subscription serves one subject; requests are handled strictly in
// arrival order so collection state never sees concurrent mutation.
package natsrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/veldtlabs/querra/internal/core/domain"
	"github.com/veldtlabs/querra/internal/core/services"
	"github.com/veldtlabs/querra/internal/logger"
)

// Default configuration values.
const (
	DefaultSubject = "querra.rag"

	// pollInterval is how long one NextMsg call blocks before the loop
	// re-checks for shutdown.
	pollInterval = 100 * time.Millisecond
)

// Config holds configuration for the server.
type Config struct {
	// URL is the NATS server URL (default: nats.DefaultURL).
	URL string

	// Subject is the request subject to subscribe on (default: querra.rag).
	Subject string

	// Name is the connection name reported to the NATS server.
	Name string
}

// Server serves router requests over a NATS subject.
type Server struct {
	conn    *nats.Conn
	subject string
	router  *services.Router
	owned   bool
}

// New connects to NATS and creates a server around the router.
func New(cfg Config, router *services.Router) (*Server, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	subject := cfg.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	name := cfg.Name
	if name == "" {
		name = "querra"
	}

	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}

	return &Server{conn: conn, subject: subject, router: router, owned: true}, nil
}

// NewWithConn creates a server on an existing connection. The caller
// keeps ownership of the connection.
func NewWithConn(conn *nats.Conn, subject string, router *services.Router) *Server {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Server{conn: conn, subject: subject, router: router}
}

// Run subscribes and serves requests one at a time until ctx is
// cancelled. Each reply is published to the request's reply subject.
func (s *Server) Run(ctx context.Context) error {
	sub, err := s.conn.SubscribeSync(s.subject)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.subject, err)
	}
	defer sub.Unsubscribe() //nolint:errcheck

	logger.Info("serving on subject %s", s.subject)

	for {
		msg, err := sub.NextMsg(pollInterval)
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				select {
				case <-ctx.Done():
					return nil
				default:
					continue
				}
			}
			if errors.Is(err, nats.ErrConnectionClosed) {
				return nil
			}
			return fmt.Errorf("receive request: %w", err)
		}

		reply := s.handle(ctx, msg.Data)
		if msg.Reply == "" {
			logger.Warn("dropping reply: request had no reply subject")
			continue
		}
		if err := msg.Respond(reply); err != nil {
			logger.Error("send reply: %v", err)
		}
	}
}

// handle decodes one request, routes it, and encodes the response.
// Malformed input never crashes the loop; it yields a failure envelope.
func (s *Server) handle(ctx context.Context, data []byte) []byte {
	var req domain.Request
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Warn("malformed request: %v", err)
		return mustMarshal(domain.Failure(fmt.Errorf("decode request: %w", err)))
	}

	return mustMarshal(s.router.Handle(ctx, req))
}

// Close drains the subscription and closes the connection if the server
// owns it.
func (s *Server) Close() error {
	if s.conn == nil || !s.owned {
		return nil
	}
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return fmt.Errorf("drain connection: %w", err)
	}
	return nil
}

// mustMarshal encodes a response envelope. The envelope is built from
// plain values and cannot fail to encode; a failure here is a bug.
func mustMarshal(resp domain.Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Error("encode response: %v", err)
		return []byte(`{"success":false,"error":"internal encoding error"}`)
	}
	return data
}
