package unifiedllm

import (
	"context"
	"fmt"
	"sync"

	"github.com/coderunner/agentcore/agentmodel"
)

// StreamMiddleware wraps a streaming provider call.
type StreamMiddleware func(ctx context.Context, req Request, next func(context.Context, Request) (<-chan StreamEvent, error)) (<-chan StreamEvent, error)

// Client is the Provider Registry: it holds registered provider
// adapters, routes requests by the model's API identifier, and
// applies middleware to every streamed call.
type Client struct {
	providers map[string]ProviderAdapter
	streamMW  []StreamMiddleware
	mu        sync.RWMutex
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithProvider registers a provider adapter under name.
func WithProvider(name string, adapter ProviderAdapter) ClientOption {
	return func(c *Client) { c.providers[name] = adapter }
}

// WithStreamMiddleware adds stream middleware to the client, applied
// in registration order (first registered runs outermost).
func WithStreamMiddleware(mw ...StreamMiddleware) ClientOption {
	return func(c *Client) { c.streamMW = append(c.streamMW, mw...) }
}

// NewClient creates a Client with the given options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{providers: make(map[string]ProviderAdapter)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterProvider adds a provider adapter to the client. Safe to
// call concurrently with Stream/Complete from other goroutines, per
// the spec's "write-once then read-only" expectation for the
// registry (§5) — this module additionally tolerates late writes
// under a lock rather than requiring a build-then-freeze phase.
func (c *Client) RegisterProvider(name string, adapter ProviderAdapter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers[name] = adapter
}

func (c *Client) resolveProvider(name string) (ProviderAdapter, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name == "" {
		return nil, &NoProviderError{SDKError: SDKError{Message: "no provider specified on model"}}
	}
	adapter, ok := c.providers[name]
	if !ok {
		return nil, &NoProviderError{SDKError: SDKError{Message: fmt.Sprintf("provider %q is not registered", name)}}
	}
	return adapter, nil
}

// Stream resolves req.Model.API (the API identifier, e.g.
// "openai-responses" — distinct from req.Model.Provider, since one
// vendor can expose more than one wire API) and streams through
// middleware. On resolution failure it returns a *NoProviderError and
// no channel; the adapters likewise return HTTP non-2xx and transport
// failures as an error before any channel exists.
func (c *Client) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	adapter, err := c.resolveProvider(req.Model.API)
	if err != nil {
		return nil, err
	}

	handler := func(ctx context.Context, r Request) (<-chan StreamEvent, error) {
		return adapter.Stream(ctx, r)
	}
	for i := len(c.streamMW) - 1; i >= 0; i-- {
		mw := c.streamMW[i]
		next := handler
		handler = func(ctx context.Context, r Request) (<-chan StreamEvent, error) {
			return mw(ctx, r, next)
		}
	}
	return handler(ctx, req)
}

// Complete runs Stream to completion and folds the result into a
// single Assistant message. Used by the compaction summariser and by
// any caller that doesn't need incremental events.
func (c *Client) Complete(ctx context.Context, req Request) (*agentmodel.Message, error) {
	if completer, ok := c.mustAdapter(req.Model.API).(Completer); ok {
		return completer.Complete(ctx, req)
	}
	events, err := c.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	return AccumulateStream(events, req.Model.API, req.Model.Provider, req.Model.ID)
}

func (c *Client) mustAdapter(name string) ProviderAdapter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.providers[name]
}

// Close releases resources held by all registered providers.
func (c *Client) Close() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var firstErr error
	for _, adapter := range c.providers {
		if closer, ok := adapter.(Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Module-level default client, kept as an opt-in convenience per the
// teacher's pattern — never read implicitly by agentloop, which
// always takes a *Client by reference.

var (
	defaultClient   *Client
	defaultClientMu sync.RWMutex
)

// SetDefaultClient sets the module-level default client.
func SetDefaultClient(c *Client) {
	defaultClientMu.Lock()
	defer defaultClientMu.Unlock()
	defaultClient = c
}

// GetDefaultClient returns the module-level default client, or nil if
// none has been set. Unlike the teacher's GetDefaultClient, this
// never lazily constructs adapters from the environment — provider
// wiring (API keys, base URLs) is the CLI's job (cmd/agentcore), not
// an implicit side effect of a getter.
func GetDefaultClient() *Client {
	defaultClientMu.RLock()
	defer defaultClientMu.RUnlock()
	return defaultClient
}
