package unifiedllm

import (
	"context"
	"testing"

	"github.com/coderunner/agentcore/agentmodel"
)

type fakeAdapter struct {
	name   string
	events []StreamEvent
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	ch := make(chan StreamEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func testModel(api string) agentmodel.LLMModel {
	return agentmodel.LLMModel{ID: "m", Provider: "test-vendor", API: api}
}

func TestClientStreamRoutesByProvider(t *testing.T) {
	adapter := &fakeAdapter{name: "anthropic", events: []StreamEvent{
		DoneEvent(agentmodel.StopStop, agentmodel.Message{}),
	}}
	client := NewClient(WithProvider("anthropic", adapter))

	events, err := client.Stream(context.Background(), Request{Model: testModel("anthropic")})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	var got []StreamEvent
	for ev := range events {
		got = append(got, ev)
	}
	if len(got) != 1 || got[0].Type != EventDone {
		t.Fatalf("got %v, want single done event", got)
	}
}

func TestClientStreamUnknownProvider(t *testing.T) {
	client := NewClient()
	_, err := client.Stream(context.Background(), Request{Model: testModel("nope")})
	if err == nil {
		t.Fatal("expected error for unregistered provider")
	}
	if _, ok := err.(*NoProviderError); !ok {
		t.Errorf("got %T, want *NoProviderError", err)
	}
}

func TestClientStreamEmptyProvider(t *testing.T) {
	client := NewClient()
	_, err := client.Stream(context.Background(), Request{Model: testModel("")})
	if _, ok := err.(*NoProviderError); !ok {
		t.Errorf("got %T, want *NoProviderError", err)
	}
}

func TestClientComplete(t *testing.T) {
	adapter := &fakeAdapter{name: "anthropic", events: []StreamEvent{
		TextEndEvent(0, "hello"),
		DoneEvent(agentmodel.StopStop, agentmodel.Message{}),
	}}
	client := NewClient(WithProvider("anthropic", adapter))

	msg, err := client.Complete(context.Background(), Request{Model: testModel("anthropic")})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if msg.TextContent() != "hello" {
		t.Errorf("TextContent() = %q, want %q", msg.TextContent(), "hello")
	}
}

func TestClientStreamMiddlewareOrder(t *testing.T) {
	adapter := &fakeAdapter{name: "anthropic", events: []StreamEvent{
		DoneEvent(agentmodel.StopStop, agentmodel.Message{}),
	}}
	var order []string
	mw := func(name string) StreamMiddleware {
		return func(ctx context.Context, req Request, next func(context.Context, Request) (<-chan StreamEvent, error)) (<-chan StreamEvent, error) {
			order = append(order, name)
			return next(ctx, req)
		}
	}
	client := NewClient(
		WithProvider("anthropic", adapter),
		WithStreamMiddleware(mw("outer"), mw("inner")),
	)

	events, err := client.Stream(context.Background(), Request{Model: testModel("anthropic")})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	for range events {
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("middleware order = %v, want [outer inner]", order)
	}
}

func TestClientClose(t *testing.T) {
	client := NewClient()
	if err := client.Close(); err != nil {
		t.Errorf("Close() on empty client: %v", err)
	}
}

func TestDefaultClient(t *testing.T) {
	if GetDefaultClient() != nil {
		t.Fatal("expected no default client set initially")
	}
	c := NewClient()
	SetDefaultClient(c)
	defer SetDefaultClient(nil)
	if GetDefaultClient() != c {
		t.Error("GetDefaultClient() did not return the client set by SetDefaultClient")
	}
}
