// Package sse decodes a Server-Sent Events byte stream into a lazy
// sequence of events, independent of any particular provider's event
// taxonomy. Provider adapters in unifiedllm consume this decoder and
// map its generic events onto the canonical AssistantMessageEvent
// sequence.
package sse
