// Package agentmodel defines the canonical data model shared by the
// provider, agent-loop, and session layers: conversation messages,
// tool calls, token usage, and model catalog entries. Nothing in this
// package talks to a network or a file; it is pure data plus the small
// amount of behavior (merging, filtering, conversion) that every layer
// needs to agree on.
package agentmodel
