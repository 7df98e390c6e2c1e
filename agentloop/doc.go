// Package agentloop implements the agentic control loop: it streams
// one assistant response at a time from a unifiedllm.Client, executes
// any tool calls that response carries through a provider-aligned
// tool registry, and iterates under turn, steering, and follow-up
// rules until the model stops requesting tools and no follow-up
// remains.
//
// # Architecture
//
// The package is organized around these core concepts:
//
//   - Loop: the orchestrator. Owns the mutable message list and turn
//     counter, streams through Client, and drives tool execution.
//   - ProviderProfile: provider-aligned tool and prompt configuration
//     (OpenAI/codex, Anthropic/Claude Code).
//   - ExecutionEnvironment: abstraction for where tools run (local,
//     Docker, Kubernetes, WASM, SSH).
//   - ToolRegistry: registration and dispatch of tool definitions.
//   - Classifier / PermissionFunc: the safety gate consulted before
//     every tool invocation.
//   - EventEmitter: typed event stream for host application integration.
//
// # Quick Start
//
//	profile := agentloop.NewAnthropicProfile("claude-opus-4-6")
//	env := agentloop.NewLocalExecutionEnvironment("/path/to/project")
//	emitter := agentloop.NewEventEmitter("sess-1", 256)
//	loop := agentloop.NewLoop(profile, env, emitter)
//	loop.Client = client // a *unifiedllm.Client with providers registered
//	loop.Permission = agentloop.AllowAll
//
//	go func() {
//	    for event := range emitter.Events() {
//	        fmt.Printf("[%s] %v\n", event.Kind, event.Data)
//	    }
//	}()
//
//	history := []agentmodel.AgentMessage{
//	    agentmodel.FromMessage(agentmodel.NewUserMessage("m1", "Create a hello.py file", time.Now())),
//	}
//	final := loop.Run(ctx, "sess-1", history)
package agentloop
