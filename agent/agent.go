// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package agent implements the ReAct reasoning loop (spec component C6):
// the state machine that alternates reasoning steps with tool execution,
// enforces cooperative interruption, and routes every transition through
// the hook chain. Grounded on hector's pkg/agent.Agent / pkg/agent/llmagent
// iter.Seq2 streaming shape, generalized from hector's multi-agent-tree
// Agent interface down to the spec's single-agent reason/act loop.
package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kadirpekel/agentcore/event"
	"github.com/kadirpekel/agentcore/hook"
	"github.com/kadirpekel/agentcore/internal/logging"
	"github.com/kadirpekel/agentcore/internal/telemetry"
	"github.com/kadirpekel/agentcore/memory"
	"github.com/kadirpekel/agentcore/message"
	"github.com/kadirpekel/agentcore/model"
	"github.com/kadirpekel/agentcore/reasoning"
	"github.com/kadirpekel/agentcore/session"
	"github.com/kadirpekel/agentcore/tool"
)

// noopTracer backs every Agent built without a Config.Telemetry, so
// reasoningStep/execTools can always start a span without a nil check.
var noopTracer = noop.NewTracerProvider().Tracer("github.com/kadirpekel/agentcore/agent")

// ErrAgentBusy is returned by Stream/Call when the agent was built with
// CheckRunning=true and another call is already in flight.
var ErrAgentBusy = errors.New("agent: call already in flight")

// ErrInvalidArgument wraps a construction-time validation failure.
var ErrInvalidArgument = errors.New("agent: invalid argument")

// interruptedText is the synthetic assistant message produced when a call
// resolves via Interrupt() (spec §4.6 step on Interruption, §8 property 12).
const interruptedText = "Interrupted by user"

// ModelError wraps any failure streaming from the model provider. It
// terminates the event stream; the core does not retry.
type ModelError struct{ Err error }

func (e *ModelError) Error() string { return fmt.Sprintf("agent: model error: %v", e.Err) }
func (e *ModelError) Unwrap() error { return e.Err }

// Config configures a new Agent.
type Config struct {
	// Name identifies the agent. Must be non-empty.
	Name string

	// LLM is the model provider the reasoning step streams from. Required.
	LLM model.LLM

	// Memory is the message log. Defaults to a fresh memory.New().
	Memory memory.Memory

	// Toolkit supplies tool definitions and executes ToolUse blocks.
	// Defaults to an empty tool.NewToolkit().
	Toolkit *tool.Toolkit

	// Hooks is the lifecycle interception chain. Defaults to an empty
	// hook.NewChain().
	Hooks *hook.Chain

	// CheckRunning, if true, rejects a concurrent Stream/Call on the same
	// Agent instance with ErrAgentBusy instead of allowing it.
	CheckRunning bool

	ModelOptions model.Options
	ToolChoice   model.ToolChoice

	// Telemetry wires spans and Prometheus metrics around reasoningStep and
	// each tool call (spec §9/§10's ambient observability concern). Nil
	// disables both; the loop falls back to a noop tracer and skips metric
	// observations entirely.
	Telemetry *telemetry.Manager

	// Logger receives the persistence warnings spec §7 calls
	// PersistenceWarning ("logged, not surfaced"). Defaults to
	// logging.GetLogger().
	Logger *slog.Logger

	// Session and SessionKey, if both set, make finalize save Memory to
	// Session under SessionKey once at the end of every call (spec §4.6 step 8's "Hooks
	// may perform side-effects", §7's PersistenceWarning). A save failure is
	// logged via Logger and swallowed, never returned from Stream/Call.
	Session    session.Store
	SessionKey session.Key
}

// Agent is the ReAct loop over one model, memory log, toolkit, and hook
// chain. The zero value is not usable; construct with New.
type Agent struct {
	name         string
	llm          model.LLM
	mem          memory.Memory
	toolkit      *tool.Toolkit
	hooks        *hook.Chain
	checkRunning bool
	modelOpts    model.Options
	toolChoice   model.ToolChoice

	telemetry    *telemetry.Manager
	logger       *slog.Logger
	sessionStore session.Store
	sessionKey   session.Key

	running     atomic.Bool
	interrupted atomic.Bool

	mu            sync.Mutex
	pending       []message.ToolUse
	lastAssistant *message.Message
}

// New validates cfg and constructs an Agent.
func New(cfg Config) (*Agent, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: agent name must not be blank", ErrInvalidArgument)
	}
	if cfg.LLM == nil {
		return nil, fmt.Errorf("%w: LLM is required", ErrInvalidArgument)
	}

	mem := cfg.Memory
	if mem == nil {
		mem = memory.New()
	}
	tk := cfg.Toolkit
	if tk == nil {
		tk = tool.NewToolkit()
	}
	hooks := cfg.Hooks
	if hooks == nil {
		hooks = hook.NewChain()
	}
	toolChoice := cfg.ToolChoice
	if toolChoice == (model.ToolChoice{}) {
		toolChoice = model.ToolChoiceAuto
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}

	return &Agent{
		name:         cfg.Name,
		llm:          cfg.LLM,
		mem:          mem,
		toolkit:      tk,
		hooks:        hooks,
		checkRunning: cfg.CheckRunning,
		modelOpts:    cfg.ModelOptions,
		toolChoice:   toolChoice,
		telemetry:    cfg.Telemetry,
		logger:       logger,
		sessionStore: cfg.Session,
		sessionKey:   cfg.SessionKey,
	}, nil
}

// tracer returns the configured telemetry tracer, or a noop tracer if this
// Agent was built without Config.Telemetry.
func (a *Agent) tracer() trace.Tracer {
	if a.telemetry == nil {
		return noopTracer
	}
	return a.telemetry.Tracer()
}

// metrics returns the configured Prometheus metrics, or nil if telemetry is
// disabled or metrics were not turned on.
func (a *Agent) metrics() *telemetry.Metrics {
	if a.telemetry == nil {
		return nil
	}
	return a.telemetry.Metrics()
}

// Name returns the agent's configured name.
func (a *Agent) Name() string { return a.name }

// Memory exposes the agent's message log, e.g. for SaveTo/LoadFrom.
func (a *Agent) Memory() memory.Memory { return a.mem }

// Interrupt sets the cooperative interruption flag. It is safe to call
// concurrently and is idempotent; the flag is observed (and cleared) at
// the next suspension point (spec §5).
func (a *Agent) Interrupt() {
	a.interrupted.Store(true)
}

func (a *Agent) setPending(calls []message.ToolUse) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = calls
}

func (a *Agent) clearPending() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = nil
}

func (a *Agent) hasPending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending) > 0
}

func (a *Agent) pendingCalls() []message.ToolUse {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]message.ToolUse(nil), a.pending...)
}

func (a *Agent) setLastAssistant(msg *message.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastAssistant = msg
}

// StreamOptions configures one Stream/Call invocation.
type StreamOptions struct {
	Mode   event.Mode
	Filter event.Filter
}

// sink tracks whether the downstream consumer has asked to stop (yield
// returned false), so the rest of the loop body can short-circuit instead
// of doing further model/tool work that nobody will see.
type sink struct {
	yield   func(*event.Event, error) bool
	aborted bool
}

func (s *sink) emit(ev *event.Event) bool {
	if s.aborted || ev == nil {
		return !s.aborted
	}
	if !s.yield(ev, nil) {
		s.aborted = true
		return false
	}
	return true
}

func (s *sink) fail(err error) {
	if s.aborted {
		return
	}
	s.yield(nil, err)
	s.aborted = true
}

// Stream runs one agent call — or resumes a previously pending tool
// execution when input is empty and the last assistant message left
// unresolved ToolUse blocks (spec §4.6 step 6) — as a lazy, pull-based
// sequence of public events.
func (a *Agent) Stream(ctx context.Context, input []*message.Message, opts StreamOptions) iter.Seq2[*event.Event, error] {
	return func(yield func(*event.Event, error) bool) {
		s := &sink{yield: yield}

		if a.checkRunning {
			if !a.running.CompareAndSwap(false, true) {
				yield(nil, ErrAgentBusy)
				return
			}
			defer a.running.Store(false)
		}

		mx := event.NewMultiplexer(opts.Mode, opts.Filter)

		if a.consumeInterrupt(s, mx) {
			return
		}

		resumePending := len(input) == 0 && a.hasPending()

		if !resumePending {
			if len(input) > 0 {
				preCall := &hook.Event{Kind: hook.KindPreCall, InputMessages: input}
				out, err := a.hooks.Dispatch(preCall)
				if err != nil {
					s.fail(err)
					return
				}
				for _, m := range out.InputMessages {
					a.mem.AddMessage(m)
				}
			}
		}

		a.runLoop(ctx, s, mx, resumePending)
	}
}

// runLoop drives REASONING -> (TOOL_EXEC | FINALIZE) -> REASONING until a
// turn finalizes, the consumer stops, or an error/interrupt ends the call.
func (a *Agent) runLoop(ctx context.Context, s *sink, mx *event.Multiplexer, resumePending bool) {
	for {
		if s.aborted {
			return
		}
		if a.consumeInterrupt(s, mx) {
			return
		}

		var reasoningMsg *message.Message
		stopRequested := false

		if resumePending {
			resumePending = false
			reasoningMsg = a.takeLastAssistant()
		} else {
			msg, stop, err := a.reasoningStep(ctx, s, mx)
			if err != nil {
				s.fail(err)
				return
			}
			if s.aborted {
				return
			}
			reasoningMsg, stopRequested = msg, stop
			if reasoningMsg != nil {
				// Remember the message that produced this turn's ToolUse blocks
				// (if any), not just the eventual tool-free finalized message,
				// so a later continuation entering Stream with no new input
				// (spec section 4.6 step 6) resumes the actual pending calls instead
				// of an empty finalized message.
				a.setLastAssistant(reasoningMsg)
			}
		}

		if reasoningMsg == nil {
			a.finalize(s, mx, nil)
			return
		}

		if a.consumeInterrupt(s, mx) {
			return
		}

		toolCalls := reasoningMsg.ToolUses()
		if len(toolCalls) > 0 && !stopRequested {
			a.setPending(toolCalls)

			preTool := &hook.Event{Kind: hook.KindPreToolExec, ToolCalls: toolCalls}
			if _, err := a.hooks.Dispatch(preTool); err != nil {
				s.fail(err)
				return
			}

			toolMsg, results, err := a.execTools(ctx, toolCalls)
			if err != nil {
				s.fail(err)
				return
			}
			a.clearPending()
			a.mem.AddMessage(toolMsg)

			postTool := &hook.Event{Kind: hook.KindPostToolExec, ToolResults: results}
			if _, err := a.hooks.Dispatch(postTool); err != nil {
				s.fail(err)
				return
			}

			if !s.emit(mx.ToolResult(toolMsg)) {
				return
			}
			if a.consumeInterrupt(s, mx) {
				return
			}
			continue
		}

		a.finalize(s, mx, reasoningMsg)
		return
	}
}

func (a *Agent) takeLastAssistant() *message.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastAssistant
}

// finalize appends the turn's final message (if any) to memory, emits
// AGENT_RESULT, and dispatches PostCall.
func (a *Agent) finalize(s *sink, mx *event.Multiplexer, final *message.Message) {
	if final != nil {
		a.mem.AddMessage(final)
		a.setLastAssistant(final)
	}

	postCall := &hook.Event{Kind: hook.KindPostCall, OutputMessage: final}
	if _, err := a.hooks.Dispatch(postCall); err != nil {
		s.fail(err)
		return
	}

	a.persistSession()

	s.emit(mx.AgentResult(final))
}

// persistSession saves Memory to the configured session store, if both
// Session and SessionKey were set on Config. A failure is logged and
// swallowed rather than surfaced, per spec §7's PersistenceWarning ("a
// Post* hook that triggers a persistence failure should log and continue
// rather than fail the agent call").
func (a *Agent) persistSession() {
	if a.sessionStore == nil || a.sessionKey == "" {
		return
	}
	if err := a.mem.SaveTo(a.sessionStore, a.sessionKey); err != nil {
		perr := &session.ErrPersistence{Op: "agent.finalize.SaveTo", Err: err}
		a.logger.Warn("agent: session persistence failed",
			"agent", a.name, "session_key", string(a.sessionKey), "error", perr)
	}
}

// consumeInterrupt checks and clears the cooperative interruption flag at a
// suspension point. If set, it emits the synthetic AGENT_RESULT and reports
// true so the caller stops driving the loop.
func (a *Agent) consumeInterrupt(s *sink, mx *event.Multiplexer) bool {
	if !a.interrupted.CompareAndSwap(true, false) {
		return false
	}
	msg := message.New("interrupt", message.RoleAssistant, message.NewText(interruptedText))
	s.emit(mx.AgentResult(msg))
	return true
}

// reasoningStep runs exactly one REASONING turn: PreReasoning hook, the
// streamed model call folded through a reasoning.Context, REASONING event
// emission per chunk, and PostReasoning with stopAgent inspection.
func (a *Agent) reasoningStep(ctx context.Context, s *sink, mx *event.Multiplexer) (msg *message.Message, stop bool, err error) {
	ctx, span := a.tracer().Start(ctx, "agentcore.reasoning",
		trace.WithAttributes(attribute.String("agent.name", a.name), attribute.String("llm.provider", a.llm.Name())))
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if m := a.metrics(); m != nil {
			m.ObserveReasoning(a.name, a.llm.Name(), time.Since(start).Seconds(), err)
		}
	}()

	history := a.mem.GetMessages()

	preReasoning := &hook.Event{Kind: hook.KindPreReasoning, InputMessages: history}
	out, err := a.hooks.Dispatch(preReasoning)
	if err != nil {
		return nil, false, err
	}
	history = out.InputMessages

	rc := reasoning.NewContext(a.name)
	defs := a.toolkit.Definitions()

	for resp, chatErr := range a.llm.Chat(ctx, history, a.modelOpts, defs, a.toolChoice) {
		if chatErr != nil {
			err = &ModelError{Err: chatErr}
			return nil, false, err
		}

		// Suspension point: before each model chunk is consumed.
		if a.consumeInterrupt(s, mx) {
			s.aborted = true
			return nil, false, nil
		}

		chunks := rc.ProcessChunk(resp)
		for _, c := range chunks {
			if !s.emit(mx.Reasoning(c, false)) {
				return nil, false, nil
			}
		}
	}

	final := rc.BuildFinalMessage()
	if final == nil {
		return nil, false, nil
	}

	if !s.emit(mx.Reasoning(final, true)) {
		return nil, false, nil
	}

	postReasoning := &hook.Event{Kind: hook.KindPostReasoning, ReasoningMessage: final}
	result, err := a.hooks.Dispatch(postReasoning)
	if err != nil {
		return nil, false, err
	}

	return final, result.StopRequested(), nil
}

// execTools runs every ToolUse block, potentially in parallel, preserving
// result ordering by the order toolCalls were given (spec §4.6 step 5,
// §5's "ordering of their results follows the insertion order of tool-call
// blocks, not completion order"). It returns the gathered TOOL-role
// message plus the individual results (for the PostToolExec hook).
func (a *Agent) execTools(ctx context.Context, toolCalls []message.ToolUse) (*message.Message, []message.ToolResult, error) {
	blocks := make([]message.Block, len(toolCalls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range toolCalls {
		i, call := i, call
		g.Go(func() error {
			spanCtx, span := a.tracer().Start(gctx, "agentcore.tool_call",
				trace.WithAttributes(attribute.String("tool.name", call.Name)))
			start := time.Now()
			blocks[i] = a.toolkit.Execute(spanCtx, call)
			span.End()
			if m := a.metrics(); m != nil {
				m.ObserveToolCall(call.Name, time.Since(start).Seconds(), nil)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	results := make([]message.ToolResult, len(blocks))
	for i, b := range blocks {
		if tr, ok := b.(message.ToolResult); ok {
			results[i] = tr
		}
	}

	msgID := toolCalls[0].ID
	return message.New(msgID, message.RoleTool, blocks...), results, nil
}
