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

// Package hook implements the prioritized, composable lifecycle interception
// chain the ReAct loop routes every state transition through (spec component
// C3). Hooks mutate events in place and signal a PostReasoning short-circuit
// through a field the loop inspects, not an exception — see spec §9's design
// note on modeling stopAgent without exceptions.
package hook

import (
	"fmt"
	"sort"

	"github.com/kadirpekel/agentcore/message"
)

// Kind identifies which lifecycle point an Event was raised for.
type Kind int

const (
	KindPreCall Kind = iota
	KindPostCall
	KindPreReasoning
	KindPostReasoning
	KindPreToolExec
	KindPostToolExec
)

func (k Kind) String() string {
	switch k {
	case KindPreCall:
		return "PreCall"
	case KindPostCall:
		return "PostCall"
	case KindPreReasoning:
		return "PreReasoning"
	case KindPostReasoning:
		return "PostReasoning"
	case KindPreToolExec:
		return "PreToolExec"
	case KindPostToolExec:
		return "PostToolExec"
	default:
		return "Unknown"
	}
}

// Event is the mutable payload passed through the hook chain. Exactly one
// of the per-kind payload groups below is populated, selected by Kind.
type Event struct {
	Kind Kind

	// InputMessages is mutable on PreCall and PreReasoning: a hook may
	// append, reorder, or replace entries (e.g. to prepend a system
	// message carrying retrieved long-term memory).
	InputMessages []*message.Message

	// OutputMessage is set on PostCall.
	OutputMessage *message.Message

	// ReasoningMessage is set on PostReasoning.
	ReasoningMessage *message.Message

	// ToolCalls is set on PreToolExec.
	ToolCalls []message.ToolUse

	// ToolResults is set on PostToolExec.
	ToolResults []message.ToolResult

	stopAgent bool
}

// StopAgent marks the current reasoning step as terminal. Only meaningful on
// a PostReasoning event; the ReAct loop checks StopRequested after every
// hook in the chain has run and, if true, skips tool execution and further
// reasoning for this turn.
func (e *Event) StopAgent() { e.stopAgent = true }

// StopRequested reports whether any hook in the chain called StopAgent.
func (e *Event) StopRequested() bool { return e.stopAgent }

// Func is one hook's handling of one event. It may mutate e in place and
// must return the (possibly updated) event, or an error to abort dispatch.
type Func func(e *Event) (*Event, error)

// Hook is a registered interceptor. Lower Priority runs earlier; ties break
// by insertion order (spec §3: "Priority rule: lower numeric value runs
// earlier; stable order by insertion among ties").
type Hook struct {
	Priority int
	OnEvent  Func
}

// HookError wraps a failing hook body. Hook errors are never swallowed by
// the chain: Dispatch returns them to the caller, which for the ReAct loop
// means terminating the event stream (spec §7).
type HookError struct {
	Kind Kind
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook: %s: %v", e.Kind, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

// Chain dispatches lifecycle events through a priority-ordered, stable set
// of hooks.
type Chain struct {
	hooks []Hook
}

// NewChain builds a chain from zero or more hooks, sorted by ascending
// priority with insertion order preserved among equal priorities.
func NewChain(hooks ...Hook) *Chain {
	c := &Chain{hooks: make([]Hook, len(hooks))}
	copy(c.hooks, hooks)
	c.sort()
	return c
}

// Register appends a hook and re-sorts, preserving relative insertion order
// among equal priorities (sort.SliceStable).
func (c *Chain) Register(h Hook) {
	c.hooks = append(c.hooks, h)
	c.sort()
}

func (c *Chain) sort() {
	sort.SliceStable(c.hooks, func(i, j int) bool {
		return c.hooks[i].Priority < c.hooks[j].Priority
	})
}

// Dispatch runs every hook's OnEvent against e in priority order, feeding
// each hook's (possibly mutated) return value to the next. It returns the
// final event, or the first HookError encountered.
func (c *Chain) Dispatch(e *Event) (*Event, error) {
	cur := e
	for _, h := range c.hooks {
		next, err := h.OnEvent(cur)
		if err != nil {
			return cur, &HookError{Kind: cur.Kind, Err: err}
		}
		if next != nil {
			cur = next
		}
	}
	return cur, nil
}

// Len reports how many hooks are registered.
func (c *Chain) Len() int { return len(c.hooks) }
