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

// Package event defines the public event-stream contract (spec component
// C7): the ordered, typed sequence of events one agent call produces, plus
// the incremental/cumulative multiplexing and de-duplication rules that
// decide what each REASONING chunk carries.
package event

import "github.com/kadirpekel/agentcore/message"

// Type identifies the kind of public event.
type Type string

const (
	TypeReasoning   Type = "REASONING"
	TypeToolResult  Type = "TOOL_RESULT"
	TypeHint        Type = "HINT"
	TypeAgentResult Type = "AGENT_RESULT"
	TypeSummary     Type = "SUMMARY"
	// TypeAll is a Filter shorthand meaning "every type"; it is never set
	// on an actual emitted Event.
	TypeAll Type = "ALL"
)

// Event is one item of the public agent event stream.
type Event struct {
	Type      Type
	Message   *message.Message
	IsLast    bool
	MessageID string
}

func newEvent(t Type, msg *message.Message, isLast bool) *Event {
	id := ""
	if msg != nil {
		id = msg.ID
	}
	return &Event{Type: t, Message: msg, IsLast: isLast, MessageID: id}
}

// Mode selects how REASONING chunks carry text across a turn.
type Mode int

const (
	// Incremental is the default: each chunk carries only the delta since
	// the prior chunk with the same MessageID.
	Incremental Mode = iota
	// Cumulative: each chunk carries the full accumulated content so far.
	Cumulative
)

// Filter selects which event Types a caller wants to observe. A nil or
// empty Filter, or one containing TypeAll, allows everything. TypeAgentResult
// always passes regardless of filter contents (spec §4.7).
type Filter map[Type]bool

// NewFilter builds a Filter from the given types.
func NewFilter(types ...Type) Filter {
	f := make(Filter, len(types))
	for _, t := range types {
		f[t] = true
	}
	return f
}

// All is the shorthand filter matching every event type.
var All = NewFilter(TypeAll)

// Allows reports whether t should be emitted under this filter.
func (f Filter) Allows(t Type) bool {
	if t == TypeAgentResult {
		return true
	}
	if len(f) == 0 || f[TypeAll] {
		return true
	}
	return f[t]
}

// textState tracks the running accumulation needed to serve Cumulative
// mode for one in-flight messageID.
type textState struct {
	text     string
	thinking string
}

// Multiplexer wraps the raw chunk-messages a reasoning.Context emits, plus
// the loop's tool-result messages, into the public Event stream, applying
// the selected Mode and Filter. It is stateful only for Cumulative mode's
// running-total bookkeeping; Incremental mode passes chunks through as-is,
// since reasoning.Context.ProcessChunk already emits one chunk-message per
// delta.
type Multiplexer struct {
	mode   Mode
	filter Filter

	states map[string]*textState
}

// NewMultiplexer builds a multiplexer for one agent call.
func NewMultiplexer(mode Mode, filter Filter) *Multiplexer {
	return &Multiplexer{mode: mode, filter: filter, states: make(map[string]*textState)}
}

// Reasoning converts one reasoning chunk-message (as produced by
// reasoning.Context.ProcessChunk, or the turn's final assembled message)
// into a public Event, or nil if the Filter excludes REASONING events.
//
// De-duplication rule (spec §4.7): in Incremental mode every non-last chunk
// carries its delta verbatim; the final (isLast=true) event is still
// emitted (tool calls and usage on it are authoritative) even though a
// consumer reconstructing text may prefer to concatenate the deltas already
// seen and ignore the final event's own text.
func (mx *Multiplexer) Reasoning(msg *message.Message, isLast bool) *Event {
	if !mx.filter.Allows(TypeReasoning) {
		return nil
	}
	if msg == nil {
		return nil
	}

	out := msg
	if mx.mode == Cumulative {
		out = mx.cumulativeView(msg, isLast)
	}

	return newEvent(TypeReasoning, out, isLast)
}

// cumulativeView returns a copy of msg whose Text/Thinking blocks carry the
// full accumulation seen so far for msg.ID, rather than just this chunk's
// delta. The final (isLast) chunk already carries reasoning.Context's fully
// assembled text (spec §4.2 BuildFinalMessage), so it is passed through
// as the new running total rather than appended onto it — otherwise the
// already-accumulated deltas would be double-counted.
func (mx *Multiplexer) cumulativeView(msg *message.Message, isLast bool) *message.Message {
	st, ok := mx.states[msg.ID]
	if !ok {
		st = &textState{}
		mx.states[msg.ID] = st
	}

	content := make([]message.Block, len(msg.Content))
	for i, b := range msg.Content {
		switch v := b.(type) {
		case message.Text:
			if isLast {
				st.text = v.Text
			} else {
				st.text += v.Text
			}
			content[i] = message.Text{Text: st.text}
		case message.Thinking:
			if isLast {
				st.thinking = v.Thinking
			} else {
				st.thinking += v.Thinking
			}
			content[i] = message.Thinking{Thinking: st.thinking}
		default:
			content[i] = b
		}
	}

	return &message.Message{ID: msg.ID, Name: msg.Name, Role: msg.Role, Content: content, Metadata: msg.Metadata}
}

// ToolResult converts a TOOL-role message into a public TOOL_RESULT event,
// always isLast (spec §4.6 step 5: one TOOL message per turn's tool batch).
func (mx *Multiplexer) ToolResult(msg *message.Message) *Event {
	if !mx.filter.Allows(TypeToolResult) {
		return nil
	}
	return newEvent(TypeToolResult, msg, true)
}

// AgentResult converts the turn's final assistant message into the
// terminal AGENT_RESULT event. It always passes the filter.
func (mx *Multiplexer) AgentResult(msg *message.Message) *Event {
	return newEvent(TypeAgentResult, msg, true)
}

// Hint emits a HINT event (out-of-band guidance, e.g. long-running tool
// progress) if the filter allows it.
func (mx *Multiplexer) Hint(msg *message.Message) *Event {
	if !mx.filter.Allows(TypeHint) {
		return nil
	}
	return newEvent(TypeHint, msg, false)
}

// Summary emits a SUMMARY event if the filter allows it.
func (mx *Multiplexer) Summary(msg *message.Message) *Event {
	if !mx.filter.Allows(TypeSummary) {
		return nil
	}
	return newEvent(TypeSummary, msg, true)
}
