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

// Package a2aevent bridges the public agent event stream (package event)
// into the Agent-to-Agent protocol's Message/task-status shape, grounded on
// hector's own event-to-a2a.Message translation in
// pkg/agent/llmagent/{llmagent,flow}.go. It only produces data; it exposes
// no HTTP handlers or task-store (those are a caller's concern per spec's
// Non-goals).
package a2aevent

import (
	"github.com/a2aproject/a2a-go/a2a"

	"github.com/kadirpekel/agentcore/event"
	"github.com/kadirpekel/agentcore/message"
)

// TaskState mirrors the subset of A2A task lifecycle states a single agent
// turn can produce.
type TaskState string

const (
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateFailed        TaskState = "failed"
)

// Update is one bridged unit: the A2A message this event translates to, plus
// the task state a caller's task store should transition to.
type Update struct {
	Message *a2a.Message
	State   TaskState
	Final   bool
}

// Translate converts one public Event into an Update. REASONING events with
// IsLast=false become intermediate "working" messages; the terminal
// AGENT_RESULT always closes the task as "completed". TOOL_RESULT events are
// surfaced as agent-authored messages too, since A2A has no separate
// tool-result message role.
func Translate(ev *event.Event) Update {
	switch ev.Type {
	case event.TypeAgentResult:
		return Update{Message: toA2AMessage(ev.Message), State: TaskStateCompleted, Final: true}
	case event.TypeToolResult:
		return Update{Message: toA2AMessage(ev.Message), State: TaskStateWorking}
	case event.TypeHint:
		return Update{Message: toA2AMessage(ev.Message), State: TaskStateInputRequired}
	default:
		return Update{Message: toA2AMessage(ev.Message), State: TaskStateWorking}
	}
}

// toA2AMessage converts a message.Message's blocks into an a2a.Message,
// mapping text content to a2a.TextPart and tool-use/tool-result blocks to
// a2a.DataPart (A2A has no native tool-call part type).
func toA2AMessage(msg *message.Message) *a2a.Message {
	if msg == nil {
		return nil
	}

	role := a2a.MessageRoleAgent
	if msg.Role == message.RoleUser {
		role = a2a.MessageRoleUser
	}

	parts := make([]a2a.Part, 0, len(msg.Content))
	for _, b := range msg.Content {
		switch v := b.(type) {
		case message.Text:
			parts = append(parts, a2a.TextPart{Text: v.Text})
		case message.ToolUse:
			parts = append(parts, a2a.DataPart{Data: map[string]any{
				"type": "tool_use", "id": v.ID, "name": v.Name, "input": v.Input,
			}})
		case message.ToolResult:
			parts = append(parts, a2a.DataPart{Data: map[string]any{
				"type": "tool_result", "id": v.ID, "name": v.Name, "text": outputText(v),
			}})
		}
	}

	return a2a.NewMessage(role, parts...)
}

func outputText(tr message.ToolResult) string {
	var out string
	for _, b := range tr.Output {
		if t, ok := b.(message.Text); ok {
			out += t.Text
		}
	}
	return out
}
