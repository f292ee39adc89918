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

// Package chatapi bridges the public agent event stream (package event)
// into OpenAI Chat-Completions-shaped streaming chunks, the same wire
// family hector's pkg/model/openai client parses on the way in
// (request/response struct shapes, json tags) but mirrored outward: one
// ChunkFromEvent call per Event, ready to be JSON-encoded and written as an
// SSE "data: " line by a caller's HTTP handler. This package produces data
// only; it exposes no net/http handler (the Non-goals explicitly leave HTTP
// transport to the caller).
package chatapi

import (
	"github.com/kadirpekel/agentcore/event"
	"github.com/kadirpekel/agentcore/message"
)

// Chunk mirrors one OpenAI "chat.completion.chunk" streaming object.
type Chunk struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
}

// Choice is one streamed choice within a Chunk. Index is always 0: this
// bridge has no concept of multiple parallel completions.
type Choice struct {
	Index        int    `json:"index"`
	Delta        Delta  `json:"delta"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Delta carries the incremental content this chunk adds. ToolCalls is set
// for any event whose message carries tool-use blocks.
type Delta struct {
	Role      string         `json:"role,omitempty"`
	Content   string         `json:"content,omitempty"`
	ToolCalls []ToolCallDiff `json:"tool_calls,omitempty"`
}

// ToolCallDiff mirrors one OpenAI streamed tool_calls[i] delta entry.
type ToolCallDiff struct {
	Index    int          `json:"index"`
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function FunctionDiff `json:"function"`
}

// FunctionDiff carries a tool call's name and incremental JSON arguments.
type FunctionDiff struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ChunkFromEvent converts one public Event into a Chunk. model is echoed
// into the chunk's Model field (OpenAI clients key UI behavior off it);
// chunkID should be stable across every chunk of one turn, the same way a
// real OpenAI stream repeats one "id" across its chunks.
func ChunkFromEvent(ev *event.Event, chunkID, model string) Chunk {
	choice := Choice{Index: 0, Delta: deltaFromMessage(ev.Message)}

	switch ev.Type {
	case event.TypeAgentResult:
		choice.FinishReason = "stop"
	case event.TypeToolResult:
		// Tool results close out the assistant's own tool_calls turn; OpenAI
		// streams don't emit a distinct delta for tool role content, so this
		// is folded into Content for a caller that wants to surface it.
	}

	return Chunk{
		ID:      chunkID,
		Object:  "chat.completion.chunk",
		Model:   model,
		Choices: []Choice{choice},
	}
}

func deltaFromMessage(msg *message.Message) Delta {
	if msg == nil {
		return Delta{}
	}

	d := Delta{}
	if msg.Role == message.RoleAssistant {
		d.Role = "assistant"
	}

	for _, b := range msg.Content {
		switch v := b.(type) {
		case message.Text:
			d.Content += v.Text
		case message.Thinking:
			// OpenAI's Chat Completions wire format has no reasoning-delta
			// field; thinking content is dropped here rather than
			// misrepresented as assistant-visible content.
		case message.ToolUse:
			d.ToolCalls = append(d.ToolCalls, ToolCallDiff{
				Index: len(d.ToolCalls),
				ID:    v.ID,
				Type:  "function",
				Function: FunctionDiff{
					Name:      v.Name,
					Arguments: v.Content,
				},
			})
		case message.ToolResult:
			d.Content += outputText(v)
		}
	}

	return d
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
