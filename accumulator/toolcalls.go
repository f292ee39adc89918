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

package accumulator

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kadirpekel/agentcore/message"
)

// ToolCallChunk is one streamed fragment of a (possibly parallel) tool call.
// Providers split a single tool call's id/name/arguments across several
// chunks, and interleave fragments of different parallel calls; Id and Name
// may be empty or placeholders on any given fragment except the first.
type ToolCallChunk struct {
	ID       string
	Name     string
	Input    map[string]any
	Content  string
	Metadata map[string]any
}

// placeholderPrefix marks a tool-call name fragment as a continuation rather
// than the opening fragment of a new call. Canonical examples: "__fragment__",
// "__pending__".
const placeholderPrefix = "__"

func isPlaceholderName(name string) bool {
	return name == "" || strings.HasPrefix(name, placeholderPrefix)
}

// toolCallBuilder accumulates the fragments routed to one key.
type toolCallBuilder struct {
	toolID   string
	name     string
	args     map[string]any
	rawBuf   strings.Builder
	metadata map[string]any
}

func newToolCallBuilder() *toolCallBuilder {
	return &toolCallBuilder{args: make(map[string]any)}
}

func (b *toolCallBuilder) merge(chunk ToolCallChunk) {
	if b.toolID == "" && chunk.ID != "" {
		b.toolID = chunk.ID
	}
	if !isPlaceholderName(chunk.Name) {
		b.name = chunk.Name
	}
	for k, v := range chunk.Input {
		b.args[k] = v
	}
	b.rawBuf.WriteString(chunk.Content)
	for k, v := range chunk.Metadata {
		if b.metadata == nil {
			b.metadata = make(map[string]any)
		}
		b.metadata[k] = v
	}
}

func (b *toolCallBuilder) build() message.ToolUse {
	input := b.args
	raw := b.rawBuf.String()
	if len(input) == 0 && raw != "" {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			input = parsed
		}
	}

	content := raw
	if content == "" {
		content = "{}"
	}

	id := b.toolID
	if id == "" {
		id = "tool_call_" + uuid.NewString()
	}

	return message.ToolUse{
		ID:       id,
		Name:     b.name,
		Input:    input,
		Content:  content,
		Metadata: b.metadata,
	}
}

// ToolCalls reconstructs parallel tool calls from interleaved, partially
// keyed fragments. See spec component C1's keying policy:
//
//  1. Non-empty id -> keyed by id; remembered as last-key if named.
//  2. Else non-placeholder name -> keyed by "name:"+name; remembered as last-key.
//  3. Else placeholder name, and a last-key exists -> routed to last-key.
//  4. Else -> a fresh "index:"+n key is opened and remembered as last-key.
type ToolCalls struct {
	builders map[string]*toolCallBuilder
	order    []string
	lastKey  string
	counter  int
}

func NewToolCalls() *ToolCalls {
	return &ToolCalls{builders: make(map[string]*toolCallBuilder)}
}

func (t *ToolCalls) keyFor(chunk ToolCallChunk) string {
	if chunk.ID != "" {
		if !isPlaceholderName(chunk.Name) {
			t.lastKey = chunk.ID
		}
		return chunk.ID
	}

	if !isPlaceholderName(chunk.Name) {
		key := "name:" + chunk.Name
		t.lastKey = key
		return key
	}

	if t.lastKey != "" {
		return t.lastKey
	}

	key := "index:" + strconv.Itoa(t.counter)
	t.counter++
	t.lastKey = key
	return key
}

func (t *ToolCalls) Add(chunk ToolCallChunk) {
	key := t.keyFor(chunk)

	b, ok := t.builders[key]
	if !ok {
		b = newToolCallBuilder()
		t.builders[key] = b
		t.order = append(t.order, key)
	}
	b.merge(chunk)
}

func (t *ToolCalls) HasContent() bool {
	return len(t.order) > 0
}

// BuildAggregated returns the last (insertion-order) tool call, or ok=false
// if none has been accumulated.
func (t *ToolCalls) BuildAggregated() (message.Block, bool) {
	if len(t.order) == 0 {
		return nil, false
	}
	last := t.order[len(t.order)-1]
	return t.builders[last].build(), true
}

// BuildAll returns every accumulated tool call in first-seen (insertion) order.
func (t *ToolCalls) BuildAll() []message.ToolUse {
	out := make([]message.ToolUse, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.builders[key].build())
	}
	return out
}

// GetAccumulatedToolCall looks up a tool call by its id. When id is empty,
// or no builder's id matches, it falls back to the last-opened builder.
func (t *ToolCalls) GetAccumulatedToolCall(id string) (message.ToolUse, bool) {
	if id != "" {
		if b, ok := t.builders[id]; ok {
			return b.build(), true
		}
		for _, key := range t.order {
			if b := t.builders[key]; b.toolID == id {
				return b.build(), true
			}
		}
	}

	if t.lastKey == "" {
		return message.ToolUse{}, false
	}
	b, ok := t.builders[t.lastKey]
	if !ok {
		return message.ToolUse{}, false
	}
	return b.build(), true
}

func (t *ToolCalls) Reset() {
	t.builders = make(map[string]*toolCallBuilder)
	t.order = nil
	t.lastKey = ""
	t.counter = 0
}

var _ Accumulator[ToolCallChunk] = (*ToolCalls)(nil)
