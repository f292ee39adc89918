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

package message

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAssistant Role = "ASSISTANT"
	RoleSystem    Role = "SYSTEM"
	RoleTool      Role = "TOOL"
)

// Well-known metadata keys.
const (
	// MetaChatUsage carries a ChatUsage value for the turn that produced this message.
	MetaChatUsage = "chat_usage"
	// MetaStructuredOutput carries a provider's parsed structured-output payload.
	MetaStructuredOutput = "structured_output"
	// MetaBypassHistoryMerge marks a message that a multi-agent history
	// compactor should not merge with adjacent turns.
	MetaBypassHistoryMerge = "bypass_multiagent_history_merge"
	// MetaThoughtSignature carries a provider's opaque thinking-verification token.
	MetaThoughtSignature = "thought_signature"
)

// Message is one logical turn of conversation. A single Message's id is
// shared across all the streamed chunks that compose it.
type Message struct {
	ID       string
	Name     string
	Role     Role
	Content  []Block
	Metadata map[string]any
}

// New builds a Message with the given role and content blocks.
func New(id string, role Role, content ...Block) *Message {
	return &Message{ID: id, Role: role, Content: content}
}

// Text concatenates every Text block's text, in order.
func (m *Message) Text() string {
	if m == nil {
		return ""
	}
	var out string
	for _, b := range m.Content {
		if t, ok := b.(Text); ok {
			out += t.Text
		}
	}
	return out
}

// ToolUses returns every ToolUse block in the message, in order.
func (m *Message) ToolUses() []ToolUse {
	if m == nil {
		return nil
	}
	var out []ToolUse
	for _, b := range m.Content {
		if tu, ok := b.(ToolUse); ok {
			out = append(out, tu)
		}
	}
	return out
}

// HasToolUses reports whether the message contains any ToolUse block.
func (m *Message) HasToolUses() bool {
	return len(m.ToolUses()) > 0
}

// SetMetadata upserts a metadata entry, allocating the map if needed.
func (m *Message) SetMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// ChatUsage is the per-turn token/latency accounting. Providers send
// cumulative counts across streamed chunks, so the merge rule is max, not sum.
type ChatUsage struct {
	InputTokens  int
	OutputTokens int
	Time         float64
}

// MergeMax updates u in place to the element-wise maximum of u and other.
func (u *ChatUsage) MergeMax(other ChatUsage) {
	if other.InputTokens > u.InputTokens {
		u.InputTokens = other.InputTokens
	}
	if other.OutputTokens > u.OutputTokens {
		u.OutputTokens = other.OutputTokens
	}
	if other.Time > u.Time {
		u.Time = other.Time
	}
}

// Positive reports whether any field of u is greater than zero.
func (u ChatUsage) Positive() bool {
	return u.InputTokens > 0 || u.OutputTokens > 0 || u.Time > 0
}
