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

import (
	"encoding/json"
	"fmt"
)

// blockEnvelope carries a Block's type discriminator alongside its fields,
// so a closed interface sum type can still round-trip through
// encoding/json — needed by session.Store implementations that persist
// memory's message list to disk or SQL (message.Block has no exported
// fields of its own to reflect over).
type blockEnvelope struct {
	Type string `json:"type"`

	Text     string          `json:"text,omitempty"`
	Thinking string          `json:"thinking,omitempty"`
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Input    map[string]any  `json:"input,omitempty"`
	Content  string          `json:"content,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
	Output   []blockEnvelope `json:"output,omitempty"`
	Source   *sourceEnvelope `json:"source,omitempty"`
}

type sourceEnvelope struct {
	Type      string `json:"type"`
	URL       string `json:"url,omitempty"`
	MediaType string `json:"media_type,omitempty"`
	Data      []byte `json:"data,omitempty"`
}

func encodeSource(src Source) *sourceEnvelope {
	switch s := src.(type) {
	case URLSource:
		return &sourceEnvelope{Type: "url", URL: s.URL}
	case Base64Source:
		return &sourceEnvelope{Type: "base64", MediaType: s.MediaType, Data: s.Data}
	default:
		return nil
	}
}

func decodeSource(env *sourceEnvelope) Source {
	if env == nil {
		return nil
	}
	switch env.Type {
	case "url":
		return URLSource{URL: env.URL}
	case "base64":
		return Base64Source{MediaType: env.MediaType, Data: env.Data}
	default:
		return nil
	}
}

func encodeBlock(b Block) blockEnvelope {
	switch v := b.(type) {
	case Text:
		return blockEnvelope{Type: "text", Text: v.Text}
	case Thinking:
		return blockEnvelope{Type: "thinking", Thinking: v.Thinking}
	case ToolUse:
		return blockEnvelope{Type: "tool_use", ID: v.ID, Name: v.Name, Input: v.Input, Content: v.Content, Metadata: v.Metadata}
	case ToolResult:
		out := make([]blockEnvelope, len(v.Output))
		for i, ob := range v.Output {
			out[i] = encodeBlock(ob)
		}
		return blockEnvelope{Type: "tool_result", ID: v.ID, Name: v.Name, Output: out}
	case Image:
		return blockEnvelope{Type: "image", Source: encodeSource(v.Source)}
	case Audio:
		return blockEnvelope{Type: "audio", Source: encodeSource(v.Source)}
	case Video:
		return blockEnvelope{Type: "video", Source: encodeSource(v.Source)}
	default:
		return blockEnvelope{Type: "unknown"}
	}
}

func decodeBlock(env blockEnvelope) (Block, error) {
	switch env.Type {
	case "text":
		return Text{Text: env.Text}, nil
	case "thinking":
		return Thinking{Thinking: env.Thinking}, nil
	case "tool_use":
		return ToolUse{ID: env.ID, Name: env.Name, Input: env.Input, Content: env.Content, Metadata: env.Metadata}, nil
	case "tool_result":
		output := make([]Block, len(env.Output))
		for i, ob := range env.Output {
			b, err := decodeBlock(ob)
			if err != nil {
				return nil, err
			}
			output[i] = b
		}
		return ToolResult{ID: env.ID, Name: env.Name, Output: output}, nil
	case "image":
		return Image{Source: decodeSource(env.Source)}, nil
	case "audio":
		return Audio{Source: decodeSource(env.Source)}, nil
	case "video":
		return Video{Source: decodeSource(env.Source)}, nil
	default:
		return nil, fmt.Errorf("message: unknown block type %q", env.Type)
	}
}

// messageEnvelope is Message's wire shape.
type messageEnvelope struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Role     Role            `json:"role"`
	Content  []blockEnvelope `json:"content,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

// MarshalJSON encodes m with an explicit type discriminator per content
// block, so Block's closed interface sum type survives a round trip.
func (m *Message) MarshalJSON() ([]byte, error) {
	env := messageEnvelope{ID: m.ID, Name: m.Name, Role: m.Role, Metadata: m.Metadata}
	env.Content = make([]blockEnvelope, len(m.Content))
	for i, b := range m.Content {
		env.Content[i] = encodeBlock(b)
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes a Message previously written by MarshalJSON.
func (m *Message) UnmarshalJSON(data []byte) error {
	var env messageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	m.ID = env.ID
	m.Name = env.Name
	m.Role = env.Role
	m.Metadata = env.Metadata
	m.Content = make([]Block, len(env.Content))
	for i, be := range env.Content {
		b, err := decodeBlock(be)
		if err != nil {
			return err
		}
		m.Content[i] = b
	}
	return nil
}
