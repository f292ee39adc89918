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

// Package model defines the LLM provider and formatter collaborator
// interfaces the agent core consumes. Concrete provider adapters
// (OpenAI, Anthropic, Gemini, ...) are not part of this package; only the
// shapes a provider must satisfy live here.
package model

import (
	"context"
	"iter"

	"github.com/kadirpekel/agentcore/message"
	"github.com/kadirpekel/agentcore/tool"
)

// ToolChoice constrains whether and which tool the model must call.
type ToolChoice struct {
	// Mode is one of "auto", "none", "required" or "named".
	Mode string
	// Name is the tool name when Mode is "named".
	Name string
}

var (
	ToolChoiceAuto     = ToolChoice{Mode: "auto"}
	ToolChoiceNone     = ToolChoice{Mode: "none"}
	ToolChoiceRequired = ToolChoice{Mode: "required"}
)

// Options configures a single chat call.
type Options struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
	TopK        *int
	Stop        []string
}

// ChatResponse is one streamed chunk (or the sole response, for
// non-streaming providers) from a model call. Providers must reuse the same
// ID across every chunk of one turn so accumulators can coalesce them.
type ChatResponse struct {
	ID      string
	Content []message.Block
	Usage   *message.ChatUsage
}

// LLM is the interface every model provider implements.
type LLM interface {
	// Name identifies the concrete model (e.g. "gpt-4o", "claude-3-5-sonnet").
	Name() string

	// Chat streams the response to a request. A non-streaming provider may
	// yield exactly one ChatResponse.
	Chat(ctx context.Context, messages []*message.Message, opts Options, tools []tool.Definition, toolChoice ToolChoice) iter.Seq2[ChatResponse, error]
}

// Formatter adapts the provider-agnostic request/response shapes to and
// from one provider's wire format. Formatters must strip message.Thinking
// blocks before sending a request to the model: thinking is never replayed
// back to a provider.
type Formatter interface {
	Format(messages []*message.Message) (any, error)
	ParseResponse(providerResponse any) (ChatResponse, error)
	ApplyOptions(builder any, opts Options) any
	ApplyTools(builder any, tools []tool.Definition) any
	ApplyToolChoice(builder any, choice ToolChoice) any
}

// StripThinking returns messages with every Thinking block removed from
// their content, for use by Formatter.Format implementations.
func StripThinking(messages []*message.Message) []*message.Message {
	out := make([]*message.Message, len(messages))
	for i, m := range messages {
		if m == nil {
			continue
		}
		clean := &message.Message{ID: m.ID, Name: m.Name, Role: m.Role, Metadata: m.Metadata}
		for _, b := range m.Content {
			if _, ok := b.(message.Thinking); ok {
				continue
			}
			clean.Content = append(clean.Content, b)
		}
		out[i] = clean
	}
	return out
}
