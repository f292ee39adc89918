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

// Package reasoning owns the per-turn state of one reason-then-act cycle:
// the streaming accumulators, the running usage totals, and the journal of
// chunk-messages emitted as the model streams its response.
package reasoning

import (
	"github.com/kadirpekel/agentcore/accumulator"
	"github.com/kadirpekel/agentcore/message"
	"github.com/kadirpekel/agentcore/model"
)

// Context is created at the start of a reasoning step, mutated by
// ProcessChunk as the model streams, consulted once by BuildFinalMessage,
// and discarded when the step completes.
type Context struct {
	AgentName string
	MessageID string

	textAcc      accumulator.Text
	thinkingAcc  accumulator.Thinking
	toolCallsAcc *accumulator.ToolCalls

	journal []*message.Message
	usage   message.ChatUsage
}

// NewContext creates an empty reasoning context for one turn.
func NewContext(agentName string) *Context {
	return &Context{
		AgentName:    agentName,
		toolCallsAcc: accumulator.NewToolCalls(),
	}
}

// ProcessChunk folds one streamed model response into the context and
// returns the chunk-messages it produced, in order. Every returned chunk
// shares resp.ID as its message id.
func (c *Context) ProcessChunk(resp model.ChatResponse) []*message.Message {
	c.MessageID = resp.ID

	if resp.Usage != nil {
		c.usage.MergeMax(*resp.Usage)
	}

	var emitted []*message.Message

	for _, block := range resp.Content {
		switch b := block.(type) {
		case message.Text:
			c.textAcc.Add(b.Text)
			emitted = append(emitted, message.New(c.MessageID, message.RoleAssistant, b))

		case message.Thinking:
			c.thinkingAcc.Add(b.Thinking)
			emitted = append(emitted, message.New(c.MessageID, message.RoleAssistant, b))

		case message.ToolUse:
			c.toolCallsAcc.Add(accumulator.ToolCallChunk{
				ID:       b.ID,
				Name:     b.Name,
				Input:    b.Input,
				Content:  b.Content,
				Metadata: b.Metadata,
			})

			enriched := b
			if enriched.ID == "" {
				if acc, ok := c.toolCallsAcc.GetAccumulatedToolCall(""); ok {
					enriched.ID = acc.ID
				}
			}
			emitted = append(emitted, message.New(c.MessageID, message.RoleAssistant, enriched))
		}
	}

	c.journal = append(c.journal, emitted...)
	return emitted
}

// Journal returns every chunk-message emitted so far, in order.
func (c *Context) Journal() []*message.Message {
	return c.journal
}

// BuildFinalMessage assembles the turn's single assistant message: thinking
// (if any), then text (if any), then every tool call in insertion order. It
// returns nil if the turn produced no blocks at all.
func (c *Context) BuildFinalMessage() *message.Message {
	var blocks []message.Block

	if b, ok := c.thinkingAcc.BuildAggregated(); ok {
		blocks = append(blocks, b)
	}
	if b, ok := c.textAcc.BuildAggregated(); ok {
		blocks = append(blocks, b)
	}
	for _, tu := range c.toolCallsAcc.BuildAll() {
		blocks = append(blocks, tu)
	}

	if len(blocks) == 0 {
		return nil
	}

	msg := message.New(c.MessageID, message.RoleAssistant, blocks...)
	if c.usage.Positive() {
		msg.SetMetadata(message.MetaChatUsage, c.usage)
	}
	return msg
}
