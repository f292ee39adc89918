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

package reasoning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/message"
	"github.com/kadirpekel/agentcore/model"
	"github.com/kadirpekel/agentcore/reasoning"
)

// TestProcessChunkStreamsTextDeltasThenFinal mirrors scenario S1.
func TestProcessChunkStreamsTextDeltasThenFinal(t *testing.T) {
	ctx := reasoning.NewContext("assistant")

	var deltas []*message.Message
	for _, frag := range []string{"Hel", "lo", " world"} {
		emitted := ctx.ProcessChunk(model.ChatResponse{
			ID:      "m1",
			Content: []message.Block{message.NewText(frag)},
		})
		deltas = append(deltas, emitted...)
	}

	require.Len(t, deltas, 3)
	assert.Equal(t, "Hel", deltas[0].Text())
	assert.Equal(t, "lo", deltas[1].Text())
	assert.Equal(t, " world", deltas[2].Text())
	for _, d := range deltas {
		assert.Equal(t, "m1", d.ID)
	}

	final := ctx.BuildFinalMessage()
	require.NotNil(t, final)
	assert.Equal(t, "Hello world", final.Text())
	assert.False(t, final.HasToolUses())

	require.Len(t, ctx.Journal(), 3)
}

// TestProcessChunkEnrichesEmptyToolCallID covers the processChunk rule that
// a ToolUse fragment with no id is emitted enriched with the accumulator's
// current id for that call.
func TestProcessChunkEnrichesEmptyToolCallID(t *testing.T) {
	ctx := reasoning.NewContext("assistant")

	ctx.ProcessChunk(model.ChatResponse{
		ID: "m1",
		Content: []message.Block{
			message.NewToolUse("c1", "weather", nil, `{"city":`),
		},
	})
	emitted := ctx.ProcessChunk(model.ChatResponse{
		ID: "m1",
		Content: []message.Block{
			message.NewToolUse("", "__fragment__", nil, `"Beijing"}`),
		},
	})

	require.Len(t, emitted, 1)
	use, ok := emitted[0].Content[0].(message.ToolUse)
	require.True(t, ok)
	assert.Equal(t, "c1", use.ID)
}

// TestBuildFinalMessageOrdersThinkingTextThenToolCalls covers buildFinalMessage's
// fixed block ordering and the ChatUsage-positive metadata rule.
func TestBuildFinalMessageOrdersThinkingTextThenToolCalls(t *testing.T) {
	ctx := reasoning.NewContext("assistant")

	ctx.ProcessChunk(model.ChatResponse{
		ID: "m1",
		Content: []message.Block{
			message.NewText("answer"),
			message.NewThinking("because"),
			message.NewToolUse("c1", "weather", map[string]any{"city": "Paris"}, `{"city":"Paris"}`),
		},
		Usage: &message.ChatUsage{InputTokens: 10, OutputTokens: 5},
	})

	final := ctx.BuildFinalMessage()
	require.NotNil(t, final)
	require.Len(t, final.Content, 3)
	_, isThinking := final.Content[0].(message.Thinking)
	assert.True(t, isThinking)
	_, isText := final.Content[1].(message.Text)
	assert.True(t, isText)
	_, isToolUse := final.Content[2].(message.ToolUse)
	assert.True(t, isToolUse)

	usage, ok := final.Metadata[message.MetaChatUsage].(message.ChatUsage)
	require.True(t, ok)
	assert.Equal(t, 10, usage.InputTokens)
}

// TestBuildFinalMessageReturnsNilWhenEmpty covers the "return null iff no
// blocks at all" rule.
func TestBuildFinalMessageReturnsNilWhenEmpty(t *testing.T) {
	ctx := reasoning.NewContext("assistant")
	assert.Nil(t, ctx.BuildFinalMessage())
}
