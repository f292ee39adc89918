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

package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/message"
	"github.com/kadirpekel/agentcore/model"
)

func TestStripThinkingRemovesThinkingBlocksOnly(t *testing.T) {
	msgs := []*message.Message{
		message.New("m1", message.RoleAssistant,
			message.NewThinking("pondering..."),
			message.NewText("the answer")),
	}

	out := model.StripThinking(msgs)

	require.Len(t, out, 1)
	require.Len(t, out[0].Content, 1)
	require.Equal(t, "the answer", out[0].Text())
}

func TestStripThinkingPreservesMessageIdentity(t *testing.T) {
	msgs := []*message.Message{
		message.New("m1", message.RoleAssistant, message.NewText("hi")),
	}
	msgs[0].SetMetadata(message.MetaChatUsage, "usage")

	out := model.StripThinking(msgs)

	require.Equal(t, "m1", out[0].ID)
	require.Equal(t, message.RoleAssistant, out[0].Role)
	require.Contains(t, out[0].Metadata, message.MetaChatUsage)
}

func TestStripThinkingSkipsNilMessages(t *testing.T) {
	msgs := []*message.Message{nil, message.New("m2", message.RoleUser, message.NewText("hi"))}
	out := model.StripThinking(msgs)
	require.Len(t, out, 2)
	require.Nil(t, out[0])
}
