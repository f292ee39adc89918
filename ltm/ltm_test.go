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

package ltm_test

import (
	"context"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/hook"
	"github.com/kadirpekel/agentcore/ltm"
	"github.com/kadirpekel/agentcore/message"
	"github.com/kadirpekel/agentcore/tool"
)

// hashEmbedder is a deterministic stand-in for a real embedding model: equal
// strings always map to the same (trivial, low-dimensional) vector, so
// similarity search is exercised without a network call.
type hashEmbedder struct{}

func (hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	v := float32(h.Sum32()%1000) / 1000
	return []float32{v, 1 - v}, nil
}

func newStore(t *testing.T) *ltm.ChromemStore {
	t.Helper()
	s, err := ltm.NewChromemStore(ltm.ChromemConfig{Embedder: hashEmbedder{}})
	require.NoError(t, err)
	return s
}

func TestRecordAndRetrieveScopedByAgentAndSession(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "agent-1", "sess-1", []ltm.Record{
		{ID: "r1", Text: "the user's favorite color is blue"},
	}))
	require.NoError(t, s.Record(ctx, "agent-1", "sess-2", []ltm.Record{
		{ID: "r2", Text: "the user's favorite color is red"},
	}))

	got, err := s.Retrieve(ctx, "agent-1", "sess-1", "favorite color", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "the user's favorite color is blue", got[0].Text)
}

func TestClearRemovesOnlyScopedRecords(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "a", "s1", []ltm.Record{{ID: "r1", Text: "fact one"}}))
	require.NoError(t, s.Record(ctx, "a", "s2", []ltm.Record{{ID: "r2", Text: "fact two"}}))

	require.NoError(t, s.Clear(ctx, "a", "s1"))

	got, err := s.Retrieve(ctx, "a", "s1", "fact", 5)
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = s.Retrieve(ctx, "a", "s2", "fact", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestRegisterAgentControlExposesTools(t *testing.T) {
	s := newStore(t)
	tk := tool.NewToolkit()

	require.NoError(t, ltm.Register(ltm.AgentControl, s, "a", "s1", hook.NewChain(), tk))

	names := make(map[string]bool)
	for _, d := range tk.Definitions() {
		names[d.Name] = true
	}
	require.True(t, names["remember"])
	require.True(t, names["recall"])
}

func TestRegisterStaticControlInjectsSystemMessage(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, "a", "s1", []ltm.Record{{ID: "r1", Text: "likes tea"}}))

	chain := hook.NewChain()
	require.NoError(t, ltm.Register(ltm.StaticControl, s, "a", "s1", chain, tool.NewToolkit()))

	ev := &hook.Event{
		Kind:          hook.KindPreReasoning,
		InputMessages: []*message.Message{message.New("u1", message.RoleUser, message.NewText("likes tea"))},
	}
	out, err := chain.Dispatch(ev)
	require.NoError(t, err)
	require.Len(t, out.InputMessages, 2)
	require.Equal(t, message.RoleSystem, out.InputMessages[0].Role)
	require.Contains(t, out.InputMessages[0].Text(), "long_term_memory")
}

func TestRegisterUnknownModeErrors(t *testing.T) {
	s := newStore(t)
	err := ltm.Register(ltm.Mode(99), s, "a", "s1", hook.NewChain(), tool.NewToolkit())
	require.ErrorIs(t, err, ltm.ErrUnknownMode)
}
