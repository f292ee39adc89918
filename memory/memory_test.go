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

package memory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/memory"
	"github.com/kadirpekel/agentcore/message"
	"github.com/kadirpekel/agentcore/session"
)

func TestAddDeleteClear(t *testing.T) {
	m := memory.New()
	m.AddMessage(message.New("m1", message.RoleUser, message.NewText("hi")))
	m.AddMessage(message.New("m2", message.RoleAssistant, message.NewText("hello")))

	require.Len(t, m.GetMessages(), 2)

	m.DeleteMessage(0)
	msgs := m.GetMessages()
	require.Len(t, msgs, 1)
	require.Equal(t, "m2", msgs[0].ID)

	// Out-of-range delete is a silent no-op.
	m.DeleteMessage(5)
	require.Len(t, m.GetMessages(), 1)

	m.Clear()
	require.Empty(t, m.GetMessages())
	require.NotNil(t, m.GetMessages())
}

// TestSaveLoadRoundTripMemoryStore verifies spec property 15 against the
// in-memory store, where values pass through unchanged.
func TestSaveLoadRoundTripMemoryStore(t *testing.T) {
	store := session.NewMemoryStore()
	key := session.Key("s1")

	m := memory.New()
	require.NoError(t, m.SaveTo(store, key)) // empty memory still saves

	reloaded := memory.New()
	require.NoError(t, reloaded.LoadFrom(store, key))
	require.Empty(t, reloaded.GetMessages())

	m.AddMessage(message.New("m1", message.RoleUser, message.NewText("hi")))
	m.AddMessage(message.New("m2", message.RoleAssistant, message.NewText("hello")))
	require.NoError(t, m.SaveTo(store, key))

	require.NoError(t, reloaded.LoadFrom(store, key))
	got := reloaded.GetMessages()
	require.Len(t, got, 2)
	require.Equal(t, "hi", got[0].Text())
	require.Equal(t, "hello", got[1].Text())
}

// TestSaveLoadRoundTripFileStore exercises the JSON envelope encoding path
// (message.Message's MarshalJSON/UnmarshalJSON) via the on-disk store.
func TestSaveLoadRoundTripFileStore(t *testing.T) {
	store, err := session.NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	key := session.Key("s1")

	m := memory.New()
	m.AddMessage(message.New("m1", message.RoleUser, message.NewText("hi")))
	toolUse := message.NewToolUse("t1", "weather", map[string]any{"city": "Beijing"}, `{"city":"Beijing"}`)
	m.AddMessage(message.New("m2", message.RoleAssistant, toolUse))
	require.NoError(t, m.SaveTo(store, key))

	reloaded := memory.New()
	require.NoError(t, reloaded.LoadFrom(store, key))

	got := reloaded.GetMessages()
	require.Len(t, got, 2)
	require.Equal(t, "hi", got[0].Text())
	require.Len(t, got[1].ToolUses(), 1)
	require.Equal(t, "weather", got[1].ToolUses()[0].Name)
	require.Equal(t, "Beijing", got[1].ToolUses()[0].Input["city"])
}
