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

package message_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/message"
)

func roundTrip(t *testing.T, in *message.Message) *message.Message {
	t.Helper()
	data, err := json.Marshal(in)
	require.NoError(t, err)

	out := &message.Message{}
	require.NoError(t, json.Unmarshal(data, out))
	return out
}

func TestJSONRoundTripsTextMessage(t *testing.T) {
	in := message.New("m1", message.RoleAssistant, message.NewText("hello"))
	out := roundTrip(t, in)
	require.Equal(t, "hello", out.Text())
	require.Equal(t, message.RoleAssistant, out.Role)
}

func TestJSONRoundTripsToolUseBlock(t *testing.T) {
	in := message.New("m1", message.RoleAssistant,
		message.NewToolUse("t1", "search", map[string]any{"q": "go"}, `{"q":"go"}`))
	out := roundTrip(t, in)

	uses := out.ToolUses()
	require.Len(t, uses, 1)
	require.Equal(t, "t1", uses[0].ID)
	require.Equal(t, "search", uses[0].Name)
	require.Equal(t, "go", uses[0].Input["q"])
	require.Equal(t, `{"q":"go"}`, uses[0].Content)
}

func TestJSONRoundTripsNestedToolResult(t *testing.T) {
	in := message.New("m1", message.RoleTool,
		message.NewToolResult("t1", "search", message.NewText("3 hits"), message.NewText("more")))
	out := roundTrip(t, in)

	require.Len(t, out.Content, 1)
	tr, ok := out.Content[0].(message.ToolResult)
	require.True(t, ok)
	require.Equal(t, "t1", tr.ID)
	require.Len(t, tr.Output, 2)
	require.Equal(t, message.Text{Text: "3 hits"}, tr.Output[0])
}

func TestJSONRoundTripsImageURLBlock(t *testing.T) {
	in := message.New("m1", message.RoleUser, message.NewImageURL("https://example.com/x.png"))
	out := roundTrip(t, in)

	img, ok := out.Content[0].(message.Image)
	require.True(t, ok)
	require.Equal(t, message.URLSource{URL: "https://example.com/x.png"}, img.Source)
}

func TestJSONRoundTripsImageBase64Block(t *testing.T) {
	in := message.New("m1", message.RoleUser, message.NewImageBase64("image/png", []byte{1, 2, 3}))
	out := roundTrip(t, in)

	img, ok := out.Content[0].(message.Image)
	require.True(t, ok)
	src, ok := img.Source.(message.Base64Source)
	require.True(t, ok)
	require.Equal(t, "image/png", src.MediaType)
	require.Equal(t, []byte{1, 2, 3}, src.Data)
}

func TestJSONPreservesMetadataAndID(t *testing.T) {
	in := message.New("m1", message.RoleAssistant, message.NewText("hi"))
	in.SetMetadata(message.MetaChatUsage, "ignored-by-generic-map-decode")

	out := roundTrip(t, in)
	require.Equal(t, "m1", out.ID)
	require.Contains(t, out.Metadata, message.MetaChatUsage)
}

func TestJSONUnmarshalRejectsUnknownBlockType(t *testing.T) {
	raw := `{"id":"m1","role":"ASSISTANT","content":[{"type":"bogus"}]}`
	out := &message.Message{}
	err := json.Unmarshal([]byte(raw), out)
	require.Error(t, err)
}
