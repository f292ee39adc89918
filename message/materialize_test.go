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
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/message"
)

func TestMaterializeWritesDecodedBytesToFile(t *testing.T) {
	dir := t.TempDir()
	src := message.Base64Source{MediaType: "image/png", Data: []byte{0x89, 0x50, 0x4e, 0x47}}

	path, err := message.Materialize(src, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, src.Data, data)
	require.Contains(t, path, ".png")
}

func TestMaterializeUnknownMediaTypeStillWrites(t *testing.T) {
	dir := t.TempDir()
	src := message.Base64Source{MediaType: "application/x-made-up", Data: []byte{1, 2, 3}}

	path, err := message.Materialize(src, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, src.Data, data)
}
