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

package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/session"
)

func TestMemoryStoreSaveAndGetRoundTrip(t *testing.T) {
	s := session.NewMemoryStore()
	require.NoError(t, s.Save("sess-1", "k", "v"))

	v, ok, err := s.Get("sess-1", "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestMemoryStoreGetMissingKeyIsNotFound(t *testing.T) {
	s := session.NewMemoryStore()
	_, ok, err := s.Get("sess-1", "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreBlankKeyErrors(t *testing.T) {
	s := session.NewMemoryStore()
	require.ErrorIs(t, s.Save("", "k", "v"), session.ErrBlankKey)

	_, _, err := s.Get("", "k")
	require.ErrorIs(t, err, session.ErrBlankKey)
}

func TestMemoryStoreSaveListReplacesAndCopies(t *testing.T) {
	s := session.NewMemoryStore()
	original := []session.StateValue{"a", "b"}
	require.NoError(t, s.SaveList("sess-1", "list", original))

	original[0] = "mutated"
	got, err := s.GetList("sess-1", "list")
	require.NoError(t, err)
	require.Equal(t, []session.StateValue{"a", "b"}, got)
}

func TestMemoryStoreGetListMissingReturnsEmptyNotNil(t *testing.T) {
	s := session.NewMemoryStore()
	got, err := s.GetList("sess-1", "missing")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestMemoryStoreExistsDistinguishesScalarAndAbsent(t *testing.T) {
	s := session.NewMemoryStore()
	require.NoError(t, s.Save("sess-1", "k", 1))

	ok, err := s.Exists("sess-1", "k")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Exists("sess-1", "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreDeleteRemovesEntry(t *testing.T) {
	s := session.NewMemoryStore()
	require.NoError(t, s.Save("sess-1", "k", 1))
	require.NoError(t, s.Delete("sess-1", "k"))

	ok, err := s.Exists("sess-1", "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreListSessionKeysReturnsAllKeys(t *testing.T) {
	s := session.NewMemoryStore()
	require.NoError(t, s.Save("sess-1", "k", 1))
	require.NoError(t, s.Save("sess-2", "k", 2))

	keys, err := s.ListSessionKeys()
	require.NoError(t, err)
	require.ElementsMatch(t, []session.Key{"sess-1", "sess-2"}, keys)
}

func TestErrPersistenceUnwrap(t *testing.T) {
	cause := session.ErrBlankKey
	err := &session.ErrPersistence{Op: "save", Err: cause}
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "save")
}
