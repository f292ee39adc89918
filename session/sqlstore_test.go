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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/session"
)

func openTestSQLStore(t *testing.T) *session.SQLStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := session.OpenSQLStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestSQLStoreSaveAndGetRoundTrip(t *testing.T) {
	s := openTestSQLStore(t)
	require.NoError(t, s.Save("sess-1", "k", "v"))

	v, ok, err := s.Get("sess-1", "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestSQLStoreSaveUpsertsExistingScalar(t *testing.T) {
	s := openTestSQLStore(t)
	require.NoError(t, s.Save("sess-1", "k", "v1"))
	require.NoError(t, s.Save("sess-1", "k", "v2"))

	v, ok, err := s.Get("sess-1", "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", v)
}

func TestSQLStoreSaveListAppendsWhenUnchangedPrefix(t *testing.T) {
	s := openTestSQLStore(t)
	require.NoError(t, s.SaveList("sess-1", "list", []session.StateValue{"a", "b"}))
	require.NoError(t, s.SaveList("sess-1", "list", []session.StateValue{"a", "b", "c"}))

	got, err := s.GetList("sess-1", "list")
	require.NoError(t, err)
	require.Equal(t, []session.StateValue{"a", "b", "c"}, got)
}

func TestSQLStoreSaveListRewritesWhenPrefixChanges(t *testing.T) {
	s := openTestSQLStore(t)
	require.NoError(t, s.SaveList("sess-1", "list", []session.StateValue{"a", "b"}))
	require.NoError(t, s.SaveList("sess-1", "list", []session.StateValue{"x", "y", "z"}))

	got, err := s.GetList("sess-1", "list")
	require.NoError(t, err)
	require.Equal(t, []session.StateValue{"x", "y", "z"}, got)
}

func TestSQLStoreGetListMissingReturnsEmpty(t *testing.T) {
	s := openTestSQLStore(t)
	got, err := s.GetList("sess-1", "missing")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSQLStoreExistsChecksScalarsAndLists(t *testing.T) {
	s := openTestSQLStore(t)
	require.NoError(t, s.Save("sess-1", "scalar", 1))
	require.NoError(t, s.SaveList("sess-1", "list", []session.StateValue{"a"}))

	ok, err := s.Exists("sess-1", "scalar")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Exists("sess-1", "list")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Exists("sess-1", "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSQLStoreDeleteRemovesScalarAndList(t *testing.T) {
	s := openTestSQLStore(t)
	require.NoError(t, s.Save("sess-1", "k", 1))
	require.NoError(t, s.SaveList("sess-1", "list", []session.StateValue{"a"}))

	require.NoError(t, s.Delete("sess-1", "k"))
	require.NoError(t, s.Delete("sess-1", "list"))

	ok, err := s.Exists("sess-1", "k")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.Exists("sess-1", "list")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSQLStoreListSessionKeysCoversScalarAndListOnlySessions(t *testing.T) {
	s := openTestSQLStore(t)
	require.NoError(t, s.Save("sess-1", "k", 1))
	require.NoError(t, s.SaveList("sess-2", "list", []session.StateValue{"a"}))

	keys, err := s.ListSessionKeys()
	require.NoError(t, err)
	require.ElementsMatch(t, []session.Key{"sess-1", "sess-2"}, keys)
}

func TestSQLStoreBlankKeyErrors(t *testing.T) {
	s := openTestSQLStore(t)
	require.ErrorIs(t, s.Save("", "k", "v"), session.ErrBlankKey)
}
