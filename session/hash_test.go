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
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/session"
)

func toStateValues(items ...string) []session.StateValue {
	out := make([]session.StateValue, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}

// TestListHashSmallStable verifies spec property 13: for n <= 5, hashing is
// stable under no change and differs under any in-place element change.
func TestListHashSmallStable(t *testing.T) {
	list := toStateValues("a", "b", "c")
	h1 := session.ListHash(list)
	h2 := session.ListHash(toStateValues("a", "b", "c"))
	require.Equal(t, h1, h2)

	mutated := toStateValues("a", "X", "c")
	require.NotEqual(t, h1, session.ListHash(mutated))
}

// TestListHashLargeSampledIndices verifies spec property 14: for large
// lists, a change outside the sampled indices leaves the hash unchanged,
// and a change to a sampled index changes it.
func TestListHashLargeSampledIndices(t *testing.T) {
	n := 100
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("item-%d", i)
	}

	base := toStateValues(items...)
	h1 := session.ListHash(base)

	// Mutate an unsampled index (sampled: 0, 25, 50, 75, 99).
	unsampled := append([]string(nil), items...)
	unsampled[10] = "mutated"
	require.Equal(t, h1, session.ListHash(toStateValues(unsampled...)))

	sampled := append([]string(nil), items...)
	sampled[50] = "mutated"
	require.NotEqual(t, h1, session.ListHash(toStateValues(sampled...)))
}
