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

package session

import (
	"fmt"
	"hash/fnv"
)

// ListHash computes a cheap fingerprint of a list by sampling a handful of
// indices rather than hashing every element (spec §4.8: "full linear scan
// is avoided intentionally"). For n <= 5 every index is sampled; otherwise
// {0, n/4, n/2, 3n/4, n-1}. The result is the hex FNV-1a 64-bit hash of the
// string "size:<n>;<i>:<hash(items[i])>,...".
//
// stdlib hash/fnv is used here, not a third-party hashing library: none of
// the example pack's dependencies expose a non-cryptographic string hash
// primitive, and FNV is the idiomatic Go stdlib choice for this (see
// DESIGN.md).
func ListHash(items []StateValue) string {
	n := len(items)

	indices := sampleIndices(n)

	h := fnv.New64a()
	fmt.Fprintf(h, "size:%d;", n)
	for _, i := range indices {
		fmt.Fprintf(h, "%d:%s,", i, hashItem(items[i]))
	}

	return fmt.Sprintf("%x", h.Sum64())
}

func sampleIndices(n int) []int {
	if n == 0 {
		return nil
	}
	if n <= 5 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	// Dedup while preserving ascending order: small n can make these
	// quarter-points collide (e.g. n=4 -> n/4=1, n/2=2, 3n/4=3), but at
	// n>5 this set is unique by construction.
	seen := make(map[int]bool, 5)
	var idx []int
	for _, i := range []int{0, n / 4, n / 2, 3 * n / 4, n - 1} {
		if !seen[i] {
			seen[i] = true
			idx = append(idx, i)
		}
	}
	return idx
}

func hashItem(v StateValue) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%#v", v)
	return fmt.Sprintf("%x", h.Sum64())
}
