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

// Package ltm provides pluggable long-term (semantic) memory for an agent,
// isolated by agent ID and session ID, and two wiring strategies into the
// ReAct loop: STATIC_CONTROL (a PreReasoning hook injecting retrieved
// context automatically) and AGENT_CONTROL (native tools the model calls
// explicitly). Mode BOTH registers both.
package ltm

import (
	"context"
	"fmt"
)

// Record is one item of long-term memory.
type Record struct {
	ID        string
	AgentID   string
	SessionID string
	Text      string
	Metadata  map[string]string
}

// Embedder turns text into a vector for semantic similarity search.
// Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the long-term memory collaborator. Implementations must isolate
// by both AgentID and SessionID.
type Store interface {
	// Record adds records to long-term memory.
	Record(ctx context.Context, agentID, sessionID string, records []Record) error

	// Retrieve returns the records most semantically relevant to query,
	// scoped to agentID and sessionID, at most limit results.
	Retrieve(ctx context.Context, agentID, sessionID, query string, limit int) ([]Record, error)

	// Clear removes all records for agentID and sessionID.
	Clear(ctx context.Context, agentID, sessionID string) error

	// Name identifies the store implementation.
	Name() string
}

// Mode selects how a Store is wired into an agent's reasoning loop.
type Mode int

const (
	// AgentControl exposes "remember" and "recall" as native tools the
	// model calls explicitly.
	AgentControl Mode = iota
	// StaticControl injects retrieved context automatically via a
	// PreReasoning hook, with no model involvement.
	StaticControl
	// Both registers the AgentControl tools and the StaticControl hook.
	Both
)

// ErrUnknownMode reports an invalid Mode value.
var ErrUnknownMode = fmt.Errorf("ltm: unknown mode")
