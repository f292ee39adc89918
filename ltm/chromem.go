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

package ltm

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemStore implements Store using chromem-go for embedded,
// single-process vector storage — no external services required.
type ChromemStore struct {
	db         *chromem.DB
	embedder   Embedder
	collection string

	mu          sync.Mutex
	collections map[string]*chromem.Collection
}

// ChromemConfig configures a ChromemStore.
type ChromemConfig struct {
	// Embedder generates the vectors used for similarity search (required).
	Embedder Embedder

	// PersistPath enables gob file persistence; empty means in-memory only.
	PersistPath string

	// CollectionName defaults to "agentcore_ltm".
	CollectionName string
}

// NewChromemStore creates a chromem-backed Store.
func NewChromemStore(cfg ChromemConfig) (*ChromemStore, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("ltm: embedder is required")
	}

	collectionName := cfg.CollectionName
	if collectionName == "" {
		collectionName = "agentcore_ltm"
	}

	var db *chromem.DB
	if cfg.PersistPath != "" {
		var err error
		db, err = chromem.NewPersistentDB(cfg.PersistPath, false)
		if err != nil {
			return nil, fmt.Errorf("ltm: open persistent db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	return &ChromemStore{
		db:          db,
		embedder:    cfg.Embedder,
		collection:  collectionName,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// identityEmbed is registered as the collection's embedding function but
// never invoked: ChromemStore always precomputes embeddings itself via its
// configured Embedder before calling into chromem, so query text already
// arrives as a vector.
func identityEmbed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("ltm: chromem embedding func invoked unexpectedly")
}

func (s *ChromemStore) getCollection() (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[s.collection]; ok {
		return col, nil
	}
	col, err := s.db.GetOrCreateCollection(s.collection, nil, identityEmbed)
	if err != nil {
		return nil, fmt.Errorf("ltm: get/create collection: %w", err)
	}
	s.collections[s.collection] = col
	return col, nil
}

// Record embeds and upserts each record, scoped by AgentID/SessionID.
func (s *ChromemStore) Record(ctx context.Context, agentID, sessionID string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	col, err := s.getCollection()
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, 0, len(records))
	for _, r := range records {
		vec, err := s.embedder.Embed(ctx, r.Text)
		if err != nil {
			return fmt.Errorf("ltm: embed record %q: %w", r.ID, err)
		}

		meta := map[string]string{"agent_id": agentID, "session_id": sessionID}
		for k, v := range r.Metadata {
			meta[k] = v
		}

		docs = append(docs, chromem.Document{
			ID:        scopedID(agentID, sessionID, r.ID),
			Content:   r.Text,
			Metadata:  meta,
			Embedding: vec,
		})
	}

	if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("ltm: add documents: %w", err)
	}
	return nil
}

// Retrieve embeds query and returns the most similar records scoped to
// agentID and sessionID.
func (s *ChromemStore) Retrieve(ctx context.Context, agentID, sessionID, query string, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}

	col, err := s.getCollection()
	if err != nil {
		return nil, err
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ltm: embed query: %w", err)
	}

	where := map[string]string{"agent_id": agentID, "session_id": sessionID}

	n := limit
	if count := col.Count(); count < n {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, vec, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("ltm: query: %w", err)
	}

	out := make([]Record, 0, len(results))
	for _, r := range results {
		out = append(out, Record{
			ID:        r.ID,
			AgentID:   agentID,
			SessionID: sessionID,
			Text:      r.Content,
			Metadata:  r.Metadata,
		})
	}
	return out, nil
}

// Clear removes every record scoped to agentID and sessionID.
func (s *ChromemStore) Clear(ctx context.Context, agentID, sessionID string) error {
	col, err := s.getCollection()
	if err != nil {
		return err
	}

	where := map[string]string{"agent_id": agentID, "session_id": sessionID}
	if err := col.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("ltm: delete: %w", err)
	}
	return nil
}

// Name identifies this Store implementation.
func (s *ChromemStore) Name() string { return "chromem" }

func scopedID(agentID, sessionID, id string) string {
	return agentID + ":" + sessionID + ":" + id
}

var _ Store = (*ChromemStore)(nil)
