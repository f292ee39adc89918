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

// Package memory is the in-process, append-only message log the ReAct loop
// reads and writes every turn (spec component C4), grounded on hector's
// pkg/agent/history message-log semantics and pkg/session session-key
// persistence conventions, generalized to the spec's opaque session.Key.
package memory

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kadirpekel/agentcore/message"
	"github.com/kadirpekel/agentcore/session"
)

// key under which the full message list is persisted.
const sessionStateKey = "memory_messages"

// Memory is the message-log contract the agent core depends on.
type Memory interface {
	AddMessage(msg *message.Message)
	GetMessages() []*message.Message
	DeleteMessage(index int)
	Clear()
	SaveTo(store session.Store, key session.Key) error
	LoadFrom(store session.Store, key session.Key) error
}

// InMemory is a copy-on-write message log: reads take a snapshot of the
// current slice header without copying backing data, writes replace the
// whole slice under a mutex. This makes GetMessages safe to call
// concurrently with AddMessage without a data race, per spec §4.4 ("safe
// for concurrent reads and single-threaded writes, or copy-on-write").
type InMemory struct {
	mu       sync.Mutex
	messages []*message.Message
}

// New creates an empty in-process memory log.
func New() *InMemory {
	return &InMemory{}
}

func (m *InMemory) AddMessage(msg *message.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := make([]*message.Message, len(m.messages)+1)
	copy(next, m.messages)
	next[len(m.messages)] = msg
	m.messages = next
}

// GetMessages returns a snapshot of the current message list. It never
// returns nil.
func (m *InMemory) GetMessages() []*message.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.messages == nil {
		return []*message.Message{}
	}
	return m.messages
}

// DeleteMessage removes the message at index. An out-of-range index is a
// silent no-op, per spec §4.4.
func (m *InMemory) DeleteMessage(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.messages) {
		return
	}
	next := make([]*message.Message, 0, len(m.messages)-1)
	next = append(next, m.messages[:index]...)
	next = append(next, m.messages[index+1:]...)
	m.messages = next
}

func (m *InMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

// SaveTo writes the full message list under session key
// session.Key/"memory_messages". Even an empty list is saved, so a prior
// Clear() is observable after a reload (spec §4.4: "a clear must persist").
func (m *InMemory) SaveTo(store session.Store, key session.Key) error {
	msgs := m.GetMessages()
	list := make([]session.StateValue, len(msgs))
	for i, msg := range msgs {
		list[i] = msg
	}
	return store.SaveList(key, sessionStateKey, list)
}

// LoadFrom replaces the in-memory contents with whatever was persisted
// under session key key.
func (m *InMemory) LoadFrom(store session.Store, key session.Key) error {
	list, err := store.GetList(key, sessionStateKey)
	if err != nil {
		return err
	}

	msgs := make([]*message.Message, 0, len(list))
	for _, v := range list {
		msg, err := asMessage(v)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = msgs
	return nil
}

// asMessage recovers a *message.Message from a session.StateValue. A
// MemoryStore hands the original pointer straight back, but an
// append-oriented on-disk store (FileStore, SQLStore) round-trips through
// encoding/json and hands back a generic map[string]any, so that path is
// re-marshaled and decoded through Message's own UnmarshalJSON to restore
// the closed Block sum type.
func asMessage(v session.StateValue) (*message.Message, error) {
	switch t := v.(type) {
	case *message.Message:
		return t, nil
	case message.Message:
		cp := t
		return &cp, nil
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("memory: re-encode stored message: %w", err)
		}
		msg := &message.Message{}
		if err := json.Unmarshal(data, msg); err != nil {
			return nil, fmt.Errorf("memory: decode stored message: %w", err)
		}
		return msg, nil
	}
}

var _ Memory = (*InMemory)(nil)
