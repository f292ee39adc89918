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
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
)

// SQLStore is a SQL-backed Store using database/sql, grounded on hector's
// pkg/memory/session_service_sql.go schema approach (one table for scalar
// state, one for ordered list items) generalized from hector's three-part
// session identity down to the spec's single opaque session.Key, and with
// the append-vs-rewrite decision of spec §4.8 applied the same way
// FileStore applies it. The driver is selected by build tag between
// mattn/go-sqlite3 (CGO) and modernc.org/sqlite (pure Go) — see
// sqlstore_cgo.go / sqlstore_nocgo.go.
type SQLStore struct {
	db *sql.DB
	mu sync.Map // Key -> *sync.Mutex, per-session write locking
}

const createSQLSchema = `
CREATE TABLE IF NOT EXISTS agentcore_scalars (
	session_key TEXT NOT NULL,
	state_key   TEXT NOT NULL,
	value_json  TEXT NOT NULL,
	PRIMARY KEY (session_key, state_key)
);

CREATE TABLE IF NOT EXISTS agentcore_list_items (
	session_key TEXT NOT NULL,
	state_key   TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	value_json  TEXT NOT NULL,
	PRIMARY KEY (session_key, state_key, seq)
);

CREATE TABLE IF NOT EXISTS agentcore_list_state (
	session_key TEXT NOT NULL,
	state_key   TEXT NOT NULL,
	last_hash   TEXT NOT NULL,
	stored_count INTEGER NOT NULL,
	PRIMARY KEY (session_key, state_key)
);
`

// OpenSQLStore opens (creating if necessary) a SQLite database at path and
// initializes the schema.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, &ErrPersistence{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(1) // SQLite: serialize writers through a single conn.

	if _, err := db.Exec(createSQLSchema); err != nil {
		db.Close()
		return nil, &ErrPersistence{Op: "init_schema", Err: err}
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) lockFor(sessionKey Key) *sync.Mutex {
	v, _ := s.mu.LoadOrStore(sessionKey, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *SQLStore) Save(sessionKey Key, key string, value StateValue) error {
	if err := validateKey(sessionKey); err != nil {
		return err
	}
	lock := s.lockFor(sessionKey)
	lock.Lock()
	defer lock.Unlock()

	data, err := json.Marshal(value)
	if err != nil {
		return &ErrPersistence{Op: "save", Err: err}
	}

	_, err = s.db.Exec(
		`INSERT INTO agentcore_scalars (session_key, state_key, value_json) VALUES (?, ?, ?)
		 ON CONFLICT(session_key, state_key) DO UPDATE SET value_json = excluded.value_json`,
		string(sessionKey), key, string(data),
	)
	if err != nil {
		return &ErrPersistence{Op: "save", Err: err}
	}
	return nil
}

func (s *SQLStore) SaveList(sessionKey Key, key string, list []StateValue) error {
	if err := validateKey(sessionKey); err != nil {
		return err
	}
	lock := s.lockFor(sessionKey)
	lock.Lock()
	defer lock.Unlock()

	var lastHash string
	var storedCount int
	hasPrior := true
	row := s.db.QueryRow(
		`SELECT last_hash, stored_count FROM agentcore_list_state WHERE session_key = ? AND state_key = ?`,
		string(sessionKey), key,
	)
	if err := row.Scan(&lastHash, &storedCount); err == sql.ErrNoRows {
		hasPrior = false
	} else if err != nil {
		return &ErrPersistence{Op: "save_list", Err: err}
	}

	currentHash := ListHash(list)
	changed := hasPrior && currentHash != lastHash
	shrank := len(list) < storedCount

	tx, err := s.db.Begin()
	if err != nil {
		return &ErrPersistence{Op: "save_list", Err: err}
	}
	defer tx.Rollback()

	if changed || shrank {
		if _, err := tx.Exec(`DELETE FROM agentcore_list_items WHERE session_key = ? AND state_key = ?`, string(sessionKey), key); err != nil {
			return &ErrPersistence{Op: "save_list", Err: err}
		}
		for i, item := range list {
			if err := insertListItem(tx, sessionKey, key, i, item); err != nil {
				return &ErrPersistence{Op: "save_list", Err: err}
			}
		}
	} else {
		for i := storedCount; i < len(list); i++ {
			if err := insertListItem(tx, sessionKey, key, i, list[i]); err != nil {
				return &ErrPersistence{Op: "save_list", Err: err}
			}
		}
	}

	_, err = tx.Exec(
		`INSERT INTO agentcore_list_state (session_key, state_key, last_hash, stored_count) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_key, state_key) DO UPDATE SET last_hash = excluded.last_hash, stored_count = excluded.stored_count`,
		string(sessionKey), key, currentHash, len(list),
	)
	if err != nil {
		return &ErrPersistence{Op: "save_list", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &ErrPersistence{Op: "save_list", Err: err}
	}
	return nil
}

func insertListItem(tx *sql.Tx, sessionKey Key, key string, seq int, item StateValue) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO agentcore_list_items (session_key, state_key, seq, value_json) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_key, state_key, seq) DO UPDATE SET value_json = excluded.value_json`,
		string(sessionKey), key, seq, string(data),
	)
	return err
}

func (s *SQLStore) Get(sessionKey Key, key string) (StateValue, bool, error) {
	if err := validateKey(sessionKey); err != nil {
		return nil, false, err
	}
	var data string
	row := s.db.QueryRow(`SELECT value_json FROM agentcore_scalars WHERE session_key = ? AND state_key = ?`, string(sessionKey), key)
	if err := row.Scan(&data); err == sql.ErrNoRows {
		return nil, false, nil
	} else if err != nil {
		return nil, false, &ErrPersistence{Op: "get", Err: err}
	}
	var v StateValue
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, false, &ErrPersistence{Op: "get", Err: err}
	}
	return v, true, nil
}

func (s *SQLStore) GetList(sessionKey Key, key string) ([]StateValue, error) {
	if err := validateKey(sessionKey); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT value_json FROM agentcore_list_items WHERE session_key = ? AND state_key = ? ORDER BY seq ASC`,
		string(sessionKey), key,
	)
	if err != nil {
		return nil, &ErrPersistence{Op: "get_list", Err: err}
	}
	defer rows.Close()

	out := []StateValue{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, &ErrPersistence{Op: "get_list", Err: err}
		}
		var v StateValue
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, &ErrPersistence{Op: "get_list", Err: fmt.Errorf("decode row: %w", err)}
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &ErrPersistence{Op: "get_list", Err: err}
	}
	return out, nil
}

func (s *SQLStore) Exists(sessionKey Key, key string) (bool, error) {
	if err := validateKey(sessionKey); err != nil {
		return false, err
	}
	var n int
	row := s.db.QueryRow(`SELECT COUNT(*) FROM agentcore_scalars WHERE session_key = ? AND state_key = ?`, string(sessionKey), key)
	if err := row.Scan(&n); err != nil {
		return false, &ErrPersistence{Op: "exists", Err: err}
	}
	if n > 0 {
		return true, nil
	}
	row = s.db.QueryRow(`SELECT COUNT(*) FROM agentcore_list_state WHERE session_key = ? AND state_key = ?`, string(sessionKey), key)
	if err := row.Scan(&n); err != nil {
		return false, &ErrPersistence{Op: "exists", Err: err}
	}
	return n > 0, nil
}

func (s *SQLStore) Delete(sessionKey Key, key string) error {
	if err := validateKey(sessionKey); err != nil {
		return err
	}
	lock := s.lockFor(sessionKey)
	lock.Lock()
	defer lock.Unlock()

	for _, stmt := range []string{
		`DELETE FROM agentcore_scalars WHERE session_key = ? AND state_key = ?`,
		`DELETE FROM agentcore_list_items WHERE session_key = ? AND state_key = ?`,
		`DELETE FROM agentcore_list_state WHERE session_key = ? AND state_key = ?`,
	} {
		if _, err := s.db.Exec(stmt, string(sessionKey), key); err != nil {
			return &ErrPersistence{Op: "delete", Err: err}
		}
	}
	return nil
}

func (s *SQLStore) ListSessionKeys() ([]Key, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT session_key FROM agentcore_scalars
		UNION
		SELECT DISTINCT session_key FROM agentcore_list_state
	`)
	if err != nil {
		return nil, &ErrPersistence{Op: "list_session_keys", Err: err}
	}
	defer rows.Close()

	var out []Key
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, &ErrPersistence{Op: "list_session_keys", Err: err}
		}
		out = append(out, Key(k))
	}
	return out, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLStore)(nil)
