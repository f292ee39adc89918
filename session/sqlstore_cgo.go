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

//go:build cgo

package session

// The cgo build imports mattn/go-sqlite3 for its *database/sql* driver
// registration side effect, matching hector's own dual-driver approach
// (pkg/memory/session_service_sql.go, pkg/databases) of letting the build
// tag pick between the CGO-backed driver and the pure-Go modernc.org/sqlite
// fallback in sqlstore_nocgo.go.
import _ "github.com/mattn/go-sqlite3"

const sqliteDriverName = "sqlite3"
