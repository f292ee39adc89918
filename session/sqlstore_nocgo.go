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

//go:build !cgo

package session

// Pure-Go fallback driver when CGO is disabled (e.g. cross-compiling, or
// CGO_ENABLED=0 deployments) — modernc.org/sqlite registers itself under
// the "sqlite" database/sql driver name.
import _ "modernc.org/sqlite"

const sqliteDriverName = "sqlite"
