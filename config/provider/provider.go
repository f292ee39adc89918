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

// Package provider defines the config source abstraction: where raw
// configuration bytes come from, and how a caller learns they changed.
// Grounded on hector's pkg/config/provider/provider.go; this module ships
// only the file-backed implementation (the spec's Non-goals exclude a
// distributed config store), but the interface leaves room for one.
package provider

import (
	"context"
	"fmt"
)

// Type identifies the config source type.
type Type string

const (
	TypeFile Type = "file"
)

// Provider abstracts a config source. Implementations must be safe for
// concurrent use.
type Provider interface {
	// Type returns the provider type, for logging.
	Type() Type
	// Load reads raw config bytes from the source.
	Load(ctx context.Context) ([]byte, error)
	// Watch starts watching for changes, signalling via the returned
	// channel. Returns a nil channel if the provider doesn't support
	// watching. Cancel ctx to stop watching.
	Watch(ctx context.Context) (<-chan struct{}, error)
	// Close releases resources held by the provider.
	Close() error
}

// Config configures provider creation.
type Config struct {
	Type Type
	Path string
}

// New builds a Provider from cfg.
func New(cfg Config) (Provider, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("config: path is required")
	}
	switch cfg.Type {
	case TypeFile, "":
		return NewFileProvider(cfg.Path)
	default:
		return nil, fmt.Errorf("config: unknown provider type %q", cfg.Type)
	}
}
