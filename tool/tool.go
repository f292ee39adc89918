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

// Package tool defines the native and external tool interfaces the agent
// core invokes, and the Toolkit that registers, isolates, and executes them.
package tool

import (
	"context"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/kadirpekel/agentcore/message"
)

// Definition describes a tool's name, description, and JSON-schema
// parameters to a model provider.
type Definition struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// NativeTool is an in-process callable tool. Implementations must never
// panic; Execute wraps any returned error into a ToolResult error block
// rather than propagating it.
type NativeTool interface {
	Definition() Definition
	Call(ctx context.Context, args map[string]any) (string, error)
}

// ExternalToolServer is the MCP-like collaborator interface for a remote
// tool server (stdio, SSE, or streamable-HTTP transport).
type ExternalToolServer interface {
	ListTools(ctx context.Context) ([]Definition, error)
	CallTool(ctx context.Context, name string, args map[string]any) ([]message.Block, error)
}

// ToolError reports a tool's own failure. Toolkit.Execute neither returns
// nor records it: Execute always surfaces failures as a ToolResult error
// text block.
type ToolError struct {
	ToolName string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q: %v", e.ToolName, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Toolkit registers native tools and external tool servers, and executes
// ToolUse blocks against them.
type Toolkit struct {
	native      map[string]NativeTool
	nativeOrder []string

	servers       []ExternalToolServer
	external      map[string]ExternalToolServer
	externalDefs  map[string]Definition
	externalOrder []string
}

// NewToolkit creates an empty toolkit.
func NewToolkit() *Toolkit {
	return &Toolkit{
		native:       make(map[string]NativeTool),
		external:     make(map[string]ExternalToolServer),
		externalDefs: make(map[string]Definition),
	}
}

// RegisterNative adds a native tool, keyed by its definition name.
func (tk *Toolkit) RegisterNative(t NativeTool) {
	name := t.Definition().Name
	if _, exists := tk.native[name]; !exists {
		tk.nativeOrder = append(tk.nativeOrder, name)
	}
	tk.native[name] = t
}

// RegisterExternal lists an external tool server's tools and binds each one
// to that server for subsequent execution, keeping the full Definition
// (description and parameter schema) ListTools returned so Definitions()
// can advertise it to the model verbatim. Bootstrapping failure here is
// fatal to the owning agent call (spec: "Registration is async and fails
// the agent call if bootstrapping fails").
func (tk *Toolkit) RegisterExternal(ctx context.Context, server ExternalToolServer) error {
	defs, err := server.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("tool: register external server: %w", err)
	}
	tk.servers = append(tk.servers, server)
	for _, d := range defs {
		if _, exists := tk.external[d.Name]; !exists {
			tk.externalOrder = append(tk.externalOrder, d.Name)
		}
		tk.external[d.Name] = server
		tk.externalDefs[d.Name] = d
	}
	return nil
}

// Definitions returns every registered tool's Definition, native tools
// first in registration order, followed by external tools in the order
// their servers listed them.
func (tk *Toolkit) Definitions() []Definition {
	out := make([]Definition, 0, len(tk.nativeOrder)+len(tk.externalOrder))
	for _, name := range tk.nativeOrder {
		out = append(out, tk.native[name].Definition())
	}
	for _, name := range tk.externalOrder {
		out = append(out, tk.externalDefs[name])
	}
	return out
}

// Copy returns an independent toolkit for session isolation. The returned
// toolkit shares the same underlying tool and server implementations but
// has its own registration maps, so registering a tool on the copy never
// affects the original.
func (tk *Toolkit) Copy() *Toolkit {
	cp := NewToolkit()
	cp.nativeOrder = append([]string(nil), tk.nativeOrder...)
	for name, t := range tk.native {
		cp.native[name] = t
	}
	cp.servers = append([]ExternalToolServer(nil), tk.servers...)
	cp.externalOrder = append([]string(nil), tk.externalOrder...)
	for name, s := range tk.external {
		cp.external[name] = s
	}
	for name, d := range tk.externalDefs {
		cp.externalDefs[name] = d
	}
	return cp
}

// Execute runs one tool call and returns its ToolResult block. Native tool
// errors and unresolvable names are converted to an error text block inside
// the returned ToolResult; external tool server errors are surfaced
// verbatim inside the text block the same way.
func (tk *Toolkit) Execute(ctx context.Context, use message.ToolUse) message.Block {
	if t, ok := tk.native[use.Name]; ok {
		out, err := t.Call(ctx, use.Input)
		if err != nil {
			return message.NewToolResult(use.ID, use.Name, message.NewText("error: "+err.Error()))
		}
		return message.NewToolResult(use.ID, use.Name, message.NewText(out))
	}

	if s, ok := tk.external[use.Name]; ok {
		blocks, err := s.CallTool(ctx, use.Name, use.Input)
		if err != nil {
			return message.NewToolResult(use.ID, use.Name, message.NewText(err.Error()))
		}
		return message.ToolResult{ID: use.ID, Name: use.Name, Output: blocks}
	}

	return message.NewToolResult(use.ID, use.Name, message.NewText("error: unknown tool "+use.Name))
}
