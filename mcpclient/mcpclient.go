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

// Package mcpclient adapts a Model Context Protocol server into the agent
// core's tool.ExternalToolServer collaborator interface (C5's MCP row),
// supporting stdio, SSE, and streamable-HTTP transports via mark3labs/mcp-go.
package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/agentcore/message"
	"github.com/kadirpekel/agentcore/tool"
)

// Transport selects how Server reaches the MCP server process.
type Transport string

const (
	TransportStdio          Transport = "stdio"
	TransportSSE            Transport = "sse"
	TransportStreamableHTTP Transport = "streamable-http"
)

// Config configures one MCP server connection.
type Config struct {
	Name      string
	Transport Transport

	// Command/Args/Env apply to TransportStdio.
	Command string
	Args    []string
	Env     map[string]string

	// URL applies to TransportSSE and TransportStreamableHTTP.
	URL string

	// Filter limits which tool names are exposed; empty means all.
	Filter []string
}

const (
	clientName      = "agentcore"
	clientVersion   = "0.1.0"
	protocolVersion = "2024-11-05"
)

// Server is a lazily-connected MCP server implementing
// tool.ExternalToolServer. The underlying connection is established on the
// first ListTools call and reused thereafter; every ListTools call asks the
// server for its current tool list.
type Server struct {
	cfg       Config
	filterSet map[string]bool

	mu        sync.Mutex
	client    *client.Client
	connected bool
}

// New validates cfg and returns an unconnected Server.
func New(cfg Config) (*Server, error) {
	if cfg.Transport == TransportStdio && cfg.Command == "" {
		return nil, fmt.Errorf("mcpclient: command is required for stdio transport")
	}
	if cfg.Transport != TransportStdio && cfg.URL == "" {
		return nil, fmt.Errorf("mcpclient: url is required for %s transport", cfg.Transport)
	}

	var filterSet map[string]bool
	if len(cfg.Filter) > 0 {
		filterSet = make(map[string]bool, len(cfg.Filter))
		for _, name := range cfg.Filter {
			filterSet[name] = true
		}
	}

	return &Server{cfg: cfg, filterSet: filterSet}, nil
}

// connect establishes and initializes the underlying mcp-go client. Callers
// must hold s.mu.
func (s *Server) connect(ctx context.Context) error {
	if s.connected {
		return nil
	}

	c, err := s.dial()
	if err != nil {
		return fmt.Errorf("mcpclient: dial %s: %w", s.cfg.Name, err)
	}

	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("mcpclient: start %s: %w", s.cfg.Name, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: clientVersion}
	initReq.Params.ProtocolVersion = protocolVersion

	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		return fmt.Errorf("mcpclient: initialize %s: %w", s.cfg.Name, err)
	}

	s.client = c
	s.connected = true
	return nil
}

func (s *Server) dial() (*client.Client, error) {
	switch s.cfg.Transport {
	case TransportSSE:
		return client.NewSSEMCPClient(s.cfg.URL)
	case TransportStreamableHTTP:
		return client.NewStreamableHttpClient(s.cfg.URL)
	default:
		return client.NewStdioMCPClient(s.cfg.Command, s.convertEnv(), s.cfg.Args...)
	}
}

func (s *Server) convertEnv() []string {
	if len(s.cfg.Env) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.cfg.Env))
	for k, v := range s.cfg.Env {
		out = append(out, k+"="+v)
	}
	return out
}

// ListTools connects lazily, then returns the server's tool definitions,
// applying cfg.Filter.
func (s *Server) ListTools(ctx context.Context) ([]tool.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	resp, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcpclient: list tools on %s: %w", s.cfg.Name, err)
	}

	defs := make([]tool.Definition, 0, len(resp.Tools))
	for _, t := range resp.Tools {
		if s.filterSet != nil && !s.filterSet[t.Name] {
			continue
		}
		defs = append(defs, tool.Definition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  ConvertToolInputSchema(t.InputSchema),
		})
	}
	return defs, nil
}

// ConvertToolInputSchema round-trips an MCP tool's input schema through JSON
// into an invopop/jsonschema.Schema, since both shapes are standard JSON
// Schema and the teacher's own functiontool/schema.go does the same
// conversion (via json.Marshal/Unmarshal) in the opposite direction. A
// schema that fails to marshal or decode is dropped rather than advertised
// as malformed.
func ConvertToolInputSchema(schema mcp.ToolInputSchema) *jsonschema.Schema {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil
	}

	out := &jsonschema.Schema{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil
	}
	return out
}

// CallTool invokes name on the connected server and converts its content
// blocks into message.Block values.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) ([]message.Block, error) {
	s.mu.Lock()
	c := s.client
	s.mu.Unlock()

	if c == nil {
		return nil, fmt.Errorf("mcpclient: %s not connected", s.cfg.Name)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	resp, err := c.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("mcpclient: call %s on %s: %w", name, s.cfg.Name, err)
	}

	if resp.IsError {
		msg := "unknown error"
		for _, content := range resp.Content {
			if tc, ok := content.(mcp.TextContent); ok {
				msg = tc.Text
				break
			}
		}
		return []message.Block{message.NewText("error: " + msg)}, nil
	}

	blocks := make([]message.Block, 0, len(resp.Content))
	for _, content := range resp.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			blocks = append(blocks, message.NewText(tc.Text))
		}
	}
	if len(blocks) == 0 {
		blocks = append(blocks, message.NewText(""))
	}
	return blocks, nil
}

// Close releases the underlying connection, if any.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	s.connected = false
	return err
}

var _ tool.ExternalToolServer = (*Server)(nil)
