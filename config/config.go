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

// Package config loads the agent runtime's static configuration: model
// provider settings, the tool/MCP-server roster, long-term-memory wiring
// mode, and telemetry, grounded on hector's pkg/config/{loader,config}.go.
package config

import "time"

// Config is the agent runtime's top-level configuration document.
type Config struct {
	Agent     AgentConfig     `yaml:"agent" mapstructure:"agent"`
	Model     ModelConfig     `yaml:"model" mapstructure:"model"`
	LTM       LTMConfig       `yaml:"ltm" mapstructure:"ltm"`
	MCP       []MCPConfig     `yaml:"mcp" mapstructure:"mcp"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// AgentConfig names and scopes one agent instance.
type AgentConfig struct {
	Name           string `yaml:"name" mapstructure:"name"`
	SystemPrompt   string `yaml:"system_prompt" mapstructure:"system_prompt"`
	MaxTurns       int    `yaml:"max_turns" mapstructure:"max_turns"`
	MaxParallelism int    `yaml:"max_parallelism" mapstructure:"max_parallelism"`
}

// ModelConfig selects and configures the reasoning model backend.
type ModelConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"`
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Temperature *float64      `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LTMConfig configures long-term memory wiring.
type LTMConfig struct {
	Enabled        bool   `yaml:"enabled" mapstructure:"enabled"`
	Mode           string `yaml:"mode" mapstructure:"mode"`
	PersistPath    string `yaml:"persist_path" mapstructure:"persist_path"`
	CollectionName string `yaml:"collection_name" mapstructure:"collection_name"`
}

// MCPConfig configures one external MCP tool server.
type MCPConfig struct {
	Name      string            `yaml:"name" mapstructure:"name"`
	Transport string            `yaml:"transport" mapstructure:"transport"`
	Command   string            `yaml:"command" mapstructure:"command"`
	Args      []string          `yaml:"args" mapstructure:"args"`
	Env       map[string]string `yaml:"env" mapstructure:"env"`
	URL       string            `yaml:"url" mapstructure:"url"`
}

// TelemetryConfig configures tracing and metrics.
type TelemetryConfig struct {
	TracingEnabled bool    `yaml:"tracing_enabled" mapstructure:"tracing_enabled"`
	TraceEndpoint  string  `yaml:"trace_endpoint" mapstructure:"trace_endpoint"`
	SamplingRate   float64 `yaml:"sampling_rate" mapstructure:"sampling_rate"`
	MetricsEnabled bool    `yaml:"metrics_enabled" mapstructure:"metrics_enabled"`
	MetricsNS      string  `yaml:"metrics_namespace" mapstructure:"metrics_namespace"`
}

// LoggingConfig configures the default logger.
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// SetDefaults fills in zero-valued fields with the runtime's defaults.
func (c *Config) SetDefaults() {
	if c.Agent.MaxTurns == 0 {
		c.Agent.MaxTurns = 25
	}
	if c.Agent.MaxParallelism == 0 {
		c.Agent.MaxParallelism = 4
	}
	if c.Model.MaxTokens == 0 {
		c.Model.MaxTokens = 4096
	}
	if c.Model.Timeout == 0 {
		c.Model.Timeout = 120 * time.Second
	}
	if c.LTM.Mode == "" {
		c.LTM.Mode = "agent_control"
	}
	if c.LTM.CollectionName == "" {
		c.LTM.CollectionName = "long_term_memory"
	}
	if c.Telemetry.SamplingRate == 0 {
		c.Telemetry.SamplingRate = 1.0
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the config for required fields and internally consistent
// values.
func (c *Config) Validate() error {
	if c.Agent.Name == "" {
		return errRequired("agent.name")
	}
	if c.Model.Provider == "" {
		return errRequired("model.provider")
	}
	for _, m := range c.MCP {
		if m.Name == "" {
			return errRequired("mcp[].name")
		}
	}
	return nil
}

func errRequired(field string) error {
	return &ValidationError{Field: field}
}

// ValidationError reports a missing or invalid config field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "config: " + e.Field + " is required"
}
