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

package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/config"
	"github.com/kadirpekel/agentcore/config/provider"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFileAppliesDefaultsAndDecodes(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
agent:
  name: assistant
model:
  provider: openai
  model: gpt-4o
`)

	cfg, loader, err := config.LoadConfigFile(context.Background(), path)
	require.NoError(t, err)
	defer loader.Close()

	require.Equal(t, "assistant", cfg.Agent.Name)
	require.Equal(t, "openai", cfg.Model.Provider)
	require.Equal(t, 25, cfg.Agent.MaxTurns)
	require.Equal(t, 120*time.Second, cfg.Model.Timeout)
	require.Equal(t, "agent_control", cfg.LTM.Mode)
}

func TestLoadConfigFileMissingRequiredFieldErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
model:
  provider: openai
`)

	_, _, err := config.LoadConfigFile(context.Background(), path)
	require.Error(t, err)
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "agent.name", verr.Field)
}

func TestLoadConfigFileExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_MODEL_KEY", "sk-test-123")

	dir := t.TempDir()
	path := writeConfig(t, dir, `
agent:
  name: assistant
model:
  provider: openai
  api_key: ${TEST_MODEL_KEY}
`)

	cfg, loader, err := config.LoadConfigFile(context.Background(), path)
	require.NoError(t, err)
	defer loader.Close()

	require.Equal(t, "sk-test-123", cfg.Model.APIKey)
}

func TestLoadConfigFileEnvVarDefaultFallback(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
agent:
  name: assistant
model:
  provider: openai
  base_url: ${TEST_UNSET_BASE_URL:-https://api.openai.com/v1}
`)

	cfg, loader, err := config.LoadConfigFile(context.Background(), path)
	require.NoError(t, err)
	defer loader.Close()

	require.Equal(t, "https://api.openai.com/v1", cfg.Model.BaseURL)
}

func TestWatchReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
agent:
  name: assistant
model:
  provider: openai
`)

	p, err := provider.New(provider.Config{Type: provider.TypeFile, Path: path})
	require.NoError(t, err)

	reloaded := make(chan *config.Config, 1)
	loader := config.NewLoader(p, config.WithOnChange(func(c *config.Config) {
		reloaded <- c
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go loader.Watch(ctx)

	time.Sleep(50 * time.Millisecond)
	writeConfig(t, dir, `
agent:
  name: assistant-v2
model:
  provider: openai
`)

	select {
	case cfg := <-reloaded:
		require.Equal(t, "assistant-v2", cfg.Agent.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
