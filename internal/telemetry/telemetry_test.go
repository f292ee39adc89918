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

package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/internal/telemetry"
)

func TestNewManagerWithTracingDisabledYieldsUsableNoopTracer(t *testing.T) {
	m, err := telemetry.NewManager(context.Background(), telemetry.Config{ServiceName: "agentcore-test"})
	require.NoError(t, err)
	require.NotNil(t, m.Tracer())
	require.Nil(t, m.Metrics())
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestNewManagerWithMetricsOnExposesMetrics(t *testing.T) {
	m, err := telemetry.NewManager(context.Background(), telemetry.Config{
		ServiceName: "agentcore-test",
		MetricsOn:   true,
		MetricsNS:   "agentcore",
	})
	require.NoError(t, err)
	require.NotNil(t, m.Metrics())
}

func TestObserveReasoningRecordsCallsAndErrors(t *testing.T) {
	m, err := telemetry.NewManager(context.Background(), telemetry.Config{MetricsOn: true, MetricsNS: "t1"})
	require.NoError(t, err)

	metrics := m.Metrics()
	metrics.ObserveReasoning("agent-a", "openai", 0.5, nil)
	metrics.ObserveReasoning("agent-a", "openai", 0.2, errors.New("boom"))

	require.Equal(t, 1, testutil.CollectAndCount(metrics.Registry(), "t1_reasoning_calls_total")) // both calls share one label set
	require.Equal(t, 1, testutil.CollectAndCount(metrics.Registry(), "t1_reasoning_errors_total"))
}

func TestObserveToolCallRecordsDuration(t *testing.T) {
	m, err := telemetry.NewManager(context.Background(), telemetry.Config{MetricsOn: true, MetricsNS: "t2"})
	require.NoError(t, err)

	m.Metrics().ObserveToolCall("search", 0.1, nil)

	require.Equal(t, 1, testutil.CollectAndCount(m.Metrics().Registry(), "t2_tool_calls_total"))
}

func TestObserveLTMRetrieveRecordsCount(t *testing.T) {
	m, err := telemetry.NewManager(context.Background(), telemetry.Config{MetricsOn: true, MetricsNS: "t3"})
	require.NoError(t, err)

	m.Metrics().ObserveLTMRetrieve("agent-a", 3)

	require.Equal(t, 1, testutil.CollectAndCount(m.Metrics().Registry(), "t3_ltm_retrievals_total"))
}
