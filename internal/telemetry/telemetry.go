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

// Package telemetry wires OpenTelemetry tracing and Prometheus metrics
// around the agent runtime's suspension points (one reasoning call, one
// tool call, one long-term-memory retrieval), grounded on hector's
// pkg/observability/{manager,metrics,tracer}.go. A Manager built with
// Tracing.Enabled and MetricsOn both false returns a noop tracer and nil
// metrics, so call sites never
// need a nil check beyond what Metrics() already returns.
package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config configures the telemetry Manager.
type Config struct {
	ServiceName string
	Tracing     TracingConfig
	MetricsNS   string
	MetricsOn   bool
}

// TracingConfig configures the OTLP gRPC exporter.
type TracingConfig struct {
	Enabled      bool
	EndpointURL  string
	SamplingRate float64
}

// Manager owns the process-wide tracer provider and Prometheus registry for
// one agent runtime instance.
type Manager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	metrics  *Metrics
}

// NewManager builds a Manager from cfg. Tracing.Enabled=false yields a noop
// tracer; MetricsOn=false yields a nil Metrics (Metrics() callers must treat
// nil as "record nothing").
func NewManager(ctx context.Context, cfg Config) (*Manager, error) {
	m := &Manager{}

	if !cfg.Tracing.Enabled {
		m.tracer = noop.NewTracerProvider().Tracer(cfg.ServiceName)
	} else {
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.Tracing.EndpointURL),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("telemetry: create OTLP exporter: %w", err)
		}

		res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
		if err != nil {
			return nil, fmt.Errorf("telemetry: build resource: %w", err)
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.Tracing.SamplingRate)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		m.provider = tp
		m.tracer = tp.Tracer(cfg.ServiceName)
	}

	if cfg.MetricsOn {
		m.metrics = newMetrics(cfg.MetricsNS)
	}

	return m, nil
}

// Tracer returns the manager's tracer; always non-nil (noop when disabled).
func (m *Manager) Tracer() trace.Tracer { return m.tracer }

// Metrics returns the manager's Prometheus metrics, or nil if disabled.
func (m *Manager) Metrics() *Metrics { return m.metrics }

// Shutdown flushes and stops the tracer provider, if one was started.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

// Metrics is the set of Prometheus collectors the agent runtime updates at
// its suspension points: one reasoning (LLM) call, one tool call, and one
// long-term-memory retrieval.
type Metrics struct {
	registry *prometheus.Registry

	reasoningCalls    *prometheus.CounterVec
	reasoningDuration *prometheus.HistogramVec
	reasoningErrors   *prometheus.CounterVec

	toolCalls        *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
	toolErrors       *prometheus.CounterVec

	ltmRetrievals     *prometheus.CounterVec
	ltmRetrieveLength *prometheus.HistogramVec
}

func newMetrics(namespace string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.reasoningCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "reasoning", Name: "calls_total",
		Help: "Total number of model reasoning calls.",
	}, []string{"agent_name", "provider"})

	m.reasoningDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "reasoning", Name: "call_duration_seconds",
		Help: "Reasoning call duration in seconds.", Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"agent_name", "provider"})

	m.reasoningErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "reasoning", Name: "errors_total",
		Help: "Total number of reasoning call errors.",
	}, []string{"agent_name", "provider", "error_type"})

	m.toolCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "tool", Name: "calls_total",
		Help: "Total number of tool invocations.",
	}, []string{"tool_name"})

	m.toolCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "tool", Name: "call_duration_seconds",
		Help: "Tool call duration in seconds.", Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
	}, []string{"tool_name"})

	m.toolErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "tool", Name: "errors_total",
		Help: "Total number of tool call errors.",
	}, []string{"tool_name"})

	m.ltmRetrievals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "ltm", Name: "retrievals_total",
		Help: "Total number of long-term memory retrievals.",
	}, []string{"agent_id"})

	m.ltmRetrieveLength = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "ltm", Name: "retrieved_records",
		Help: "Number of records returned per retrieval.", Buckets: prometheus.LinearBuckets(0, 2, 10),
	}, []string{"agent_id"})

	m.registry.MustRegister(
		m.reasoningCalls, m.reasoningDuration, m.reasoningErrors,
		m.toolCalls, m.toolCallDuration, m.toolErrors,
		m.ltmRetrievals, m.ltmRetrieveLength,
	)

	return m
}

// Registry exposes the underlying Prometheus registry, e.g. for wiring to
// promhttp.HandlerFor in a caller's own HTTP mux.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveReasoning records one reasoning call's duration and outcome.
func (m *Metrics) ObserveReasoning(agentName, provider string, seconds float64, err error) {
	m.reasoningCalls.WithLabelValues(agentName, provider).Inc()
	m.reasoningDuration.WithLabelValues(agentName, provider).Observe(seconds)
	if err != nil {
		m.reasoningErrors.WithLabelValues(agentName, provider, errorType(err)).Inc()
	}
}

// ObserveToolCall records one tool call's duration and outcome.
func (m *Metrics) ObserveToolCall(toolName string, seconds float64, err error) {
	m.toolCalls.WithLabelValues(toolName).Inc()
	m.toolCallDuration.WithLabelValues(toolName).Observe(seconds)
	if err != nil {
		m.toolErrors.WithLabelValues(toolName).Inc()
	}
}

// ObserveLTMRetrieve records one long-term-memory retrieval's result count.
func (m *Metrics) ObserveLTMRetrieve(agentID string, recordCount int) {
	m.ltmRetrievals.WithLabelValues(agentID).Inc()
	m.ltmRetrieveLength.WithLabelValues(agentID).Observe(float64(recordCount))
}

func errorType(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%T", err)
}
