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

// Package accumulator reassembles fragmented streaming model output — text,
// thinking, and interleaved parallel tool-call argument JSON — into whole
// message.Block values, while the caller also gets each raw chunk to emit
// incrementally. This is the hard core of spec component C1.
package accumulator

import "github.com/kadirpekel/agentcore/message"

// Accumulator collects streamed chunks of type T and can build an aggregated
// message.Block from everything seen so far.
type Accumulator[T any] interface {
	// Add appends one chunk to the accumulator.
	Add(chunk T)
	// HasContent reports whether anything has been accumulated.
	HasContent() bool
	// BuildAggregated returns the aggregated block, or ok=false if nothing
	// has been accumulated yet.
	BuildAggregated() (message.Block, bool)
	// Reset clears all accumulated state.
	Reset()
}

// Text concatenates streamed text fragments in arrival order.
type Text struct {
	buf string
}

func (t *Text) Add(chunk string) { t.buf += chunk }

func (t *Text) HasContent() bool { return t.buf != "" }

func (t *Text) BuildAggregated() (message.Block, bool) {
	if t.buf == "" {
		return nil, false
	}
	return message.Text{Text: t.buf}, true
}

func (t *Text) Reset() { t.buf = "" }

// Thinking concatenates streamed thinking fragments in arrival order.
type Thinking struct {
	buf string
}

func (t *Thinking) Add(chunk string) { t.buf += chunk }

func (t *Thinking) HasContent() bool { return t.buf != "" }

func (t *Thinking) BuildAggregated() (message.Block, bool) {
	if t.buf == "" {
		return nil, false
	}
	return message.Thinking{Thinking: t.buf}, true
}

func (t *Thinking) Reset() { t.buf = "" }

var (
	_ Accumulator[string] = (*Text)(nil)
	_ Accumulator[string] = (*Thinking)(nil)
)
