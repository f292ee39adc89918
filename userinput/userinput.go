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

// Package userinput defines the human-in-the-loop collaborator interface: a
// caller-supplied Provider that surfaces a pending decision (e.g. tool-call
// approval) to a human and reports the outcome back asynchronously. The
// agent core never blocks a goroutine on a Provider call; it only observes
// completion via the returned channel, grounded on hector's INPUT_REQUIRED
// approval flow (pkg/agent/tool_approval.go) generalized from tool approval
// specifically to any structured human decision.
package userinput

import (
	"context"

	"github.com/kadirpekel/agentcore/message"
)

// Decision is a human's resolution of a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

// Response is what a Provider eventually delivers for one HandleInput call.
type Response struct {
	Decision Decision
	Text     string
	Err      error
}

// Provider surfaces a pending decision to a human and reports the outcome
// asynchronously. structuredTag identifies the kind of request (e.g.
// "tool_approval") so a UI can render it appropriately; contextMessages give
// the human the conversation leading up to the request.
type Provider interface {
	HandleInput(ctx context.Context, agentID, agentName string, contextMessages []*message.Message, structuredTag string) (<-chan Response, error)
}

// StaticProvider resolves every request immediately with a fixed Response.
// Useful for tests and for agents running fully autonomously (no human
// actually in the loop).
type StaticProvider struct {
	Response Response
}

// HandleInput returns a closed, pre-filled channel.
func (p StaticProvider) HandleInput(ctx context.Context, agentID, agentName string, contextMessages []*message.Message, structuredTag string) (<-chan Response, error) {
	ch := make(chan Response, 1)
	ch <- p.Response
	close(ch)
	return ch, nil
}

var _ Provider = StaticProvider{}
