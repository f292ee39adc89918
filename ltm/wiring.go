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

package ltm

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kadirpekel/agentcore/hook"
	"github.com/kadirpekel/agentcore/message"
	"github.com/kadirpekel/agentcore/tool"
)

// staticControlPriority matches spec §6's "priority-50 hook.Hook on
// PreReasoning" for the STATIC_CONTROL wiring.
const staticControlPriority = 50

// retrieveLimit bounds how many records StaticControlHook injects per turn.
const retrieveLimit = 5

// Register wires store into chain and/or toolkit according to mode. AgentID
// and SessionID scope every Record/Retrieve call the wiring makes.
func Register(mode Mode, store Store, agentID, sessionID string, chain *hook.Chain, toolkit *tool.Toolkit) error {
	switch mode {
	case AgentControl:
		registerTools(store, agentID, sessionID, toolkit)
	case StaticControl:
		chain.Register(staticControlHook(store, agentID, sessionID))
	case Both:
		registerTools(store, agentID, sessionID, toolkit)
		chain.Register(staticControlHook(store, agentID, sessionID))
	default:
		return ErrUnknownMode
	}
	return nil
}

// staticControlHook builds the PreReasoning hook that injects retrieved
// long-term memory as a wrapped SYSTEM message, grounded on hector's
// longterm_strategy.go recall-and-inject pattern.
func staticControlHook(store Store, agentID, sessionID string) hook.Hook {
	return hook.Hook{
		Priority: staticControlPriority,
		OnEvent: func(e *hook.Event) (*hook.Event, error) {
			if e.Kind != hook.KindPreReasoning {
				return e, nil
			}

			query := lastUserText(e.InputMessages)
			if query == "" {
				return e, nil
			}

			records, err := store.Retrieve(context.Background(), agentID, sessionID, query, retrieveLimit)
			if err != nil {
				return nil, fmt.Errorf("ltm: static control retrieve: %w", err)
			}
			if len(records) == 0 {
				return e, nil
			}

			var body string
			for _, r := range records {
				body += r.Text + "\n"
			}

			injected := message.New("", message.RoleSystem, message.NewText("<long_term_memory>\n"+body+"</long_term_memory>"))
			e.InputMessages = append([]*message.Message{injected}, e.InputMessages...)
			return e, nil
		},
	}
}

func lastUserText(msgs []*message.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == message.RoleUser {
			return msgs[i].Text()
		}
	}
	return ""
}

// registerTools exposes "remember" and "recall" as native tools for
// AGENT_CONTROL wiring.
func registerTools(store Store, agentID, sessionID string, toolkit *tool.Toolkit) {
	toolkit.RegisterNative(&rememberTool{store: store, agentID: agentID, sessionID: sessionID})
	toolkit.RegisterNative(&recallTool{store: store, agentID: agentID, sessionID: sessionID})
}

type rememberTool struct {
	store              Store
	agentID, sessionID string
}

func (t *rememberTool) Definition() tool.Definition {
	return tool.Definition{Name: "remember", Description: "Store a fact in long-term memory for later recall."}
}

func (t *rememberTool) Call(ctx context.Context, args map[string]any) (string, error) {
	text, _ := args["text"].(string)
	if text == "" {
		return "", fmt.Errorf("ltm: remember requires a non-empty \"text\" argument")
	}

	rec := Record{ID: uuid.NewString(), Text: text}
	if err := t.store.Record(ctx, t.agentID, t.sessionID, []Record{rec}); err != nil {
		return "", err
	}
	return "remembered", nil
}

type recallTool struct {
	store              Store
	agentID, sessionID string
}

func (t *recallTool) Definition() tool.Definition {
	return tool.Definition{Name: "recall", Description: "Retrieve facts from long-term memory relevant to a query."}
}

func (t *recallTool) Call(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return "", fmt.Errorf("ltm: recall requires a non-empty \"query\" argument")
	}

	records, err := t.store.Retrieve(ctx, t.agentID, t.sessionID, query, retrieveLimit)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "no relevant memories found", nil
	}

	out := ""
	for _, r := range records {
		out += r.Text + "\n"
	}
	return out, nil
}

var (
	_ tool.NativeTool = (*rememberTool)(nil)
	_ tool.NativeTool = (*recallTool)(nil)
)
