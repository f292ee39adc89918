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

package userinput

import (
	"context"
	"fmt"
	"sync"

	"github.com/kadirpekel/agentcore/message"
)

// ChannelProvider holds one pending request per key until a caller (e.g. a
// chat UI handler) resolves it via Resolve. HandleInput's key is
// agentID+structuredTag, so distinct concurrent requests don't collide.
type ChannelProvider struct {
	mu      sync.Mutex
	pending map[string]chan Response
}

// NewChannelProvider creates an empty ChannelProvider.
func NewChannelProvider() *ChannelProvider {
	return &ChannelProvider{pending: make(map[string]chan Response)}
}

// HandleInput registers a pending request and returns the channel that will
// receive its Response once Resolve is called for the same agentID and
// structuredTag, or, if ctx is cancelled first, a Response whose Err is
// ctx.Err().
func (p *ChannelProvider) HandleInput(ctx context.Context, agentID, agentName string, contextMessages []*message.Message, structuredTag string) (<-chan Response, error) {
	key := requestKey(agentID, structuredTag)

	p.mu.Lock()
	ch, exists := p.pending[key]
	if !exists {
		ch = make(chan Response, 1)
		p.pending[key] = ch
	}
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		cancelled := p.pending[key] == ch
		if cancelled {
			delete(p.pending, key)
		}
		p.mu.Unlock()
		if cancelled {
			ch <- Response{Err: ctx.Err()}
			close(ch)
		}
	}()

	return ch, nil
}

// Resolve delivers resp to the pending request registered for agentID and
// structuredTag. It returns an error if no request is pending.
func (p *ChannelProvider) Resolve(agentID, structuredTag string, resp Response) error {
	key := requestKey(agentID, structuredTag)

	p.mu.Lock()
	ch, ok := p.pending[key]
	if ok {
		delete(p.pending, key)
	}
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("userinput: no pending request for agent %q tag %q", agentID, structuredTag)
	}

	ch <- resp
	close(ch)
	return nil
}

func requestKey(agentID, structuredTag string) string {
	return agentID + "\x00" + structuredTag
}

var _ Provider = (*ChannelProvider)(nil)
