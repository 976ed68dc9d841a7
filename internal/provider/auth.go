package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/caldirhq/caldir/internal/cache"
)

// sessionTTL bounds how long an in-flight auth_init/auth_submit exchange
// may sit idle waiting on the next step's input (e.g. a browser redirect)
// before the core gives up on it.
const sessionTTL = 15 * time.Minute

// Session drives the auth_init/auth_submit state machine: each step is a
// self-contained JSON message, and the core re-invokes the provider with
// the previous step's payload until Done.
//
// Grounded on the teacher's internal/cache.Cache[K,V]: the same
// generic, TTL-expiring map, repurposed here to hold one in-flight
// AuthStep per provider name instead of a directory lookup result.
type Session struct {
	client *Client
	states *cache.Cache[string, AuthStep]
}

// NewSession starts a driver for the named provider.
func NewSession(providerName string) *Session {
	return &Session{
		client: New(providerName),
		states: cache.New[string, AuthStep](sessionTTL),
	}
}

// Init begins authentication, returning the first step the UI layer (CLI,
// daemon, etc., all out of this package's scope) must act on.
func (s *Session) Init(ctx context.Context) (AuthStep, error) {
	data, err := s.client.Call(ctx, "auth_init", nil)
	if err != nil {
		return AuthStep{}, fmt.Errorf("auth_init: %w", err)
	}
	var step AuthStep
	if err := json.Unmarshal(data, &step); err != nil {
		return AuthStep{}, &CallError{Kind: Protocol, Message: fmt.Sprintf("auth_init: decode step: %v", err)}
	}
	if step.Kind != Done {
		s.states.SetDefault("pending", step)
	}
	return step, nil
}

// Submit advances the state machine with the caller's response to the
// previous step (e.g. the OAuth callback payload or submitted credential
// fields). It returns Done with accounts once the provider is satisfied,
// or another NeedsInput-wrapped step to keep driving.
func (s *Session) Submit(ctx context.Context, payload map[string]any) (AuthStep, error) {
	data, err := s.client.Call(ctx, "auth_submit", payload)
	if err != nil {
		return AuthStep{}, fmt.Errorf("auth_submit: %w", err)
	}
	var step AuthStep
	if err := json.Unmarshal(data, &step); err != nil {
		return AuthStep{}, &CallError{Kind: Protocol, Message: fmt.Sprintf("auth_submit: decode step: %v", err)}
	}
	if step.Kind == Done {
		s.states.Delete("pending")
	} else {
		s.states.SetDefault("pending", step)
	}
	return step, nil
}

// Pending returns the last step handed back by Init/Submit, if the
// session hasn't expired.
func (s *Session) Pending() (AuthStep, bool) {
	return s.states.Get("pending")
}
