package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// defaultTimeout is the provider subprocess deadline applied when the
// caller's context carries no earlier deadline.
const defaultTimeout = 120 * time.Second

// backoff is the retry schedule for RateLimited/Network errors: three
// retries at 1s, 2s, 4s before the operation is recorded as failed.
var backoff = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// CallError wraps a provider error with the kind it reported, so callers
// can distinguish retryable failures from fatal ones.
type CallError struct {
	Kind    ErrorKind
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("provider: %s: %s", e.Kind, e.Message)
}

// Client runs one named caldir-provider-<name> binary, found on PATH.
type Client struct {
	binary string
}

// New returns a Client for the provider named name. It does not check that
// caldir-provider-<name> exists; that surfaces as a ProtocolError on the
// first Call.
func New(name string) *Client {
	return &Client{binary: "caldir-provider-" + name}
}

// Call exchanges one JSON request/response with a fresh subprocess,
// retrying RateLimited/Network errors per the backoff schedule. A context
// without a deadline gets the default 120s deadline.
func (c *Client) Call(ctx context.Context, command string, params map[string]any) (json.RawMessage, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	for attempt := 0; ; attempt++ {
		data, err := c.callOnce(ctx, command, params)
		if err == nil {
			return data, nil
		}

		var callErr *CallError
		if !asCallError(err, &callErr) || !callErr.Kind.Retryable() || attempt >= len(backoff) {
			return nil, err
		}

		select {
		case <-time.After(backoff[attempt]):
		case <-ctx.Done():
			return nil, fmt.Errorf("provider %s: %w", c.binary, ctx.Err())
		}
	}
}

func asCallError(err error, target **CallError) bool {
	ce, ok := err.(*CallError)
	if ok {
		*target = ce
	}
	return ok
}

func (c *Client) callOnce(ctx context.Context, command string, params map[string]any) (json.RawMessage, error) {
	reqBody, err := json.Marshal(Request{Command: command, Params: params})
	if err != nil {
		return nil, fmt.Errorf("provider %s: encode request: %w", c.binary, err)
	}

	cmd := exec.CommandContext(ctx, c.binary)
	cmd.Stdin = bytes.NewReader(reqBody)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("provider %s: %w", c.binary, ctx.Err())
		}
		return nil, &CallError{Kind: Protocol, Message: fmt.Sprintf("%s: %s", err, stderr.String())}
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, &CallError{Kind: Protocol, Message: fmt.Sprintf("unparseable response: %v", err)}
	}
	if !resp.OK {
		if resp.Error == nil {
			return nil, &CallError{Kind: Protocol, Message: "response ok=false without an error payload"}
		}
		return nil, &CallError{Kind: resp.Error.Kind, Message: resp.Error.Message}
	}
	return resp.Data, nil
}
