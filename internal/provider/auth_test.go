package provider

import (
	"context"
	"testing"
)

func TestSessionInitCredentialFields(t *testing.T) {
	fakeProvider(t, "creds", `{"ok":true,"data":{"kind":"CredentialFields","fields":[{"name":"token","label":"API token","secret":true}]}}`)

	s := NewSession("creds")
	step, err := s.Init(context.Background())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if step.Kind != CredentialFields || len(step.Fields) != 1 {
		t.Fatalf("unexpected step: %+v", step)
	}

	pending, ok := s.Pending()
	if !ok || pending.Kind != CredentialFields {
		t.Errorf("expected the CredentialFields step to be pending")
	}
}

func TestSessionSubmitDone(t *testing.T) {
	fakeProvider(t, "creds2", `{"ok":true,"data":{"kind":"Done","accounts":["me@example.com"]}}`)

	s := NewSession("creds2")
	step, err := s.Submit(context.Background(), map[string]any{"token": "abc"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if step.Kind != Done || len(step.Accounts) != 1 || step.Accounts[0] != "me@example.com" {
		t.Fatalf("unexpected step: %+v", step)
	}
}
