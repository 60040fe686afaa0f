package invitekit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gotd/td/tgerr"
)

func TestRunAuthFailureIsFatal(t *testing.T) {
	cfg := Config{
		APIID:      12345,
		APIHash:    "hash",
		Channel:    "@test",
		SessionDir: t.TempDir(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	authErr := errors.New("AUTH_KEY_UNREGISTERED")
	client.runBackend = func(ctx context.Context, fn func(ctx context.Context) error) error {
		return fn(ctx)
	}
	client.setup = func(context.Context) error {
		return fmt.Errorf("authorize: %w", authErr)
	}

	sink := &memorySink{}
	called := false
	err = client.Run(context.Background(), func(ctx context.Context) error {
		called = true
		_, runErr := NewInviter(client, cfg, sink).Run(ctx, makeUsers(1, 2))
		return runErr
	})

	if !errors.Is(err, authErr) {
		t.Fatalf("expected the authorization error, got %v", err)
	}
	if called {
		t.Error("callback must not run when authorization fails")
	}
	if len(sink.results) != 0 {
		t.Errorf("expected zero recorded results, got %d", len(sink.results))
	}
}

func TestParticipantCheckOutcome(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantDone bool
		wantKind OutcomeKind
	}{
		{"member", nil, true, AlreadyMember},
		{"not participant", tgerr.New(400, "USER_NOT_PARTICIPANT"), false, 0},
		{"flood wait honored before invite", tgerr.New(420, "FLOOD_WAIT_30"), true, RateLimited},
		{"transient error falls through", errors.New("rpc timeout"), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, done := participantCheckOutcome(tt.err)
			if done != tt.wantDone {
				t.Fatalf("done = %v, want %v", done, tt.wantDone)
			}
			if !done {
				return
			}
			if out.Kind != tt.wantKind {
				t.Errorf("Kind = %d, want %d", out.Kind, tt.wantKind)
			}
			if tt.wantKind == RateLimited && out.Wait != 30*time.Second {
				t.Errorf("Wait = %v, want 30s", out.Wait)
			}
		})
	}
}

func TestParseChannelID(t *testing.T) {
	tests := []struct {
		ref    string
		wantID int64
		wantOK bool
	}{
		{"-1001234567890", 1234567890, true},
		{"1234567890", 1234567890, true},
		{"-1234567890", 1234567890, true},
		{"@mychannel", 0, false},
		{"mychannel", 0, false},
		{"chan123", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			id, ok := parseChannelID(tt.ref)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("parseChannelID(%q) = %d, %v; want %d, %v", tt.ref, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}
