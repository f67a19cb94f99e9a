package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/factdeck-backend/internal/data/repos/testutil"
	"github.com/yungbote/factdeck-backend/internal/platform/apierr"
	"github.com/yungbote/factdeck-backend/internal/platform/ctxutil"
)

func TestAuthTokenRoundTrip(t *testing.T) {
	h := newHarness(t)
	auth := NewAuthService(testutil.Logger(t), h.users, "test-secret", time.Hour)

	user, token, err := auth.IssueForUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("IssueForUsername: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("IssueForUsername: username %q", user.Username)
	}

	again, _, err := auth.IssueForUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("IssueForUsername again: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("second login created a new user: %s != %s", again.ID, user.ID)
	}

	ctx, err := auth.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if got := ctxutil.UserID(ctx); got != user.ID {
		t.Fatalf("context user: got %s want %s", got, user.ID)
	}
	if got := ctxutil.GetRequestData(ctx).TokenString; got != token {
		t.Fatalf("context token: got %q", got)
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	h := newHarness(t)
	auth := NewAuthService(testutil.Logger(t), h.users, "test-secret", time.Hour)
	other := NewAuthService(testutil.Logger(t), h.users, "other-secret", time.Hour)
	expired := NewAuthService(testutil.Logger(t), h.users, "test-secret", -time.Minute)

	_, forged, err := other.IssueForUsername(context.Background(), "mallory")
	if err != nil {
		t.Fatalf("issue forged: %v", err)
	}
	_, stale, err := expired.IssueForUsername(context.Background(), "bob")
	if err != nil {
		t.Fatalf("issue stale: %v", err)
	}

	tokens := map[string]string{
		"empty":          "",
		"malformed":      "not.a.token",
		"foreign secret": forged,
		"expired":        stale,
	}
	for name, token := range tokens {
		_, err := auth.SetContextFromToken(context.Background(), token)
		expectCode(t, err, apierr.CodeUnauthorized, name)
	}

	_, _, err = auth.IssueForUsername(context.Background(), "  ")
	expectCode(t, err, apierr.CodeValidation, "blank username")
}
