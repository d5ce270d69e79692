package services

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

func TestHelperService_GrantListRevoke(t *testing.T) {
	e, bob, bobAuth := dashboardEnv(t)
	svc := NewHelperService(e.helpers, e.users, e.contexts, nil)
	ctx := context.Background()
	alice, _ := e.users.Get(ctx, "alice")
	aliceAuth := e.login(t, alice)

	// Bob lets Alice act for him
	grant, err := svc.Grant(ctx, bobAuth, driving.GrantHelperRequest{Email: "ALICE@example.com"})
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if grant.PrincipalName != "Bob" || grant.HelperID != "alice" {
		t.Errorf("unexpected grant %+v", grant)
	}

	c, err := e.contexts.Resolve(ctx, aliceAuth, domain.HelperContextID(grant.ID))
	if err != nil {
		t.Fatalf("expected helper context for Alice: %v", err)
	}
	if c.Label() != "Helper for Bob" || c.AccountID != bob.AccountID {
		t.Errorf("unexpected helper context %+v", c)
	}

	if _, err := svc.Grant(ctx, bobAuth, driving.GrantHelperRequest{Email: "alice@example.com"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected duplicate grant rejected, got %v", err)
	}
	if _, err := svc.Grant(ctx, bobAuth, driving.GrantHelperRequest{Email: "bob@example.com"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected self grant rejected, got %v", err)
	}
	if _, err := svc.Grant(ctx, bobAuth, driving.GrantHelperRequest{Email: "ghost@example.com"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected unknown helper rejected, got %v", err)
	}

	grants, err := svc.List(ctx, bobAuth)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(grants.Granted) != 1 || len(grants.Received) != 1 {
		t.Errorf("expected one grant each way, got %d / %d", len(grants.Granted), len(grants.Received))
	}

	// Strangers cannot see or revoke the grant
	carol := e.addUser(t, "carol", "Carol", "carol@example.com", 0)
	if err := svc.Revoke(ctx, e.login(t, carol), grant.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for stranger, got %v", err)
	}

	// The helper may give the access back
	if err := svc.Revoke(ctx, aliceAuth, grant.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := e.contexts.Resolve(ctx, aliceAuth, domain.HelperContextID(grant.ID)); !errors.Is(err, domain.ErrUnknownContext) {
		t.Errorf("expected helper context gone, got %v", err)
	}

	empty, _ := svc.List(ctx, e.login(t, carol))
	if empty.Granted == nil || empty.Received == nil {
		t.Error("expected empty, non-nil lists")
	}
}

func TestHelperService_RevokeByPrincipalReachesHelperSessions(t *testing.T) {
	e, _, bobAuth := dashboardEnv(t)
	svc := NewHelperService(e.helpers, e.users, e.contexts, nil)
	ctx := context.Background()
	alice, _ := e.users.Get(ctx, "alice")
	aliceAuth := e.login(t, alice)
	aliceTablet := e.login(t, alice)

	grant, err := svc.Grant(ctx, bobAuth, driving.GrantHelperRequest{Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	hid := domain.HelperContextID(grant.ID)
	for _, auth := range []*domain.AuthContext{aliceAuth, aliceTablet} {
		if _, err := e.contexts.SetActive(ctx, auth, driving.SetActiveContextRequest{ContextID: hid}); err != nil {
			t.Fatalf("SetActive: %v", err)
		}
	}

	// Bob takes the access away while Alice is acting for him
	if err := svc.Revoke(ctx, bobAuth, grant.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	for _, auth := range []*domain.AuthContext{aliceAuth, aliceTablet} {
		view, err := e.contexts.Active(ctx, auth)
		if err != nil {
			t.Fatalf("Active: %v", err)
		}
		if view.ID != alice.IndividualContextID() {
			t.Errorf("%s: expected fallback to %s, got %s (%s)", auth.SessionID, alice.IndividualContextID(), view.ID, view.Label)
		}
		session, _ := e.sessions.Get(ctx, auth.SessionID)
		if session.ActiveContextID != alice.IndividualContextID() {
			t.Errorf("%s: expected fallback persisted, got %q", auth.SessionID, session.ActiveContextID)
		}
	}
	if _, err := e.contexts.Resolve(ctx, aliceAuth, hid); !errors.Is(err, domain.ErrUnknownContext) {
		t.Errorf("expected ErrUnknownContext, got %v", err)
	}
}
