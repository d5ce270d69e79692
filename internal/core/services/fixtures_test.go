package services

import (
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// testEnv wires every service against the in-memory mocks.
type testEnv struct {
	users       *mocks.MockUserStore
	sessions    *mocks.MockSessionStore
	accounts    *mocks.MockAccountStore
	invoices    *mocks.MockInvoiceStore
	orgs        *mocks.MockOrganizationStore
	invitations *mocks.MockInvitationStore
	helpers     *mocks.MockHelperStore
	documents   *mocks.MockDocumentStore
	blobs       *mocks.MockBlobStore
	pages       *mocks.MockPageCounter
	queue       *mocks.MockTaskQueue
	events      *mocks.MockEventPublisher
	lock        *mocks.MockDistributedLock
	clock       *mocks.ManualClock

	contexts   driving.ContextService
	processing driving.ProcessingService
	uploads    driving.UploadService
}

func newTestEnv() *testEnv {
	e := &testEnv{
		users:       mocks.NewMockUserStore(),
		sessions:    mocks.NewMockSessionStore(),
		accounts:    mocks.NewMockAccountStore(),
		invoices:    mocks.NewMockInvoiceStore(),
		orgs:        mocks.NewMockOrganizationStore(),
		invitations: mocks.NewMockInvitationStore(),
		helpers:     mocks.NewMockHelperStore(),
		documents:   mocks.NewMockDocumentStore(),
		blobs:       mocks.NewMockBlobStore(),
		pages:       &mocks.MockPageCounter{Pages: 3},
		queue:       mocks.NewMockTaskQueue(),
		events:      mocks.NewMockEventPublisher(),
		lock:        mocks.NewMockDistributedLock(),
		clock:       mocks.NewManualClock(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)),
	}
	e.contexts = NewContextService(ContextServiceConfig{
		UserStore:    e.users,
		OrgStore:     e.orgs,
		HelperStore:  e.helpers,
		AccountStore: e.accounts,
		SessionStore: e.sessions,
	})
	e.processing = NewProcessingService(ProcessingServiceConfig{
		Documents: e.documents,
		Blobs:     e.blobs,
		Pages:     e.pages,
		Accounts:  e.accounts,
		TaskQueue: e.queue,
		Lock:      e.lock,
		Events:    e.events,
		Contexts:  e.contexts,
	})
	e.uploads = NewUploadService(UploadServiceConfig{
		Contexts:   e.contexts,
		Processing: e.processing,
		Clock:      e.clock,
	})
	return e
}

// addUser registers a user with a personal account holding credits.
func (e *testEnv) addUser(t *testing.T, id, name, email string, credits int64) *domain.User {
	t.Helper()
	ctx := context.Background()
	accountID := "acct-" + id
	if err := e.accounts.Create(ctx, &domain.CreditAccount{
		ID:      accountID,
		Kind:    domain.AccountKindUser,
		OwnerID: id,
		Balance: credits,
	}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	user := &domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: mocks.MockHashPrefix + "password123",
		Name:         name,
		AccountID:    accountID,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := e.users.Save(ctx, user); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return user
}

// addOrg creates an organization with a shared pool and the given members.
func (e *testEnv) addOrg(t *testing.T, id, name string, credits int64, members map[*domain.User]domain.Role) *domain.Organization {
	t.Helper()
	ctx := context.Background()
	org := &domain.Organization{ID: id, Name: name, AccountID: "acct-" + id}
	if err := e.accounts.Create(ctx, &domain.CreditAccount{
		ID:      org.AccountID,
		Kind:    domain.AccountKindOrganization,
		OwnerID: id,
		Balance: credits,
	}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	_ = e.orgs.Save(ctx, org)
	joined := time.Now()
	for user, role := range members {
		joined = joined.Add(time.Second)
		_ = e.orgs.SaveMember(ctx, &domain.Member{
			OrganizationID: id,
			UserID:         user.ID,
			Name:           user.Name,
			Email:          user.Email,
			Role:           role,
			JoinedAt:       joined,
		})
	}
	return org
}

// addHelper lets helper act on behalf of principal.
func (e *testEnv) addHelper(t *testing.T, grantID string, principal, helper *domain.User) *domain.HelperGrant {
	t.Helper()
	grant := &domain.HelperGrant{
		ID:            grantID,
		PrincipalID:   principal.ID,
		PrincipalName: principal.Name,
		HelperID:      helper.ID,
		HelperName:    helper.Name,
		HelperEmail:   helper.Email,
		CreatedAt:     time.Now(),
	}
	if err := e.helpers.Save(context.Background(), grant); err != nil {
		t.Fatalf("save grant: %v", err)
	}
	return grant
}

// login stores a session for user and returns its auth context.
func (e *testEnv) login(t *testing.T, user *domain.User) *domain.AuthContext {
	t.Helper()
	session := &domain.Session{
		ID:        "sess-" + user.ID + "-" + domain.GenerateID()[:6],
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	if err := e.sessions.Save(context.Background(), session); err != nil {
		t.Fatalf("save session: %v", err)
	}
	return &domain.AuthContext{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		SessionID: session.ID,
	}
}

// dashboardEnv seeds the four contexts of the dashboard prototype for Bob:
// himself, admin of Corp Inc., member of Startup LLC and helper for Alice.
func dashboardEnv(t *testing.T) (*testEnv, *domain.User, *domain.AuthContext) {
	t.Helper()
	e := newTestEnv()
	bob := e.addUser(t, "bob", "Bob", "bob@example.com", 1500)
	alice := e.addUser(t, "alice", "Alice", "alice@example.com", 800)
	e.addOrg(t, "corp", "Corp Inc.", 5000, map[*domain.User]domain.Role{bob: domain.RoleAdmin})
	e.addOrg(t, "startup", "Startup LLC", 300, map[*domain.User]domain.Role{bob: domain.RoleMember})
	e.addHelper(t, "g1", alice, bob)
	return e, bob, e.login(t, bob)
}

// pdfBytes is a payload that sniffs as a PDF.
func pdfBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
}
