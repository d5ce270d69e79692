package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// MockOrganizationStore is an in-memory OrganizationStore for testing
type MockOrganizationStore struct {
	mu      sync.RWMutex
	orgs    map[string]*domain.Organization
	members map[string]map[string]*domain.Member // orgID -> userID -> member
}

// NewMockOrganizationStore creates a new MockOrganizationStore
func NewMockOrganizationStore() *MockOrganizationStore {
	return &MockOrganizationStore{
		orgs:    make(map[string]*domain.Organization),
		members: make(map[string]map[string]*domain.Member),
	}
}

func (m *MockOrganizationStore) Save(ctx context.Context, org *domain.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs[org.ID] = org
	return nil
}

func (m *MockOrganizationStore) Get(ctx context.Context, id string) (*domain.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org, ok := m.orgs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return org, nil
}

func (m *MockOrganizationStore) ListForUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Membership
	for orgID, members := range m.members {
		member, ok := members[userID]
		if !ok {
			continue
		}
		if org, ok := m.orgs[orgID]; ok {
			result = append(result, &domain.Membership{Organization: org, Role: member.Role})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Organization.Name < result[j].Organization.Name
	})
	return result, nil
}

func (m *MockOrganizationStore) SaveMember(ctx context.Context, member *domain.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.members[member.OrganizationID]; !ok {
		m.members[member.OrganizationID] = make(map[string]*domain.Member)
	}
	m.members[member.OrganizationID][member.UserID] = member
	return nil
}

func (m *MockOrganizationStore) GetMember(ctx context.Context, orgID, userID string) (*domain.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	member, ok := m.members[orgID][userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return member, nil
}

func (m *MockOrganizationStore) ListMembers(ctx context.Context, orgID string) ([]*domain.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Member, 0, len(m.members[orgID]))
	for _, member := range m.members[orgID] {
		result = append(result, member)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].JoinedAt.Before(result[j].JoinedAt)
	})
	return result, nil
}

func (m *MockOrganizationStore) DeleteMember(ctx context.Context, orgID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members[orgID], userID)
	return nil
}

// MockInvitationStore is an in-memory InvitationStore for testing
type MockInvitationStore struct {
	mu          sync.RWMutex
	invitations map[string]*domain.Invitation
}

// NewMockInvitationStore creates a new MockInvitationStore
func NewMockInvitationStore() *MockInvitationStore {
	return &MockInvitationStore{
		invitations: make(map[string]*domain.Invitation),
	}
}

func (m *MockInvitationStore) Save(ctx context.Context, invitation *domain.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invitations[invitation.Token] = invitation
	return nil
}

func (m *MockInvitationStore) Get(ctx context.Context, token string) (*domain.Invitation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invitations[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (m *MockInvitationStore) ListByOrganization(ctx context.Context, orgID string) ([]*domain.Invitation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Invitation
	for _, inv := range m.invitations {
		if inv.OrganizationID == orgID {
			result = append(result, inv)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// MockHelperStore is an in-memory HelperStore for testing
type MockHelperStore struct {
	mu     sync.RWMutex
	grants map[string]*domain.HelperGrant
}

// NewMockHelperStore creates a new MockHelperStore
func NewMockHelperStore() *MockHelperStore {
	return &MockHelperStore{
		grants: make(map[string]*domain.HelperGrant),
	}
}

func (m *MockHelperStore) Save(ctx context.Context, grant *domain.HelperGrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.grants {
		if id != grant.ID && existing.PrincipalID == grant.PrincipalID && existing.HelperID == grant.HelperID {
			return domain.ErrAlreadyExists
		}
	}
	m.grants[grant.ID] = grant
	return nil
}

func (m *MockHelperStore) Get(ctx context.Context, id string) (*domain.HelperGrant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	grant, ok := m.grants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return grant, nil
}

func (m *MockHelperStore) ListByPrincipal(ctx context.Context, principalID string) ([]*domain.HelperGrant, error) {
	return m.list(func(g *domain.HelperGrant) bool { return g.PrincipalID == principalID },
		func(a, b *domain.HelperGrant) bool { return a.HelperName < b.HelperName }), nil
}

func (m *MockHelperStore) ListByHelper(ctx context.Context, helperID string) ([]*domain.HelperGrant, error) {
	return m.list(func(g *domain.HelperGrant) bool { return g.HelperID == helperID },
		func(a, b *domain.HelperGrant) bool { return a.PrincipalName < b.PrincipalName }), nil
}

func (m *MockHelperStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.grants, id)
	return nil
}

func (m *MockHelperStore) list(keep func(*domain.HelperGrant) bool, less func(a, b *domain.HelperGrant) bool) []*domain.HelperGrant {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.HelperGrant
	for _, g := range m.grants {
		if keep(g) {
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool { return less(result[i], result[j]) })
	return result
}
