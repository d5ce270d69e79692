package http

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Mock services for testing

var errNotImplemented = errors.New("not implemented")

type mockAuthService struct {
	signupFn         func(ctx context.Context, req domain.SignupRequest) (*domain.LoginResponse, error)
	authenticateFn   func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	validateTokenFn  func(ctx context.Context, token string) (*domain.AuthContext, error)
	refreshTokenFn   func(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error)
	logoutFn         func(ctx context.Context, token string) error
	changePasswordFn func(ctx context.Context, userID string, req domain.ChangePasswordRequest) error
}

func (m *mockAuthService) Signup(ctx context.Context, req domain.SignupRequest) (*domain.LoginResponse, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAuthService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(ctx, token)
	}
	return nil, errNotImplemented
}

func (m *mockAuthService) RefreshToken(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error) {
	if m.refreshTokenFn != nil {
		return m.refreshTokenFn(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

func (m *mockAuthService) LogoutAll(ctx context.Context, userID string) error {
	return nil
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, userID, req)
	}
	return errNotImplemented
}

type mockUserService struct {
	getFn               func(ctx context.Context, id string) (*domain.User, error)
	updateProfileFn     func(ctx context.Context, id string, req driving.UpdateProfileRequest) (*domain.User, error)
	setDefaultContextFn func(ctx context.Context, auth *domain.AuthContext, req driving.SetDefaultContextRequest) (*domain.User, error)
}

func (m *mockUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id string, req driving.UpdateProfileRequest) (*domain.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, req)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) SetDefaultContext(ctx context.Context, auth *domain.AuthContext, req driving.SetDefaultContextRequest) (*domain.User, error) {
	if m.setDefaultContextFn != nil {
		return m.setDefaultContextFn(ctx, auth, req)
	}
	return nil, errNotImplemented
}

type mockContextService struct {
	listFn      func(ctx context.Context, auth *domain.AuthContext) ([]domain.Context, error)
	activeFn    func(ctx context.Context, auth *domain.AuthContext) (*domain.ContextView, error)
	setActiveFn func(ctx context.Context, auth *domain.AuthContext, req driving.SetActiveContextRequest) (*domain.ContextView, error)
}

func (m *mockContextService) Registry(ctx context.Context, auth *domain.AuthContext) (driving.ContextRegistry, error) {
	return nil, errNotImplemented
}

func (m *mockContextService) List(ctx context.Context, auth *domain.AuthContext) ([]domain.Context, error) {
	if m.listFn != nil {
		return m.listFn(ctx, auth)
	}
	return nil, errNotImplemented
}

func (m *mockContextService) Active(ctx context.Context, auth *domain.AuthContext) (*domain.ContextView, error) {
	if m.activeFn != nil {
		return m.activeFn(ctx, auth)
	}
	return nil, errNotImplemented
}

func (m *mockContextService) SetActive(ctx context.Context, auth *domain.AuthContext, req driving.SetActiveContextRequest) (*domain.ContextView, error) {
	if m.setActiveFn != nil {
		return m.setActiveFn(ctx, auth, req)
	}
	return nil, errNotImplemented
}

func (m *mockContextService) Resolve(ctx context.Context, auth *domain.AuthContext, contextID string) (*domain.Context, error) {
	return nil, errNotImplemented
}

func (m *mockContextService) Refresh(ctx context.Context, auth *domain.AuthContext) error {
	return nil
}

func (m *mockContextService) RefreshUser(ctx context.Context, userID string) error {
	return nil
}

func (m *mockContextService) AvailableFor(ctx context.Context, userID string) ([]domain.Context, error) {
	return nil, errNotImplemented
}

func (m *mockContextService) ReleaseSession(sessionID string) {}

func (m *mockContextService) HeldSessions() []string { return nil }

type mockDocumentService struct {
	listFn func(ctx context.Context, auth *domain.AuthContext, filter domain.DocumentFilter) ([]*domain.Document, error)
	getFn  func(ctx context.Context, auth *domain.AuthContext, id string) (*domain.Document, error)
}

func (m *mockDocumentService) List(ctx context.Context, auth *domain.AuthContext, filter domain.DocumentFilter) ([]*domain.Document, error) {
	if m.listFn != nil {
		return m.listFn(ctx, auth, filter)
	}
	return nil, errNotImplemented
}

func (m *mockDocumentService) Get(ctx context.Context, auth *domain.AuthContext, id string) (*domain.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, auth, id)
	}
	return nil, errNotImplemented
}

type mockUploadService struct {
	createFn     func(ctx context.Context, auth *domain.AuthContext) (*domain.UploadBatchSnapshot, error)
	getFn        func(ctx context.Context, auth *domain.AuthContext, batchID string) (*domain.UploadBatchSnapshot, error)
	addFilesFn   func(ctx context.Context, auth *domain.AuthContext, batchID string, source domain.UploadSource, candidates []domain.UploadCandidate) (*domain.AddFilesResult, error)
	removeFileFn func(ctx context.Context, auth *domain.AuthContext, batchID, fileID string) (bool, error)
	startFn      func(ctx context.Context, auth *domain.AuthContext, batchID string) (*domain.UploadBatchSnapshot, error)
	discardFn    func(ctx context.Context, auth *domain.AuthContext, batchID string) error
}

func (m *mockUploadService) Create(ctx context.Context, auth *domain.AuthContext) (*domain.UploadBatchSnapshot, error) {
	if m.createFn != nil {
		return m.createFn(ctx, auth)
	}
	return nil, errNotImplemented
}

func (m *mockUploadService) Get(ctx context.Context, auth *domain.AuthContext, batchID string) (*domain.UploadBatchSnapshot, error) {
	if m.getFn != nil {
		return m.getFn(ctx, auth, batchID)
	}
	return nil, errNotImplemented
}

func (m *mockUploadService) AddFiles(ctx context.Context, auth *domain.AuthContext, batchID string, source domain.UploadSource, candidates []domain.UploadCandidate) (*domain.AddFilesResult, error) {
	if m.addFilesFn != nil {
		return m.addFilesFn(ctx, auth, batchID, source, candidates)
	}
	return nil, errNotImplemented
}

func (m *mockUploadService) RemoveFile(ctx context.Context, auth *domain.AuthContext, batchID, fileID string) (bool, error) {
	if m.removeFileFn != nil {
		return m.removeFileFn(ctx, auth, batchID, fileID)
	}
	return false, errNotImplemented
}

func (m *mockUploadService) Start(ctx context.Context, auth *domain.AuthContext, batchID string) (*domain.UploadBatchSnapshot, error) {
	if m.startFn != nil {
		return m.startFn(ctx, auth, batchID)
	}
	return nil, errNotImplemented
}

func (m *mockUploadService) Discard(ctx context.Context, auth *domain.AuthContext, batchID string) error {
	if m.discardFn != nil {
		return m.discardFn(ctx, auth, batchID)
	}
	return errNotImplemented
}

func (m *mockUploadService) ReleaseIdle(before time.Time) int { return 0 }

func (m *mockUploadService) Shutdown() {}

func (m *mockUploadService) ReleaseSession(sessionID string) {}

func (m *mockUploadService) HeldSessions() []string { return nil }

type mockOrganizationService struct {
	createFn       func(ctx context.Context, auth *domain.AuthContext, req driving.CreateOrganizationRequest) (*driving.OrganizationDetail, error)
	removeMemberFn func(ctx context.Context, auth *domain.AuthContext, orgID, userID string) error
}

func (m *mockOrganizationService) Create(ctx context.Context, auth *domain.AuthContext, req driving.CreateOrganizationRequest) (*driving.OrganizationDetail, error) {
	if m.createFn != nil {
		return m.createFn(ctx, auth, req)
	}
	return nil, errNotImplemented
}

func (m *mockOrganizationService) Get(ctx context.Context, auth *domain.AuthContext, orgID string) (*driving.OrganizationDetail, error) {
	return nil, errNotImplemented
}

func (m *mockOrganizationService) Rename(ctx context.Context, auth *domain.AuthContext, orgID string, req driving.RenameOrganizationRequest) (*driving.OrganizationDetail, error) {
	return nil, errNotImplemented
}

func (m *mockOrganizationService) ListMembers(ctx context.Context, auth *domain.AuthContext, orgID string) ([]*domain.Member, error) {
	return nil, errNotImplemented
}

func (m *mockOrganizationService) UpdateMemberRole(ctx context.Context, auth *domain.AuthContext, orgID, userID string, req driving.UpdateMemberRoleRequest) (*domain.Member, error) {
	return nil, errNotImplemented
}

func (m *mockOrganizationService) RemoveMember(ctx context.Context, auth *domain.AuthContext, orgID, userID string) error {
	if m.removeMemberFn != nil {
		return m.removeMemberFn(ctx, auth, orgID, userID)
	}
	return errNotImplemented
}

type mockInvitationService struct {
	viewFn   func(ctx context.Context, token string) (*domain.InvitationView, error)
	acceptFn func(ctx context.Context, auth *domain.AuthContext, token string) (*domain.Membership, error)
}

func (m *mockInvitationService) Invite(ctx context.Context, auth *domain.AuthContext, orgID string, req driving.InviteRequest) (*domain.Invitation, error) {
	return nil, errNotImplemented
}

func (m *mockInvitationService) List(ctx context.Context, auth *domain.AuthContext, orgID string) ([]*domain.Invitation, error) {
	return nil, errNotImplemented
}

func (m *mockInvitationService) View(ctx context.Context, token string) (*domain.InvitationView, error) {
	if m.viewFn != nil {
		return m.viewFn(ctx, token)
	}
	return nil, errNotImplemented
}

func (m *mockInvitationService) Accept(ctx context.Context, auth *domain.AuthContext, token string) (*domain.Membership, error) {
	if m.acceptFn != nil {
		return m.acceptFn(ctx, auth, token)
	}
	return nil, errNotImplemented
}

func (m *mockInvitationService) Decline(ctx context.Context, auth *domain.AuthContext, token string) error {
	return errNotImplemented
}

type mockHelperService struct {
	grantFn func(ctx context.Context, auth *domain.AuthContext, req driving.GrantHelperRequest) (*domain.HelperGrant, error)
}

func (m *mockHelperService) Grant(ctx context.Context, auth *domain.AuthContext, req driving.GrantHelperRequest) (*domain.HelperGrant, error) {
	if m.grantFn != nil {
		return m.grantFn(ctx, auth, req)
	}
	return nil, errNotImplemented
}

func (m *mockHelperService) List(ctx context.Context, auth *domain.AuthContext) (*driving.HelperGrants, error) {
	return nil, errNotImplemented
}

func (m *mockHelperService) Revoke(ctx context.Context, auth *domain.AuthContext, grantID string) error {
	return errNotImplemented
}

type mockBillingService struct {
	purchaseFn func(ctx context.Context, auth *domain.AuthContext, contextID string, req driving.PurchaseRequest) (*driving.PurchaseResult, error)
}

func (m *mockBillingService) Pricing() domain.Pricing {
	return domain.CurrentPricing()
}

func (m *mockBillingService) Purchase(ctx context.Context, auth *domain.AuthContext, contextID string, req driving.PurchaseRequest) (*driving.PurchaseResult, error) {
	if m.purchaseFn != nil {
		return m.purchaseFn(ctx, auth, contextID, req)
	}
	return nil, errNotImplemented
}

func (m *mockBillingService) Invoices(ctx context.Context, auth *domain.AuthContext, contextID string) ([]*domain.Invoice, error) {
	return nil, errNotImplemented
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }
