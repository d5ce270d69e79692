package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

const testToken = "valid-token"

var testAuth = &domain.AuthContext{
	UserID:    "user-1",
	Email:     "alice@example.com",
	Name:      "Alice",
	SessionID: "sess-1",
}

type testServices struct {
	auth     *mockAuthService
	users    *mockUserService
	contexts *mockContextService
	docs     *mockDocumentService
	uploads  *mockUploadService
	orgs     *mockOrganizationService
	invites  *mockInvitationService
	helpers  *mockHelperService
	billing  *mockBillingService
}

func newTestServer(t *testing.T, checks map[string]Pinger) (*Server, *testServices) {
	t.Helper()
	mocks := &testServices{
		auth: &mockAuthService{
			validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
				if token == testToken {
					return testAuth, nil
				}
				return nil, domain.ErrTokenInvalid
			},
		},
		users:    &mockUserService{},
		contexts: &mockContextService{},
		docs:     &mockDocumentService{},
		uploads:  &mockUploadService{},
		orgs:     &mockOrganizationService{},
		invites:  &mockInvitationService{},
		helpers:  &mockHelperService{},
		billing:  &mockBillingService{},
	}
	cfg := DefaultConfig()
	cfg.Version = "1.2.3"
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer(cfg, Services{
		Auth:          mocks.auth,
		Users:         mocks.users,
		Contexts:      mocks.contexts,
		Documents:     mocks.docs,
		Uploads:       mocks.uploads,
		Organizations: mocks.orgs,
		Invitations:   mocks.invites,
		Helpers:       mocks.helpers,
		Billing:       mocks.billing,
	}, checks)
	return s, mocks
}

func do(t *testing.T, s *Server, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rr := do(t, s, "GET", "/health", nil, false)
	if rr.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", rr.Code)
	}

	rr = do(t, s, "GET", "/version", nil, false)
	if v := decode[VersionResponse](t, rr); v.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", v.Version)
	}
}

func TestHandleReady(t *testing.T) {
	s, _ := newTestServer(t, map[string]Pinger{
		"postgres": &mockPinger{},
		"redis":    &mockPinger{},
	})
	rr := do(t, s, "GET", "/ready", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	s, _ = newTestServer(t, map[string]Pinger{
		"postgres": &mockPinger{},
		"redis":    &mockPinger{err: errors.New("connection refused")},
	})
	rr = do(t, s, "GET", "/ready", nil, false)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	resp := decode[ReadyResponse](t, rr)
	if resp.Checks["redis"] != "connection refused" || resp.Checks["postgres"] != "ok" {
		t.Errorf("unexpected checks %v", resp.Checks)
	}
}

func TestNotFoundCatchAll(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rr := do(t, s, "GET", "/no/such/route", nil, false)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if e := decode[ErrorResponse](t, rr); e.Error != "not found" {
		t.Errorf("expected 'not found', got %q", e.Error)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	routes := []struct{ method, path string }{
		{"GET", "/api/v1/me"},
		{"GET", "/api/v1/contexts"},
		{"PUT", "/api/v1/contexts/active"},
		{"GET", "/api/v1/documents"},
		{"POST", "/api/v1/uploads"},
		{"POST", "/api/v1/uploads/b1/start"},
		{"POST", "/api/v1/organizations"},
		{"POST", "/api/v1/invitations/tok/accept"},
		{"GET", "/api/v1/helpers"},
		{"POST", "/api/v1/contexts/ind_user-1/credits"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rr := do(t, s, rt.method, rt.path, nil, false)
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestHandleSignup(t *testing.T) {
	s, m := newTestServer(t, nil)
	m.auth.signupFn = func(ctx context.Context, req domain.SignupRequest) (*domain.LoginResponse, error) {
		if req.Email == "taken@example.com" {
			return nil, domain.ErrAlreadyExists
		}
		return &domain.LoginResponse{Token: "t", User: &domain.UserSummary{Email: req.Email}}, nil
	}

	rr := do(t, s, "POST", "/api/v1/auth/signup", domain.SignupRequest{Name: "A", Email: "a@example.com", Password: "secret123"}, false)
	if rr.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rr.Code)
	}

	rr = do(t, s, "POST", "/api/v1/auth/signup", domain.SignupRequest{Email: "taken@example.com"}, false)
	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rr.Code)
	}
}

func TestHandleLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		err        error
		wantStatus int
	}{
		{"success", domain.LoginRequest{Email: "a@example.com", Password: "x"}, nil, http.StatusOK},
		{"invalid credentials", domain.LoginRequest{Email: "a@example.com"}, domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"disabled", domain.LoginRequest{Email: "a@example.com"}, domain.ErrUnauthorized, http.StatusUnauthorized},
		{"backend down", domain.LoginRequest{Email: "a@example.com"}, errors.New("db down"), http.StatusInternalServerError},
		{"bad body", "not an object", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestServer(t, nil)
			m.auth.authenticateFn = func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &domain.LoginResponse{Token: "jwt", ExpiresAt: time.Now().Add(time.Hour)}, nil
			}
			rr := do(t, s, "POST", "/api/v1/auth/login", tt.body, false)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandleLogout(t *testing.T) {
	s, m := newTestServer(t, nil)
	var got string
	m.auth.logoutFn = func(ctx context.Context, token string) error {
		got = token
		return nil
	}

	rr := do(t, s, "POST", "/api/v1/auth/logout", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got != testToken {
		t.Errorf("expected logout with the bearer token, got %q", got)
	}
}

func TestHandleGetMe(t *testing.T) {
	s, m := newTestServer(t, nil)
	m.users.getFn = func(ctx context.Context, id string) (*domain.User, error) {
		return &domain.User{ID: id, Email: "alice@example.com", PasswordHash: "secret-hash"}, nil
	}

	rr := do(t, s, "GET", "/api/v1/me", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "secret-hash") {
		t.Error("password hash leaked into the response")
	}
	if u := decode[domain.UserSummary](t, rr); u.ID != "user-1" {
		t.Errorf("expected user-1, got %q", u.ID)
	}
}

func TestHandleChangePassword_WrongCurrent(t *testing.T) {
	s, m := newTestServer(t, nil)
	m.auth.changePasswordFn = func(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
		return domain.ErrInvalidCredentials
	}
	rr := do(t, s, "PUT", "/api/v1/me/password", domain.ChangePasswordRequest{CurrentPassword: "x", NewPassword: "y"}, true)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}

func TestHandleListContexts(t *testing.T) {
	s, m := newTestServer(t, nil)
	individual := domain.Context{ID: "ind_user-1", Type: domain.ContextTypeIndividual, Name: "Alice", Credits: 12}
	m.contexts.listFn = func(ctx context.Context, auth *domain.AuthContext) ([]domain.Context, error) {
		return []domain.Context{individual}, nil
	}
	m.contexts.activeFn = func(ctx context.Context, auth *domain.AuthContext) (*domain.ContextView, error) {
		view := domain.BindContext(individual)
		return &view, nil
	}

	rr := do(t, s, "GET", "/api/v1/contexts", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decode[ContextListResponse](t, rr)
	if len(resp.Contexts) != 1 || resp.Active.ID != "ind_user-1" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Active.UploadNotice == "" {
		t.Error("expected upload notice in the active view")
	}
}

func TestHandleSetActiveContext(t *testing.T) {
	s, m := newTestServer(t, nil)
	m.contexts.setActiveFn = func(ctx context.Context, auth *domain.AuthContext, req driving.SetActiveContextRequest) (*domain.ContextView, error) {
		if req.ContextID != "org_acme" {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownContext, req.ContextID)
		}
		return &domain.ContextView{ID: "org_acme", Label: "Acme"}, nil
	}

	rr := do(t, s, "PUT", "/api/v1/contexts/active", driving.SetActiveContextRequest{ContextID: "org_acme"}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if v := decode[domain.ContextView](t, rr); v.Label != "Acme" {
		t.Errorf("expected Acme, got %q", v.Label)
	}

	rr = do(t, s, "PUT", "/api/v1/contexts/active", driving.SetActiveContextRequest{ContextID: "org_nope"}, true)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown context, got %d", rr.Code)
	}
}

func TestHandleListDocuments_PassesFilter(t *testing.T) {
	s, m := newTestServer(t, nil)
	var got domain.DocumentFilter
	m.docs.listFn = func(ctx context.Context, auth *domain.AuthContext, filter domain.DocumentFilter) ([]*domain.Document, error) {
		got = filter
		return []*domain.Document{{ID: "doc-1", FileName: "Q1 report.pdf"}}, nil
	}

	rr := do(t, s, "GET", "/api/v1/documents?q=report&status=completed&context=all", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	want := domain.DocumentFilter{Text: "report", Status: "completed", ContextID: "all"}
	if got != want {
		t.Errorf("expected filter %+v, got %+v", want, got)
	}
	if resp := decode[DocumentListResponse](t, rr); len(resp.Documents) != 1 {
		t.Errorf("expected 1 document, got %d", len(resp.Documents))
	}
}

func TestHandleGetDocument_NotVisible(t *testing.T) {
	s, m := newTestServer(t, nil)
	m.docs.getFn = func(ctx context.Context, auth *domain.AuthContext, id string) (*domain.Document, error) {
		return nil, domain.ErrNotFound
	}
	rr := do(t, s, "GET", "/api/v1/documents/doc-9", nil, true)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func multipartBody(t *testing.T, source string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if source != "" {
		_ = mw.WriteField("source", source)
	}
	for name, contentType := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, name))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write([]byte("%PDF-1.7 " + name))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHandleAddUploadFiles(t *testing.T) {
	s, m := newTestServer(t, nil)

	var gotSource domain.UploadSource
	var gotCandidates []domain.UploadCandidate
	m.uploads.addFilesFn = func(ctx context.Context, auth *domain.AuthContext, batchID string, source domain.UploadSource, candidates []domain.UploadCandidate) (*domain.AddFilesResult, error) {
		if batchID != "batch-1" {
			return nil, domain.ErrNotFound
		}
		gotSource = source
		gotCandidates = candidates
		return &domain.AddFilesResult{Added: []domain.UploadFile{{ID: "f1"}}, Rejected: []domain.RejectedFile{{Name: "x.png"}}}, nil
	}

	body, contentType := multipartBody(t, "picker", map[string]string{"a.pdf": "application/pdf"})
	req := httptest.NewRequest("POST", "/api/v1/uploads/batch-1/files", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotSource != domain.UploadSourcePicker {
		t.Errorf("expected picker source, got %q", gotSource)
	}
	if len(gotCandidates) != 1 || gotCandidates[0].Name != "a.pdf" || gotCandidates[0].MediaType != "application/pdf" {
		t.Errorf("unexpected candidates %+v", gotCandidates)
	}
	if !bytes.HasPrefix(gotCandidates[0].Data, []byte("%PDF-")) {
		t.Error("expected payload bytes to be passed through")
	}
}

func TestHandleAddUploadFiles_DefaultsToDrop(t *testing.T) {
	s, m := newTestServer(t, nil)
	var gotSource domain.UploadSource
	m.uploads.addFilesFn = func(ctx context.Context, auth *domain.AuthContext, batchID string, source domain.UploadSource, candidates []domain.UploadCandidate) (*domain.AddFilesResult, error) {
		gotSource = source
		return &domain.AddFilesResult{}, nil
	}

	body, contentType := multipartBody(t, "", map[string]string{"a.pdf": "application/pdf"})
	req := httptest.NewRequest("POST", "/api/v1/uploads/batch-1/files", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if gotSource != domain.UploadSourceDrop {
		t.Errorf("expected drop source, got %q", gotSource)
	}
}

func TestHandleAddUploadFiles_NotMultipart(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rr := do(t, s, "POST", "/api/v1/uploads/batch-1/files", map[string]string{"a": "b"}, true)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestHandleStartUpload_Errors(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{nil, http.StatusAccepted},
		{domain.ErrBatchEmpty, http.StatusBadRequest},
		{domain.ErrBatchInProgress, http.StatusConflict},
		{domain.ErrBatchClosed, http.StatusConflict},
		{domain.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		name := "ok"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			s, m := newTestServer(t, nil)
			m.uploads.startFn = func(ctx context.Context, auth *domain.AuthContext, batchID string) (*domain.UploadBatchSnapshot, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &domain.UploadBatchSnapshot{ID: batchID, Started: true}, nil
			}
			rr := do(t, s, "POST", "/api/v1/uploads/batch-1/start", nil, true)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestHandleRemoveUploadFile(t *testing.T) {
	s, m := newTestServer(t, nil)
	m.uploads.removeFileFn = func(ctx context.Context, auth *domain.AuthContext, batchID, fileID string) (bool, error) {
		return fileID == "f1", nil
	}

	if rr := do(t, s, "DELETE", "/api/v1/uploads/b1/files/f1", nil, true); rr.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rr.Code)
	}
	if rr := do(t, s, "DELETE", "/api/v1/uploads/b1/files/f2", nil, true); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestHandleDiscardUpload(t *testing.T) {
	s, m := newTestServer(t, nil)
	discarded := ""
	m.uploads.discardFn = func(ctx context.Context, auth *domain.AuthContext, batchID string) error {
		discarded = batchID
		return nil
	}
	if rr := do(t, s, "DELETE", "/api/v1/uploads/b1", nil, true); rr.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rr.Code)
	}
	if discarded != "b1" {
		t.Errorf("expected b1 discarded, got %q", discarded)
	}
}

func TestHandlePurchaseCredits(t *testing.T) {
	s, m := newTestServer(t, nil)
	m.billing.purchaseFn = func(ctx context.Context, auth *domain.AuthContext, contextID string, req driving.PurchaseRequest) (*driving.PurchaseResult, error) {
		if strings.HasPrefix(contextID, "hlp_") {
			return nil, domain.ErrForbidden
		}
		return &driving.PurchaseResult{
			Invoice: &domain.Invoice{ID: "inv-1", Credits: req.Credits},
			Context: domain.ContextView{ID: contextID, Credits: req.Credits},
		}, nil
	}

	rr := do(t, s, "POST", "/api/v1/contexts/ind_user-1/credits", driving.PurchaseRequest{Credits: 100}, true)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if res := decode[driving.PurchaseResult](t, rr); res.Invoice.Credits != 100 {
		t.Errorf("expected 100 credits, got %d", res.Invoice.Credits)
	}

	rr = do(t, s, "POST", "/api/v1/contexts/hlp_g1/credits", driving.PurchaseRequest{Credits: 100}, true)
	if rr.Code != http.StatusForbidden {
		t.Errorf("expected 403 for helper purchase, got %d", rr.Code)
	}
}

func TestHandlePricing_Public(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rr := do(t, s, "GET", "/api/v1/billing/pricing", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"price_per_credit":"0.15"`) {
		t.Errorf("unexpected pricing body %s", rr.Body.String())
	}
}

func TestHandleInvitations(t *testing.T) {
	s, m := newTestServer(t, nil)
	m.invites.viewFn = func(ctx context.Context, token string) (*domain.InvitationView, error) {
		if token == "expired" {
			return nil, domain.ErrInvitationClosed
		}
		return &domain.InvitationView{OrganizationName: "Acme", Role: domain.RoleMember, InvitedBy: "Bob"}, nil
	}
	m.invites.acceptFn = func(ctx context.Context, auth *domain.AuthContext, token string) (*domain.Membership, error) {
		return nil, domain.ErrForbidden
	}

	rr := do(t, s, "GET", "/api/v1/invitations/tok-1", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected public view 200, got %d", rr.Code)
	}
	if v := decode[domain.InvitationView](t, rr); v.OrganizationName != "Acme" {
		t.Errorf("expected Acme, got %q", v.OrganizationName)
	}

	if rr := do(t, s, "GET", "/api/v1/invitations/expired", nil, false); rr.Code != http.StatusConflict {
		t.Errorf("expected 409 for closed invitation, got %d", rr.Code)
	}
	if rr := do(t, s, "POST", "/api/v1/invitations/tok-1/accept", nil, true); rr.Code != http.StatusForbidden {
		t.Errorf("expected 403 for mismatched email, got %d", rr.Code)
	}
}

func TestHandleRemoveMember_LastAdmin(t *testing.T) {
	s, m := newTestServer(t, nil)
	m.orgs.removeMemberFn = func(ctx context.Context, auth *domain.AuthContext, orgID, userID string) error {
		return domain.ErrLastAdmin
	}
	rr := do(t, s, "DELETE", "/api/v1/organizations/o1/members/user-1", nil, true)
	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rr.Code)
	}
}

func TestHandleGrantHelper(t *testing.T) {
	s, m := newTestServer(t, nil)
	m.helpers.grantFn = func(ctx context.Context, auth *domain.AuthContext, req driving.GrantHelperRequest) (*domain.HelperGrant, error) {
		switch req.Email {
		case "nobody@example.com":
			return nil, domain.ErrNotFound
		case "again@example.com":
			return nil, domain.ErrAlreadyExists
		}
		return &domain.HelperGrant{ID: "g1", PrincipalID: auth.UserID, HelperEmail: req.Email}, nil
	}

	tests := map[string]int{
		"bob@example.com":    http.StatusCreated,
		"nobody@example.com": http.StatusNotFound,
		"again@example.com":  http.StatusConflict,
	}
	for email, want := range tests {
		rr := do(t, s, "POST", "/api/v1/helpers", driving.GrantHelperRequest{Email: email}, true)
		if rr.Code != want {
			t.Errorf("%s: expected %d, got %d", email, want, rr.Code)
		}
	}
}

func TestWriteServiceError(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrUnknownContext, http.StatusNotFound},
		{fmt.Errorf("%w: name required", domain.ErrInvalidInput), http.StatusBadRequest},
		{domain.ErrNotPDF, http.StatusBadRequest},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{domain.ErrInsufficientCredits, http.StatusPaymentRequired},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrTokenExpired, http.StatusUnauthorized},
		{domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		s.writeServiceError(rr, httptest.NewRequest("GET", "/x", nil), tt.err, "fallback")
		if rr.Code != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	s.writeServiceError(rr, httptest.NewRequest("GET", "/x", nil), errors.New("pq: secret detail"), "fallback")
	if strings.Contains(rr.Body.String(), "secret detail") {
		t.Error("internal error detail leaked")
	}
}
