package domain

import "testing"

func TestBindContext(t *testing.T) {
	tests := []struct {
		name        string
		ctx         Context
		label       string
		credits     string
		icon        string
		canPurchase bool
	}{
		{
			name:        "individual",
			ctx:         Context{ID: "1", Type: ContextTypeIndividual, Name: "Bob", Credits: 1500},
			label:       "Bob",
			credits:     "1,500",
			icon:        "user",
			canPurchase: true,
		},
		{
			name:        "organization admin",
			ctx:         Context{ID: "2", Type: ContextTypeOrganization, Name: "Corp Inc.", Role: RoleAdmin, Credits: 5000},
			label:       "Corp Inc. (admin)",
			credits:     "5,000",
			icon:        "building",
			canPurchase: true,
		},
		{
			name:    "organization member",
			ctx:     Context{ID: "3", Type: ContextTypeOrganization, Name: "Startup LLC", Role: RoleMember, Credits: 300},
			label:   "Startup LLC (member)",
			credits: "300",
			icon:    "building",
		},
		{
			name:    "helper",
			ctx:     Context{ID: "4", Type: ContextTypeHelper, Name: "Helper", HelperFor: "Alice", Credits: 800},
			label:   "Helper for Alice",
			credits: "800",
			icon:    "users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := BindContext(tt.ctx)
			if view.ID != tt.ctx.ID || view.Type != tt.ctx.Type {
				t.Errorf("expected id/type %s/%s, got %s/%s", tt.ctx.ID, tt.ctx.Type, view.ID, view.Type)
			}
			if view.Label != tt.label {
				t.Errorf("expected label %q, got %q", tt.label, view.Label)
			}
			if view.CreditsDisplay != tt.credits {
				t.Errorf("expected credits %q, got %q", tt.credits, view.CreditsDisplay)
			}
			if view.Icon != tt.icon {
				t.Errorf("expected icon %q, got %q", tt.icon, view.Icon)
			}
			if view.CanPurchase != tt.canPurchase {
				t.Errorf("expected canPurchase %v, got %v", tt.canPurchase, view.CanPurchase)
			}
			want := "You are uploading files as: " + tt.label + ". Credits will be used from this account."
			if view.UploadNotice != want {
				t.Errorf("expected notice %q, got %q", want, view.UploadNotice)
			}
		})
	}
}
