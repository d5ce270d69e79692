package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

func sampleContexts() []domain.Context {
	return []domain.Context{
		{ID: "ind_bob", Type: domain.ContextTypeIndividual, Name: "Bob", Credits: 1500, AccountID: "acct-bob"},
		{ID: "org_corp", Type: domain.ContextTypeOrganization, Name: "Corp Inc.", Credits: 5000, Role: domain.RoleAdmin, AccountID: "acct-corp"},
		{ID: "org_startup", Type: domain.ContextTypeOrganization, Name: "Startup LLC", Credits: 300, Role: domain.RoleMember, AccountID: "acct-startup"},
		{ID: "hlp_g1", Type: domain.ContextTypeHelper, Name: "Alice", Credits: 800, HelperFor: "Alice", AccountID: "acct-alice"},
	}
}

func TestNewContextRegistry(t *testing.T) {
	tests := []struct {
		name       string
		contexts   []domain.Context
		activeID   string
		wantErr    error
		wantActive string
	}{
		{"defaults to first", sampleContexts(), "", nil, "ind_bob"},
		{"honours active id", sampleContexts(), "org_startup", nil, "org_startup"},
		{"unknown active id falls back", sampleContexts(), "org_gone", nil, "ind_bob"},
		{"empty list", nil, "", domain.ErrInvalidInput, ""},
		{"duplicate ids", append(sampleContexts(), sampleContexts()[0]), "", domain.ErrInvalidInput, ""},
		{"invalid context", []domain.Context{{ID: "org_x", Type: domain.ContextTypeOrganization, Name: "X"}}, "", domain.ErrInvalidInput, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewContextRegistry(tt.contexts, tt.activeID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantActive, reg.Active().ID)
		})
	}
}

func TestContextRegistry_ListContexts(t *testing.T) {
	reg, err := NewContextRegistry(sampleContexts(), "")
	require.NoError(t, err)

	list := reg.ListContexts()
	require.Len(t, list, 4)
	ids := []string{list[0].ID, list[1].ID, list[2].ID, list[3].ID}
	assert.Equal(t, []string{"ind_bob", "org_corp", "org_startup", "hlp_g1"}, ids)

	// Callers get a copy
	list[0].Name = "Mallory"
	assert.Equal(t, "Bob", reg.ListContexts()[0].Name)
}

func TestContextRegistry_SetActive(t *testing.T) {
	reg, err := NewContextRegistry(sampleContexts(), "")
	require.NoError(t, err)

	view, err := reg.SetActive("org_corp")
	require.NoError(t, err)
	assert.Equal(t, "org_corp", view.ID)
	assert.Equal(t, "Corp Inc. (admin)", view.Label)
	assert.Equal(t, "5,000", view.CreditsDisplay)
	assert.Equal(t, "org_corp", reg.Active().ID)
}

func TestContextRegistry_SetActive_Unknown(t *testing.T) {
	reg, err := NewContextRegistry(sampleContexts(), "org_startup")
	require.NoError(t, err)

	var notified int
	reg.Subscribe(func(domain.ContextView) { notified++ })

	_, err = reg.SetActive("org_gone")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownContext))
	assert.Equal(t, "org_startup", reg.Active().ID, "active context must not change")
	assert.Zero(t, notified)
}

func TestContextRegistry_Subscribe(t *testing.T) {
	reg, err := NewContextRegistry(sampleContexts(), "")
	require.NoError(t, err)

	var order []string
	reg.Subscribe(func(v domain.ContextView) { order = append(order, "first:"+v.ID) })
	unsubscribe := reg.Subscribe(func(v domain.ContextView) { order = append(order, "second:"+v.ID) })

	_, err = reg.SetActive("hlp_g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first:hlp_g1", "second:hlp_g1"}, order)

	unsubscribe()
	unsubscribe()

	order = nil
	_, err = reg.SetActive("ind_bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"first:ind_bob"}, order)
}

func TestContextRegistry_SubscriberSeesNewActive(t *testing.T) {
	reg, err := NewContextRegistry(sampleContexts(), "")
	require.NoError(t, err)

	// Subscribers may read the registry while being notified
	var seen string
	reg.Subscribe(func(domain.ContextView) { seen = reg.Active().ID })

	_, err = reg.SetActive("org_startup")
	require.NoError(t, err)
	assert.Equal(t, "org_startup", seen)
}

func TestContextRegistry_Replace(t *testing.T) {
	reg, err := NewContextRegistry(sampleContexts(), "org_corp")
	require.NoError(t, err)

	var views []domain.ContextView
	reg.Subscribe(func(v domain.ContextView) { views = append(views, v) })

	updated := sampleContexts()
	updated[1].Credits = 4990
	require.NoError(t, reg.Replace(updated))

	assert.Equal(t, "org_corp", reg.Active().ID)
	assert.Equal(t, int64(4990), reg.Active().Credits)
	require.Len(t, views, 1)
	assert.Equal(t, "4,990", views[0].CreditsDisplay)

	// Losing the active context falls back to the first one
	require.NoError(t, reg.Replace([]domain.Context{updated[0], updated[2]}))
	assert.Equal(t, "ind_bob", reg.Active().ID)

	assert.ErrorIs(t, reg.Replace(nil), domain.ErrInvalidInput)
	assert.Equal(t, "ind_bob", reg.Active().ID)
}

func TestContextRegistry_ConcurrentSwitches(t *testing.T) {
	reg, err := NewContextRegistry(sampleContexts(), "")
	require.NoError(t, err)

	var mu sync.Mutex
	var last string
	reg.Subscribe(func(v domain.ContextView) {
		mu.Lock()
		last = v.ID
		mu.Unlock()
	})

	ids := []string{"ind_bob", "org_corp", "org_startup", "hlp_g1"}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = reg.SetActive(ids[i%len(ids)])
			_ = reg.ListContexts()
		}(i)
	}
	wg.Wait()

	// The last notification matches the final active context
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, reg.Active().ID, last)
}
