package session

import (
	"context"
	"testing"

	"github.com/mhotoys/shopctl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_PendingWhileLoading(t *testing.T) {
	backend := newStubBackend(t)
	manager, _, _ := newTestManager(t, backend)

	redirects := 0
	manager.SetLoginRedirect(func() { redirects++ })

	guard := NewGuard(manager)
	outcome := guard.Check("admin stats", RequireAdmin)

	assert.Equal(t, DecisionPending, outcome.Decision, "no verdict before restore settles")
	assert.Zero(t, redirects)
}

func TestGuard_AnonymousRedirectsWithOrigin(t *testing.T) {
	backend := newStubBackend(t)
	manager, _, _ := newTestManager(t, backend)
	manager.Restore(context.Background())

	guard := NewGuard(manager)
	outcome := guard.Check("whoami", RequireUser)

	assert.Equal(t, DecisionRedirectToLogin, outcome.Decision)
	assert.Equal(t, "whoami", outcome.From, "origin is kept for the post-login hint")
}

func TestGuard_MissingRoleIsDenied(t *testing.T) {
	backend := newStubBackend(t)
	manager, _, _ := newTestManager(t, backend)
	manager.Restore(context.Background())

	_, err := manager.Login(context.Background(), testCredentials())
	require.NoError(t, err)

	guard := NewGuard(manager)
	outcome := guard.Check("admin stats", RequireAdmin)

	assert.Equal(t, DecisionAccessDenied, outcome.Decision)
	assert.Equal(t, StateAuthenticated, manager.State(), "denial must not disturb the session")
	assert.True(t, manager.Session().Authenticated)
}

func TestGuard_DecisionTable(t *testing.T) {
	backend := newStubBackend(t)
	backend.roles = []models.Role{models.RoleUser, models.RoleAdmin}
	manager, _, _ := newTestManager(t, backend)
	manager.Restore(context.Background())

	_, err := manager.Login(context.Background(), testCredentials())
	require.NoError(t, err)

	guard := NewGuard(manager)

	tests := []struct {
		name string
		req  Requirement
		want Decision
	}{
		{"open route", Requirement{}, DecisionAllowed},
		{"user route", RequireUser, DecisionAllowed},
		{"admin route", RequireAdmin, DecisionAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.Check("target", tt.req).Decision)
		})
	}
}

func TestGuard_OpenRouteAllowedWhenAnonymous(t *testing.T) {
	backend := newStubBackend(t)
	manager, _, _ := newTestManager(t, backend)
	manager.Restore(context.Background())

	guard := NewGuard(manager)
	outcome := guard.Check("products list", Requirement{})

	assert.Equal(t, DecisionAllowed, outcome.Decision)
}
