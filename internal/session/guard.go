package session

import (
	"github.com/mhotoys/shopctl/internal/models"
)

// Decision is the outcome of a guarded navigation attempt.
type Decision int

const (
	// DecisionPending means the auth machine is still Loading: render a
	// neutral waiting state, never redirect.
	DecisionPending Decision = iota

	// DecisionAllowed renders the protected target.
	DecisionAllowed

	// DecisionRedirectToLogin sends the caller to the login entry point,
	// carrying the originally requested target.
	DecisionRedirectToLogin

	// DecisionAccessDenied renders an access-denied state in place; no
	// redirect.
	DecisionAccessDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionAllowed:
		return "allowed"
	case DecisionRedirectToLogin:
		return "redirect-to-login"
	case DecisionAccessDenied:
		return "access-denied"
	default:
		return "unknown"
	}
}

// Requirement is the capability set a protected target demands: being
// authenticated, and optionally holding a role.
type Requirement struct {
	Authenticated bool
	Role          models.Role
}

// Common requirements.
var (
	RequireUser  = Requirement{Authenticated: true}
	RequireAdmin = Requirement{Authenticated: true, Role: models.RoleAdmin}
)

// Outcome is a guard decision plus, for redirects, the target the caller
// should return to after login.
type Outcome struct {
	Decision Decision
	From     string
}

// Guard decides, per navigation, whether to render a protected target,
// redirect to login, or deny access, based on the auth machine's state.
// It never mutates the session.
type Guard struct {
	manager *Manager
}

// NewGuard creates a guard over the given machine.
func NewGuard(manager *Manager) *Guard {
	return &Guard{manager: manager}
}

// Check evaluates the requirement for the given target. While the
// machine is Loading the outcome is Pending: a user whose restoration
// has not finished must not be redirected away.
func (g *Guard) Check(target string, req Requirement) Outcome {
	if g.manager.State() == StateLoading {
		return Outcome{Decision: DecisionPending}
	}

	session := g.manager.Session()

	if req.Authenticated && !session.Authenticated {
		return Outcome{Decision: DecisionRedirectToLogin, From: target}
	}

	if req.Role != "" && !session.HasRole(req.Role) {
		return Outcome{Decision: DecisionAccessDenied}
	}

	return Outcome{Decision: DecisionAllowed}
}
