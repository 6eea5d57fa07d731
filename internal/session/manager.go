package session

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/mhotoys/shopctl/internal/api"
	"github.com/mhotoys/shopctl/internal/models"
	"github.com/rs/zerolog"
)

// State is the lifecycle position of the auth machine. Loading is entered
// once at construction and never re-entered; every other state is
// terminal for restoration purposes.
type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// LoginRoute is the navigation target of the login entry point. The
// forced-logout redirect signal is suppressed when the client is already
// there, to avoid redirect loops.
const LoginRoute = "login"

// Reason classifies a rejected login into a small fixed set of causes.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonBadCredentials
	ReasonAccountLocked
	ReasonAccountDisabled
	ReasonNetwork
	ReasonStorage
)

func (r Reason) String() string {
	switch r {
	case ReasonBadCredentials:
		return "Invalid username or password"
	case ReasonAccountLocked:
		return "Account is locked due to multiple failed login attempts"
	case ReasonAccountDisabled:
		return "Account is disabled"
	case ReasonNetwork:
		return "Unable to connect to server"
	case ReasonStorage:
		return "Failed to store authentication token securely"
	default:
		return "Login failed"
	}
}

// LoginError is a classified login rejection. The raw transport error is
// never surfaced to callers.
type LoginError struct {
	Reason  Reason
	Message string
}

func (e *LoginError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Reason.String()
}

// Credentials is the sign-in request body.
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Signup is the sign-up request body.
type Signup struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult reports a sign-in that was not rejected. A two-factor
// challenge carries the partial identity so the caller can route to the
// second factor step; the machine stays un-authenticated in that case.
type LoginResult struct {
	Success           bool
	TwoFactorRequired bool
	User              models.User
	Roles             []models.Role
}

// TokenAPI is the slice of the secure token store the manager uses.
type TokenAPI interface {
	Set(ctx context.Context, token string) error
	Validate(ctx context.Context) (string, bool)
	Clear(ctx context.Context)
}

// Manager coordinates login, registration, logout and startup session
// restoration. It owns the single source of truth for "is this client
// authenticated, as whom, with which roles"; all other components treat
// the session as read-only.
//
// Transitions are guarded by a monotonic attempt id so a response from a
// superseded restoration or login can never override a newer state.
type Manager struct {
	client    *api.Client
	tokens    TokenAPI
	snapshots SnapshotStore
	logger    zerolog.Logger

	mu      sync.Mutex
	state   State
	session models.Session
	attempt uint64
	route   string

	onLoginRedirect func()
}

// NewManager creates a machine in the Loading state.
func NewManager(client *api.Client, tokens TokenAPI, snapshots SnapshotStore, logger zerolog.Logger) *Manager {
	return &Manager{
		client:    client,
		tokens:    tokens,
		snapshots: snapshots,
		logger:    logger,
		state:     StateLoading,
		session:   models.Anonymous(),
	}
}

// SetLoginRedirect registers the signal fired when a forced invalidation
// should send the user to the login entry point.
func (m *Manager) SetLoginRedirect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLoginRedirect = fn
}

// SetRoute records the current navigation target.
func (m *Manager) SetRoute(route string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.route = route
}

// State returns the current machine state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the current session.
func (m *Manager) Session() models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Restore attempts to re-establish the previous session. It reads the
// identity snapshot and, if present, validates the cookie server-side;
// anything short of full success clears both stores and settles
// Anonymous. Failures are silent - there is no user-facing error and no
// retry - and the machine always ends in a terminal state.
func (m *Manager) Restore(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateLoading {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	attempt := m.begin()

	var user models.User
	var roles []models.Role

	haveUser, err := m.snapshots.Load(KeyUser, &user)
	if err != nil {
		m.logger.Debug().Err(err).Msg("snapshot read failed during restore")
	}
	haveRoles, err := m.snapshots.Load(KeyRoles, &roles)
	if err != nil {
		m.logger.Debug().Err(err).Msg("snapshot read failed during restore")
	}

	if haveUser && haveRoles {
		if marker, valid := m.tokens.Validate(ctx); valid {
			m.logger.Debug().Str("username", user.Username).Str("marker", marker).Msg("session restored")
			m.settle(attempt, StateAuthenticated, models.Session{
				User:          user,
				Roles:         roles,
				Authenticated: true,
			})
			return
		}
	}

	// Restoration failed; clear both stores so the next start is clean.
	// Clearing an already-empty store is a no-op.
	m.tokens.Clear(ctx)
	if err := m.snapshots.ClearAll(); err != nil {
		m.logger.Debug().Err(err).Msg("snapshot clear failed during restore")
	}

	m.settle(attempt, StateAnonymous, models.Anonymous())
}

// Login calls the sign-in endpoint. On success the token goes to the
// secure token store, identity and roles to the snapshot store, and the
// machine transitions to Authenticated. A two-factor challenge never
// transitions. Rejections come back as a *LoginError with a classified
// reason; the machine state is untouched by them.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	attempt := m.begin()

	var resp struct {
		JWTToken          string        `json:"jwtToken"`
		Username          string        `json:"username"`
		Email             string        `json:"email"`
		UserID            int64         `json:"userId"`
		Roles             []models.Role `json:"roles"`
		TwoFactorRequired bool          `json:"twoFactorRequired"`
	}

	if err := m.client.Post(ctx, "/auth/public/signin", nil, creds, &resp); err != nil {
		return nil, classifyLogin(err)
	}

	user := models.User{ID: resp.UserID, Username: resp.Username, Email: resp.Email}

	if resp.TwoFactorRequired {
		m.logger.Info().Str("username", user.Username).Msg("two-factor challenge required")
		return &LoginResult{TwoFactorRequired: true, User: user, Roles: resp.Roles}, nil
	}

	if err := m.tokens.Set(ctx, resp.JWTToken); err != nil {
		m.logger.Warn().Err(err).Msg("failed to store token")
		return nil, &LoginError{Reason: ReasonStorage}
	}

	if err := m.snapshots.Save(KeyUser, user); err != nil {
		m.logger.Warn().Err(err).Msg("failed to save identity snapshot")
	}
	if err := m.snapshots.Save(KeyRoles, resp.Roles); err != nil {
		m.logger.Warn().Err(err).Msg("failed to save roles snapshot")
	}

	m.settle(attempt, StateAuthenticated, models.Session{
		User:          user,
		Roles:         resp.Roles,
		Authenticated: true,
	})

	m.logger.Info().Str("username", user.Username).Msg("logged in")

	return &LoginResult{Success: true, User: user, Roles: resp.Roles}, nil
}

// Register calls the sign-up endpoint and returns the server message.
// Registration is not implicit login; the session state never changes.
func (m *Manager) Register(ctx context.Context, signup Signup) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}

	if err := m.client.Post(ctx, "/auth/public/signup", nil, signup, &resp); err != nil {
		return "", err
	}

	return resp.Message, nil
}

// Logout clears the token store and the snapshot store and settles
// Anonymous, regardless of whether the remote logout call succeeded.
func (m *Manager) Logout(ctx context.Context) {
	attempt := m.begin()

	m.tokens.Clear(ctx)
	if err := m.snapshots.ClearAll(); err != nil {
		m.logger.Warn().Err(err).Msg("snapshot clear failed during logout")
	}

	m.settle(attempt, StateAnonymous, models.Anonymous())
	m.logger.Info().Msg("logged out")
}

// HandleUnauthenticated is the hook the API client invokes when any call
// comes back 401. It forces the machine to Anonymous and fires a single
// login-redirect signal; concurrent rejections collapse into one
// transition. Nothing happens when already settled Anonymous, and no
// signal fires when the client is already at the login entry point.
func (m *Manager) HandleUnauthenticated() {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return
	}

	m.attempt++
	m.state = StateAnonymous
	m.session = models.Anonymous()
	atLogin := m.route == LoginRoute
	redirect := m.onLoginRedirect
	m.mu.Unlock()

	if err := m.snapshots.ClearAll(); err != nil {
		m.logger.Debug().Err(err).Msg("snapshot clear failed after rejected session")
	}

	m.logger.Info().Msg("session rejected by server, returning to anonymous")

	if redirect != nil && !atLogin {
		redirect()
	}
}

// Profile fetches the current user profile and patches the identity
// fields of the session. This is the only partial session mutation.
func (m *Manager) Profile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := m.client.Get(ctx, "/auth/user", nil, &profile); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.state == StateAuthenticated {
		m.session.User.Username = profile.Username
		m.session.User.Email = profile.Email
	}
	m.mu.Unlock()

	return &profile, nil
}

// ChangePassword changes the password of the authenticated user.
func (m *Manager) ChangePassword(ctx context.Context, current, next string) (string, error) {
	body := map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := m.client.Post(ctx, "/auth/change-password", nil, body, &resp); err != nil {
		return "", err
	}

	return resp.Message, nil
}

// ForgotPassword requests reset instructions for the given email.
func (m *Manager) ForgotPassword(ctx context.Context, email string) (string, error) {
	query := url.Values{"email": {email}}

	var resp struct {
		Message string `json:"message"`
	}
	if err := m.client.Post(ctx, "/auth/public/forgot-password", query, nil, &resp); err != nil {
		return "", err
	}

	return resp.Message, nil
}

// ResetPassword completes a password reset using the emailed token.
func (m *Manager) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	query := url.Values{
		"token":       {token},
		"newPassword": {newPassword},
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := m.client.Post(ctx, "/auth/public/reset-password", query, nil, &resp); err != nil {
		return "", err
	}

	return resp.Message, nil
}

// begin opens a new attempt, superseding any in-flight one.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempt++
	return m.attempt
}

// settle applies a terminal state if the attempt is still current. A
// late-arriving result from a superseded attempt is dropped here.
func (m *Manager) settle(attempt uint64, state State, session models.Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if attempt != m.attempt {
		m.logger.Debug().
			Uint64("attempt", attempt).
			Uint64("current", m.attempt).
			Msg("dropping stale auth attempt result")
		return false
	}

	m.state = state
	m.session = session
	return true
}

// classifyLogin reduces a sign-in failure to a fixed reason, preferring
// the server's displayable message when one was sent.
func classifyLogin(err error) *LoginError {
	var apiErr *api.Error
	message := ""
	if errors.As(err, &apiErr) {
		message = apiErr.Message
	}

	switch {
	case errors.Is(err, api.ErrNetworkUnreachable):
		return &LoginError{Reason: ReasonNetwork}
	case api.IsStatus(err, 423):
		return &LoginError{Reason: ReasonAccountLocked, Message: message}
	case errors.Is(err, api.ErrPermissionDenied):
		return &LoginError{Reason: ReasonAccountDisabled, Message: message}
	case errors.Is(err, api.ErrAuthenticationRequired):
		return &LoginError{Reason: ReasonBadCredentials, Message: message}
	default:
		return &LoginError{Reason: ReasonUnknown, Message: message}
	}
}
