package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mhotoys/shopctl/internal/api"
	"github.com/mhotoys/shopctl/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const cookieName = "jwtToken"

// stubBackend is an httptest stand-in for the storefront REST backend.
// It mints real HMAC-signed JWTs and round-trips them through an
// httpOnly cookie, so the client-side flow under test is the same one
// the production backend drives.
type stubBackend struct {
	t   *testing.T
	key []byte

	mu             sync.Mutex
	signinCalls    int
	signupCalls    int
	setTokenCalls  int
	validateCalls  int
	logoutCalls    int
	signinStatus   int // 0 means success
	twoFactor      bool
	setTokenStatus int // 0 means success
	logoutStatus   int // 0 means success
	rejectSessions bool

	user  models.User
	roles []models.Role

	server *httptest.Server
}

func newStubBackend(t *testing.T) *stubBackend {
	b := &stubBackend{
		t:     t,
		key:   []byte("test-signing-key-0123456789abcdef"),
		user:  models.User{ID: 7, Username: "casey", Email: "casey@example.com"},
		roles: []models.Role{models.RoleUser},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/public/signin", b.handleSignin)
	mux.HandleFunc("POST /auth/public/signup", b.handleSignup)
	mux.HandleFunc("POST /auth/set-token", b.handleSetToken)
	mux.HandleFunc("GET /auth/validate-token", b.handleValidateToken)
	mux.HandleFunc("POST /auth/logout", b.handleLogout)
	mux.HandleFunc("GET /auth/user", b.handleUser)
	mux.HandleFunc("GET /admin/statistics", b.handleStatistics)

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)

	return b
}

func (b *stubBackend) URL() string {
	return b.server.URL
}

func (b *stubBackend) mintToken() string {
	claims := jwt.MapClaims{
		"sub":   b.user.Username,
		"roles": b.roles,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.key)
	require.NoError(b.t, err)
	return token
}

func (b *stubBackend) tokenValid(r *http.Request) bool {
	b.mu.Lock()
	reject := b.rejectSessions
	b.mu.Unlock()
	if reject {
		return false
	}

	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return false
	}

	parsed, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return b.key, nil
	})

	return err == nil && parsed.Valid
}

func (b *stubBackend) handleSignin(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.signinCalls++
	status := b.signinStatus
	twoFactor := b.twoFactor
	b.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]any{
			"message": "rejected by test backend",
			"status":  false,
		})
		return
	}

	resp := map[string]any{
		"username":          b.user.Username,
		"email":             b.user.Email,
		"userId":            b.user.ID,
		"roles":             b.roles,
		"twoFactorRequired": twoFactor,
	}
	if !twoFactor {
		resp["jwtToken"] = b.mintToken()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (b *stubBackend) handleSignup(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.signupCalls++
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"message": "User registered successfully"})
}

func (b *stubBackend) handleSetToken(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.setTokenCalls++
	status := b.setTokenStatus
	b.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]any{"error": "failed to set token"})
		return
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "token is required"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    body.Token,
		Path:     "/",
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Token set successfully"})
}

func (b *stubBackend) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.validateCalls++
	b.mu.Unlock()

	if !b.tokenValid(r) {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "token": "cookie"})
}

func (b *stubBackend) handleLogout(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.logoutCalls++
	status := b.logoutStatus
	b.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]any{"message": "logout failed"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}

func (b *stubBackend) handleUser(w http.ResponseWriter, r *http.Request) {
	if !b.tokenValid(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "authentication required"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       b.user.ID,
		"username": b.user.Username,
		"email":    b.user.Email,
		"roles":    b.roles,
		"enabled":  true,
	})
}

func (b *stubBackend) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if !b.tokenValid(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "authentication required"})
		return
	}

	isAdmin := false
	for _, role := range b.roles {
		if role == models.RoleAdmin {
			isAdmin = true
		}
	}
	if !isAdmin {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "insufficient permissions"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"totalUsers": 3})
}

func (b *stubBackend) counts() (signin, setToken, validate, logout int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.signinCalls, b.setTokenCalls, b.validateCalls, b.logoutCalls
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// newTestClient builds an API client with an in-memory cookie jar
// pointed at the stub backend.
func newTestClient(t *testing.T, baseURL string) *api.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client, err := api.New(api.Config{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Jar:     jar,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)

	return client
}

// newTestManager wires a manager over the stub backend with in-memory
// snapshots.
func newTestManager(t *testing.T, backend *stubBackend) (*Manager, *MemorySnapshots, *api.Client) {
	client := newTestClient(t, backend.URL())
	snapshots := NewMemorySnapshots()
	tokens := NewTokenStore(client, zerolog.Nop())

	manager := NewManager(client, tokens, snapshots, zerolog.Nop())
	client.SetUnauthenticatedHook(manager.HandleUnauthenticated)

	return manager, snapshots, client
}
