package session

import (
	"context"
	"fmt"

	"github.com/mhotoys/shopctl/internal/api"
	"github.com/rs/zerolog"
)

// TokenStore wraps the server endpoints that manage the httpOnly session
// cookie. The token value itself is never persisted client-side; it is
// handed to the server once and only the cookie jar sees it afterwards.
// Every call crosses the network - there is no local cache of validity.
type TokenStore struct {
	client *api.Client
	logger zerolog.Logger
}

// NewTokenStore creates a token store over the given API client.
func NewTokenStore(client *api.Client, logger zerolog.Logger) *TokenStore {
	return &TokenStore{client: client, logger: logger}
}

// Set sends the token to the server, which answers by setting the
// httpOnly cookie. Fails with ErrStorageFailure if the call does not
// return a success status.
func (s *TokenStore) Set(ctx context.Context, token string) error {
	body := map[string]string{"token": token}

	if err := s.client.Post(ctx, "/auth/set-token", nil, body, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return nil
}

// Validate asks the server whether the current cookie is valid and
// returns the non-secret echo marker. Any failure is reported as
// absent-or-invalid; validation fails closed.
func (s *TokenStore) Validate(ctx context.Context) (string, bool) {
	var resp struct {
		Valid bool   `json:"valid"`
		Token string `json:"token"`
	}

	if err := s.client.Get(ctx, "/auth/validate-token", nil, &resp); err != nil {
		s.logger.Debug().Err(err).Msg("token validation failed")
		return "", false
	}

	if !resp.Valid {
		return "", false
	}

	return resp.Token, true
}

// Clear asks the server to expire the cookie. Best-effort: logout must
// proceed locally even when the remote call fails.
func (s *TokenStore) Clear(ctx context.Context) {
	if err := s.client.Post(ctx, "/auth/logout", nil, nil, nil); err != nil {
		s.logger.Debug().Err(err).Msg("remote logout failed")
	}
}
