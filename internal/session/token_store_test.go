package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore_SetThenValidate(t *testing.T) {
	backend := newStubBackend(t)
	client := newTestClient(t, backend.URL())
	tokens := NewTokenStore(client, zerolog.Nop())

	require.NoError(t, tokens.Set(context.Background(), backend.mintToken()))

	marker, ok := tokens.Validate(context.Background())
	assert.True(t, ok)
	assert.NotEmpty(t, marker)
}

func TestTokenStore_ValidateWithoutToken(t *testing.T) {
	backend := newStubBackend(t)
	client := newTestClient(t, backend.URL())
	tokens := NewTokenStore(client, zerolog.Nop())

	_, ok := tokens.Validate(context.Background())
	assert.False(t, ok)
}

func TestTokenStore_ValidateFailsClosedWhenUnreachable(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")
	tokens := NewTokenStore(client, zerolog.Nop())

	_, ok := tokens.Validate(context.Background())
	assert.False(t, ok, "an unreachable backend reads as no session")
}

func TestTokenStore_SetFailureIsStorageError(t *testing.T) {
	backend := newStubBackend(t)
	backend.setTokenStatus = http.StatusInternalServerError
	client := newTestClient(t, backend.URL())
	tokens := NewTokenStore(client, zerolog.Nop())

	err := tokens.Set(context.Background(), backend.mintToken())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageFailure)
}

func TestTokenStore_ClearIsBestEffort(t *testing.T) {
	backend := newStubBackend(t)
	backend.logoutStatus = http.StatusInternalServerError
	client := newTestClient(t, backend.URL())
	tokens := NewTokenStore(client, zerolog.Nop())

	// Must not panic or surface the remote failure.
	tokens.Clear(context.Background())

	_, _, _, logout := backend.counts()
	assert.Equal(t, 1, logout)
}
