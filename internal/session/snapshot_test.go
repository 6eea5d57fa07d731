package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mhotoys/shopctl/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]SnapshotStore {
	return map[string]SnapshotStore{
		"memory": NewMemorySnapshots(),
		"file":   NewFileSnapshots(filepath.Join(t.TempDir(), "session.json")),
	}
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			user := models.User{ID: 7, Username: "casey", Email: "casey@example.com"}
			require.NoError(t, store.Save(KeyUser, user))

			var got models.User
			found, err := store.Load(KeyUser, &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, user, got)
		})
	}
}

func TestSnapshotStore_LoadMissingKey(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			var got models.User
			found, err := store.Load(KeyUser, &got)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestSnapshotStore_ClearSelective(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(KeyUser, models.User{Username: "casey"}))
			require.NoError(t, store.Save(KeyRoles, []models.Role{models.RoleUser}))

			require.NoError(t, store.Clear(KeyUser))

			var user models.User
			found, err := store.Load(KeyUser, &user)
			require.NoError(t, err)
			assert.False(t, found)

			var roles []models.Role
			found, err = store.Load(KeyRoles, &roles)
			require.NoError(t, err)
			assert.True(t, found, "untouched keys survive a selective clear")
		})
	}
}

func TestSnapshotStore_ClearAll(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(KeyUser, models.User{Username: "casey"}))
			require.NoError(t, store.Save(KeyRoles, []models.Role{models.RoleUser}))

			require.NoError(t, store.ClearAll())

			var user models.User
			found, err := store.Load(KeyUser, &user)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestFileSnapshots_CorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store := NewFileSnapshots(path)

	var user models.User
	found, err := store.Load(KeyUser, &user)
	require.NoError(t, err)
	assert.False(t, found)

	// A save over the corrupt file recovers it.
	require.NoError(t, store.Save(KeyUser, models.User{Username: "casey"}))
	found, err = store.Load(KeyUser, &user)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestFileSnapshots_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	first := NewFileSnapshots(path)
	require.NoError(t, first.Save(KeyRoles, []models.Role{models.RoleAdmin}))

	second := NewFileSnapshots(path)
	var roles []models.Role
	found, err := second.Load(KeyRoles, &roles)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []models.Role{models.RoleAdmin}, roles)
}

func TestMigrateLegacyState_MovesIdentityDropsToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	legacy := `{
		"authToken": "eyJhbGciOiJIUzI1NiJ9.secret.sig",
		"authUser": {"userId": 7, "username": "casey", "email": "casey@example.com"},
		"authRoles": ["ROLE_USER"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0600))

	store := NewFileSnapshots(filepath.Join(dir, "session.json"))
	require.NoError(t, MigrateLegacyState(store, path, zerolog.Nop()))

	var user models.User
	found, err := store.Load(KeyUser, &user)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "casey", user.Username)

	var roles []models.Role
	found, err = store.Load(KeyRoles, &roles)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []models.Role{models.RoleUser}, roles)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "legacy file is deleted after migration")

	// The raw token must not land anywhere in the new store.
	data, err := os.ReadFile(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestMigrateLegacyState_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	store := NewMemorySnapshots()

	require.NoError(t, MigrateLegacyState(store, path, zerolog.Nop()))
	require.NoError(t, MigrateLegacyState(store, path, zerolog.Nop()))
}

func TestMigrateLegacyState_UnreadableFileRemoved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

	store := NewMemorySnapshots()
	require.NoError(t, MigrateLegacyState(store, path, zerolog.Nop()))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
