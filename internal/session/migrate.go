package session

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// legacyState is the combined state file written by pre-cookie releases.
// It embedded the raw token next to the identity; the token field is
// deliberately dropped during migration and never stored again.
type legacyState struct {
	AuthToken string          `json:"authToken"`
	AuthUser  json.RawMessage `json:"authUser"`
	AuthRoles json.RawMessage `json:"authRoles"`
}

// MigrateLegacyState moves identity data out of an old combined state
// file into the snapshot store and deletes the file. Runs once at
// startup; a second run finds nothing to migrate.
func MigrateLegacyState(store SnapshotStore, path string, logger zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read legacy state: %w", err)
	}

	var state legacyState
	if err := json.Unmarshal(data, &state); err != nil {
		// Unreadable legacy state is only worth deleting.
		logger.Warn().Str("path", path).Msg("removing unreadable legacy state file")
		return removeLegacy(path)
	}

	if len(state.AuthUser) > 0 {
		if err := store.Save(KeyUser, json.RawMessage(state.AuthUser)); err != nil {
			return err
		}
	}
	if len(state.AuthRoles) > 0 {
		if err := store.Save(KeyRoles, json.RawMessage(state.AuthRoles)); err != nil {
			return err
		}
	}

	if err := removeLegacy(path); err != nil {
		return err
	}

	logger.Info().Str("path", path).Msg("migrated legacy session state")
	return nil
}

func removeLegacy(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove legacy state: %w", err)
	}
	return nil
}
