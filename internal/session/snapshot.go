package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// Snapshot keys. These match the identity keys used by earlier releases
// so legacy state migrates without renaming.
const (
	KeyUser  = "authUser"
	KeyRoles = "authRoles"
)

// ErrStorageFailure is returned when a store operation could not complete.
var ErrStorageFailure = errors.New("storage failure")

// SnapshotStore holds non-sensitive session identity between requests.
// The credential token never passes through a snapshot store; its only
// legitimate holder is the server-set cookie inside the opaque jar.
type SnapshotStore interface {
	Save(key string, value any) error
	Load(key string, out any) (bool, error)
	Clear(keys ...string) error
	ClearAll() error
}

// MemorySnapshots implements SnapshotStore in process memory. This
// implementation is for tests - data is lost on exit.
type MemorySnapshots struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
}

// NewMemorySnapshots creates an empty in-memory snapshot store.
func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{values: make(map[string]json.RawMessage)}
}

func (m *MemorySnapshots) Save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = data
	return nil
}

func (m *MemorySnapshots) Load(key string, out any) (bool, error) {
	m.mu.RLock()
	data, ok := m.values[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return true, nil
}

func (m *MemorySnapshots) Clear(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *MemorySnapshots) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]json.RawMessage)
	return nil
}

// FileSnapshots implements SnapshotStore on a single JSON file under the
// profile directory. Only non-sensitive identity data belongs here.
type FileSnapshots struct {
	mu   sync.Mutex
	path string
}

// NewFileSnapshots creates a store backed by the file at path. The file
// is created lazily on first save.
func NewFileSnapshots(path string) *FileSnapshots {
	return &FileSnapshots{path: path}
}

func (f *FileSnapshots) Save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = data

	return f.write(values)
}

func (f *FileSnapshots) Load(key string, out any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return false, err
	}

	data, ok := values[key]
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return true, nil
}

func (f *FileSnapshots) Clear(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}

	for _, key := range keys {
		delete(values, key)
	}

	return f.write(values)
}

func (f *FileSnapshots) ClearAll() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

func (f *FileSnapshots) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]json.RawMessage), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &values); err != nil {
		// A corrupt snapshot is treated as absent; restoration will
		// settle Anonymous and rewrite it.
		log.Warn().Str("path", f.path).Msg("discarding unreadable session snapshot")
		return make(map[string]json.RawMessage), nil
	}

	return values, nil
}

func (f *FileSnapshots) write(values map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	// Write to temp file first, then atomic rename.
	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return nil
}
