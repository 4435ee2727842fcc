package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kxbet/matchwatch/internal/alert"
)

// FileStore persists the state as a single JSON document. Saves go through
// write-to-temp-then-rename so a crash mid-write never leaves a torn file,
// and a process-wide mutex serializes every read-modify-write.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the JSON file at path. The file is
// created on first save; a missing file loads as empty state.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(ctx context.Context) (*State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FileStore) Save(ctx context.Context, state *State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(state)
}

func (f *FileStore) ToggleTracking(ctx context.Context, subscriberID, matchID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.load()
	if err != nil {
		return false, err
	}
	tracking := state.Toggle(subscriberID, matchID)
	if err := f.save(state); err != nil {
		return false, err
	}
	return tracking, nil
}

func (f *FileStore) TrackedMatchIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.load()
	if err != nil {
		return nil, err
	}
	return state.TrackedMatchIDs(), nil
}

func (f *FileStore) TrackedBy(ctx context.Context, subscriberID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.load()
	if err != nil {
		return nil, err
	}
	return state.Subscribers[subscriberID], nil
}

func (f *FileStore) SubscribersOf(ctx context.Context, matchID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.load()
	if err != nil {
		return nil, err
	}
	return state.SubscribersOf(matchID), nil
}

func (f *FileStore) Record(ctx context.Context, matchID string) (alert.MatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.load()
	if err != nil {
		return alert.MatchRecord{}, err
	}
	return state.Record(matchID), nil
}

func (f *FileStore) PutRecord(ctx context.Context, matchID string, record alert.MatchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.load()
	if err != nil {
		return err
	}
	state.Matches[matchID] = record
	return f.save(state)
}

func (f *FileStore) Close() error {
	return nil
}

// load must be called with the mutex held.
func (f *FileStore) load() (*State, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", f.path, ErrStorageUnavailable, err)
	}

	state := &State{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", f.path, ErrStorageUnavailable, err)
	}
	state.normalize()
	return state, nil
}

// save must be called with the mutex held.
func (f *FileStore) save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".subscriptions-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w: %w", ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w: %w", ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w: %w", ErrStorageUnavailable, err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w: %w", ErrStorageUnavailable, err)
	}
	return nil
}
