package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// HighScoreSource tells where a high score came from
type HighScoreSource uint8

const (
	HighScoreLocal HighScoreSource = iota
	HighScoreCloud
)

func (s HighScoreSource) String() string {
	if s == HighScoreCloud {
		return "cloud"
	}
	return "local"
}

// HighScoreRecord is the persisted best score
type HighScoreRecord struct {
	Score     int       `toml:"score"`
	Source    string    `toml:"source"`
	Session   string    `toml:"session,omitempty"`
	UpdatedAt time.Time `toml:"updated_at"`
}

// HighScoreStore persists the best score between runs
type HighScoreStore interface {
	Load() (HighScoreRecord, error)
	Save(HighScoreRecord) error
}

// FileHighScoreStore keeps the record in a TOML file
type FileHighScoreStore struct {
	mu   sync.Mutex
	path string
}

// NewFileHighScoreStore stores at path; the file is created on first Save
func NewFileHighScoreStore(path string) *FileHighScoreStore {
	return &FileHighScoreStore{path: path}
}

func (s *FileHighScoreStore) Path() string { return s.path }

// Load returns a zero record when the file does not exist yet
func (s *FileHighScoreStore) Load() (HighScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec HighScoreRecord
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("highscore: read %s: %w", s.path, err)
	}
	if err := toml.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("highscore: parse %s: %w", s.path, err)
	}
	return rec, nil
}

// Save writes through a temp file and rename so a crash never leaves a torn file
func (s *FileHighScoreStore) Save(rec HighScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("highscore: encode: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("highscore: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".highscore-*")
	if err != nil {
		return fmt.Errorf("highscore: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("highscore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("highscore: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("highscore: %w", err)
	}
	return nil
}

// MemoryHighScoreStore keeps the record in memory; used when no file is configured
type MemoryHighScoreStore struct {
	mu  sync.Mutex
	rec HighScoreRecord
}

func (s *MemoryHighScoreStore) Load() (HighScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec, nil
}

func (s *MemoryHighScoreStore) Save(rec HighScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	return nil
}
