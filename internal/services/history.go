package services

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"examforge/internal/logger"
	"examforge/internal/models"
)

// historyLimit caps the rolling log at the most recent entries.
const historyLimit = 50

// HistoryService keeps the rolling generation log: newest first, capped,
// mirrored to a flat JSON file on every write. A missing or unreadable
// file just starts an empty log.
type HistoryService struct {
	path string
	log  *logger.Logger

	mu      sync.RWMutex
	entries []models.HistoryEntry
}

func NewHistoryService(path string, log *logger.Logger) *HistoryService {
	s := &HistoryService{path: path, log: log}
	s.load()
	return s
}

func (s *HistoryService) load() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("history file unreadable, starting empty", "path", s.path, "error", err)
		}
		return
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warn("history file corrupt, starting empty", "path", s.path, "error", err)
		return
	}
	if len(entries) > historyLimit {
		entries = entries[:historyLimit]
	}
	s.entries = entries
}

// Record prepends an entry, assigns its ID and timestamp, trims to the
// cap and rewrites the file. File write failures are logged, not fatal:
// the log is a convenience, not a durability guarantee.
func (s *HistoryService) Record(entry models.HistoryEntry) models.HistoryEntry {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.entries = append([]models.HistoryEntry{entry}, s.entries...)
	if len(s.entries) > historyLimit {
		s.entries = s.entries[:historyLimit]
	}
	snapshot := append([]models.HistoryEntry(nil), s.entries...)
	s.mu.Unlock()

	if err := s.flush(snapshot); err != nil {
		s.log.Warn("history write failed", "path", s.path, "error", err)
	}
	return entry
}

// Recent returns up to limit entries, newest first. limit <= 0 returns
// everything retained.
func (s *HistoryService) Recent(limit int) []models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	return append([]models.HistoryEntry(nil), s.entries[:limit]...)
}

func (s *HistoryService) flush(entries []models.HistoryEntry) error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
