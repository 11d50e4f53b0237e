package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examforge/internal/logger"
	"examforge/internal/models"
)

func newTestHistory(t *testing.T) (*HistoryService, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	return NewHistoryService(path, logger.NewNop()), path
}

func TestHistoryService_RecordPrependsNewest(t *testing.T) {
	s, _ := newTestHistory(t)

	first := s.Record(models.HistoryEntry{Subject: "Physics"})
	second := s.Record(models.HistoryEntry{Subject: "Chemistry"})

	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.NotEqual(t, first.ID, second.ID)

	got := s.Recent(0)
	require.Len(t, got, 2)
	assert.Equal(t, "Chemistry", got[0].Subject)
	assert.Equal(t, "Physics", got[1].Subject)
}

func TestHistoryService_RollsOverAtLimit(t *testing.T) {
	s, _ := newTestHistory(t)

	for i := 0; i < historyLimit+5; i++ {
		s.Record(models.HistoryEntry{Subject: fmt.Sprintf("subject-%d", i)})
	}

	got := s.Recent(0)
	require.Len(t, got, historyLimit)
	assert.Equal(t, fmt.Sprintf("subject-%d", historyLimit+4), got[0].Subject)
	assert.Equal(t, "subject-5", got[len(got)-1].Subject)
}

func TestHistoryService_PersistsAcrossRestart(t *testing.T) {
	s, path := newTestHistory(t)
	s.Record(models.HistoryEntry{Subject: "Biology", Chapter: "Life Processes"})
	s.Record(models.HistoryEntry{Subject: "Mathematics", Chapter: "Circles"})

	reloaded := NewHistoryService(path, logger.NewNop())
	got := reloaded.Recent(0)
	require.Len(t, got, 2)
	assert.Equal(t, "Mathematics", got[0].Subject)
	assert.Equal(t, "Circles", got[0].Chapter)
}

func TestHistoryService_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewHistoryService(path, logger.NewNop())
	assert.Empty(t, s.Recent(0))

	s.Record(models.HistoryEntry{Subject: "English"})
	assert.Len(t, s.Recent(0), 1)
}

func TestHistoryService_EmptyPathKeepsLogInMemory(t *testing.T) {
	s := NewHistoryService("", logger.NewNop())
	s.Record(models.HistoryEntry{Subject: "Physics"})
	assert.Len(t, s.Recent(0), 1)
}

func TestHistoryService_RecentLimit(t *testing.T) {
	s, _ := newTestHistory(t)
	for i := 0; i < 3; i++ {
		s.Record(models.HistoryEntry{Subject: "Science"})
	}

	assert.Len(t, s.Recent(2), 2)
	assert.Len(t, s.Recent(10), 3)
	assert.Len(t, s.Recent(-1), 3)
}

func TestHistoryService_ConcurrentRecords(t *testing.T) {
	s, _ := newTestHistory(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				s.Record(models.HistoryEntry{Subject: "Mathematics"})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, s.Recent(0), historyLimit)
}
