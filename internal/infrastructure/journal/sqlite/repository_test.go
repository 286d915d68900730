package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osegermany/ont2wb/internal/domain/entities"
	"github.com/osegermany/ont2wb/internal/infrastructure/config"
)

// setupTestRepo creates an in-memory SQLite journal for testing.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(config.JournalConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	err = repo.EnsureSchema(context.Background())
	require.NoError(t, err)

	return repo
}

func startRun(t *testing.T, repo *Repository, id string, startedAt time.Time) {
	t.Helper()
	require.NoError(t, repo.StartRun(context.Background(), &entities.SyncRun{
		ID:         id,
		SourceFile: "osh-metadata.ttl",
		Endpoint:   "https://wb.example.org/api.php",
		StartedAt:  startedAt,
	}))
}

func TestNewRepository(t *testing.T) {
	t.Run("success with memory database", func(t *testing.T) {
		repo, err := NewRepository(config.JournalConfig{Path: ":memory:"})
		require.NoError(t, err)
		defer repo.Close()
		assert.NotNil(t, repo)
	})

	t.Run("creates parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "journal.db")
		repo, err := NewRepository(config.JournalConfig{Path: path})
		require.NoError(t, err)
		defer repo.Close()
		require.NoError(t, repo.EnsureSchema(context.Background()))
		assert.Equal(t, path, repo.Path())
	})

	t.Run("error with empty path", func(t *testing.T) {
		_, err := NewRepository(config.JournalConfig{Path: ""})
		require.Error(t, err)
	})
}

func TestRepository_EnsureSchema(t *testing.T) {
	repo := setupTestRepo(t)

	for _, table := range []string{"runs", "entries"} {
		var count int
		err := repo.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}

	// Should not error when called again
	require.NoError(t, repo.EnsureSchema(context.Background()))
}

func TestRepository_RunLifecycle(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	startRun(t, repo, "run-1", started)

	runs, err := repo.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].FinishedAt)

	summary := entities.SyncSummary{Created: 2, Updated: 1, Unchanged: 3, Failed: 1, RelationsWritten: 4, RelationsSkipped: 5}
	finished := started.Add(time.Minute)
	require.NoError(t, repo.FinishRun(ctx, "run-1", summary, finished))

	runs, err = repo.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "osh-metadata.ttl", run.SourceFile)
	assert.Equal(t, "https://wb.example.org/api.php", run.Endpoint)
	assert.False(t, run.DryRun)
	assert.True(t, started.Equal(run.StartedAt))
	require.NotNil(t, run.FinishedAt)
	assert.True(t, finished.Equal(*run.FinishedAt))
	assert.Equal(t, 2, run.Summary.Created)
	assert.Equal(t, 1, run.Summary.Updated)
	assert.Equal(t, 3, run.Summary.Unchanged)
	assert.Equal(t, 1, run.Summary.Failed)
	assert.Equal(t, 4, run.Summary.RelationsWritten)
	assert.Equal(t, 5, run.Summary.RelationsSkipped)
}

func TestRepository_FinishRun_Unknown(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.FinishRun(context.Background(), "missing", entities.SyncSummary{}, time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestRepository_ListRuns_Order(t *testing.T) {
	repo := setupTestRepo(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	startRun(t, repo, "old", base)
	startRun(t, repo, "newest", base.Add(2*time.Hour))
	startRun(t, repo, "middle", base.Add(time.Hour))

	runs, err := repo.ListRuns(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "newest", runs[0].ID)
	assert.Equal(t, "middle", runs[1].ID)

	all, err := repo.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepository_Entries(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	startRun(t, repo, "run-1", time.Now())
	startRun(t, repo, "run-2", time.Now())

	create := &entities.JournalEntry{
		RunID:    "run-1",
		Action:   entities.ActionCreate,
		IRI:      "http://example.org/onto#Module",
		RemoteID: "Q5",
		Details:  map[string]any{"kind": "class"},
	}
	require.NoError(t, repo.Record(ctx, create))
	assert.NotZero(t, create.ID)

	require.NoError(t, repo.Record(ctx, &entities.JournalEntry{
		RunID:   "run-1",
		Action:  entities.ActionFail,
		IRI:     "http://example.org/onto#Broken",
		Details: map[string]any{"error": "boom"},
	}))
	require.NoError(t, repo.Record(ctx, &entities.JournalEntry{
		RunID:  "run-2",
		Action: entities.ActionCreate,
		IRI:    "http://example.org/onto#Other",
	}))

	entries, err := repo.FindEntries(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, entities.ActionCreate, entries[0].Action)
	assert.Equal(t, "Q5", entries[0].RemoteID)
	assert.Equal(t, "class", entries[0].Details["kind"])
	assert.False(t, entries[0].CreatedAt.IsZero())

	assert.Equal(t, entities.ActionFail, entries[1].Action)
	assert.Empty(t, entries[1].RemoteID)
	assert.Equal(t, "boom", entries[1].Details["error"])
}

func TestRepository_Record_UnknownRun(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.Record(context.Background(), &entities.JournalEntry{
		RunID:  "missing",
		Action: entities.ActionCreate,
		IRI:    "http://example.org/onto#X",
	})

	require.Error(t, err, "foreign key keeps entries attached to runs")
}
