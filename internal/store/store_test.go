package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Record(ctx, types.RunRecord{
		JobTitle:   "Backend Engineer",
		JobPoster:  "Acme",
		Iterations: 2,
		StopReason: "completed",
		Succeeded:  true,
		ResumeJSON: `{"full_name":"Ada"}`,
	})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	rec, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "Backend Engineer", rec.JobTitle)
	assert.Equal(t, 2, rec.Iterations)
	assert.True(t, rec.Succeeded)
	assert.Equal(t, `{"full_name":"Ada"}`, rec.ResumeJSON)
	assert.NotEmpty(t, rec.CreatedAt)
}

func TestGetUnknownRun(t *testing.T) {
	_, err := openTestStore(t).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.Code(err))
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := s.Record(ctx, types.RunRecord{JobTitle: string(rune('A' + i)), StopReason: "completed", Succeeded: i%2 == 0})
		require.NoError(t, err)
	}

	runs, err := s.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"E", "D", "C"}, []string{runs[0].JobTitle, runs[1].JobTitle, runs[2].JobTitle})
	assert.Empty(t, runs[0].ResumeJSON)
	assert.False(t, runs[1].Succeeded)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestListEmpty(t *testing.T) {
	runs, err := openTestStore(t).List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}
