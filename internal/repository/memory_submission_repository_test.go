package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/cyberassess-backend/internal/model"
)

func seedMemory(t *testing.T, repo *MemorySubmissionRepository, n int) []model.Submission {
	t.Helper()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.Submission, 0, n)
	for i := 0; i < n; i++ {
		s := sampleSubmission()
		s.Respondent.Email = fmt.Sprintf("user%02d@example.com", i)
		s.Score = 10 + i
		s.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Insert(context.Background(), s))
		out = append(out, *s)
	}
	return out
}

func TestMemoryInsertRejectsSameFingerprint(t *testing.T) {
	repo := NewMemorySubmissionRepository()
	ctx := context.Background()

	first := sampleSubmission()
	require.NoError(t, repo.Insert(ctx, first))

	second := sampleSubmission()
	err := repo.Insert(ctx, second)
	assert.True(t, IsConflict(err))
	assert.Equal(t, 1, repo.Len())

	found, err := repo.FindByFingerprint(ctx, second.Fingerprint())
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestMemoryListNewestFirstWithPaging(t *testing.T) {
	repo := NewMemorySubmissionRepository()
	seeded := seedMemory(t, repo, 15)

	page, err := repo.List(context.Background(), model.ListAssessmentsQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 10)
	assert.Equal(t, seeded[14].ID, page[0].ID)
	assert.Equal(t, seeded[5].ID, page[9].ID)

	rest, err := repo.List(context.Background(), model.ListAssessmentsQuery{Limit: 10, Skip: 10})
	require.NoError(t, err)
	assert.Len(t, rest, 5)

	none, err := repo.List(context.Background(), model.ListAssessmentsQuery{Limit: 10, Skip: 30})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryFiltersAndStatistics(t *testing.T) {
	repo := NewMemorySubmissionRepository()
	seedMemory(t, repo, 15)

	from := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	q := model.ListAssessmentsQuery{Email: "USER1", DateFrom: &from, Limit: 10}

	n, err := repo.Count(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	st, err := repo.Statistics(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, int64(5), st.TotalAssessments)
	assert.Equal(t, 20, st.MinScore)
	assert.Equal(t, 24, st.MaxScore)
	assert.InDelta(t, 22.0, st.AverageScore, 0.001)
}

func TestMemoryDelete(t *testing.T) {
	repo := NewMemorySubmissionRepository()
	seeded := seedMemory(t, repo, 2)
	ctx := context.Background()

	ok, err := repo.Delete(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, repo.Len())

	_, err = repo.Delete(ctx, "nope")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestMemoryFindLatestByIdentity(t *testing.T) {
	repo := NewMemorySubmissionRepository()
	ctx := context.Background()

	older := sampleSubmission()
	require.NoError(t, repo.Insert(ctx, older))
	newer := sampleSubmission()
	newer.Score = 90
	newer.CreatedAt = older.CreatedAt.Add(time.Minute)
	require.NoError(t, repo.Insert(ctx, newer))

	got, err := repo.FindLatestByIdentity(ctx, "ana@example.com", "prod-erp")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	_, err = repo.FindLatestByIdentity(ctx, "bob@example.com", "prod-erp")
	assert.ErrorIs(t, err, ErrNotFound)
}
