package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

func testJob(id string, expires time.Time) *models.AnalysisJob {
	return &models.AnalysisJob{
		ID:                id,
		OriginalFilename:  "policy.pdf",
		ReportBytes:       []byte("# Report"),
		ReportContentType: "text/markdown",
		Run: &models.PipelineRun{
			RequestedFrameworks: []models.Framework{models.FrameworkICO},
			SelectedFrameworks:  []models.Framework{models.FrameworkICO},
			Synthesis:           &models.Synthesis{CompositeScore: 71},
			StatusMessages:      []string{"Report ready"},
		},
		CreatedAt: expires.Add(-time.Hour),
		ExpiresAt: expires,
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Put(ctx, testJob("live", now.Add(time.Hour))))
	require.NoError(t, s.Put(ctx, testJob("stale", now.Add(-time.Minute))))

	got, err := s.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "policy.pdf", got.OriginalFilename)

	_, err = s.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, "live"))
	_, err = s.Get(ctx, "live")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := setupTestRedis(t)
	now := time.Now()
	s.now = func() time.Time { return now }

	job := testJob("abc", now.Add(30*time.Minute))
	require.NoError(t, s.Put(ctx, job))

	assert.True(t, mr.Exists(redisKeyPrefix+"abc"))
	assert.Equal(t, 30*time.Minute, mr.TTL(redisKeyPrefix+"abc"))

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("# Report"), got.ReportBytes)
	assert.Equal(t, 71, got.Run.Synthesis.CompositeScore)
	assert.Equal(t, []string{"Report ready"}, got.Run.StatusMessages)

	require.NoError(t, s.Delete(ctx, "abc"))
	_, err = s.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := setupTestRedis(t)
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Put(ctx, testJob("short", now.Add(time.Minute))))
	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrJobNotFound)

	require.NoError(t, s.Put(ctx, testJob("already-expired", now.Add(-time.Second))))
	assert.False(t, mr.Exists(redisKeyPrefix+"already-expired"))
}

func TestNewRedisStoreConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
