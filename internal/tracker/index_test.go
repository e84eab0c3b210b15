package tracker

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtrail/internal/common/logger"
	"jobtrail/internal/models"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewIndex(rdb, logger.NewNoOpLogger())
}

func TestIndex_AddAndBuckets(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "u1", "job-1", models.StageApplied))
	require.NoError(t, idx.Add(ctx, "u1", "job-2", models.StageApplied))
	require.NoError(t, idx.Add(ctx, "u1", "job-3", models.StageInterview))

	buckets, err := idx.Buckets(ctx, "u1")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"job-1", "job-2"}, buckets.Applied)
	assert.ElementsMatch(t, []string{"job-3"}, buckets.Interview)
	assert.Equal(t, 3, buckets.TotalApplications())
}

func TestIndex_MoveKeepsJobInExactlyOneBucket(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "u1", "job-1", models.StageApplied))
	require.NoError(t, idx.Move(ctx, "u1", "job-1", models.StageApplied, models.StageScreen))

	buckets, err := idx.Buckets(ctx, "u1")
	require.NoError(t, err)

	assert.Empty(t, buckets.Applied)
	assert.ElementsMatch(t, []string{"job-1"}, buckets.Screen)
	assert.Equal(t, 1, buckets.TotalApplications())
}

func TestIndex_AddIsIdempotent(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "u1", "job-1", models.StageApplied))
	require.NoError(t, idx.Add(ctx, "u1", "job-1", models.StageApplied))

	buckets, err := idx.Buckets(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, buckets.TotalApplications())
}

func TestIndex_BucketsForUnknownUserAreEmpty(t *testing.T) {
	idx := newTestIndex(t)

	buckets, err := idx.Buckets(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, buckets.TotalApplications())
}

func TestIndex_Stage(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "u1", "job-1", models.StageOffer))

	stage, err := idx.Stage(ctx, "u1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.StageOffer, stage)

	stage, err = idx.Stage(ctx, "u1", "unknown")
	require.NoError(t, err)
	assert.Equal(t, models.Stage(""), stage)
}

func TestIndex_Remove(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "u1", "job-1", models.StageScreen))
	require.NoError(t, idx.Remove(ctx, "u1", "job-1"))

	buckets, err := idx.Buckets(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, buckets.TotalApplications())
}

func TestIndex_UsersAreIsolated(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "u1", "job-1", models.StageApplied))

	buckets, err := idx.Buckets(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 0, buckets.TotalApplications())
}
