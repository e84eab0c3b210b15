// internal/tracker/index.go

// Package tracker maintains each user's job-id buckets in Redis: one set per
// lifecycle stage, a job id living in exactly one set at a time. The buckets
// feed the dashboard rates without touching the application rows.
package tracker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"jobtrail/internal/common/errors"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/models"
)

// Index is the per-user stage index over Redis sets.
type Index struct {
	rdb    *redis.Client
	logger logger.Logger
}

// NewIndex creates the stage index.
func NewIndex(rdb *redis.Client, log logger.Logger) *Index {
	return &Index{rdb: rdb, logger: log}
}

func bucketKey(userID string, stage models.Stage) string {
	return fmt.Sprintf("user:%s:jobs:%s", userID, stage)
}

// Add places a job id into a user's stage bucket.
func (i *Index) Add(ctx context.Context, userID, jobID string, stage models.Stage) error {
	if err := i.rdb.SAdd(ctx, bucketKey(userID, stage), jobID).Err(); err != nil {
		return errors.NewStorageError(fmt.Errorf("failed to add job to %s bucket: %w", stage, err))
	}
	return nil
}

// Move transfers a job id between stage buckets atomically. Removing from a
// bucket the id was never in is a no-op, so Move is safe to retry.
func (i *Index) Move(ctx context.Context, userID, jobID string, from, to models.Stage) error {
	pipe := i.rdb.TxPipeline()
	pipe.SRem(ctx, bucketKey(userID, from), jobID)
	pipe.SAdd(ctx, bucketKey(userID, to), jobID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewStorageError(fmt.Errorf("failed to move job %s -> %s: %w", from, to, err))
	}
	i.logger.Debug("moved job between buckets", map[string]interface{}{
		"userId": userID,
		"jobId":  jobID,
		"from":   string(from),
		"to":     string(to),
	})
	return nil
}

// Remove drops a job id from every bucket it might be in.
func (i *Index) Remove(ctx context.Context, userID, jobID string) error {
	pipe := i.rdb.TxPipeline()
	for _, stage := range models.Stages {
		pipe.SRem(ctx, bucketKey(userID, stage), jobID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewStorageError(fmt.Errorf("failed to remove job from buckets: %w", err))
	}
	return nil
}

// Buckets loads all of a user's stage buckets. Missing keys come back as
// empty slices, so a brand-new user yields zero-valued buckets rather than
// an error.
func (i *Index) Buckets(ctx context.Context, userID string) (models.JobBuckets, error) {
	var buckets models.JobBuckets

	pipe := i.rdb.Pipeline()
	cmds := make(map[models.Stage]*redis.StringSliceCmd, len(models.Stages))
	for _, stage := range models.Stages {
		cmds[stage] = pipe.SMembers(ctx, bucketKey(userID, stage))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return buckets, errors.NewStorageError(fmt.Errorf("failed to load job buckets: %w", err))
	}

	buckets.Applied = cmds[models.StageApplied].Val()
	buckets.Screen = cmds[models.StageScreen].Val()
	buckets.Interview = cmds[models.StageInterview].Val()
	buckets.Offer = cmds[models.StageOffer].Val()
	buckets.Accepted = cmds[models.StageAccepted].Val()
	buckets.Rejected = cmds[models.StageRejected].Val()
	buckets.Withdrawn = cmds[models.StageWithdrawn].Val()
	return buckets, nil
}

// Stage reports which bucket currently holds a job id, or empty when the id
// is not tracked.
func (i *Index) Stage(ctx context.Context, userID, jobID string) (models.Stage, error) {
	for _, stage := range models.Stages {
		member, err := i.rdb.SIsMember(ctx, bucketKey(userID, stage), jobID).Result()
		if err != nil {
			return "", errors.NewStorageError(fmt.Errorf("failed to check %s bucket: %w", stage, err))
		}
		if member {
			return stage, nil
		}
	}
	return "", nil
}
