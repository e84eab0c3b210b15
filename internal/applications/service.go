// internal/applications/service.go
package applications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobtrail/internal/common/errors"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/models"
)

// StageIndex mirrors application stage changes into the per-user job
// buckets the dashboard reads.
type StageIndex interface {
	Add(ctx context.Context, userID, jobID string, stage models.Stage) error
	Move(ctx context.Context, userID, jobID string, from, to models.Stage) error
}

// Service coordinates the application rows with the stage index. The row is
// the source of truth; the index is updated after each successful write.
type Service struct {
	repo   *Repository
	index  StageIndex
	now    func() time.Time
	logger logger.Logger
}

// NewService wires application tracking.
func NewService(repo *Repository, index StageIndex, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		index:  index,
		now:    time.Now,
		logger: log,
	}
}

// Track records a new application in the applied stage.
func (s *Service) Track(ctx context.Context, userID, jobID, company string) (*models.Application, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, errors.NewValidationError("jobId is required")
	}

	app := models.Application{
		ID:      uuid.NewString(),
		UserID:  userID,
		JobID:   jobID,
		Company: strings.TrimSpace(company),
		StatusHistory: models.StatusHistory{
			Applied: s.now().UTC(),
		},
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}
	if err := s.index.Add(ctx, userID, jobID, models.StageApplied); err != nil {
		// Row is already committed; the index self-heals on the next move.
		s.logger.Warn("failed to index new application", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err.Error(),
		})
	}

	s.logger.Info("application tracked", map[string]interface{}{
		"applicationId": app.ID,
		"company":       app.Company,
	})
	return &app, nil
}

// List returns a user's applications, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Application, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Advance moves an application into a later intermediate stage and stamps
// its entry date. Finalized applications cannot advance.
func (s *Service) Advance(ctx context.Context, userID, appID string, stage models.Stage) (*models.Application, error) {
	app, err := s.repo.GetByID(ctx, appID, userID)
	if err != nil {
		return nil, err
	}
	if app.FinalStatus != nil {
		return nil, errors.NewValidationError("application already has a final status")
	}

	from := app.CurrentStage()
	if err := s.repo.SetStageDate(ctx, appID, userID, stage, s.now().UTC()); err != nil {
		return nil, err
	}
	s.moveIndex(ctx, userID, app.JobID, from, stage)

	return s.repo.GetByID(ctx, appID, userID)
}

// Finalize records the terminal outcome for an application. The first
// outcome written wins; a second attempt reports not-found because the
// guarded update matches no row.
func (s *Service) Finalize(ctx context.Context, userID, appID string, status models.Stage) (*models.Application, error) {
	app, err := s.repo.GetByID(ctx, appID, userID)
	if err != nil {
		return nil, err
	}

	from := app.CurrentStage()
	if err := s.repo.SetFinalStatus(ctx, appID, userID, status, s.now().UTC()); err != nil {
		return nil, err
	}
	s.moveIndex(ctx, userID, app.JobID, from, status)

	return s.repo.GetByID(ctx, appID, userID)
}

func (s *Service) moveIndex(ctx context.Context, userID, jobID string, from, to models.Stage) {
	if err := s.index.Move(ctx, userID, jobID, from, to); err != nil {
		s.logger.Warn("failed to move job between buckets", map[string]interface{}{
			"jobId": jobID,
			"move":  fmt.Sprintf("%s->%s", from, to),
			"error": err.Error(),
		})
	}
}
