// internal/applications/repository.go
package applications

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jobtrail/internal/common/database"
	"jobtrail/internal/common/errors"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/models"
)

// Repository persists application rows in Postgres. Stage dates live as
// nullable columns; the final status column doubles as the terminal guard.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

// NewRepository creates the application repository.
func NewRepository(pg *database.PostgresClient, log logger.Logger) *Repository {
	return &Repository{db: pg.DB, logger: log}
}

const applicationColumns = `id, user_id, job_id, company, applied_at, screen_at, interview_at, offer_at, final_status, final_status_at`

// Create inserts a new application row.
func (r *Repository) Create(ctx context.Context, app models.Application) error {
	query := `
		INSERT INTO applications (id, user_id, job_id, company, applied_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		app.ID, app.UserID, app.JobID, app.Company, app.StatusHistory.Applied)
	if err != nil {
		return errors.NewStorageError(fmt.Errorf("failed to insert application: %w", err))
	}
	return nil
}

// GetByID loads one application scoped to its owner.
func (r *Repository) GetByID(ctx context.Context, id, userID string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1 AND user_id = $2`, applicationColumns)

	app, err := scanApplication(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("application")
	}
	if err != nil {
		return nil, errors.NewStorageError(fmt.Errorf("failed to load application: %w", err))
	}
	return app, nil
}

// ListByUser returns all of a user's applications, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE user_id = $1 ORDER BY applied_at DESC`, applicationColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Errorf("failed to list applications: %w", err))
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, errors.NewStorageError(fmt.Errorf("failed to scan application: %w", err))
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError(fmt.Errorf("failed to iterate applications: %w", err))
	}
	return apps, nil
}

// SetStageDate stamps the entry date for an intermediate stage on an
// application that has not been finalized yet.
func (r *Repository) SetStageDate(ctx context.Context, id, userID string, stage models.Stage, at time.Time) error {
	var column string
	switch stage {
	case models.StageScreen:
		column = "screen_at"
	case models.StageInterview:
		column = "interview_at"
	case models.StageOffer:
		column = "offer_at"
	default:
		return errors.NewValidationError(fmt.Sprintf("cannot advance to stage %q", stage))
	}

	query := fmt.Sprintf(`
		UPDATE applications SET %s = $1
		WHERE id = $2 AND user_id = $3 AND final_status IS NULL`, column)

	res, err := r.db.ExecContext(ctx, query, at, id, userID)
	if err != nil {
		return errors.NewStorageError(fmt.Errorf("failed to advance application: %w", err))
	}
	return requireOneRow(res, "application")
}

// SetFinalStatus records a terminal outcome. The final_status IS NULL guard
// makes the first outcome stick; later attempts affect zero rows.
func (r *Repository) SetFinalStatus(ctx context.Context, id, userID string, status models.Stage, at time.Time) error {
	if !models.FinalStages[status] {
		return errors.NewValidationError(fmt.Sprintf("%q is not a final status", status))
	}

	query := `
		UPDATE applications SET final_status = $1, final_status_at = $2
		WHERE id = $3 AND user_id = $4 AND final_status IS NULL`

	res, err := r.db.ExecContext(ctx, query, string(status), at, id, userID)
	if err != nil {
		return errors.NewStorageError(fmt.Errorf("failed to finalize application: %w", err))
	}
	return requireOneRow(res, "application")
}

func requireOneRow(res sql.Result, resource string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewStorageError(fmt.Errorf("failed to read affected rows: %w", err))
	}
	if affected == 0 {
		return errors.NewNotFoundError(resource)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app                      models.Application
		screen, interview, offer sql.NullTime
		finalStatus              sql.NullString
		finalAt                  sql.NullTime
	)

	err := row.Scan(
		&app.ID, &app.UserID, &app.JobID, &app.Company,
		&app.StatusHistory.Applied, &screen, &interview, &offer,
		&finalStatus, &finalAt,
	)
	if err != nil {
		return nil, err
	}

	if screen.Valid {
		app.StatusHistory.Screen = &screen.Time
	}
	if interview.Valid {
		app.StatusHistory.Interview = &interview.Time
	}
	if offer.Valid {
		app.StatusHistory.Offer = &offer.Time
	}
	if finalStatus.Valid {
		app.FinalStatus = &models.FinalStatus{
			Status: models.Stage(finalStatus.String),
			Date:   finalAt.Time,
		}
	}
	return &app, nil
}
