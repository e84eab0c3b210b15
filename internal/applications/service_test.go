package applications

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtrail/internal/common/database"
	"jobtrail/internal/common/errors"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/models"
)

type recordedMove struct {
	jobID    string
	from, to models.Stage
}

type fakeIndex struct {
	added []string
	moves []recordedMove
}

func (f *fakeIndex) Add(ctx context.Context, userID, jobID string, stage models.Stage) error {
	f.added = append(f.added, jobID)
	return nil
}

func (f *fakeIndex) Move(ctx context.Context, userID, jobID string, from, to models.Stage) error {
	f.moves = append(f.moves, recordedMove{jobID: jobID, from: from, to: to})
	return nil
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *fakeIndex) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	index := &fakeIndex{}
	repo := NewRepository(&database.PostgresClient{DB: db}, logger.NewNoOpLogger())
	svc := NewService(repo, index, logger.NewNoOpLogger())
	svc.now = func() time.Time { return appliedAt }
	return svc, mock, index
}

func TestService_Track(t *testing.T) {
	svc, mock, index := newTestService(t)

	mock.ExpectExec("INSERT INTO applications").
		WithArgs(sqlmock.AnyArg(), "u1", "job-1", "Acme", appliedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	app, err := svc.Track(context.Background(), "u1", "job-1", " Acme ")

	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, "Acme", app.Company)
	assert.Equal(t, models.StageApplied, app.CurrentStage())
	assert.Equal(t, []string{"job-1"}, index.added)
}

func TestService_Track_RequiresJobID(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Track(context.Background(), "u1", "  ", "Acme")

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}

func TestService_Advance_MovesIndexFromCurrentStage(t *testing.T) {
	svc, mock, index := newTestService(t)
	screenAt := appliedAt.AddDate(0, 0, 3)

	mock.ExpectQuery("SELECT .+ FROM applications WHERE id = ").
		WithArgs("app-1", "u1").
		WillReturnRows(appRows().AddRow(
			"app-1", "u1", "job-1", "Acme", appliedAt, screenAt, nil, nil, nil, nil))

	mock.ExpectExec("UPDATE applications SET interview_at = ").
		WithArgs(appliedAt, "app-1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("SELECT .+ FROM applications WHERE id = ").
		WithArgs("app-1", "u1").
		WillReturnRows(appRows().AddRow(
			"app-1", "u1", "job-1", "Acme", appliedAt, screenAt, appliedAt, nil, nil, nil))

	app, err := svc.Advance(context.Background(), "u1", "app-1", models.StageInterview)

	require.NoError(t, err)
	assert.Equal(t, models.StageInterview, app.CurrentStage())
	require.Len(t, index.moves, 1)
	assert.Equal(t, recordedMove{jobID: "job-1", from: models.StageScreen, to: models.StageInterview}, index.moves[0])
}

func TestService_Advance_RejectsFinalizedApplication(t *testing.T) {
	svc, mock, index := newTestService(t)

	mock.ExpectQuery("SELECT .+ FROM applications WHERE id = ").
		WithArgs("app-1", "u1").
		WillReturnRows(appRows().AddRow(
			"app-1", "u1", "job-1", "Acme", appliedAt, nil, nil, nil, "rejected", appliedAt))

	_, err := svc.Advance(context.Background(), "u1", "app-1", models.StageScreen)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
	assert.Empty(t, index.moves)
}

func TestService_Finalize(t *testing.T) {
	svc, mock, index := newTestService(t)

	mock.ExpectQuery("SELECT .+ FROM applications WHERE id = ").
		WithArgs("app-1", "u1").
		WillReturnRows(appRows().AddRow(
			"app-1", "u1", "job-1", "Acme", appliedAt, nil, nil, nil, nil, nil))

	mock.ExpectExec("UPDATE applications SET final_status = ").
		WithArgs("accepted", appliedAt, "app-1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("SELECT .+ FROM applications WHERE id = ").
		WithArgs("app-1", "u1").
		WillReturnRows(appRows().AddRow(
			"app-1", "u1", "job-1", "Acme", appliedAt, nil, nil, nil, "accepted", appliedAt))

	app, err := svc.Finalize(context.Background(), "u1", "app-1", models.StageAccepted)

	require.NoError(t, err)
	require.NotNil(t, app.FinalStatus)
	assert.Equal(t, models.StageAccepted, app.FinalStatus.Status)
	require.Len(t, index.moves, 1)
	assert.Equal(t, models.StageAccepted, index.moves[0].to)
}
