package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mrstrict/internal/domain"
	"mrstrict/internal/port"
	"mrstrict/internal/repository/postgres"
)

func newMockRepo(t *testing.T) (port.EvaluationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return postgres.NewEvaluationRepo(sqlx.NewDb(db, "pgx")), mock
}

var evaluationCols = []string{
	"id", "owner_id", "reference_name", "status", "candidate_count", "scored_count",
	"skipped_count", "report_key", "notified_to", "notified_at", "created_at", "updated_at",
}

func TestEvaluationRepo_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	eval := &domain.Evaluation{
		ID:             uuid.New(),
		OwnerID:        uuid.New(),
		ReferenceName:  "answer-key.pdf",
		Status:         domain.EvaluationStatusCompleted,
		CandidateCount: 2,
		ScoredCount:    1,
		SkippedCount:   1,
		Results: []domain.ComparisonResult{
			{CandidateID: "alice.pdf", Grade: 9, ScorePercent: 80, LineScore: 100, WordScore: 66.67},
		},
		Skipped: []domain.SkippedCandidate{
			{CandidateID: "bob.pdf", Status: domain.ExtractionEmpty, Reason: "no text found in document"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO evaluations").
		WithArgs(eval.ID, eval.OwnerID, "answer-key.pdf", "completed", 2, 1, 1, "", "", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO evaluation_results").
		WithArgs(eval.ID, 0, "alice.pdf", 9, 80.0, 100.0, 66.67).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO evaluation_skipped").
		WithArgs(eval.ID, 0, "bob.pdf", "empty", "no text found in document").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), eval))
	assert.False(t, eval.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepo_Create_RollsBackOnRowFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	eval := &domain.Evaluation{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Status:  domain.EvaluationStatusCompleted,
		Results: []domain.ComparisonResult{{CandidateID: "alice.pdf", Grade: 9, ScorePercent: 80}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO evaluations").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO evaluation_results").WillReturnError(errors.New("check constraint violated"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), eval)
	assert.ErrorContains(t, err, "alice.pdf")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepo_GetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	id, owner := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM evaluations WHERE id = \\$1 AND owner_id = \\$2").
		WithArgs(id, owner).
		WillReturnRows(sqlmock.NewRows(evaluationCols).
			AddRow(id.String(), owner.String(), "answer-key.pdf", "completed", 2, 1, 1,
				"evaluations/x/assignment_marks.csv", "teacher@example.com", now, now, now))
	mock.ExpectQuery("FROM evaluation_results WHERE evaluation_id = \\$1 ORDER BY position").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"evaluation_id", "candidate_id", "grade", "score_percent", "line_score", "word_score"}).
			AddRow(id.String(), "alice.pdf", 9, 80.0, 100.0, 66.67))
	mock.ExpectQuery("FROM evaluation_skipped WHERE evaluation_id = \\$1 ORDER BY position").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"evaluation_id", "candidate_id", "status", "reason"}).
			AddRow(id.String(), "bob.pdf", "failed", "malformed pdf"))

	eval, err := repo.GetByID(context.Background(), owner, id)
	require.NoError(t, err)

	assert.Equal(t, id, eval.ID)
	assert.Equal(t, domain.EvaluationStatusCompleted, eval.Status)
	assert.Equal(t, "teacher@example.com", eval.NotifiedTo)
	require.NotNil(t, eval.NotifiedAt)
	require.Len(t, eval.Results, 1)
	assert.Equal(t, domain.Grade(9), eval.Results[0].Grade)
	require.Len(t, eval.Skipped, 1)
	assert.Equal(t, domain.ExtractionFailed, eval.Skipped[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepo_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM evaluations").WillReturnRows(sqlmock.NewRows(evaluationCols))

	_, err := repo.GetByID(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvaluationRepo_ListByOwner(t *testing.T) {
	repo, mock := newMockRepo(t)
	owner := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM evaluations WHERE owner_id = \\$1").
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("ORDER BY created_at DESC LIMIT \\$2 OFFSET \\$3").
		WithArgs(owner, 2, 0).
		WillReturnRows(sqlmock.NewRows(evaluationCols).
			AddRow(uuid.NewString(), owner.String(), "a.pdf", "completed", 1, 1, 0, "", "", nil, now, now).
			AddRow(uuid.NewString(), owner.String(), "b.pdf", "no_valid_input", 1, 0, 1, "", "", nil, now, now))

	evals, total, err := repo.ListByOwner(context.Background(), owner, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, evals, 2)
	assert.Nil(t, evals[0].NotifiedAt)
	assert.Equal(t, domain.EvaluationStatusNoValidInput, evals[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepo_UpdatesRequireExistingRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE evaluations SET report_key").
		WithArgs("evaluations/key.csv", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE evaluations SET notified_to").
		WithArgs("teacher@example.com", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.UpdateReportKey(context.Background(), id, "evaluations/key.csv"))
	assert.ErrorIs(t, repo.MarkNotified(context.Background(), id, "teacher@example.com", time.Now()), domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepo_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)
	id, owner := uuid.New(), uuid.New()

	mock.ExpectExec("DELETE FROM evaluations WHERE id = \\$1 AND owner_id = \\$2").
		WithArgs(id, owner).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM evaluations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), owner, id))
	assert.ErrorIs(t, repo.Delete(context.Background(), owner, id), domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
