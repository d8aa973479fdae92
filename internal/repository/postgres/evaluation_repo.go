package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mrstrict/internal/domain"
	"mrstrict/internal/port"
)

const evaluationColumns = `id, owner_id, reference_name, status, candidate_count, scored_count,
	skipped_count, report_key, notified_to, notified_at, created_at, updated_at`

type evaluationRepo struct {
	db *sqlx.DB
}

// NewEvaluationRepo creates a new PostgreSQL-backed EvaluationRepository.
func NewEvaluationRepo(db *sqlx.DB) port.EvaluationRepository {
	return &evaluationRepo{db: db}
}

// Create inserts the evaluation and its rows in one transaction. Row order
// is kept through the position column.
func (r *evaluationRepo) Create(ctx context.Context, eval *domain.Evaluation) error {
	if eval.CreatedAt.IsZero() {
		eval.CreatedAt = time.Now().UTC()
	}
	eval.UpdatedAt = eval.CreatedAt

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("evaluationRepo.Create: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `INSERT INTO evaluations
		(id, owner_id, reference_name, status, candidate_count, scored_count,
		 skipped_count, report_key, notified_to, notified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		eval.ID, eval.OwnerID, eval.ReferenceName, eval.Status, eval.CandidateCount,
		eval.ScoredCount, eval.SkippedCount, eval.ReportKey, eval.NotifiedTo,
		eval.NotifiedAt, eval.CreatedAt, eval.UpdatedAt)
	if err != nil {
		return fmt.Errorf("evaluationRepo.Create: %w", err)
	}

	for i := range eval.Results {
		res := &eval.Results[i]
		_, err = tx.ExecContext(ctx, `INSERT INTO evaluation_results
			(evaluation_id, position, candidate_id, grade, score_percent, line_score, word_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			eval.ID, i, res.CandidateID, res.Grade, res.ScorePercent, res.LineScore, res.WordScore)
		if err != nil {
			return fmt.Errorf("evaluationRepo.Create result %q: %w", res.CandidateID, err)
		}
	}

	for i := range eval.Skipped {
		sk := &eval.Skipped[i]
		_, err = tx.ExecContext(ctx, `INSERT INTO evaluation_skipped
			(evaluation_id, position, candidate_id, status, reason)
			VALUES ($1, $2, $3, $4, $5)`,
			eval.ID, i, sk.CandidateID, sk.Status, sk.Reason)
		if err != nil {
			return fmt.Errorf("evaluationRepo.Create skipped %q: %w", sk.CandidateID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("evaluationRepo.Create: commit: %w", err)
	}
	return nil
}

func (r *evaluationRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Evaluation, error) {
	var eval domain.Evaluation
	err := r.db.GetContext(ctx, &eval,
		"SELECT "+evaluationColumns+" FROM evaluations WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("evaluationRepo.GetByID: %w", err)
	}

	eval.Results = []domain.ComparisonResult{}
	err = r.db.SelectContext(ctx, &eval.Results,
		`SELECT evaluation_id, candidate_id, grade, score_percent, line_score, word_score
		 FROM evaluation_results WHERE evaluation_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("evaluationRepo.GetByID results: %w", err)
	}

	eval.Skipped = []domain.SkippedCandidate{}
	err = r.db.SelectContext(ctx, &eval.Skipped,
		`SELECT evaluation_id, candidate_id, status, reason
		 FROM evaluation_skipped WHERE evaluation_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("evaluationRepo.GetByID skipped: %w", err)
	}
	return &eval, nil
}

func (r *evaluationRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Evaluation, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM evaluations WHERE owner_id = $1", ownerID); err != nil {
		return nil, 0, fmt.Errorf("evaluationRepo.ListByOwner count: %w", err)
	}

	evals := []domain.Evaluation{}
	err := r.db.SelectContext(ctx, &evals,
		"SELECT "+evaluationColumns+` FROM evaluations
		 WHERE owner_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("evaluationRepo.ListByOwner: %w", err)
	}
	return evals, total, nil
}

func (r *evaluationRepo) UpdateReportKey(ctx context.Context, id uuid.UUID, key string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE evaluations SET report_key = $1, updated_at = $2 WHERE id = $3",
		key, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("evaluationRepo.UpdateReportKey: %w", err)
	}
	return requireRow(result)
}

func (r *evaluationRepo) MarkNotified(ctx context.Context, id uuid.UUID, recipient string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE evaluations SET notified_to = $1, notified_at = $2, updated_at = $2 WHERE id = $3",
		recipient, at, id)
	if err != nil {
		return fmt.Errorf("evaluationRepo.MarkNotified: %w", err)
	}
	return requireRow(result)
}

func (r *evaluationRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM evaluations WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("evaluationRepo.Delete: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
