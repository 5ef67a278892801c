package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/feedback"
)

const feedbackColumns = "id, user_id, course_id, rating, comment, created_at, updated_at"

type feedbackRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	CourseID  string    `db:"course_id"`
	Rating    int       `db:"rating"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r feedbackRow) feedback() feedback.Feedback {
	return feedback.Feedback{
		ID:        r.ID,
		UserID:    r.UserID,
		CourseID:  r.CourseID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type feedbackRepository struct {
	exec sqlx.ExtContext
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(exec sqlx.ExtContext) *feedbackRepository {
	return &feedbackRepository{exec: exec}
}

func (repo *feedbackRepository) get(ctx context.Context, q string, args ...interface{}) (feedback.Feedback, error) {
	var row feedbackRow
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, args...); err != nil {
		if isNoRows(err) || isInvalidText(err) {
			return feedback.Feedback{}, feedback.ErrNotFound
		}
		return feedback.Feedback{}, errors.Wrap(err, "querying feedback")
	}
	return row.feedback(), nil
}

// UpsertFeedback relies on the (user_id, course_id) unique constraint.
func (repo *feedbackRepository) UpsertFeedback(ctx context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	q := `INSERT INTO course_feedback (` + feedbackColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, course_id) DO UPDATE
		SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = EXCLUDED.updated_at
		RETURNING ` + feedbackColumns
	return repo.get(
		ctx, q,
		newID(), fb.UserID, fb.CourseID, fb.Rating, fb.Comment, fb.CreatedAt.UTC(), fb.UpdatedAt.UTC(),
	)
}

func (repo *feedbackRepository) GetFeedbackByID(ctx context.Context, id string) (feedback.Feedback, error) {
	return repo.get(ctx, "SELECT "+feedbackColumns+" FROM course_feedback WHERE id = $1", id)
}

func (repo *feedbackRepository) QueryFeedback(ctx context.Context, courseID string) ([]feedback.Feedback, error) {
	var rows []feedbackRow
	q := "SELECT " + feedbackColumns + " FROM course_feedback WHERE course_id = $1 ORDER BY created_at DESC, id ASC"
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting feedback")
	}
	fbs := make([]feedback.Feedback, 0, len(rows))
	for _, r := range rows {
		fbs = append(fbs, r.feedback())
	}
	return fbs, nil
}

func (repo *feedbackRepository) SummarizeFeedback(ctx context.Context, courseID string) (feedback.Summary, error) {
	var sum struct {
		Count   int     `db:"count"`
		Average float64 `db:"average"`
	}
	q := "SELECT COUNT(*) AS count, COALESCE(AVG(rating), 0)::float8 AS average FROM course_feedback WHERE course_id = $1"
	if err := sqlx.GetContext(ctx, repo.exec, &sum, q, courseID); err != nil {
		return feedback.Summary{}, errors.Wrap(err, "summarizing feedback")
	}
	return feedback.Summary{Count: sum.Count, Average: sum.Average}, nil
}

func (repo *feedbackRepository) UpdateFeedback(ctx context.Context, id string, patch feedback.Patch) (feedback.Feedback, error) {
	set := new(setClause)
	if patch.Rating != nil {
		set.add("rating", *patch.Rating)
	}
	if patch.Comment != nil {
		set.add("comment", *patch.Comment)
	}
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = time.Now()
	}
	set.add("updated_at", patch.UpdatedAt.UTC())

	q := "UPDATE course_feedback SET " + set.String() + " WHERE id = " + set.arg(id) + " RETURNING " + feedbackColumns
	return repo.get(ctx, q, set.args...)
}

func (repo *feedbackRepository) DeleteFeedback(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, "DELETE FROM course_feedback WHERE id = $1", id)
	if err != nil {
		if isInvalidText(err) {
			return feedback.ErrNotFound
		}
		return errors.Wrap(err, "deleting feedback")
	}
	return checkAffected(res, feedback.ErrNotFound)
}
