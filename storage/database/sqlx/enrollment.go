package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/enrollment"
)

const enrollmentColumns = "id, student_id, course_id, status, enrolled_at, updated_at"

type enrollmentRow struct {
	ID         string    `db:"id"`
	StudentID  string    `db:"student_id"`
	CourseID   string    `db:"course_id"`
	Status     string    `db:"status"`
	EnrolledAt time.Time `db:"enrolled_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r enrollmentRow) enrollment() enrollment.Enrollment {
	return enrollment.Enrollment{
		ID:         r.ID,
		StudentID:  r.StudentID,
		CourseID:   r.CourseID,
		Status:     enrollment.Status(r.Status),
		EnrolledAt: r.EnrolledAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

type enrollmentRepository struct {
	exec sqlx.ExtContext
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec sqlx.ExtContext) *enrollmentRepository {
	return &enrollmentRepository{exec: exec}
}

func (repo *enrollmentRepository) get(ctx context.Context, q string, args ...interface{}) (enrollment.Enrollment, error) {
	var row enrollmentRow
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, args...); err != nil {
		if isNoRows(err) || isInvalidText(err) {
			return enrollment.Enrollment{}, enrollment.ErrNotFound
		}
		if isUniqueViolation(err) {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "querying enrollment")
	}
	return row.enrollment(), nil
}

// CreateEnrollment leaves duplicate detection to the (student_id, course_id) unique constraint.
func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	q := `INSERT INTO course_enrollments (` + enrollmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + enrollmentColumns
	return repo.get(
		ctx, q,
		newID(), e.StudentID, e.CourseID, string(e.Status), e.EnrolledAt.UTC(), e.UpdatedAt.UTC(),
	)
}

func (repo *enrollmentRepository) GetEnrollmentByID(ctx context.Context, id string) (enrollment.Enrollment, error) {
	return repo.get(ctx, "SELECT "+enrollmentColumns+" FROM course_enrollments WHERE id = $1", id)
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	var where whereClause
	if filter.CourseID != "" {
		where.add("course_id = ?", filter.CourseID)
	}
	if filter.StudentID != "" {
		where.add("student_id = ?", filter.StudentID)
	}
	if filter.Status != "" {
		where.add("status = ?", string(filter.Status))
	}
	q, args, err := build(
		"SELECT "+enrollmentColumns+" FROM course_enrollments"+where.String()+" ORDER BY enrolled_at DESC, id ASC",
		where.args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []enrollmentRow
	if err = sqlx.SelectContext(ctx, repo.exec, &rows, q, args...); err != nil {
		if isInvalidText(err) { // malformed course or student id
			return []enrollment.Enrollment{}, nil
		}
		return nil, errors.Wrap(err, "selecting enrollments")
	}
	enrs := make([]enrollment.Enrollment, 0, len(rows))
	for _, r := range rows {
		enrs = append(enrs, r.enrollment())
	}
	return enrs, nil
}

func (repo *enrollmentRepository) UpdateEnrollmentStatus(ctx context.Context, id string, status enrollment.Status, updatedAt time.Time) (enrollment.Enrollment, error) {
	q := "UPDATE course_enrollments SET status = $1, updated_at = $2 WHERE id = $3 RETURNING " + enrollmentColumns
	return repo.get(ctx, q, string(status), updatedAt.UTC(), id)
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, "DELETE FROM course_enrollments WHERE id = $1", id)
	if err != nil {
		if isInvalidText(err) {
			return enrollment.ErrNotFound
		}
		return errors.Wrap(err, "deleting enrollment")
	}
	return checkAffected(res, enrollment.ErrNotFound)
}
