package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/enrollment"
)

var enrollmentCols = []string{"id", "student_id", "course_id", "status", "enrolled_at", "updated_at"}

func TestEnrollmentRepository_CreateEnrollment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnrollmentRepository(db)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	q := `(?s)^INSERT INTO course_enrollments \(id, student_id, course_id, status, enrolled_at, updated_at\).+RETURNING`
	mock.ExpectQuery(q).
		WithArgs(sqlmock.AnyArg(), "s1", "c1", "active", now, now).
		WillReturnRows(sqlmock.NewRows(enrollmentCols).AddRow("e1", "s1", "c1", "active", now, now))
	mock.ExpectQuery(q).
		WithArgs(sqlmock.AnyArg(), "s1", "c1", "active", now, now).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	enr := enrollment.Enrollment{StudentID: "s1", CourseID: "c1", Status: enrollment.StatusActive, EnrolledAt: now, UpdatedAt: now}
	got, err := repo.CreateEnrollment(context.Background(), enr)
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)
	assert.Equal(t, enrollment.StatusActive, got.Status)

	_, err = repo.CreateEnrollment(context.Background(), enr)
	assert.Equal(t, enrollment.ErrAlreadyEnrolled, err)
}

func TestEnrollmentRepository_QueryEnrollments(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnrollmentRepository(db)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	mock.ExpectQuery(`^SELECT .+ FROM course_enrollments ORDER BY enrolled_at DESC, id ASC$`).
		WillReturnRows(sqlmock.NewRows(enrollmentCols).
			AddRow("e2", "s2", "c1", "completed", now, now).
			AddRow("e1", "s1", "c1", "active", now.Add(-time.Hour), now))
	mock.ExpectQuery(`^SELECT .+ FROM course_enrollments WHERE course_id = \$1 AND student_id = \$2 AND status = \$3 ORDER BY`).
		WithArgs("c1", "s1", "dropped").
		WillReturnRows(sqlmock.NewRows(enrollmentCols))

	got, err := repo.QueryEnrollments(ctx, enrollment.QueryFilter{})
	require.NoError(t, err)
	if assert.Len(t, got, 2) {
		assert.Equal(t, enrollment.StatusCompleted, got[0].Status)
		assert.Equal(t, "e1", got[1].ID)
	}

	got, err = repo.QueryEnrollments(ctx, enrollment.QueryFilter{CourseID: "c1", StudentID: "s1", Status: enrollment.StatusDropped})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEnrollmentRepository_UpdateEnrollmentStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnrollmentRepository(db)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	q := `^UPDATE course_enrollments SET status = \$1, updated_at = \$2 WHERE id = \$3 RETURNING id, student_id`
	mock.ExpectQuery(q).
		WithArgs("completed", now, "e1").
		WillReturnRows(sqlmock.NewRows(enrollmentCols).AddRow("e1", "s1", "c1", "completed", now, now))
	mock.ExpectQuery(q).
		WithArgs("completed", now, "e2").
		WillReturnRows(sqlmock.NewRows(enrollmentCols))

	got, err := repo.UpdateEnrollmentStatus(context.Background(), "e1", enrollment.StatusCompleted, now)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusCompleted, got.Status)

	_, err = repo.UpdateEnrollmentStatus(context.Background(), "e2", enrollment.StatusCompleted, now)
	assert.Equal(t, enrollment.ErrNotFound, err)
}

func TestEnrollmentRepository_MalformedID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`^SELECT .+ FROM course_enrollments WHERE id = \$1$`).WithArgs("abc").
		WillReturnError(&pgconn.PgError{Code: "22P02"})
	mock.ExpectExec(`^DELETE FROM course_enrollments WHERE id = \$1$`).WithArgs("abc").
		WillReturnError(&pgconn.PgError{Code: "22P02"})
	mock.ExpectQuery(`^SELECT .+ FROM course_enrollments WHERE course_id = \$1 ORDER BY`).WithArgs("abc").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err := repo.GetEnrollmentByID(ctx, "abc")
	assert.Equal(t, enrollment.ErrNotFound, err)
	assert.Equal(t, enrollment.ErrNotFound, repo.DeleteEnrollment(ctx, "abc"))

	got, err := repo.QueryEnrollments(ctx, enrollment.QueryFilter{CourseID: "abc"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
