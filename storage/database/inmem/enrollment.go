package inmemdb

import (
	"context"
	"strings"
	"time"

	"github.com/trezcool/darasa/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.enrollment.mutex.Lock()
	defer repo.db.enrollment.mutex.Unlock()

	for _, enr := range repo.db.enrollment.rows {
		if enr.StudentID == e.StudentID && enr.CourseID == e.CourseID {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
	}
	e.ID = newID()
	stored := e
	repo.db.enrollment.rows[e.ID] = &stored
	return e, nil
}

func (repo *enrollmentRepository) GetEnrollmentByID(_ context.Context, id string) (enrollment.Enrollment, error) {
	repo.db.enrollment.mutex.RLock()
	defer repo.db.enrollment.mutex.RUnlock()

	if e, ok := repo.db.enrollment.rows[id]; ok {
		return *e, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) QueryEnrollments(_ context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	repo.db.enrollment.mutex.RLock()
	defer repo.db.enrollment.mutex.RUnlock()

	enrs := repo.db.enrollment.all(func(e *enrollment.Enrollment) bool {
		return (filter.CourseID == "" || e.CourseID == filter.CourseID) &&
			(filter.StudentID == "" || e.StudentID == filter.StudentID) &&
			(filter.Status == "" || e.Status == filter.Status)
	})
	sortRows(enrs, func(a, b enrollment.Enrollment) int {
		if c := compareTime(b.EnrolledAt, a.EnrolledAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return enrs, nil
}

func (repo *enrollmentRepository) UpdateEnrollmentStatus(_ context.Context, id string, status enrollment.Status, updatedAt time.Time) (enrollment.Enrollment, error) {
	repo.db.enrollment.mutex.Lock()
	defer repo.db.enrollment.mutex.Unlock()

	e, ok := repo.db.enrollment.rows[id]
	if !ok {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	e.Status = status
	e.UpdatedAt = updatedAt
	return *e, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(_ context.Context, id string) error {
	repo.db.enrollment.mutex.Lock()
	defer repo.db.enrollment.mutex.Unlock()

	if _, ok := repo.db.enrollment.rows[id]; !ok {
		return enrollment.ErrNotFound
	}
	delete(repo.db.enrollment.rows, id)
	return nil
}
