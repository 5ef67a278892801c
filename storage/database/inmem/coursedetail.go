package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/darasa/core/coursedetail"
)

type courseDetailRepository struct {
	db *DB
}

var _ coursedetail.Repository = (*courseDetailRepository)(nil) // interface compliance check

func NewCourseDetailRepository(db *DB) *courseDetailRepository {
	return &courseDetailRepository{db: db}
}

func (repo *courseDetailRepository) CreateDetail(_ context.Context, d coursedetail.CourseDetail) (coursedetail.CourseDetail, error) {
	repo.db.detail.mutex.Lock()
	defer repo.db.detail.mutex.Unlock()

	d.ID = newID()
	stored := d
	repo.db.detail.rows[d.ID] = &stored
	return d, nil
}

func (repo *courseDetailRepository) GetDetailByID(_ context.Context, id string) (coursedetail.CourseDetail, error) {
	repo.db.detail.mutex.RLock()
	defer repo.db.detail.mutex.RUnlock()

	if d, ok := repo.db.detail.rows[id]; ok {
		return *d, nil
	}
	return coursedetail.CourseDetail{}, coursedetail.ErrNotFound
}

func (repo *courseDetailRepository) QueryDetails(_ context.Context, courseID string) ([]coursedetail.CourseDetail, error) {
	repo.db.detail.mutex.RLock()
	defer repo.db.detail.mutex.RUnlock()

	details := repo.db.detail.all(func(d *coursedetail.CourseDetail) bool { return d.CourseID == courseID })
	sortRows(details, func(a, b coursedetail.CourseDetail) int {
		if c := compareInt(a.Week, b.Week); c != 0 {
			return c
		}
		if c := compareTime(a.CreatedAt, b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return details, nil
}

func (repo *courseDetailRepository) UpdateDetail(_ context.Context, id string, patch coursedetail.Patch) (coursedetail.CourseDetail, error) {
	repo.db.detail.mutex.Lock()
	defer repo.db.detail.mutex.Unlock()

	d, ok := repo.db.detail.rows[id]
	if !ok {
		return coursedetail.CourseDetail{}, coursedetail.ErrNotFound
	}
	patch.Apply(d)
	return *d, nil
}

func (repo *courseDetailRepository) DeleteDetail(_ context.Context, id string) error {
	repo.db.detail.mutex.Lock()
	defer repo.db.detail.mutex.Unlock()

	if _, ok := repo.db.detail.rows[id]; !ok {
		return coursedetail.ErrNotFound
	}
	delete(repo.db.detail.rows, id)
	return nil
}
