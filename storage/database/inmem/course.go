package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/coursedetail"
	"github.com/trezcool/darasa/core/discussion"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/feedback"
)

var courseOrderings = map[string]func(a, b course.Course) int{
	"name":       func(a, b course.Course) int { return strings.Compare(a.Name, b.Name) },
	"code":       func(a, b course.Course) int { return strings.Compare(a.Code, b.Code) },
	"credits":    func(a, b course.Course) int { return compareInt(a.Credits, b.Credits) },
	"created_at": func(a, b course.Course) int { return compareTime(a.CreatedAt, b.CreatedAt) },
	"updated_at": func(a, b course.Course) int { return compareTime(a.UpdatedAt, b.UpdatedAt) },
}

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

// copyCourse keeps callers from sharing the stored instructor pointer.
func copyCourse(c *course.Course) course.Course {
	cp := *c
	if c.InstructorID != nil {
		id := *c.InstructorID
		cp.InstructorID = &id
	}
	return cp
}

func (repo *courseRepository) CheckCodeUniqueness(_ context.Context, code string, excludedIDs ...string) error {
	repo.db.course.mutex.RLock()
	defer repo.db.course.mutex.RUnlock()

	for _, c := range repo.db.course.rows {
		if strings.EqualFold(c.Code, code) && !contains(excludedIDs, c.ID) {
			return course.ErrCodeExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.course.mutex.Lock()
	defer repo.db.course.mutex.Unlock()

	c.ID = newID()
	c.Version = 0
	stored := copyCourse(&c)
	repo.db.course.rows[c.ID] = &stored
	return c, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.course.mutex.RLock()
	defer repo.db.course.mutex.RUnlock()

	if c, ok := repo.db.course.rows[id]; ok {
		return copyCourse(c), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter, ordering ...core.DBOrdering) ([]course.Course, error) {
	repo.db.course.mutex.RLock()
	defer repo.db.course.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.course.rows))
	for _, c := range repo.db.course.rows {
		if filter.Search != "" &&
			!containsFold(c.Name, filter.Search) &&
			!containsFold(c.Code, filter.Search) &&
			!containsFold(c.Description, filter.Search) {
			continue
		}
		if filter.InstructorID != "" && !c.IsInstructor(filter.InstructorID) {
			continue
		}
		courses = append(courses, copyCourse(c))
	}
	orderRows(courses, ordering, courseOrderings, func(a, b course.Course) int {
		return strings.Compare(a.Code, b.Code)
	})
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, id string, patch course.Patch) (course.Course, error) {
	repo.db.course.mutex.Lock()
	defer repo.db.course.mutex.Unlock()

	c, ok := repo.db.course.rows[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	patch.Apply(c)
	c.Version++
	return copyCourse(c), nil
}

func (repo *courseRepository) UpdateCourseWithVersion(_ context.Context, id string, version int, patch course.Patch) (course.Course, error) {
	repo.db.course.mutex.Lock()
	defer repo.db.course.mutex.Unlock()

	c, ok := repo.db.course.rows[id]
	if !ok || c.Version != version {
		return course.Course{}, course.ErrNotFound
	}
	patch.Apply(c)
	c.Version++
	return copyCourse(c), nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	db := repo.db
	db.course.mutex.Lock()
	defer db.course.mutex.Unlock()

	if _, ok := db.course.rows[id]; !ok {
		return course.ErrNotFound
	}
	delete(db.course.rows, id)

	db.detail.mutex.Lock()
	db.detail.deleteWhere(func(d *coursedetail.CourseDetail) bool { return d.CourseID == id })
	db.detail.mutex.Unlock()

	db.enrollment.mutex.Lock()
	db.enrollment.deleteWhere(func(e *enrollment.Enrollment) bool { return e.CourseID == id })
	db.enrollment.mutex.Unlock()

	db.feedback.mutex.Lock()
	db.feedback.deleteWhere(func(fb *feedback.Feedback) bool { return fb.CourseID == id })
	db.feedback.mutex.Unlock()

	db.post.mutex.Lock()
	db.reply.mutex.Lock()
	postIDs := db.post.deleteWhere(func(p *discussion.Post) bool { return p.CourseID == id })
	db.reply.deleteWhere(func(r *discussion.Reply) bool { return contains(postIDs, r.PostID) })
	db.reply.mutex.Unlock()
	db.post.mutex.Unlock()

	return nil
}
