package coursedetail

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/course"
)

var (
	// errors
	ErrNotFound = errors.New("Course detail not found")

	notAuthorizedMsg = "Not authorized to manage materials of this course"
)

type (
	Repository interface {
		CreateDetail(ctx context.Context, d CourseDetail) (CourseDetail, error)
		GetDetailByID(ctx context.Context, id string) (CourseDetail, error)
		// QueryDetails returns the course's materials ordered by week then creation date.
		QueryDetails(ctx context.Context, courseID string) ([]CourseDetail, error)
		UpdateDetail(ctx context.Context, id string, patch Patch) (CourseDetail, error)
		DeleteDetail(ctx context.Context, id string) error
	}

	Courses interface {
		GetByID(ctx context.Context, id string) (course.Course, error)
	}

	Service struct {
		repo    Repository
		courses Courses
	}
)

func NewService(repo Repository, courses Courses) *Service {
	return &Service{repo: repo, courses: courses}
}

// authorize loads the course and checks that p is its instructor or an admin.
func (svc *Service) authorize(ctx context.Context, p auth.Principal, courseID string) error {
	c, err := svc.courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if !auth.OwnerOrElevated(c.Instructor(), p, auth.RoleAdmin) {
		return core.NewPermissionError(notAuthorizedMsg)
	}
	return nil
}

func (svc *Service) List(ctx context.Context, courseID string) ([]CourseDetail, error) {
	if _, err := svc.courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryDetails(ctx, courseID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (CourseDetail, error) {
	return svc.repo.GetDetailByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, p auth.Principal, courseID string, nd NewCourseDetail) (CourseDetail, error) {
	if err := svc.authorize(ctx, p, courseID); err != nil {
		return CourseDetail{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateDetail(ctx, CourseDetail{
		CourseID:    courseID,
		Title:       nd.Title,
		Description: nd.Description,
		ContentURL:  nd.ContentURL,
		Week:        nd.Week,
		CreatedBy:   p.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) Update(ctx context.Context, p auth.Principal, id string, ud UpdateCourseDetail) (CourseDetail, error) {
	d, err := svc.repo.GetDetailByID(ctx, id)
	if err != nil {
		return CourseDetail{}, err
	}
	if err := svc.authorize(ctx, p, d.CourseID); err != nil {
		return CourseDetail{}, err
	}
	return svc.repo.UpdateDetail(ctx, id, Patch{
		Title:       ud.Title,
		Description: ud.Description,
		ContentURL:  ud.ContentURL,
		Week:        ud.Week,
		UpdatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) Delete(ctx context.Context, p auth.Principal, id string) error {
	d, err := svc.repo.GetDetailByID(ctx, id)
	if err != nil {
		return err
	}
	if err := svc.authorize(ctx, p, d.CourseID); err != nil {
		return err
	}
	return svc.repo.DeleteDetail(ctx, id)
}
