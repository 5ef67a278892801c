package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("Course not found")
	ErrCodeExists        = errors.New("A course with this code already exists")
	ErrInstructorMissing = errors.New("Instructor not found")
	ErrNotFaculty        = errors.New("Instructor must be a faculty member")

	staleMsg = "Course not found or has been modified by another process"
)

type (
	Repository interface {
		// CheckCodeUniqueness returns ErrCodeExists if a course, other than the excluded ones, has code.
		CheckCodeUniqueness(ctx context.Context, code string, excludedIDs ...string) error
		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryCourses(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Course, error)
		// UpdateCourse applies patch unconditionally and bumps the course's version.
		UpdateCourse(ctx context.Context, id string, patch Patch) (Course, error)
		// UpdateCourseWithVersion applies patch only if the stored version still equals version.
		// It returns ErrNotFound when nothing matched.
		UpdateCourseWithVersion(ctx context.Context, id string, version int, patch Patch) (Course, error)
		// DeleteCourse removes the course along with its materials, enrollments, feedback & posts.
		DeleteCourse(ctx context.Context, id string) error
	}

	// Users is the part of the user service courses depend on.
	Users interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo  Repository
		users Users
	}
)

func NewService(repo Repository, users Users) *Service {
	return &Service{repo: repo, users: users}
}

func (svc *Service) checkUniqueness(ctx context.Context, code string, exclIDs ...string) error {
	if err := svc.repo.CheckCodeUniqueness(ctx, code, exclIDs...); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

// checkInstructor makes sure id references an existing faculty member.
func (svc *Service) checkInstructor(ctx context.Context, id string) error {
	usr, err := svc.users.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewValidationError(
				ErrInstructorMissing,
				core.FieldError{Field: "instructor", Error: ErrInstructorMissing.Error()},
			)
		}
		return err
	}
	if usr.Role != auth.RoleFaculty {
		return core.NewValidationError(ErrNotFaculty, core.FieldError{Field: "instructor", Error: ErrNotFaculty.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	nc.Clean()
	if err := svc.checkUniqueness(ctx, nc.Code); err != nil {
		return Course{}, err
	}
	if nc.InstructorID != nil {
		if err := svc.checkInstructor(ctx, *nc.InstructorID); err != nil {
			return Course{}, err
		}
	}

	now := time.Now().UTC()
	return svc.repo.CreateCourse(ctx, Course{
		Name:         nc.Name,
		Code:         nc.Code,
		Description:  nc.Description,
		Credits:      nc.Credits,
		InstructorID: nc.InstructorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Course, error) {
	filter.Clean()
	return svc.repo.QueryCourses(ctx, filter, core.AllowedOrderings(ordering, OrderingFields...)...)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

// Update modifies the course, optionally gated on uc.Version (see user.Service.Update).
func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	uc.Clean()
	if uc.Version == nil {
		if _, err := svc.repo.GetCourseByID(ctx, id); err != nil {
			return Course{}, err
		}
	}
	if uc.Code != nil {
		if err := svc.checkUniqueness(ctx, *uc.Code, id); err != nil {
			return Course{}, err
		}
	}
	if uc.InstructorID != nil && *uc.InstructorID != "" {
		if err := svc.checkInstructor(ctx, *uc.InstructorID); err != nil {
			return Course{}, err
		}
	}

	patch := Patch{
		Name:         uc.Name,
		Code:         uc.Code,
		Description:  uc.Description,
		Credits:      uc.Credits,
		InstructorID: uc.InstructorID,
		UpdatedAt:    time.Now().UTC(),
	}
	if uc.Version == nil {
		return svc.repo.UpdateCourse(ctx, id, patch)
	}
	c, err := svc.repo.UpdateCourseWithVersion(ctx, id, *uc.Version, patch)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Course{}, core.NewValidationMsg(staleMsg)
		}
		return Course{}, err
	}
	return c, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}
