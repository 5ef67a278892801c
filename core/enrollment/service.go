package enrollment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("Enrollment not found")
	ErrAlreadyEnrolled = errors.New("Student is already enrolled in this course")
	ErrStudentRequired = errors.New("student is required")
	ErrStudentMissing  = errors.New("Student not found")
	ErrNotStudent      = errors.New("Only students can be enrolled in a course")
	ErrCourseMissing   = errors.New("Course not found")

	enrollOthersMsg  = "Students can only enroll themselves"
	notAuthorizedMsg = "Not authorized to delete this enrollment"
	notInstructorMsg = "Not authorized to update this enrollment"
)

type (
	Repository interface {
		// CreateEnrollment returns ErrAlreadyEnrolled if the student is already enrolled in the course.
		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		GetEnrollmentByID(ctx context.Context, id string) (Enrollment, error)
		QueryEnrollments(ctx context.Context, filter QueryFilter) ([]Enrollment, error)
		UpdateEnrollmentStatus(ctx context.Context, id string, status Status, updatedAt time.Time) (Enrollment, error)
		DeleteEnrollment(ctx context.Context, id string) error
	}

	Users interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Courses interface {
		GetByID(ctx context.Context, id string) (course.Course, error)
	}

	Service struct {
		repo    Repository
		users   Users
		courses Courses
	}
)

func NewService(repo Repository, users Users, courses Courses) *Service {
	return &Service{repo: repo, users: users, courses: courses}
}

func fieldErr(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// Enroll registers a student in a course. Students can only enroll themselves; admins & faculty must name
// the student.
func (svc *Service) Enroll(ctx context.Context, p auth.Principal, ne NewEnrollment) (Enrollment, error) {
	if p.IsStudent() {
		if ne.StudentID != "" && ne.StudentID != p.ID {
			return Enrollment{}, core.NewPermissionError(enrollOthersMsg)
		}
		ne.StudentID = p.ID
	}
	if ne.StudentID == "" {
		return Enrollment{}, fieldErr("student", ErrStudentRequired)
	}

	usr, err := svc.users.GetByID(ctx, ne.StudentID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Enrollment{}, fieldErr("student", ErrStudentMissing)
		}
		return Enrollment{}, err
	}
	if !usr.IsStudent() {
		return Enrollment{}, fieldErr("student", ErrNotStudent)
	}
	if _, err := svc.courses.GetByID(ctx, ne.CourseID); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return Enrollment{}, fieldErr("course", ErrCourseMissing)
		}
		return Enrollment{}, err
	}

	now := time.Now().UTC()
	enr, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		StudentID:  ne.StudentID,
		CourseID:   ne.CourseID,
		Status:     StatusActive,
		EnrolledAt: now,
		UpdatedAt:  now,
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyEnrolled {
			return Enrollment{}, core.NewValidationError(ErrAlreadyEnrolled)
		}
		return Enrollment{}, err
	}
	return enr, nil
}

// Query lists enrollments; students only ever see their own.
func (svc *Service) Query(ctx context.Context, p auth.Principal, filter QueryFilter) ([]Enrollment, error) {
	filter.Clean()
	if p.IsStudent() {
		filter.StudentID = p.ID
	}
	return svc.repo.QueryEnrollments(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Enrollment, error) {
	return svc.repo.GetEnrollmentByID(ctx, id)
}

// UpdateStatus changes the enrollment's status. Only the course's instructor or an admin may do so.
func (svc *Service) UpdateStatus(ctx context.Context, p auth.Principal, id string, status Status) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollmentByID(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	c, err := svc.courses.GetByID(ctx, enr.CourseID)
	if err != nil {
		return Enrollment{}, err
	}
	if !auth.OwnerOrElevated(c.Instructor(), p, auth.RoleAdmin) {
		return Enrollment{}, core.NewPermissionError(notInstructorMsg)
	}
	return svc.repo.UpdateEnrollmentStatus(ctx, id, status, time.Now().UTC())
}

// Delete unenrolls the student. Only the enrolled student or an admin may do so.
func (svc *Service) Delete(ctx context.Context, p auth.Principal, id string) error {
	enr, err := svc.repo.GetEnrollmentByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.OwnerOrElevated(enr.StudentID, p, auth.RoleAdmin) {
		return core.NewPermissionError(notAuthorizedMsg)
	}
	return svc.repo.DeleteEnrollment(ctx, id)
}
