package feedback

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
	ErrNotFound = errors.New("Feedback not found")

	notAuthorizedUpdateMsg = "Not authorized to update this feedback"
	notAuthorizedDeleteMsg = "Not authorized to delete this feedback"
)

type (
	Repository interface {
		// UpsertFeedback creates fb, or replaces the rating & comment of the feedback the same user
		// already left on the same course.
		UpsertFeedback(ctx context.Context, fb Feedback) (Feedback, error)
		GetFeedbackByID(ctx context.Context, id string) (Feedback, error)
		// QueryFeedback returns the course's feedback, newest first.
		QueryFeedback(ctx context.Context, courseID string) ([]Feedback, error)
		SummarizeFeedback(ctx context.Context, courseID string) (Summary, error)
		UpdateFeedback(ctx context.Context, id string, patch Patch) (Feedback, error)
		DeleteFeedback(ctx context.Context, id string) error
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

// Submit creates or replaces p's feedback on the course.
func (svc *Service) Submit(ctx context.Context, p auth.Principal, courseID string, nf NewFeedback) (Feedback, error) {
	if _, err := svc.courses.GetByID(ctx, courseID); err != nil {
		return Feedback{}, err
	}

	now := time.Now().UTC()
	return svc.repo.UpsertFeedback(ctx, Feedback{
		UserID:    p.ID,
		CourseID:  courseID,
		Rating:    nf.Rating,
		Comment:   nf.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) List(ctx context.Context, courseID string) ([]Feedback, Summary, error) {
	if _, err := svc.courses.GetByID(ctx, courseID); err != nil {
		return nil, Summary{}, err
	}
	fbs, err := svc.repo.QueryFeedback(ctx, courseID)
	if err != nil {
		return nil, Summary{}, err
	}
	sum, err := svc.repo.SummarizeFeedback(ctx, courseID)
	if err != nil {
		return nil, Summary{}, err
	}
	return fbs, sum, nil
}

func (svc *Service) Update(ctx context.Context, p auth.Principal, id string, uf UpdateFeedback) (Feedback, error) {
	fb, err := svc.repo.GetFeedbackByID(ctx, id)
	if err != nil {
		return Feedback{}, err
	}
	if !auth.OwnerOrElevated(fb.UserID, p, auth.RoleAdmin) {
		return Feedback{}, core.NewPermissionError(notAuthorizedUpdateMsg)
	}
	return svc.repo.UpdateFeedback(ctx, id, Patch{Rating: uf.Rating, Comment: uf.Comment, UpdatedAt: time.Now().UTC()})
}

func (svc *Service) Delete(ctx context.Context, p auth.Principal, id string) error {
	fb, err := svc.repo.GetFeedbackByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.OwnerOrElevated(fb.UserID, p, auth.RoleAdmin) {
		return core.NewPermissionError(notAuthorizedDeleteMsg)
	}
	return svc.repo.DeleteFeedback(ctx, id)
}
