package discussion

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
	ErrPostNotFound  = errors.New("Post not found")
	ErrReplyNotFound = errors.New("Reply not found")
	ErrPostDeleted   = errors.New("Cannot reply to a deleted post")
)

// roles that may moderate any post or reply
var moderators = []auth.Role{auth.RoleFaculty}

type (
	Repository interface {
		CreatePost(ctx context.Context, post Post) (Post, error)
		// GetPostByID also returns soft-deleted posts.
		GetPostByID(ctx context.Context, id string) (Post, error)
		// QueryPosts returns a page of the course's non deleted posts, pinned first then newest, along with
		// the total number of non deleted posts.
		QueryPosts(ctx context.Context, courseID string, page core.Page) ([]Post, int, error)
		UpdatePost(ctx context.Context, id string, patch PostPatch) (Post, error)

		CreateReply(ctx context.Context, r Reply) (Reply, error)
		// GetReplyByID also returns soft-deleted replies.
		GetReplyByID(ctx context.Context, id string) (Reply, error)
		// QueryReplies returns the post's non deleted replies, oldest first.
		QueryReplies(ctx context.Context, postID string) ([]Reply, error)
		UpdateReply(ctx context.Context, id string, patch ReplyPatch) (Reply, error)
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

func (svc *Service) ListPosts(ctx context.Context, courseID string, page core.Page) ([]Post, core.Pagination, error) {
	page.Clean()
	if _, err := svc.courses.GetByID(ctx, courseID); err != nil {
		return nil, core.Pagination{}, err
	}
	posts, total, err := svc.repo.QueryPosts(ctx, courseID, page)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	return posts, core.NewPagination(page, total), nil
}

func (svc *Service) CreatePost(ctx context.Context, p auth.Principal, courseID string, np NewPost) (Post, error) {
	if _, err := svc.courses.GetByID(ctx, courseID); err != nil {
		return Post{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreatePost(ctx, Post{
		CourseID:  courseID,
		UserID:    p.ID,
		Title:     np.Title,
		Content:   np.Content,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// getPost hides soft-deleted posts.
func (svc *Service) getPost(ctx context.Context, id string) (Post, error) {
	post, err := svc.repo.GetPostByID(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if post.IsDeleted {
		return Post{}, ErrPostNotFound
	}
	return post, nil
}

func (svc *Service) getReply(ctx context.Context, id string) (Reply, error) {
	r, err := svc.repo.GetReplyByID(ctx, id)
	if err != nil {
		return Reply{}, err
	}
	if r.IsDeleted {
		return Reply{}, ErrReplyNotFound
	}
	return r, nil
}

func (svc *Service) GetThread(ctx context.Context, id string) (Thread, error) {
	post, err := svc.getPost(ctx, id)
	if err != nil {
		return Thread{}, err
	}
	replies, err := svc.repo.QueryReplies(ctx, id)
	if err != nil {
		return Thread{}, err
	}
	return Thread{Post: post, Replies: replies}, nil
}

func (svc *Service) UpdatePost(ctx context.Context, p auth.Principal, id string, up UpdatePost) (Post, error) {
	post, err := svc.getPost(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if !auth.OwnerOrElevated(post.UserID, p, moderators...) {
		return Post{}, core.NewPermissionError("Not authorized to update this post")
	}
	return svc.repo.UpdatePost(ctx, id, PostPatch{Title: up.Title, Content: up.Content, UpdatedAt: time.Now().UTC()})
}

// DeletePost soft-deletes the post.
func (svc *Service) DeletePost(ctx context.Context, p auth.Principal, id string) error {
	post, err := svc.getPost(ctx, id)
	if err != nil {
		return err
	}
	if !auth.OwnerOrElevated(post.UserID, p, moderators...) {
		return core.NewPermissionError("Not authorized to delete this post")
	}
	now := time.Now().UTC()
	deleted := true
	_, err = svc.repo.UpdatePost(ctx, id, PostPatch{IsDeleted: &deleted, DeletedAt: &now, UpdatedAt: now})
	return err
}

func (svc *Service) PinPost(ctx context.Context, id string, pinned bool) (Post, error) {
	if _, err := svc.getPost(ctx, id); err != nil {
		return Post{}, err
	}
	return svc.repo.UpdatePost(ctx, id, PostPatch{IsPinned: &pinned, UpdatedAt: time.Now().UTC()})
}

func (svc *Service) CreateReply(ctx context.Context, p auth.Principal, postID string, nr NewReply) (Reply, error) {
	post, err := svc.repo.GetPostByID(ctx, postID)
	if err != nil {
		return Reply{}, err
	}
	if post.IsDeleted {
		return Reply{}, core.NewValidationError(ErrPostDeleted)
	}

	now := time.Now().UTC()
	return svc.repo.CreateReply(ctx, Reply{
		PostID:    postID,
		UserID:    p.ID,
		Content:   nr.Content,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) UpdateReply(ctx context.Context, p auth.Principal, id string, nr NewReply) (Reply, error) {
	r, err := svc.getReply(ctx, id)
	if err != nil {
		return Reply{}, err
	}
	if !auth.OwnerOrElevated(r.UserID, p, moderators...) {
		return Reply{}, core.NewPermissionError("Not authorized to update this reply")
	}
	return svc.repo.UpdateReply(ctx, id, ReplyPatch{Content: &nr.Content, UpdatedAt: time.Now().UTC()})
}

// DeleteReply soft-deletes the reply.
func (svc *Service) DeleteReply(ctx context.Context, p auth.Principal, id string) error {
	r, err := svc.getReply(ctx, id)
	if err != nil {
		return err
	}
	if !auth.OwnerOrElevated(r.UserID, p, moderators...) {
		return core.NewPermissionError("Not authorized to delete this reply")
	}
	now := time.Now().UTC()
	deleted := true
	_, err = svc.repo.UpdateReply(ctx, id, ReplyPatch{IsDeleted: &deleted, DeletedAt: &now, UpdatedAt: now})
	return err
}
