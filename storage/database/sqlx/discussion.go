package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/discussion"
)

const (
	postColumns  = "id, course_id, user_id, title, content, is_pinned, is_deleted, deleted_at, created_at, updated_at"
	replyColumns = "id, post_id, user_id, content, is_deleted, deleted_at, created_at, updated_at"
)

type postRow struct {
	ID        string    `db:"id"`
	CourseID  string    `db:"course_id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	IsPinned  bool      `db:"is_pinned"`
	IsDeleted bool      `db:"is_deleted"`
	DeletedAt null.Time `db:"deleted_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r postRow) post() discussion.Post {
	return discussion.Post{
		ID:        r.ID,
		CourseID:  r.CourseID,
		UserID:    r.UserID,
		Title:     r.Title,
		Content:   r.Content,
		IsPinned:  r.IsPinned,
		IsDeleted: r.IsDeleted,
		DeletedAt: utcPtr(r.DeletedAt),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type replyRow struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	UserID    string    `db:"user_id"`
	Content   string    `db:"content"`
	IsDeleted bool      `db:"is_deleted"`
	DeletedAt null.Time `db:"deleted_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r replyRow) reply() discussion.Reply {
	return discussion.Reply{
		ID:        r.ID,
		PostID:    r.PostID,
		UserID:    r.UserID,
		Content:   r.Content,
		IsDeleted: r.IsDeleted,
		DeletedAt: utcPtr(r.DeletedAt),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func utcPtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

type discussionRepository struct {
	exec sqlx.ExtContext
}

var _ discussion.Repository = (*discussionRepository)(nil) // interface compliance check

func NewDiscussionRepository(exec sqlx.ExtContext) *discussionRepository {
	return &discussionRepository{exec: exec}
}

func (repo *discussionRepository) getPost(ctx context.Context, q string, args ...interface{}) (discussion.Post, error) {
	var row postRow
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, args...); err != nil {
		if isNoRows(err) || isInvalidText(err) {
			return discussion.Post{}, discussion.ErrPostNotFound
		}
		return discussion.Post{}, errors.Wrap(err, "querying post")
	}
	return row.post(), nil
}

func (repo *discussionRepository) getReply(ctx context.Context, q string, args ...interface{}) (discussion.Reply, error) {
	var row replyRow
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, args...); err != nil {
		if isNoRows(err) || isInvalidText(err) {
			return discussion.Reply{}, discussion.ErrReplyNotFound
		}
		return discussion.Reply{}, errors.Wrap(err, "querying reply")
	}
	return row.reply(), nil
}

func (repo *discussionRepository) CreatePost(ctx context.Context, post discussion.Post) (discussion.Post, error) {
	q := `INSERT INTO course_posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, false, NULL, $7, $8)
		RETURNING ` + postColumns
	return repo.getPost(
		ctx, q,
		newID(), post.CourseID, post.UserID, post.Title, post.Content, post.IsPinned,
		post.CreatedAt.UTC(), post.UpdatedAt.UTC(),
	)
}

func (repo *discussionRepository) GetPostByID(ctx context.Context, id string) (discussion.Post, error) {
	return repo.getPost(ctx, "SELECT "+postColumns+" FROM course_posts WHERE id = $1", id)
}

func (repo *discussionRepository) QueryPosts(ctx context.Context, courseID string, page core.Page) ([]discussion.Post, int, error) {
	var total int
	q := "SELECT COUNT(*) FROM course_posts WHERE course_id = $1 AND NOT is_deleted"
	if err := sqlx.GetContext(ctx, repo.exec, &total, q, courseID); err != nil {
		return nil, 0, errors.Wrap(err, "counting posts")
	}

	var rows []postRow
	q = "SELECT " + postColumns + " FROM course_posts WHERE course_id = $1 AND NOT is_deleted" +
		" ORDER BY is_pinned DESC, created_at DESC, id ASC LIMIT $2 OFFSET $3"
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, courseID, page.Size, page.Offset()); err != nil {
		return nil, 0, errors.Wrap(err, "selecting posts")
	}
	posts := make([]discussion.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.post())
	}
	return posts, total, nil
}

func (repo *discussionRepository) UpdatePost(ctx context.Context, id string, patch discussion.PostPatch) (discussion.Post, error) {
	set := new(setClause)
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Content != nil {
		set.add("content", *patch.Content)
	}
	if patch.IsPinned != nil {
		set.add("is_pinned", *patch.IsPinned)
	}
	if patch.IsDeleted != nil {
		set.add("is_deleted", *patch.IsDeleted)
	}
	if patch.DeletedAt != nil {
		set.add("deleted_at", null.TimeFrom(patch.DeletedAt.UTC()))
	}
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = time.Now()
	}
	set.add("updated_at", patch.UpdatedAt.UTC())

	q := "UPDATE course_posts SET " + set.String() + " WHERE id = " + set.arg(id) + " RETURNING " + postColumns
	return repo.getPost(ctx, q, set.args...)
}

func (repo *discussionRepository) CreateReply(ctx context.Context, r discussion.Reply) (discussion.Reply, error) {
	q := `INSERT INTO course_post_replies (` + replyColumns + `)
		VALUES ($1, $2, $3, $4, false, NULL, $5, $6)
		RETURNING ` + replyColumns
	return repo.getReply(ctx, q, newID(), r.PostID, r.UserID, r.Content, r.CreatedAt.UTC(), r.UpdatedAt.UTC())
}

func (repo *discussionRepository) GetReplyByID(ctx context.Context, id string) (discussion.Reply, error) {
	return repo.getReply(ctx, "SELECT "+replyColumns+" FROM course_post_replies WHERE id = $1", id)
}

func (repo *discussionRepository) QueryReplies(ctx context.Context, postID string) ([]discussion.Reply, error) {
	var rows []replyRow
	q := "SELECT " + replyColumns + " FROM course_post_replies WHERE post_id = $1 AND NOT is_deleted ORDER BY created_at ASC, id ASC"
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, postID); err != nil {
		return nil, errors.Wrap(err, "selecting replies")
	}
	replies := make([]discussion.Reply, 0, len(rows))
	for _, r := range rows {
		replies = append(replies, r.reply())
	}
	return replies, nil
}

func (repo *discussionRepository) UpdateReply(ctx context.Context, id string, patch discussion.ReplyPatch) (discussion.Reply, error) {
	set := new(setClause)
	if patch.Content != nil {
		set.add("content", *patch.Content)
	}
	if patch.IsDeleted != nil {
		set.add("is_deleted", *patch.IsDeleted)
	}
	if patch.DeletedAt != nil {
		set.add("deleted_at", null.TimeFrom(patch.DeletedAt.UTC()))
	}
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = time.Now()
	}
	set.add("updated_at", patch.UpdatedAt.UTC())

	q := "UPDATE course_post_replies SET " + set.String() + " WHERE id = " + set.arg(id) + " RETURNING " + replyColumns
	return repo.getReply(ctx, q, set.args...)
}
