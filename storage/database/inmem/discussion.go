package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/discussion"
)

type discussionRepository struct {
	db *DB
}

var _ discussion.Repository = (*discussionRepository)(nil) // interface compliance check

func NewDiscussionRepository(db *DB) *discussionRepository {
	return &discussionRepository{db: db}
}

func copyPost(p *discussion.Post) discussion.Post {
	cp := *p
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		cp.DeletedAt = &t
	}
	return cp
}

func copyReply(r *discussion.Reply) discussion.Reply {
	cp := *r
	if r.DeletedAt != nil {
		t := *r.DeletedAt
		cp.DeletedAt = &t
	}
	return cp
}

func (repo *discussionRepository) CreatePost(_ context.Context, post discussion.Post) (discussion.Post, error) {
	repo.db.post.mutex.Lock()
	defer repo.db.post.mutex.Unlock()

	post.ID = newID()
	stored := copyPost(&post)
	repo.db.post.rows[post.ID] = &stored
	return post, nil
}

func (repo *discussionRepository) GetPostByID(_ context.Context, id string) (discussion.Post, error) {
	repo.db.post.mutex.RLock()
	defer repo.db.post.mutex.RUnlock()

	if p, ok := repo.db.post.rows[id]; ok {
		return copyPost(p), nil
	}
	return discussion.Post{}, discussion.ErrPostNotFound
}

func (repo *discussionRepository) QueryPosts(_ context.Context, courseID string, page core.Page) ([]discussion.Post, int, error) {
	repo.db.post.mutex.RLock()
	defer repo.db.post.mutex.RUnlock()

	posts := make([]discussion.Post, 0)
	for _, p := range repo.db.post.rows {
		if p.CourseID == courseID && !p.IsDeleted {
			posts = append(posts, copyPost(p))
		}
	}
	sortRows(posts, func(a, b discussion.Post) int {
		if a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		if c := compareTime(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	total := len(posts)
	start := page.Offset()
	if start < 0 || start > total {
		start = total
	}
	end := start + page.Size
	if end < start || end > total {
		end = total
	}
	return posts[start:end], total, nil
}

func (repo *discussionRepository) UpdatePost(_ context.Context, id string, patch discussion.PostPatch) (discussion.Post, error) {
	repo.db.post.mutex.Lock()
	defer repo.db.post.mutex.Unlock()

	p, ok := repo.db.post.rows[id]
	if !ok {
		return discussion.Post{}, discussion.ErrPostNotFound
	}
	patch.Apply(p)
	return copyPost(p), nil
}

func (repo *discussionRepository) CreateReply(_ context.Context, r discussion.Reply) (discussion.Reply, error) {
	repo.db.reply.mutex.Lock()
	defer repo.db.reply.mutex.Unlock()

	r.ID = newID()
	stored := copyReply(&r)
	repo.db.reply.rows[r.ID] = &stored
	return r, nil
}

func (repo *discussionRepository) GetReplyByID(_ context.Context, id string) (discussion.Reply, error) {
	repo.db.reply.mutex.RLock()
	defer repo.db.reply.mutex.RUnlock()

	if r, ok := repo.db.reply.rows[id]; ok {
		return copyReply(r), nil
	}
	return discussion.Reply{}, discussion.ErrReplyNotFound
}

func (repo *discussionRepository) QueryReplies(_ context.Context, postID string) ([]discussion.Reply, error) {
	repo.db.reply.mutex.RLock()
	defer repo.db.reply.mutex.RUnlock()

	replies := make([]discussion.Reply, 0)
	for _, r := range repo.db.reply.rows {
		if r.PostID == postID && !r.IsDeleted {
			replies = append(replies, copyReply(r))
		}
	}
	sortRows(replies, func(a, b discussion.Reply) int {
		if c := compareTime(a.CreatedAt, b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return replies, nil
}

func (repo *discussionRepository) UpdateReply(_ context.Context, id string, patch discussion.ReplyPatch) (discussion.Reply, error) {
	repo.db.reply.mutex.Lock()
	defer repo.db.reply.mutex.Unlock()

	r, ok := repo.db.reply.rows[id]
	if !ok {
		return discussion.Reply{}, discussion.ErrReplyNotFound
	}
	patch.Apply(r)
	return copyReply(r), nil
}
