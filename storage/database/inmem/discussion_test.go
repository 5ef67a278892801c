package inmemdb

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/discussion"
)

func TestDiscussionRepository_QueryPosts(t *testing.T) {
	ctx := context.Background()
	repo := NewDiscussionRepository(Open())
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		p, err := repo.CreatePost(ctx, discussion.Post{
			CourseID:  "c1",
			UserID:    "s1",
			Title:     "post",
			CreatedAt: start.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	// another course
	_, err := repo.CreatePost(ctx, discussion.Post{CourseID: "c2", CreatedAt: start})
	require.NoError(t, err)

	pinned := true
	_, err = repo.UpdatePost(ctx, ids[0], discussion.PostPatch{IsPinned: &pinned})
	require.NoError(t, err)
	deleted := true
	_, err = repo.UpdatePost(ctx, ids[4], discussion.PostPatch{IsDeleted: &deleted, DeletedAt: &start})
	require.NoError(t, err)

	posts, total, err := repo.QueryPosts(ctx, "c1", core.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	if assert.Len(t, posts, 2) {
		assert.Equal(t, ids[0], posts[0].ID, "pinned first")
		assert.Equal(t, ids[3], posts[1].ID, "then newest")
	}

	posts, _, err = repo.QueryPosts(ctx, "c1", core.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	if assert.Len(t, posts, 2) {
		assert.Equal(t, ids[2], posts[0].ID)
		assert.Equal(t, ids[1], posts[1].ID)
	}

	posts, total, err = repo.QueryPosts(ctx, "c1", core.Page{Number: 9, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, posts)

	// an offset that overflowed
	posts, total, err = repo.QueryPosts(ctx, "c1", core.Page{Number: math.MaxInt/2 + 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, posts)
}
