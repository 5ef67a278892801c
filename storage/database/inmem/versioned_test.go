package inmemdb

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

func strPtr(s string) *string { return &s }

func TestCourseRepository_UpdateCourseWithVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(Open())

	c, err := repo.CreateCourse(ctx, course.Course{Name: "Algebra", Code: "MATH101"})
	require.NoError(t, err)
	require.Equal(t, 0, c.Version)

	got, err := repo.UpdateCourseWithVersion(ctx, c.ID, 0, course.Patch{Name: strPtr("X")})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, "X", got.Name)

	// same stale version again
	_, err = repo.UpdateCourseWithVersion(ctx, c.ID, 0, course.Patch{Name: strPtr("X")})
	assert.Equal(t, course.ErrNotFound, err)

	_, err = repo.UpdateCourseWithVersion(ctx, "nope", 1, course.Patch{Name: strPtr("X")})
	assert.Equal(t, course.ErrNotFound, err)

	stored, err := repo.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
	assert.Equal(t, "X", stored.Name)
}

func TestCourseRepository_UpdateCourseBumpsVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(Open())

	c, err := repo.CreateCourse(ctx, course.Course{Name: "Algebra", Code: "MATH101", InstructorID: strPtr("f1")})
	require.NoError(t, err)

	got, err := repo.UpdateCourse(ctx, c.ID, course.Patch{InstructorID: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Nil(t, got.InstructorID)
}

func TestUserRepository_ConcurrentVersionedUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(Open())

	usr, err := repo.CreateUser(ctx, user.User{FirstName: "Hero", Email: "hero@test.cd", Role: auth.RoleStudent})
	require.NoError(t, err)

	const writers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.UpdateUserWithVersion(ctx, usr.ID, 0, user.Patch{FirstName: strPtr("Racer")}); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success, "exactly one writer must win")
	got, err := repo.GetUserByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

func TestCourseRepository_DeleteCourseCascades(t *testing.T) {
	ctx := context.Background()
	db := Open()
	courses := NewCourseRepository(db)
	feedbacks := NewFeedbackRepository(db)

	c, err := courses.CreateCourse(ctx, course.Course{Name: "Algebra", Code: "MATH101"})
	require.NoError(t, err)
	fb, err := feedbacks.UpsertFeedback(ctx, feedbackFor("s1", c.ID, 4))
	require.NoError(t, err)

	require.NoError(t, courses.DeleteCourse(ctx, c.ID))
	_, err = feedbacks.GetFeedbackByID(ctx, fb.ID)
	assert.Error(t, err)
	assert.Equal(t, course.ErrNotFound, courses.DeleteCourse(ctx, c.ID))
}
