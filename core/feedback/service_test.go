package feedback_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/feedback"
	"github.com/trezcool/darasa/core/user"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	"github.com/trezcool/darasa/testutil"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	users := inmemdb.NewUserRepository(db)
	courses := inmemdb.NewCourseRepository(db)
	userSvc := user.NewService(users)
	svc := feedback.NewService(inmemdb.NewFeedbackRepository(db), course.NewService(courses, userSvc))

	c := testutil.CreateCourse(t, courses, "Algebra", "MATH101", nil)
	s1 := auth.Principal{ID: testutil.CreateUser(t, users, "Stud", "One", "s1@test.cd", auth.RoleStudent).ID, Role: auth.RoleStudent}
	s2 := auth.Principal{ID: testutil.CreateUser(t, users, "Stud", "Two", "s2@test.cd", auth.RoleStudent).ID, Role: auth.RoleStudent}
	admin := auth.Principal{ID: testutil.CreateUser(t, users, "Ad", "Min", "admin@test.cd", auth.RoleAdmin).ID, Role: auth.RoleAdmin}

	_, err := svc.Submit(ctx, s1, "ghost", feedback.NewFeedback{Rating: 3})
	assert.Equal(t, course.ErrNotFound, errors.Cause(err))

	fb1, err := svc.Submit(ctx, s1, c.ID, feedback.NewFeedback{Rating: 2, Comment: "meh"})
	require.NoError(t, err)
	// submitting twice replaces the previous feedback
	again, err := svc.Submit(ctx, s1, c.ID, feedback.NewFeedback{Rating: 4, Comment: "better"})
	require.NoError(t, err)
	assert.Equal(t, fb1.ID, again.ID)

	fb2, err := svc.Submit(ctx, s2, c.ID, feedback.NewFeedback{Rating: 5})
	require.NoError(t, err)

	fbs, sum, err := svc.List(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, fbs, 2)
	assert.Equal(t, feedback.Summary{Count: 2, Average: 4.5}, sum)

	rating := 1
	_, err = svc.Update(ctx, s2, fb1.ID, feedback.UpdateFeedback{Rating: &rating})
	assert.True(t, core.IsPermissionError(err))
	assert.Equal(t, "Not authorized to update this feedback", err.Error())

	got, err := svc.Update(ctx, s1, fb1.ID, feedback.UpdateFeedback{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Rating)
	assert.Equal(t, "better", got.Comment)

	err = svc.Delete(ctx, s1, fb2.ID)
	assert.True(t, core.IsPermissionError(err))
	assert.Equal(t, "Not authorized to delete this feedback", err.Error())

	require.NoError(t, svc.Delete(ctx, admin, fb2.ID))
	_, sum, err = svc.List(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, feedback.Summary{Count: 1, Average: 1}, sum)

	assert.Equal(t, feedback.ErrNotFound, errors.Cause(svc.Delete(ctx, admin, fb2.ID)))
}
