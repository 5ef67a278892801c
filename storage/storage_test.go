package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/testutil"
)

func TestOpen_InMemory(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{Engine: core.DBEngineMemory}}
	repos, err := Open(context.Background(), conf)
	require.NoError(t, err)
	defer func() { assert.NoError(t, repos.Close()) }()

	usr := testutil.CreateUser(t, repos.Users, "Prof", "Lumumba", "prof@test.cd", auth.RoleFaculty)
	c := testutil.CreateCourse(t, repos.Courses, "Algebra", "MATH101", &usr.ID)
	testutil.CreatePost(t, repos.Discussion, c.ID, usr.ID, "Welcome")

	// all repositories share the same store
	require.NoError(t, repos.Courses.DeleteCourse(context.Background(), c.ID))
	posts, total, err := repos.Discussion.QueryPosts(context.Background(), c.ID, core.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Zero(t, total)
}

func TestOpen_UnknownEngine(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{Engine: "mongo", Name: "darasa"}}
	_, err := Open(context.Background(), conf)
	assert.Error(t, err)
}
