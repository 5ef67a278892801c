package echoapi

import (
	"encoding/json"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/discussion"
	"github.com/trezcool/darasa/testutil"
)

func Test_discussionApi_listPosts(t *testing.T) {
	app := setup(t)
	s1 := testutil.CreateUser(t, app.users, "Stud", "One", "s1@test.cd", auth.RoleStudent)
	c := testutil.CreateCourse(t, app.courses, "Algebra", "MATH101", nil)
	token := getToken(t, app, s1)

	now := time.Now()
	p1 := testutil.CreatePost(t, app.discussion, c.ID, s1.ID, "First", now)
	p2 := testutil.CreatePost(t, app.discussion, c.ID, s1.ID, "Second", now.Add(time.Minute))
	p3 := testutil.CreatePost(t, app.discussion, c.ID, s1.ID, "Third", now.Add(2*time.Minute))

	app.run(t, []httpTest{
		{
			name: "first page", path: "/api/courses/" + c.ID + "/posts?limit=2", token: token, wantCode: http.StatusOK,
			wantData: marshalObj(t, response{
				Success:    true,
				Data:       []discussion.Post{p3, p2},
				Pagination: &core.Pagination{Page: 1, Limit: 2, Total: 3, TotalPages: 2},
			}),
		},
		{
			name: "last page", path: "/api/courses/" + c.ID + "/posts?limit=2&page=2", token: token, wantCode: http.StatusOK,
			wantData: marshalObj(t, response{
				Success:    true,
				Data:       []discussion.Post{p1},
				Pagination: &core.Pagination{Page: 2, Limit: 2, Total: 3, TotalPages: 2},
			}),
		},
		{
			name: "past the end", path: "/api/courses/" + c.ID + "/posts?page=5", token: token, wantCode: http.StatusOK,
			wantData: marshalObj(t, response{
				Success:    true,
				Data:       []discussion.Post{},
				Pagination: &core.Pagination{Page: 5, Limit: core.DefaultPageSize, Total: 3, TotalPages: 1},
			}),
		},
		{
			name: "unknown course", path: "/api/courses/nope/posts", token: token,
			wantCode: http.StatusNotFound, wantData: errMsg(t, course.ErrNotFound.Error()),
		},
	})

	assert.NotPanics(t, func() {
		rec := app.do(http.MethodGet, "/api/courses/"+c.ID+"/posts?page=4611686018427387905&limit=2", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Data       []discussion.Post `json:"data"`
			Pagination core.Pagination   `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data)
		assert.Equal(t, math.MaxInt/2, resp.Pagination.Page)
		assert.Equal(t, 3, resp.Pagination.Total)
	}, "huge page number")

	// pinned posts come first
	rec := app.do(http.MethodPatch, "/api/posts/"+p1.ID+"/pin", getToken(t, app, testutil.CreateUser(
		t, app.users, "Prof", "Lumumba", "prof@test.cd", auth.RoleFaculty)), []byte(`{"is_pinned":true}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(http.MethodGet, "/api/courses/"+c.ID+"/posts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Data       []discussion.Post `json:"data"`
		Pagination core.Pagination   `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, p1.ID, resp.Data[0].ID)
	assert.True(t, resp.Data[0].IsPinned)
	assert.Equal(t, p3.ID, resp.Data[1].ID)
	assert.Equal(t, core.DefaultPageSize, resp.Pagination.Limit)
}

func Test_discussionApi_posts(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUser(t, app.users, "Ad", "Min", "admin@test.cd", auth.RoleAdmin)
	prof := testutil.CreateUser(t, app.users, "Prof", "Lumumba", "prof@test.cd", auth.RoleFaculty)
	s1 := testutil.CreateUser(t, app.users, "Stud", "One", "s1@test.cd", auth.RoleStudent)
	s2 := testutil.CreateUser(t, app.users, "Stud", "Two", "s2@test.cd", auth.RoleStudent)
	c := testutil.CreateCourse(t, app.courses, "Algebra", "MATH101", nil)
	s1Token := getToken(t, app, s1)
	s2Token := getToken(t, app, s2)

	app.run(t, []httpTest{
		{
			name: "blank post", method: http.MethodPost, path: "/api/courses/" + c.ID + "/posts", body: []byte(`{"title":" ","content":"x"}`),
			token: s1Token, wantCode: http.StatusBadRequest,
			wantData: errMsg(t, msgInvalidInput, map[string]string{"title": "title is required"}),
		},
		{
			name: "pin without flag", method: http.MethodPatch, path: "/api/posts/nope/pin", body: []byte(`{}`),
			token: getToken(t, app, prof), wantCode: http.StatusBadRequest,
			wantData: errMsg(t, msgInvalidInput, map[string]string{"is_pinned": "is_pinned is required"}),
		},
	})

	rec := app.do(http.MethodPost, "/api/courses/"+c.ID+"/posts", s1Token, []byte(`{"title":"Help","content":"Question 3?"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post discussion.Post
	decode(t, rec, &post)
	assert.Equal(t, s1.ID, post.UserID)
	assert.False(t, post.IsPinned)
	path := "/api/posts/" + post.ID

	app.run(t, []httpTest{
		{
			name: "update by other student", method: http.MethodPut, path: path, body: []byte(`{"title":"Mine"}`),
			token: s2Token, wantCode: http.StatusBadRequest, wantData: errMsg(t, "Not authorized to update this post"),
		},
		{
			name: "update by admin", method: http.MethodPut, path: path, body: []byte(`{"title":"Mine"}`),
			token: getToken(t, app, admin), wantCode: http.StatusBadRequest, wantData: errMsg(t, "Not authorized to update this post"),
		},
		{
			name: "delete by other student", method: http.MethodDelete, path: path,
			token: s2Token, wantCode: http.StatusBadRequest, wantData: errMsg(t, "Not authorized to delete this post"),
		},
		{name: "update by owner", method: http.MethodPut, path: path, body: []byte(`{"title":"Help please"}`), token: s1Token, wantCode: http.StatusOK},
		{name: "update by faculty", method: http.MethodPut, path: path, body: []byte(`{"content":"Question 4?"}`), token: getToken(t, app, prof), wantCode: http.StatusOK},
	})

	rec = app.do(http.MethodGet, path, s2Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var thread discussion.Thread
	decode(t, rec, &thread)
	assert.Equal(t, "Help please", thread.Title)
	assert.Equal(t, "Question 4?", thread.Content)
	assert.NotNil(t, thread.Replies)
	assert.Contains(t, rec.Body.String(), `"replies":[]`)

	app.run(t, []httpTest{
		{name: "delete by owner", method: http.MethodDelete, path: path, token: s1Token, wantCode: http.StatusOK, wantData: okMsg(t, "Post deleted successfully")},
		{name: "deleted post is gone", path: path, token: s1Token, wantCode: http.StatusNotFound, wantData: errMsg(t, discussion.ErrPostNotFound.Error())},
		{name: "delete again", method: http.MethodDelete, path: path, token: s1Token, wantCode: http.StatusNotFound, wantData: errMsg(t, discussion.ErrPostNotFound.Error())},
		{
			name: "reply to deleted post", method: http.MethodPost, path: path + "/replies", body: []byte(`{"content":"late"}`),
			token: s2Token, wantCode: http.StatusBadRequest, wantData: errMsg(t, discussion.ErrPostDeleted.Error()),
		},
		{
			name: "deleted post is not listed", path: "/api/courses/" + c.ID + "/posts", token: s1Token, wantCode: http.StatusOK,
			wantData: marshalObj(t, response{
				Success:    true,
				Data:       []discussion.Post{},
				Pagination: &core.Pagination{Page: 1, Limit: core.DefaultPageSize, Total: 0, TotalPages: 0},
			}),
		},
	})
}

func Test_discussionApi_replies(t *testing.T) {
	app := setup(t)
	prof := testutil.CreateUser(t, app.users, "Prof", "Lumumba", "prof@test.cd", auth.RoleFaculty)
	s1 := testutil.CreateUser(t, app.users, "Stud", "One", "s1@test.cd", auth.RoleStudent)
	s2 := testutil.CreateUser(t, app.users, "Stud", "Two", "s2@test.cd", auth.RoleStudent)
	c := testutil.CreateCourse(t, app.courses, "Algebra", "MATH101", nil)
	post := testutil.CreatePost(t, app.discussion, c.ID, s1.ID, "Help")
	s1Token := getToken(t, app, s1)
	s2Token := getToken(t, app, s2)

	reply := func(token, content string) discussion.Reply {
		rec := app.do(http.MethodPost, "/api/posts/"+post.ID+"/replies", token, []byte(`{"content":"`+content+`"}`))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var r discussion.Reply
		decode(t, rec, &r)
		return r
	}
	r1 := reply(s2Token, "Try this")
	r2 := reply(s1Token, "Thanks")
	assert.Equal(t, s2.ID, r1.UserID)

	app.run(t, []httpTest{
		{
			name: "blank", method: http.MethodPost, path: "/api/posts/" + post.ID + "/replies", body: []byte(`{"content":"  "}`),
			token: s1Token, wantCode: http.StatusBadRequest,
			wantData: errMsg(t, msgInvalidInput, map[string]string{"content": "content is required"}),
		},
		{
			name: "unknown post", method: http.MethodPost, path: "/api/posts/nope/replies", body: []byte(`{"content":"hi"}`),
			token: s1Token, wantCode: http.StatusNotFound, wantData: errMsg(t, discussion.ErrPostNotFound.Error()),
		},
		{
			name: "update by other student", method: http.MethodPut, path: "/api/replies/" + r1.ID, body: []byte(`{"content":"edited"}`),
			token: s1Token, wantCode: http.StatusBadRequest, wantData: errMsg(t, "Not authorized to update this reply"),
		},
		{
			name: "delete by other student", method: http.MethodDelete, path: "/api/replies/" + r1.ID,
			token: s1Token, wantCode: http.StatusBadRequest, wantData: errMsg(t, "Not authorized to delete this reply"),
		},
		{
			name: "update by owner", method: http.MethodPut, path: "/api/replies/" + r1.ID, body: []byte(`{"content":"Try that"}`),
			token: s2Token, wantCode: http.StatusOK,
		},
		{
			name: "delete by faculty", method: http.MethodDelete, path: "/api/replies/" + r2.ID,
			token: getToken(t, app, prof), wantCode: http.StatusOK, wantData: okMsg(t, "Reply deleted successfully"),
		},
		{
			name: "update deleted", method: http.MethodPut, path: "/api/replies/" + r2.ID, body: []byte(`{"content":"back"}`),
			token: s1Token, wantCode: http.StatusNotFound, wantData: errMsg(t, discussion.ErrReplyNotFound.Error()),
		},
	})

	rec := app.do(http.MethodGet, "/api/posts/"+post.ID, s1Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var thread discussion.Thread
	decode(t, rec, &thread)
	require.Len(t, thread.Replies, 1)
	assert.Equal(t, r1.ID, thread.Replies[0].ID)
	assert.Equal(t, "Try that", thread.Replies[0].Content)
}
