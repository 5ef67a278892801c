package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/discussion"
)

type discussionApi struct {
	svc      *discussion.Service
	validate *validator.Validate
}

func registerDiscussionAPI(g *echo.Group, authz authorizer, svc *discussion.Service, validate *validator.Validate) {
	api := discussionApi{svc: svc, validate: validate}
	authed := authz.requireAuth()

	g.GET("/courses/:courseId/posts", api.listPosts, authed)
	g.POST("/courses/:courseId/posts", api.createPost, authed)

	pg := g.Group("/posts/:id")
	pg.GET("", api.retrievePost, authed)
	pg.PUT("", api.updatePost, authed)
	pg.DELETE("", api.destroyPost, authed)
	pg.PATCH("/pin", api.pinPost, authz.requireRole(auth.RoleAdmin, auth.RoleFaculty))
	pg.POST("/replies", api.createReply, authed)

	rg := g.Group("/replies/:id")
	rg.PUT("", api.updateReply, authed)
	rg.DELETE("", api.destroyReply, authed)
}

// Handlers

func (api *discussionApi) listPosts(ctx echo.Context) error {
	posts, pg, err := api.svc.ListPosts(ctx.Request().Context(), ctx.Param("courseId"), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "listing posts")
	}
	if posts == nil {
		posts = []discussion.Post{}
	}
	return respondPage(ctx, http.StatusOK, posts, pg)
}

func (api *discussionApi) createPost(ctx echo.Context) error {
	var data discussion.NewPost
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	post, err := api.svc.CreatePost(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("courseId"), data)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return respond(ctx, http.StatusCreated, post)
}

func (api *discussionApi) retrievePost(ctx echo.Context) error {
	thread, err := api.svc.GetThread(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting post")
	}
	if thread.Replies == nil {
		thread.Replies = []discussion.Reply{}
	}
	return respond(ctx, http.StatusOK, thread)
}

func (api *discussionApi) updatePost(ctx echo.Context) error {
	var data discussion.UpdatePost
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	post, err := api.svc.UpdatePost(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating post")
	}
	return respond(ctx, http.StatusOK, post)
}

func (api *discussionApi) destroyPost(ctx echo.Context) error {
	if err := api.svc.DeletePost(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting post")
	}
	return respondMsg(ctx, http.StatusOK, "Post deleted successfully")
}

func (api *discussionApi) pinPost(ctx echo.Context) error {
	var data discussion.PinPost
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	post, err := api.svc.PinPost(ctx.Request().Context(), ctx.Param("id"), *data.IsPinned)
	if err != nil {
		return errors.Wrap(err, "pinning post")
	}
	return respond(ctx, http.StatusOK, post)
}

func (api *discussionApi) createReply(ctx echo.Context) error {
	var data discussion.NewReply
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.CreateReply(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating reply")
	}
	return respond(ctx, http.StatusCreated, r)
}

func (api *discussionApi) updateReply(ctx echo.Context) error {
	var data discussion.NewReply
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.UpdateReply(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating reply")
	}
	return respond(ctx, http.StatusOK, r)
}

func (api *discussionApi) destroyReply(ctx echo.Context) error {
	if err := api.svc.DeleteReply(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting reply")
	}
	return respondMsg(ctx, http.StatusOK, "Reply deleted successfully")
}
