package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/feedback"
)

type feedbackApi struct {
	svc      *feedback.Service
	validate *validator.Validate
}

type feedbackList struct {
	Feedback []feedback.Feedback `json:"feedback"`
	Summary  feedback.Summary    `json:"summary"`
}

func registerFeedbackAPI(g *echo.Group, authz authorizer, svc *feedback.Service, validate *validator.Validate) {
	api := feedbackApi{svc: svc, validate: validate}
	authed := authz.requireAuth()

	g.GET("/courses/:courseId/feedback", api.list, authed)
	g.POST("/courses/:courseId/feedback", api.submit, authed)
	g.PUT("/feedback/:id", api.update, authed)
	g.DELETE("/feedback/:id", api.destroy, authed)
}

// Handlers

func (api *feedbackApi) list(ctx echo.Context) error {
	fbs, sum, err := api.svc.List(ctx.Request().Context(), ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "listing feedback")
	}
	if fbs == nil {
		fbs = []feedback.Feedback{}
	}
	return respond(ctx, http.StatusOK, feedbackList{Feedback: fbs, Summary: sum})
}

func (api *feedbackApi) submit(ctx echo.Context) error {
	var data feedback.NewFeedback
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fb, err := api.svc.Submit(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("courseId"), data)
	if err != nil {
		return errors.Wrap(err, "submitting feedback")
	}
	return respond(ctx, http.StatusCreated, fb)
}

func (api *feedbackApi) update(ctx echo.Context) error {
	var data feedback.UpdateFeedback
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fb, err := api.svc.Update(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating feedback")
	}
	return respond(ctx, http.StatusOK, fb)
}

func (api *feedbackApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting feedback")
	}
	return respondMsg(ctx, http.StatusOK, "Feedback deleted successfully")
}
