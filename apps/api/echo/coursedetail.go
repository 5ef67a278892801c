package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/coursedetail"
)

type courseDetailApi struct {
	svc      *coursedetail.Service
	validate *validator.Validate
}

func registerCourseDetailAPI(g *echo.Group, authz authorizer, svc *coursedetail.Service, validate *validator.Validate) {
	api := courseDetailApi{svc: svc, validate: validate}
	staff := authz.requireRole(auth.RoleAdmin, auth.RoleFaculty)

	g.GET("/courses/:courseId/details", api.list, authz.requireAuth())
	g.POST("/courses/:courseId/details", api.create, staff)
	g.PUT("/course-details/:id", api.update, staff)
	g.DELETE("/course-details/:id", api.destroy, staff)
}

// Handlers

func (api *courseDetailApi) list(ctx echo.Context) error {
	details, err := api.svc.List(ctx.Request().Context(), ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "listing course details")
	}
	if details == nil {
		details = []coursedetail.CourseDetail{}
	}
	return respond(ctx, http.StatusOK, details)
}

func (api *courseDetailApi) create(ctx echo.Context) error {
	var data coursedetail.NewCourseDetail
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.Create(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("courseId"), data)
	if err != nil {
		return errors.Wrap(err, "creating course detail")
	}
	return respond(ctx, http.StatusCreated, d)
}

func (api *courseDetailApi) update(ctx echo.Context) error {
	var data coursedetail.UpdateCourseDetail
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.Update(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course detail")
	}
	return respond(ctx, http.StatusOK, d)
}

func (api *courseDetailApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course detail")
	}
	return respondMsg(ctx, http.StatusOK, "Course detail deleted successfully")
}
