package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/enrollment"
)

type enrollmentApi struct {
	svc      *enrollment.Service
	validate *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, authz authorizer, svc *enrollment.Service, validate *validator.Validate) {
	api := enrollmentApi{svc: svc, validate: validate}

	eg := g.Group("/enrollments")
	eg.GET("", api.query, authz.requireAuth())
	eg.POST("", api.create, authz.requireAuth())
	eg.PATCH("/:id", api.updateStatus, authz.requireRole(auth.RoleAdmin, auth.RoleFaculty))
	eg.DELETE("/:id", api.destroy, authz.requireAuth())
}

// Handlers

func (api *enrollmentApi) query(ctx echo.Context) error {
	var filter enrollment.QueryFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}

	enrollments, err := api.svc.Query(ctx.Request().Context(), contextPrincipal(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrollments == nil {
		enrollments = []enrollment.Enrollment{}
	}
	return respond(ctx, http.StatusOK, enrollments)
}

func (api *enrollmentApi) create(ctx echo.Context) error {
	var data enrollment.NewEnrollment
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), contextPrincipal(ctx), data)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return respond(ctx, http.StatusCreated, enr)
}

func (api *enrollmentApi) updateStatus(ctx echo.Context) error {
	var data enrollment.UpdateEnrollment
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	enr, err := api.svc.UpdateStatus(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("id"), data.Status)
	if err != nil {
		return errors.Wrap(err, "updating enrollment status")
	}
	return respond(ctx, http.StatusOK, enr)
}

func (api *enrollmentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), contextPrincipal(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return respondMsg(ctx, http.StatusOK, "Enrollment deleted successfully")
}
