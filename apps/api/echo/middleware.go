package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/auth"
)

// policy decides whether an authenticated principal may go on.
type policy func(ctx echo.Context, p auth.Principal) bool

// authorize extracts & verifies the request's token then applies allow.
// Panics are turned into a generic 500 so that nothing leaks to the client.
func (a authorizer) authorize(ctx echo.Context, allow policy, denied error) (p auth.Principal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newAuthServerError(errors.Errorf("authorization panic: %v", r))
		}
	}()

	token := bearerToken(ctx.Request())
	if token == "" {
		return auth.Principal{}, errNoToken
	}
	res := a.tokens.Verify(token)
	if !res.OK() {
		return auth.Principal{}, errInvalidToken
	}
	if allow != nil && !allow(ctx, res.Principal) {
		return auth.Principal{}, denied
	}
	return res.Principal, nil
}

func (a authorizer) middleware(allow policy, denied error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, err := a.authorize(ctx, allow, denied)
			if err != nil {
				return err
			}
			ctx.Set(principalKey, p)
			return next(ctx)
		}
	}
}

// requireAuth lets any authenticated principal through.
func (a authorizer) requireAuth() echo.MiddlewareFunc {
	return a.middleware(nil, nil)
}

func (a authorizer) requireAdmin() echo.MiddlewareFunc {
	return a.middleware(func(_ echo.Context, p auth.Principal) bool {
		return p.IsAdmin()
	}, errAdminRequired)
}

// requireRole lets principals holding any of roles through.
func (a authorizer) requireRole(roles ...auth.Role) echo.MiddlewareFunc {
	return a.middleware(func(_ echo.Context, p auth.Principal) bool {
		return p.HasRole(roles...)
	}, errRoleRequired)
}

// authorizeAdminOrOwner lets admins through, as well as the principal whose ID is the path param
// (`id` by default).
func (a authorizer) authorizeAdminOrOwner(param ...string) echo.MiddlewareFunc {
	name := "id"
	if len(param) > 0 && param[0] != "" {
		name = param[0]
	}
	return a.middleware(func(ctx echo.Context, p auth.Principal) bool {
		return auth.OwnerOrElevated(ctx.Param(name), p, auth.RoleAdmin)
	}, errOwnerRequired)
}
