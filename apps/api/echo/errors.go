package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/coursedetail"
	"github.com/trezcool/darasa/core/discussion"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/feedback"
	"github.com/trezcool/darasa/core/user"
)

const (
	msgNoToken         = "Access denied. No token provided."
	msgInvalidToken    = "Invalid or expired token."
	msgAdminRequired   = "Access denied. Admin privileges required."
	msgOwnerRequired   = "Access denied. You can only access your own resources."
	msgRoleRequired    = "Access denied. Insufficient privileges."
	msgAuthServerError = "Server error during authorization."
	msgRoleChange      = "Access denied. Only admins can change roles."
	msgInvalidInput    = "Validation failed"
)

var (
	errNoToken       = echo.NewHTTPError(http.StatusUnauthorized, msgNoToken)
	errInvalidToken  = echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
	errAdminRequired = echo.NewHTTPError(http.StatusForbidden, msgAdminRequired)
	errOwnerRequired = echo.NewHTTPError(http.StatusForbidden, msgOwnerRequired)
	errRoleRequired  = echo.NewHTTPError(http.StatusForbidden, msgRoleRequired)
	errRoleChange    = echo.NewHTTPError(http.StatusForbidden, msgRoleChange)

	// errors reported as 404
	notFoundErrs = map[error]struct{}{
		user.ErrNotFound:            {},
		course.ErrNotFound:          {},
		coursedetail.ErrNotFound:    {},
		enrollment.ErrNotFound:      {},
		feedback.ErrNotFound:        {},
		discussion.ErrPostNotFound:  {},
		discussion.ErrReplyNotFound: {},
	}
)

// newAuthServerError hides whatever went wrong while authorizing behind a generic 500.
func newAuthServerError(cause error) *echo.HTTPError {
	return &echo.HTTPError{Code: http.StatusInternalServerError, Message: msgAuthServerError, Internal: cause}
}

// logArgs attaches the request's principal, if any, to a log entry about err.
func logArgs(ctx echo.Context, err error) []interface{} {
	args := []interface{}{err}
	if p, ok := ctx.Get(principalKey).(auth.Principal); ok {
		args = append(args, p)
	}
	return args
}

func isNotFound(err error) bool {
	_, ok := notFoundErrs[err]
	return ok
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code := http.StatusInternalServerError
		resp := response{Success: false}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			code = origErr.Code
			resp.Message = fmt.Sprint(origErr.Message)
			if code >= http.StatusInternalServerError {
				logger.Error(resp.Message, logArgs(ctx, errors.Wrap(err, resp.Message))...)
			}
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			resp.Message = msgInvalidInput
			resp.Errors = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				resp.Errors[vErr.Field()] = vErr.Translate(translator)
			}
		case *core.ValidationError:
			code = http.StatusBadRequest
			resp.Message = origErr.Error()
			if len(origErr.Fields) > 0 {
				resp.Errors = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					resp.Errors[fErr.Field] = fErr.Error
				}
			}
		case *core.PermissionError:
			code = http.StatusBadRequest
			resp.Message = origErr.Error()
		default:
			if isNotFound(origErr) {
				code = http.StatusNotFound
				resp.Message = origErr.Error()
				break
			}

			// any other error is a server error
			msg := http.StatusText(http.StatusInternalServerError)
			resp.Message = msg
			logger.Error(msg, logArgs(ctx, errors.Wrap(err, msg))...)
			if ctx.Echo().Debug {
				resp.Message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
