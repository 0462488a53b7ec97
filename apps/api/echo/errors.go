package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errHttpConflict         = echo.NewHTTPError(http.StatusConflict, "already exists")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		origErr := errors.Cause(err)
		switch origErr {
		case record.ErrNotFound, user.ErrNotFound:
			origErr = errHttpNotFound
		case record.ErrConflict:
			origErr = errHttpConflict
		case user.ErrInvalidCredential:
			origErr = errAuthenticationFailed
		}

		switch e := origErr.(type) {
		case *echo.HTTPError:
			if e == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = e.Message
				break
			}
			if e.Internal != nil {
				if herr, ok := e.Internal.(*echo.HTTPError); ok {
					e = herr
				}
			}
			code = e.Code
			message = e.Message
		default:
			if core.IsValidationError(origErr) {
				code = http.StatusBadRequest
				if fldErrs := core.FieldErrors(origErr); fldErrs != nil {
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				args = append(args, user.User{ID: claims.Subject, Name: claims.Name, Email: claims.Email})
			}
			if logger != nil {
				logger.Error(msg, args...)
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
