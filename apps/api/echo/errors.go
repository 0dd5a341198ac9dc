package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/apps/workspace"
	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/roster"
	"github.com/trezcool/scorebook/core/user"
	"github.com/trezcool/scorebook/storage"
)

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")

// statusOf maps the app's errors to an HTTP status. 0 means "unexpected".
func statusOf(err error) int {
	switch {
	case errors.Is(err, user.ErrUsernameExists):
		return http.StatusConflict
	case core.IsValidationError(err),
		errors.Is(err, roster.ErrLastCriterion),
		errors.Is(err, roster.ErrIndexOutOfRange),
		errors.Is(err, workspace.ErrNoStudents),
		errors.Is(err, storage.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, workspace.ErrNotAuthenticated),
		errors.Is(err, user.ErrWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, roster.ErrClassNotFound),
		errors.Is(err, roster.ErrStudentNotFound),
		errors.Is(err, roster.ErrCriterionNotFound),
		errors.Is(err, workspace.ErrAccountsDisabled):
		return http.StatusNotFound
	case core.IsStorageError(err),
		errors.Is(err, workspace.ErrMailDisabled):
		return http.StatusServiceUnavailable
	}
	return 0
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		var httpErr *echo.HTTPError
		var vErr *core.ValidationError
		switch {
		case errors.As(err, &httpErr):
			if httpErr.Internal != nil {
				if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
					httpErr = herr
				}
			}
			code = httpErr.Code
			message = httpErr.Message
		case errors.As(err, &vErr):
			code = statusOf(err)
			if vErr.Fields != nil {
				fldErrs := make(map[string]string, len(vErr.Fields))
				for _, fErr := range vErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = vErr.Error()
			}
		default:
			if code = statusOf(err); code != 0 {
				message = errors.Cause(err).Error()
				if code == http.StatusServiceUnavailable && logger != nil {
					logger.Error("storage failure", err)
				}
				break
			}
			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			if logger != nil {
				logger.Error(msg, errors.Wrap(err, msg))
			}
		}

		if ctx.Echo().Debug {
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
