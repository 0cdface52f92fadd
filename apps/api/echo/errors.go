package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	ut "github.com/go-playground/universal-translator"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/settings"
	"github.com/trezcool/darasa/core/team"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// statusForDomainError maps known service errors to HTTP statuses. The
// messages themselves are written for end users and pass through as is.
func statusForDomainError(err error) (int, bool) {
	switch err {
	case team.ErrNotFound, assignment.ErrNotFound, grade.ErrNotFound, course.ErrNotFound, team.ErrPendingNotFound:
		return http.StatusNotFound, true
	case team.ErrTeamsLocked, grade.ErrNotAssigned:
		return http.StatusForbidden, true
	case team.ErrTeamExists, assignment.ErrAssignmentExists, course.ErrCourseExists:
		return http.StatusConflict, true
	case team.ErrAlreadyInTeam, team.ErrNotInTeam, team.ErrTeamFull, team.ErrNoTeams,
		team.ErrInvalidConfiguration, grade.ErrNotReviewable, grade.ErrMissingReviewer,
		assignment.ErrInvalidDueDate, settings.ErrNotFound, settings.ErrInvalidAPIKey:
		return http.StatusBadRequest, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if status, ok := statusForDomainError(cause); ok {
			code = status
			message = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = origErr.Message
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusBadRequest
				message = fldErrs
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			case *core.PersistenceError:
				// partially applied batches are reported as retriable
				code = http.StatusInternalServerError
				message = "the operation could not be completed; it is safe to retry"
				logger.Error(origErr.Error(), origErr.Err)
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
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
