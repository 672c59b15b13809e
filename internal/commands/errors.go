package commands

import (
	"errors"
	"fmt"
	"io"

	"taskdeck/internal/backend/taskapi"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/push"
	"taskdeck/internal/session"
	"taskdeck/internal/validate"
)

// exitFor maps an error to an exit code.
func exitFor(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case validate.IsValidation(err),
		errors.Is(err, ErrTaskRefRequired),
		errors.Is(err, ErrInvalidRef),
		errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrOutOfRange),
		errors.Is(err, ErrAmbiguousRef),
		errors.Is(err, push.ErrUnsupported),
		errors.Is(err, push.ErrPermissionDenied),
		errors.Is(err, push.ErrNoServerKey),
		errors.Is(err, push.ErrInvalidServerKey):
		return exitcode.UserError
	case errors.Is(err, session.ErrNoToken), taskapi.IsUnauthorized(err):
		return exitcode.AuthError
	default:
		return exitcode.BackendError
	}
}

// report prints err and returns its exit code.
func report(errOut io.Writer, err error) int {
	code := exitFor(err)
	if code == exitcode.BackendError && !errors.Is(err, taskapi.ErrUnreachable) {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return code
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return code
}

// usageError turns a parse error into a validation error for field.
func usageError(field string, err error) error {
	return validate.Field(field, err.Error())
}

// ok prints "ok" unless quiet.
func ok(app *App, out io.Writer) int {
	if !app.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
