// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, validation, not found, ambiguous ref).
	UserError = 1

	// AuthError indicates an auth/config error (not logged in, rejected token).
	AuthError = 2

	// BackendError indicates a backend/API/network or storage error.
	BackendError = 3
)

// Name returns a short label for code, used in logs.
func Name(code int) string {
	switch code {
	case Success:
		return "success"
	case UserError:
		return "user_error"
	case AuthError:
		return "auth_error"
	case BackendError:
		return "backend_error"
	default:
		return "unknown"
	}
}
