package exitcode

import (
	"net/http"
	"os"
	"strings"

	"github.com/reserveja/reserveja-cli/internal/api"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// AuthError indicates an authentication or authorization failure
	AuthError = 5

	// NetworkError indicates a network connectivity issue
	NetworkError = 6

	// Interrupted indicates the run was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if api.IsStatus(err, http.StatusUnauthorized) || api.IsStatus(err, http.StatusForbidden) {
		return AuthError
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "not logged in") || strings.Contains(errMsg, "authentication") {
		return AuthError
	}

	if strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no such host") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "network") {
		return NetworkError
	}

	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}

	return GeneralError
}
