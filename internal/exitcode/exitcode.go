// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion, including mutations that were
	// saved locally while the server was unreachable.
	Success = 0

	// UserError indicates a user error (bad args, unknown task number, invalid date).
	UserError = 1

	// AuthError indicates a missing, expired or revoked session.
	AuthError = 2

	// BackendError indicates a server, network or local storage error.
	BackendError = 3
)
