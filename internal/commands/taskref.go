package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"

	"today/internal/exitcode"
	"today/internal/session"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the task number in args.
// A reference is the 1-based number shown by list; it is the task's position
// in the whole list, so it does not change with --date.
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := args[0]
	if !isAllDigits(ref) {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	num, err := strconv.Atoi(ref)
	if err != nil || num < 1 {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	return num, nil
}

// resolveTaskRef parses args and returns the key of the referenced task.
func resolveTaskRef(m *session.Manager, args []string, errOut io.Writer) (string, int) {
	num, err := ParseTaskRef(args)
	if err != nil {
		return "", reportRefError(err, errOut)
	}
	key, err := m.KeyAt(num)
	if err != nil {
		return "", reportRefError(err, errOut)
	}
	return key, exitcode.Success
}

func reportRefError(err error, errOut io.Writer) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
