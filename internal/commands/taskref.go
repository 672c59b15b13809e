package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num    int    // 1-based position, 0 if not numeric
	Prefix string // id prefix, always set to the raw reference
}

// Reference errors.
var (
	ErrTaskRefRequired = errors.New("task reference required")
	ErrInvalidRef      = errors.New("invalid task reference")
	ErrTaskNotFound    = errors.New("task not found")
	ErrOutOfRange      = errors.New("task number out of range")
	ErrAmbiguousRef    = errors.New("ambiguous task reference")
)

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
//  1. No args → ErrTaskRefRequired
//  2. All digits → position (also tried as an id prefix when out of range)
//  3. Anything else → id prefix
//  4. More than one arg → ErrInvalidRef
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("%w: %s", ErrInvalidRef, strings.Join(args, " "))
	}

	ref := strings.TrimSpace(args[0])
	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil || num < 1 {
			return TaskRef{}, fmt.Errorf("%w: %s", ErrInvalidRef, ref)
		}
		return TaskRef{Num: num, Prefix: ref}, nil
	}
	return TaskRef{Prefix: ref}, nil
}

// String returns the reference as typed.
func (r TaskRef) String() string {
	return r.Prefix
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
