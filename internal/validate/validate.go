// Package validate provides the assertion helpers shared by DTO constructors,
// repositories and services. Each helper checks a single primitive constraint
// and returns an error that wraps common.ErrorValidation and names the
// offending parameter. The helpers are pure: calling one twice on the same
// input yields the same result and never mutates state.
package validate

import (
	"fmt"
	"regexp"
	"time"

	"github.com/mviktors/minichat/internal/common"
)

var alphanumeric = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

func fail(name, reason string) error {
	return fmt.Errorf("%w: %s %s", common.ErrorValidation, name, reason)
}

// NonEmpty checks that s has at least one character.
func NonEmpty(name, s string) error {
	if len(s) == 0 {
		return fail(name, "must not be empty")
	}
	return nil
}

// Alphanumeric checks that s is non-empty and contains only ASCII letters and
// digits.
func Alphanumeric(name, s string) error {
	if err := NonEmpty(name, s); err != nil {
		return err
	}
	if !alphanumeric.MatchString(s) {
		return fail(name, "must contain only letters and digits")
	}
	return nil
}

// PositiveID checks that id is a positive integer.
func PositiveID(name string, id int64) error {
	if id <= 0 {
		return fail(name, fmt.Sprintf("must be a positive integer, got %d", id))
	}
	return nil
}

// NonZeroTime checks that t carries an actual instant. The Unix epoch is a
// valid instant; only the zero time.Time is rejected.
func NonZeroTime(name string, t time.Time) error {
	if t.IsZero() {
		return fail(name, "must be a valid time")
	}
	return nil
}
