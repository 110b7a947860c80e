// internal/settings/validator.go
//
// Opt-in strict check.  Resolve deliberately accepts whatever the
// environment holds; the `check` command calls Validate afterwards so an
// operator can catch blank database fields or a bogus scheme before
// rollout.

package settings

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate returns the validation errors for s, or nil.
func Validate(s *Settings) error {
	return validate.Struct(s)
}
