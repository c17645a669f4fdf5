package user

import (
	"regexp"

	"license-tracker/pkg/errutil"
)

const minPasswordLength = 6

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

func validateCredentials(c Credentials) error {
	var details []errutil.Detail
	if !usernamePattern.MatchString(c.Username) {
		details = append(details, errutil.Detail{
			Field:   "username",
			Message: "3-20 characters of letters, digits or underscore",
		})
	}
	if len(c.Password) < minPasswordLength {
		details = append(details, errutil.Detail{
			Field:   "password",
			Message: "must be at least 6 characters",
		})
	}
	if len(details) > 0 {
		return errutil.BadRequest("invalid username or password", nil, errutil.WithDetails(details...))
	}
	return nil
}
