package license

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func IsValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

func (r *AddLicenseRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.ExpiryDate = strings.TrimSpace(r.ExpiryDate)
	r.PrimaryEmail = strings.TrimSpace(r.PrimaryEmail)
	r.PrimaryOwner = strings.TrimSpace(r.PrimaryOwner)
	r.SecondaryEmail = strings.TrimSpace(r.SecondaryEmail)
	r.SecondaryOwner = strings.TrimSpace(r.SecondaryOwner)
}
