// Package validators holds the pure field validators shared by the auth and
// catalog services.
package validators

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrUsernameReserved = errors.New("you cannot use 'me' as a username")
	ErrUsernameInvalid  = errors.New("username may contain only letters, digits and @/./+/-/_ characters")
	ErrUsernameTooLong  = errors.New("username must be at most 150 characters")
	ErrEmailInvalid     = errors.New("invalid email format")
	ErrEmailTooLong     = errors.New("email must be at most 254 characters")
	ErrSlugInvalid      = errors.New("slug may contain only letters, digits, hyphens and underscores")

	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	slugRegex     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ValidateYear rejects years later than the current calendar year.
func ValidateYear(year int) error {
	current := time.Now().Year()
	if year > current {
		return fmt.Errorf("year %d is in the future (current year is %d)", year, current)
	}
	return nil
}

// ValidateUsername checks the reserved value "me" (any case), the legal
// character set and the length bound.
func ValidateUsername(username string) error {
	if strings.EqualFold(username, "me") {
		return ErrUsernameReserved
	}
	if len(username) > 150 {
		return ErrUsernameTooLong
	}
	if !usernameRegex.MatchString(username) {
		return ErrUsernameInvalid
	}
	return nil
}

func ValidateEmail(email string) error {
	if len(email) > 254 {
		return ErrEmailTooLong
	}
	if !emailRegex.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

func ValidateSlug(slug string) error {
	if slug == "" || len(slug) > 50 || !slugRegex.MatchString(slug) {
		return ErrSlugInvalid
	}
	return nil
}
