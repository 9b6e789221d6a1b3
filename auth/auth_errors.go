package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	DuplicateEmailErr      = errors.New("user with this email already exists")
	DuplicateUsernameErr   = errors.New("user with this username already exists")
	InvalidCredentialsErr  = errors.New("invalid credentials")
	InvalidRefreshTokenErr = errors.New("invalid refresh token")
)

// AccountLockedError is returned when too many failed login attempts have
// accumulated for an email. RetryAfter is the lockout window duration.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked due to too many failed login attempts, try again in %s", e.RetryAfter.Round(time.Minute))
}

// IsAccountLocked reports whether err is an AccountLockedError.
func IsAccountLocked(err error) bool {
	var locked *AccountLockedError
	return errors.As(err, &locked)
}
