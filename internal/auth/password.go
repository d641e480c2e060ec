// Package auth checks HTTP Basic credentials against the configured user.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"apptcal/internal/config"
)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("auth: password is empty")

// HashPassword returns a bcrypt hash suitable for basic_auth.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verifier validates a username/password pair.
type Verifier struct {
	username string
	password string
	hash     []byte
}

// NewVerifier returns nil when cfg does not enable authentication.
func NewVerifier(cfg *config.BasicAuthConfig) *Verifier {
	if cfg == nil || cfg.Username == "" {
		return nil
	}
	v := &Verifier{username: cfg.Username}
	switch {
	case cfg.PasswordHash != "":
		v.hash = []byte(strings.TrimSpace(cfg.PasswordHash))
	case cfg.Password != "":
		v.password = cfg.Password
	default:
		return nil
	}
	return v
}

// Verify reports whether the credentials match.
func (v *Verifier) Verify(username, password string) bool {
	if v == nil {
		return false
	}
	userOK := secureCompare(username, v.username)
	if v.hash != nil {
		// Always run bcrypt so a wrong username costs the same as a wrong password.
		passOK := bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
		return userOK && passOK
	}
	return userOK && secureCompare(password, v.password)
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
