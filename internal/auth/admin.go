// Package auth holds the single administrator credential.  There is no
// account management: the credential comes from configuration and the
// outcome of a login is a boolean flag in the visitor's session.
package auth

import (
	"crypto/subtle"
	"fmt"

	"github.com/iliyamo/school-booking/internal/utils"
)

// Credential is the administrator's user name and bcrypt password hash.
type Credential struct {
	User string
	hash string
}

// NewCredential builds the admin credential.  A non-empty hash is used as
// is; otherwise plain is hashed with the given bcrypt cost.
func NewCredential(user, plain, hash string, cost int) (Credential, error) {
	if user == "" {
		return Credential{}, fmt.Errorf("admin user must not be empty")
	}
	if hash != "" {
		if !utils.IsBcryptHash(hash) {
			return Credential{}, fmt.Errorf("admin password hash is not a bcrypt hash")
		}
		return Credential{User: user, hash: hash}, nil
	}
	if plain == "" {
		return Credential{}, fmt.Errorf("admin password must not be empty")
	}
	h, err := utils.HashPassword(plain, cost)
	if err != nil {
		return Credential{}, fmt.Errorf("hash admin password: %w", err)
	}
	return Credential{User: user, hash: h}, nil
}

// Verify reports whether user and password match the credential.  The
// password is always checked so a wrong user name takes as long as a wrong
// password.
func (c Credential) Verify(user, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(c.User)) == 1
	passOK := utils.VerifyPassword(c.hash, password)
	return userOK && passOK
}
