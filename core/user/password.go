package user

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/stephenschool/schoolconnect/core"
)

var hashCost = bcrypt.DefaultCost

// HashPassword returns a bcrypt hash of pwd. The salt is random and embedded in the hash,
// so hashing the same password twice yields two different hashes.
// A password longer than 72 bytes is a validation error.
func HashPassword(pwd string) ([]byte, error) {
	if len(pwd) > pwdMaxLen {
		return nil, core.NewValidationError(bcrypt.ErrPasswordTooLong, core.FieldError{Field: "password", Error: pwdMaxLenText})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), hashCost)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}
	return hash, nil
}

// VerifyPassword reports whether pwd matches hash, in constant time.
// A malformed hash never matches.
func VerifyPassword(pwd string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(pwd)) == nil
}
