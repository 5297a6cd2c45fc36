package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is above bcrypt.DefaultCost on purpose; login latency
// is an acceptable trade for slower offline cracking.
const hashCost = 12

// Hash produces a salted bcrypt digest of the given password.
// Every call salts freshly, so equal passwords hash differently.
func Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether the password matches the digest. A malformed
// digest verifies as false rather than surfacing an error.
func Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
