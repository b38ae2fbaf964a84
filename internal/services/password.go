package services

import "golang.org/x/crypto/bcrypt"

// bcryptCost 12 keeps a single hash in the tens of milliseconds, slow enough
// to resist offline brute force while staying usable for interactive login.
const bcryptCost = 12

// HashPassword returns a salted bcrypt hash of the plaintext password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash. bcrypt's
// comparison is constant-time over the hash output.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// dummyHash is compared against when login hits an unknown email, so the
// unknown-user path costs the same as a wrong-password path.
var dummyHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("equalize-timing"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()
