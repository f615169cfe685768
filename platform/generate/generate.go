package generate

import (
	"crypto/rand"
	mrand "math/rand"

	"golang.org/x/crypto/scrypt"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Scrypt parameters.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

const saltLen = 16

// EncryptPassword derives a key from the password and salt suited for storage
// and comparison.
func EncryptPassword(password, salt []byte) ([]byte, error) {
	return scrypt.Key(password, salt, scryptN, scryptR, scryptP, scryptKeyLen)
}

// RandomBytes returns a slice of the given length drawn from src.
func RandomBytes(src mrand.Source, n int) []byte {
	var (
		bs = make([]byte, n)
		r  = mrand.New(src)
	)

	for i := range bs {
		bs[i] = byte(r.Intn(256))
	}

	return bs
}

// RandomString returns a random alphanumeric string of the given length.
func RandomString(n int) string {
	bs := make([]byte, n)

	for i := range bs {
		bs[i] = charset[mrand.Intn(len(charset))]
	}

	return string(bs)
}

// Salt returns a cryptographically sound salt.
func Salt() ([]byte, error) {
	salt := make([]byte, saltLen)

	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	return salt, nil
}
