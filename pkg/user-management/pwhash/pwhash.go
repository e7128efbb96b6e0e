package pwhash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	argonMemory      uint32 = 64 * 1024
	argonIterations  uint32 = 4
	argonParallelism uint8  = 1
)

const (
	saltLength = 16
	keyLength  = 32
)

var ErrInvalidHashFormat = errors.New("encoded hash has wrong format")

// InitArgonParams overrides the default argon2id cost parameters, typically
// from the service config at startup.
func InitArgonParams(memory uint32, iterations uint32, parallelism uint8) {
	if memory > 0 {
		argonMemory = memory
	}
	if iterations > 0 {
		argonIterations = iterations
	}
	if parallelism > 0 {
		argonParallelism = parallelism
	}
}

// HashPassword derives an argon2id hash and returns it in the standard
// encoded form, including the parameters used.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, keyLength)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonIterations,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// ComparePasswordWithHash checks a plain password against an encoded hash.
// The parameters are taken from the encoded value, so hashes created with
// older cost settings keep working.
func ComparePasswordWithHash(encodedHash string, password string) (bool, error) {
	memory, iterations, parallelism, salt, key, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	otherKey := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, otherKey) == 1, nil
}

func decodeHash(encodedHash string) (memory uint32, iterations uint32, parallelism uint8, salt []byte, key []byte, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		err = ErrInvalidHashFormat
		return
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return
	}
	if version != argon2.Version {
		err = errors.New("incompatible argon2 version")
		return
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	return
}
