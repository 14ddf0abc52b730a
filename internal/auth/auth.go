// Package auth verifies a plaintext password against an Argon2id PHC hash
// string (the format produced by the reference argon2 CLI and every major
// Go argon2 password-hashing library).
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrMalformedHash means the configured password hash is not a well-formed
// Argon2id PHC string. Callers should treat this as an internal/config
// error (HTTP 500), not an authentication failure.
var ErrMalformedHash = errors.New("malformed argon2 hash")

// ErrPasswordMismatch means the hash parsed fine but the password didn't
// match. Callers should treat this as Unauthorized (HTTP 401).
var ErrPasswordMismatch = errors.New("password mismatch")

type phcParams struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	hash    []byte
}

// VerifyPassword checks password against hash, a PHC string of the form
// "$argon2id$v=19$m=65536,t=1,p=4$<salt-b64>$<hash-b64>".
func VerifyPassword(hash, password string) error {
	params, err := parsePHC(hash)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	computed := argon2.IDKey([]byte(password), params.salt, params.time, params.memory, params.threads, uint32(len(params.hash)))

	if subtle.ConstantTimeCompare(computed, params.hash) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

func parsePHC(s string) (phcParams, error) {
	// Expected: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	parts := strings.Split(s, "$")
	if len(parts) != 6 {
		return phcParams{}, fmt.Errorf("expected 6 '$'-separated fields, got %d", len(parts))
	}
	// parts[0] is empty (string starts with '$')
	if parts[1] != "argon2id" {
		return phcParams{}, fmt.Errorf("unsupported algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return phcParams{}, fmt.Errorf("parse version: %w", err)
	}
	if version != argon2.Version {
		return phcParams{}, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var p phcParams
	var mem, timeCost uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &timeCost, &threads); err != nil {
		return phcParams{}, fmt.Errorf("parse params: %w", err)
	}
	p.memory, p.time, p.threads = mem, timeCost, threads

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return phcParams{}, fmt.Errorf("decode salt: %w", err)
	}
	p.salt = salt

	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return phcParams{}, fmt.Errorf("decode hash: %w", err)
	}
	p.hash = digest

	return p, nil
}
