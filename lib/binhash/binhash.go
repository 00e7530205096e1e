// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// SentinelUnavailable is the digest value recorded for an attachment
// whose content could not be hashed (unreadable file, permission
// error). It participates in none of the dedup or integrity checks:
// an attachment carrying the sentinel is stored as-is and skipped by
// the save-time re-verification gate.
const SentinelUnavailable = "unavailable"

// HashFile computes the SHA256 digest of the file at path and returns
// it as a lowercase hex string. The file is streamed through the hash
// function in chunks (via io.Copy) to keep memory usage constant
// regardless of file size.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashFileOrSentinel computes the SHA256 hex digest of the file at
// path, or returns SentinelUnavailable when the file cannot be read.
// This is the form used when registering attachments: a hashing
// failure downgrades the attachment to "content identity unknown"
// instead of failing the registration.
func HashFileOrSentinel(path string) string {
	digest, err := HashFile(path)
	if err != nil {
		return SentinelUnavailable
	}
	return digest
}

// IsReal reports whether digest is an actual content hash rather than
// the sentinel recorded on hashing failure.
func IsReal(digest string) bool {
	return digest != SentinelUnavailable
}

// ParseDigest validates a hex-encoded SHA256 digest string. Returns an
// error if the string is not a valid 64-character hex encoding of 32
// bytes. The sentinel is not a valid digest.
func ParseDigest(hexString string) ([32]byte, error) {
	var digest [32]byte
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing hash digest: %w", err)
	}
	if len(decoded) != 32 {
		return digest, fmt.Errorf("hash digest is %d bytes, want 32", len(decoded))
	}
	copy(digest[:], decoded)
	return digest, nil
}
