// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package hibp checks passwords against the Pwned Passwords corpus using the
// k-anonymity range model: only the first 5 hex characters of the SHA-1 hash
// leave the process and the matching suffix is searched locally.
package hibp

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

const PrefixLen = 5

var (
	hashPattern   = regexp.MustCompile(`^[A-F\d]{40}$`)
	prefixPattern = regexp.MustCompile(`^[A-F\d]{5}$`)
)

var ErrInvalidHash = errors.New("input is not a valid SHA1 Hexadecimal hash")

// Digest is the uppercase hexadecimal SHA-1 of a password split for a range query.
type Digest struct {
	Hash   string
	Prefix string
	Suffix string
}

// HashPassword hashes the UTF-8 bytes of password.
func HashPassword(password string) Digest {
	sum := sha1.Sum([]byte(password))
	return splitHash(strings.ToUpper(hex.EncodeToString(sum[:])))
}

// ParseDigest accepts an already hashed password in hexadecimal, any case.
func ParseDigest(hash string) (Digest, error) {
	hash = strings.ToUpper(strings.TrimSpace(hash))
	if !hashPattern.MatchString(hash) {
		return Digest{}, ErrInvalidHash
	}
	return splitHash(hash), nil
}

func splitHash(hash string) Digest {
	return Digest{Hash: hash, Prefix: hash[:PrefixLen], Suffix: hash[PrefixLen:]}
}

func ValidPrefix(prefix string) bool {
	return prefixPattern.MatchString(prefix)
}
