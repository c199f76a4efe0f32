// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package strength

const (
	// DefaultGuessRate is the assumed attacker throughput in guesses per second: a
	// modern offline GPU rig against an unsalted fast hash (SHA-1, NTLM). It dominates
	// the crack time label and is far too pessimistic for salted, slow hashes
	// (bcrypt, argon2id), where real rates are many orders of magnitude lower.
	DefaultGuessRate = 1e11

	DefaultMinLength = 8

	// DefaultSymbols is the set of characters that satisfy the symbol criterion.
	DefaultSymbols = " !@#$%^&*()_+-=[]{};':\"\\|,.<>/?"
)

// Options holds the tunables of an Analyzer.
type Options struct {
	MinLength int
	Symbols   string
	GuessRate float64
}

func DefaultOptions() Options {
	return Options{
		MinLength: DefaultMinLength,
		Symbols:   DefaultSymbols,
		GuessRate: DefaultGuessRate,
	}
}

func (o Options) normalize() Options {
	if o.MinLength <= 0 {
		o.MinLength = DefaultMinLength
	}
	if o.Symbols == "" {
		o.Symbols = DefaultSymbols
	}
	if !(o.GuessRate > 0) {
		o.GuessRate = DefaultGuessRate
	}
	return o
}
