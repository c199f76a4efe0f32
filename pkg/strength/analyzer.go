// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package strength classifies the structure of a password: character class
// coverage, length, a theoretical entropy and a coarse crack time label.
//
// The entropy is an upper bound that assumes every character was picked
// uniformly at random from the pools present in the password. Human chosen
// passwords are far less random than that, so the figures are advisory only.
package strength

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MissingLowercase = "Missing lowercase"
	MissingUppercase = "Missing uppercase"
	MissingNumbers   = "Missing numbers"
	MissingSymbols   = "Missing symbols"
)

// Result is the structural verdict for a single password.
type Result struct {
	Score     int      `json:"score"`
	Feedback  []string `json:"feedback"`
	Entropy   float64  `json:"entropy"`
	CrackTime string   `json:"crack_time"`
}

type Analyzer struct {
	opts Options
}

func NewAnalyzer(opts Options) *Analyzer {
	return &Analyzer{opts: opts.normalize()}
}

func (a *Analyzer) Options() Options {
	return a.opts
}

// classes records which character classes appear in a password.
type classes struct {
	length int
	lower  bool
	upper  bool
	digit  bool
	symbol bool
	// punct is any printable ASCII symbol or a configured one. It feeds the
	// entropy pool, symbol only feeds the criterion.
	punct bool
}

func (a *Analyzer) scan(password string) classes {
	c := classes{length: utf8.RuneCountInString(password)}
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			c.lower = true
		case r >= 'A' && r <= 'Z':
			c.upper = true
		case r >= '0' && r <= '9':
			c.digit = true
		case strings.ContainsRune(a.opts.Symbols, r):
			c.symbol = true
			c.punct = true
		case r >= ' ' && r <= '~':
			c.punct = true
		}
	}
	return c
}

// TooShort is the feedback emitted when the length criterion is not met.
func (a *Analyzer) TooShort() string {
	return fmt.Sprintf("Too short (min %d chars)", a.opts.MinLength)
}

// Analyze scores the password with one point per satisfied criterion. It never
// fails: an empty password yields the worst case result.
func (a *Analyzer) Analyze(password string) Result {
	c := a.scan(password)

	criteria := []struct {
		ok  bool
		msg string
	}{
		{c.length >= a.opts.MinLength, a.TooShort()},
		{c.lower, MissingLowercase},
		{c.upper, MissingUppercase},
		{c.digit, MissingNumbers},
		{c.symbol, MissingSymbols},
	}

	res := Result{Feedback: make([]string, 0, len(criteria))}
	for _, cr := range criteria {
		if cr.ok {
			res.Score++
		} else {
			res.Feedback = append(res.Feedback, cr.msg)
		}
	}

	res.Entropy = entropy(c)
	res.CrackTime = a.CrackTime(res.Entropy)
	return res
}
