// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package analysis combines the structural verdict and the breach lookup of a
// password into a single report.
package analysis

import (
	"context"

	"github.com/alvinbaena/pwd-analyzer/pkg/hibp"
	"github.com/alvinbaena/pwd-analyzer/pkg/strength"
	"github.com/nbutton23/zxcvbn-go"
)

// Report is the combined result. Strength is always present, Breach may have
// failed independently.
type Report struct {
	Strength strength.Result
	Breach   hibp.Result
	Patterns *PatternEstimate
}

// PatternEstimate is the zxcvbn view of the password, which accounts for
// dictionary words, keyboard walks and other predictable patterns.
type PatternEstimate struct {
	Score            int     `json:"score"`
	Entropy          float64 `json:"entropy"`
	CrackTimeDisplay string  `json:"crack_time_display"`
}

// Service runs analyses. It keeps no per request state and is safe for
// concurrent use.
type Service struct {
	analyzer *strength.Analyzer
	lookup   *hibp.Lookup
	patterns bool
}

func NewService(analyzer *strength.Analyzer, lookup *hibp.Lookup, patterns bool) *Service {
	return &Service{analyzer: analyzer, lookup: lookup, patterns: patterns}
}

// Analyze runs the local checks first and then a single breach lookup.
func (s *Service) Analyze(ctx context.Context, password string) Report {
	report := Report{Strength: s.analyzer.Analyze(password)}
	if s.patterns {
		report.Patterns = estimatePatterns(password)
	}

	report.Breach = s.lookup.Check(ctx, password)
	return report
}

// CheckHash only runs the breach lookup for an already hashed password.
func (s *Service) CheckHash(ctx context.Context, hash string) (hibp.Result, error) {
	d, err := hibp.ParseDigest(hash)
	if err != nil {
		return hibp.Result{}, err
	}
	return s.lookup.CheckDigest(ctx, d), nil
}

func estimatePatterns(password string) *PatternEstimate {
	if password == "" {
		return &PatternEstimate{CrackTimeDisplay: "instant"}
	}

	m := zxcvbn.PasswordStrength(password, nil)
	return &PatternEstimate{
		Score:            m.Score,
		Entropy:          m.Entropy,
		CrackTimeDisplay: m.CrackTimeDisplay,
	}
}
