// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package strength

import (
	"fmt"
	"math"
)

const (
	lowerPool  = 26
	upperPool  = 26
	digitPool  = 10
	symbolPool = 32
)

// Ascending label thresholds, in seconds.
const (
	minute  = 60
	hour    = 3600
	day     = 86400
	year    = 31_536_000
	century = 3_153_600_000
)

// Entropy returns length * log2(pool) in bits, where pool is the combined size
// of the character classes present. The symbol pool counts any printable ASCII
// symbol, including ones like ~ that are not in Options.Symbols and so do not
// satisfy the symbol criterion. Non-ASCII characters add to the length but not
// to the pool.
func (a *Analyzer) Entropy(password string) float64 {
	return entropy(a.scan(password))
}

func entropy(c classes) float64 {
	pool := 0
	if c.lower {
		pool += lowerPool
	}
	if c.upper {
		pool += upperPool
	}
	if c.digit {
		pool += digitPool
	}
	if c.punct {
		pool += symbolPool
	}

	if pool == 0 {
		return 0
	}
	return float64(c.length) * math.Log2(float64(pool))
}

// CrackTime maps an entropy in bits to a bucketed label using the analyzer
// guess rate.
func (a *Analyzer) CrackTime(bits float64) string {
	if bits < 0 || math.IsNaN(bits) {
		bits = 0
	}
	return crackTimeLabel(math.Pow(2, bits) / a.opts.GuessRate)
}

func crackTimeLabel(seconds float64) string {
	switch {
	case seconds < minute:
		return "Instantly"
	case seconds < hour:
		return fmt.Sprintf("%d minutes", int64(seconds/minute))
	case seconds < day:
		return fmt.Sprintf("%d hours", int64(seconds/hour))
	case seconds < year:
		return fmt.Sprintf("%d days", int64(seconds/day))
	case seconds < century:
		return fmt.Sprintf("%d years", int64(seconds/year))
	}
	return "Centuries"
}
