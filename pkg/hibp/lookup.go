// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout = 5 * time.Second

	maxLineLen = 64 * 1024

	// Unavailable is the Count of a Result whose lookup failed. It is never a
	// valid breach count.
	Unavailable int64 = -1
)

const (
	StatusFound       = "found"
	StatusNotFound    = "not_found"
	StatusUnavailable = "unavailable"
)

var ErrLookupFailed = errors.New("breach lookup failed")

// RangeQuery returns every corpus entry sharing prefix as `SUFFIX:COUNT` lines.
type RangeQuery interface {
	Range(ctx context.Context, prefix string) ([]byte, error)
}

// RangeQueryFunc adapts a function to RangeQuery.
type RangeQueryFunc func(ctx context.Context, prefix string) ([]byte, error)

func (f RangeQueryFunc) Range(ctx context.Context, prefix string) ([]byte, error) {
	return f(ctx, prefix)
}

// Result is the outcome of a breach lookup. A failed lookup has a non nil Err
// and Count set to Unavailable, so it can't be mistaken for a clean password.
type Result struct {
	Count int64
	// Malformed is the number of response lines that were skipped.
	Malformed int
	Err       error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

func (r Result) Status() string {
	switch {
	case r.Failed():
		return StatusUnavailable
	case r.Count > 0:
		return StatusFound
	}
	return StatusNotFound
}

type Lookup struct {
	ranges  RangeQuery
	timeout time.Duration
}

// NewLookup creates a lookup over ranges. Each check is bounded by timeout,
// DefaultTimeout if zero or negative.
func NewLookup(ranges RangeQuery, timeout time.Duration) *Lookup {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Lookup{ranges: ranges, timeout: timeout}
}

// Check returns how many times password appears in the corpus.
func (l *Lookup) Check(ctx context.Context, password string) Result {
	return l.CheckDigest(ctx, HashPassword(password))
}

func (l *Lookup) CheckDigest(ctx context.Context, d Digest) Result {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	body, err := l.ranges.Range(ctx, d.Prefix)
	if err != nil {
		log.Debug().Err(err).Msgf("range query for prefix %s failed", d.Prefix)
		return Result{Count: Unavailable, Err: fmt.Errorf("%w: %w", ErrLookupFailed, err)}
	}

	count, malformed := ParseRange(body, d.Suffix)
	if malformed > 0 {
		log.Debug().Msgf("skipped %d malformed lines in range %s", malformed, d.Prefix)
	}

	return Result{Count: count, Malformed: malformed}
}

// ParseRange scans a range response for suffix and returns its count, or 0 if
// absent. Lines without a colon or with an invalid count are skipped and
// reported in malformed.
func ParseRange(body []byte, suffix string) (count int64, malformed int) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 4096), maxLineLen)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		hash, rawCount, ok := strings.Cut(line, ":")
		if !ok {
			malformed++
			continue
		}

		n, err := strconv.ParseInt(strings.TrimSpace(rawCount), 10, 64)
		if err != nil || n < 0 {
			malformed++
			continue
		}

		if hash == suffix {
			return n, malformed
		}
	}

	// An oversized line stops the scanner, count it as one more bad line.
	if scanner.Err() != nil {
		malformed++
	}

	return 0, malformed
}
