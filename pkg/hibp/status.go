// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type status struct {
	rangesDownloaded uint64
	rangesSkipped    uint64
	rangesFailed     uint64
	hashesDownloaded uint64
	requests         uint64
	requestTimeTotal uint64
	start            time.Time
	ticker           *time.Ticker
	progress         chan bool
	totalRanges      int
}

func newStatus(totalRanges int) *status {
	return &status{
		start:       time.Now(),
		ticker:      time.NewTicker(10 * time.Second),
		progress:    make(chan bool),
		totalRanges: totalRanges,
	}
}

// BeginProgress reports the progress of the download every 10 seconds.
func (s *status) BeginProgress() {
	go func() {
		for {
			select {
			case <-s.progress:
				return
			case <-s.ticker.C:
				total := float64(s.totalRanges)
				done := atomic.LoadUint64(&s.rangesDownloaded) + atomic.LoadUint64(&s.rangesSkipped)
				log.Info().Msgf("%.2f%% hash ranges mirrored. %.0f hashes/s", (float64(done)*100)/total, s.hashesPerSecond())
			}
		}
	}()
}

func (s *status) RangeDownloaded(hashes uint64) {
	atomic.AddUint64(&s.rangesDownloaded, 1)
	atomic.AddUint64(&s.hashesDownloaded, hashes)
}

func (s *status) RangeSkipped() {
	atomic.AddUint64(&s.rangesSkipped, 1)
}

func (s *status) RangeFailed() {
	atomic.AddUint64(&s.rangesFailed, 1)
}

func (s *status) RequestComplete(millis int64) {
	atomic.AddUint64(&s.requestTimeTotal, uint64(millis))
	atomic.AddUint64(&s.requests, 1)
}

func (s *status) hashesPerSecond() float64 {
	elapsed := time.Since(s.start)
	hashes := float64(atomic.LoadUint64(&s.hashesDownloaded))
	if elapsed.Nanoseconds() > 0 {
		return hashes / elapsed.Seconds()
	}
	return hashes
}

// Done stops the progress reporting, logs a summary and returns the number of
// failed ranges.
func (s *status) Done() uint64 {
	s.ticker.Stop()
	s.progress <- true

	var requestAverage float64
	if s.requests > 0 {
		requestAverage = float64(s.requestTimeTotal) / float64(s.requests)
	}

	p := message.NewPrinter(language.English)
	log.Info().Msgf("finished mirroring hash ranges in %v. %.0f hashes/s", time.Since(s.start), s.hashesPerSecond())
	log.Info().Msgf("downloaded: %s, skipped: %s, failed: %s",
		p.Sprintf("%d", s.rangesDownloaded), p.Sprintf("%d", s.rangesSkipped), p.Sprintf("%d", s.rangesFailed))
	log.Debug().Msgf("made %s range requests. Average response time %.2f ms", p.Sprintf("%d", s.requests), requestAverage)

	return s.rangesFailed
}
