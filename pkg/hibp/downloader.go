// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alvinbaena/pwd-analyzer/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/thinhdanggroup/executor"
)

const (
	// TotalRanges is the number of 5 hex character prefixes, 00000 to FFFFF.
	TotalRanges = 1 << 20

	// Rough on-disk size of a range file.
	bytesPerRange = 40 * 1024
)

// Downloader mirrors the range corpus into a directory readable by DirRanges.
type Downloader struct {
	parallelism int
	overwrite   bool
	dir         string
	ranges      RangeQuery
	timeout     time.Duration
	stat        *status
}

// NewDownloader mirrors ranges into dir. If parallelism is less than 1 it
// defaults to eight times the number of logical processors.
func NewDownloader(dir string, ranges RangeQuery, parallelism int, overwrite bool) *Downloader {
	return &Downloader{
		parallelism: parallelism,
		overwrite:   overwrite,
		dir:         dir,
		ranges:      ranges,
		timeout:     30 * time.Second,
	}
}

// ProcessRanges downloads the first n ranges. Existing range files are kept
// unless overwrite is set, so an interrupted mirror can be resumed.
func (d *Downloader) ProcessRanges(n int, skipWait bool) error {
	if n <= 0 || n > TotalRanges {
		n = TotalRanges
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return err
	}

	if err := util.CheckDiskSpace(d.dir, uint64(n)*bytesPerRange); err != nil {
		return err
	}

	s := util.Stats()
	defer s()

	var threads int
	if d.parallelism > 0 {
		threads = d.parallelism
	} else {
		// About 8 times nets a sustained download of about 150 Mbit/s
		threads = runtime.NumCPU() * 8
	}

	downloadTasks, err := executor.New(executor.Config{
		ReqPerSeconds: 0,
		QueueSize:     2 * threads,
		NumWorkers:    threads,
	})
	if err != nil {
		return err
	}
	defer downloadTasks.Close()

	log.Info().Msgf("mirroring %d Pwned Passwords ranges into %s with %d threads, ^C to stop the process", n, d.dir, threads)
	if !skipWait {
		time.Sleep(10 * time.Second)
	}
	log.Info().Msg("starting process. This might take a while, be patient :)")
	d.stat = newStatus(n)
	d.stat.BeginProgress()

	for i := 0; i < n; i++ {
		if err = downloadTasks.Publish(d.ProcessRange, RangePrefix(i)); err != nil {
			log.Panic().Err(err).Msgf("there is a programming error here.")
		}
	}

	downloadTasks.Wait()
	failed := d.stat.Done()

	if failed > 0 {
		return fmt.Errorf("%d of %d ranges failed, run again to resume the mirror", failed, n)
	}
	return nil
}

// RangePrefix renders i as the 5 character uppercase hex prefix of a range.
func RangePrefix(i int) string {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(i))
	return strings.ToUpper(hex.EncodeToString(buf)[3:])
}

func (d *Downloader) ProcessRange(prefix string) {
	path := rangePath(d.dir, prefix)
	if !d.overwrite {
		if _, err := os.Stat(path); err == nil {
			d.stat.RangeSkipped()
			return
		}
	}

	timer := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	data, err := d.ranges.Range(ctx, prefix)
	if err != nil {
		d.stat.RangeFailed()
		log.Error().Err(err).Msgf("error downloading range %s", prefix)
		return
	}
	d.stat.RequestComplete(time.Since(timer).Milliseconds())

	if err = writeRangeFile(path, data); err != nil {
		d.stat.RangeFailed()
		log.Error().Err(err).Msgf("error during file write for range %s", prefix)
		return
	}

	d.stat.RangeDownloaded(lineCount(data))
}

// writeRangeFile writes through a temporary file so a reader never sees a
// partially written range.
func writeRangeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func lineCount(data []byte) uint64 {
	n := bytes.Count(data, []byte{'\n'})
	if len(data) > 0 && data[len(data)-1] != '\n' {
		n++
	}
	return uint64(n)
}
