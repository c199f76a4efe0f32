// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirRanges serves ranges from a local mirror created by the Downloader. A
// missing range file is an error, an incomplete mirror can't prove a password
// is clean.
type DirRanges struct {
	root string
}

func NewDirRanges(root string) *DirRanges {
	return &DirRanges{root: root}
}

// rangePath shards the ~1M range files into 256 directories.
func rangePath(root, prefix string) string {
	return filepath.Join(root, prefix[:2], prefix+".txt")
}

func (d *DirRanges) Range(ctx context.Context, prefix string) ([]byte, error) {
	if !ValidPrefix(prefix) {
		return nil, fmt.Errorf("invalid range prefix %q", prefix)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadFile(rangePath(d.root, prefix))
}
