// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import "github.com/alvinbaena/pwd-analyzer/internal/config"

var (
	// Flags bound here override the environment.
	v = config.New()

	// batch
	inputFile string
	// root
	verbose bool
	// root
	profile bool
	// root
	pprofPort uint16
	// mirror
	outDir string
	// check
	interactive bool
	// check
	hashed bool
	// batch, mirror
	threads int
	// mirror
	ranges int
	// mirror
	overwrite bool
)
