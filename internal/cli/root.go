// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"github.com/alvinbaena/pwd-analyzer/internal/config"
	"github.com/alvinbaena/pwd-analyzer/internal/util"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "pwd-analyzer [COMMAND] [OPTIONS]",
		Short: "Estimate how resistant a password is to compromise",
		Long: "Score the structure of a password, estimate its entropy and time to crack, and check it " +
			"against the Pwned Passwords (haveibeenpwned.com) corpus using k-anonymity range queries. " +
			"Only the first 5 characters of the SHA-1 hash ever leave this process.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadDotEnv()
			util.ApplyCliSettings(verbose, profile, pprofPort)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print more information on the processing")
	rootCmd.PersistentFlags().BoolVar(&profile, "profile", false, "Enable the profiling server (pprof) when running commands")
	rootCmd.PersistentFlags().Uint16Var(&pprofPort, "profile-port", 6060, "The port to use for the pprof server. Only used if the profile flag is set")

	rootCmd.PersistentFlags().String("range-url", "", "Base URL of the Pwned Passwords range API")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Timeout of a single breach lookup")
	rootCmd.PersistentFlags().String("mirror-dir", "", "Query a local mirror created with the mirror command instead of the API")
	rootCmd.PersistentFlags().String("redis-url", "", "Share range responses between instances through this Redis (redis://...)")
	rootCmd.PersistentFlags().Float64("guess-rate", 0, "Assumed attacker guesses per second for the crack time estimate")

	v.BindPFlag("RANGE_API_URL", rootCmd.PersistentFlags().Lookup("range-url"))
	v.BindPFlag("LOOKUP_TIMEOUT", rootCmd.PersistentFlags().Lookup("timeout"))
	v.BindPFlag("MIRROR_DIR", rootCmd.PersistentFlags().Lookup("mirror-dir"))
	v.BindPFlag("REDIS_URL", rootCmd.PersistentFlags().Lookup("redis-url"))
	v.BindPFlag("GUESS_RATE", rootCmd.PersistentFlags().Lookup("guess-rate"))
}

func Execute() error {
	return rootCmd.Execute()
}
