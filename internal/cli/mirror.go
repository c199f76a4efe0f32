package cli

import (
	"path/filepath"
	"time"

	"github.com/alvinbaena/pwd-analyzer/internal/config"
	"github.com/alvinbaena/pwd-analyzer/pkg/hibp"
	"github.com/spf13/cobra"
)

var (
	mirrorCmd = &cobra.Command{
		Use:   "mirror",
		Short: "Mirror the Pwned Passwords range corpus into a local directory",
		Long: "Mirror the Pwned Passwords range corpus into a local directory usable with --mirror-dir. " +
			"Ranges already present are skipped unless --overwrite is set, so an interrupted mirror can be resumed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mirrorCommand()
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	mirrorCmd.Flags().StringVarP(&outDir, "out-dir", "o", "./pwned-ranges", "Output directory. Can be absolute or relative.")
	mirrorCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Download ranges that are already present again.")
	mirrorCmd.Flags().IntVarP(&threads, "threads", "t", 0, "Number of threads to use for the download. If omitted or less than 1, defaults to eight times the number of logical processors of the machine.")
	mirrorCmd.Flags().IntVarP(&ranges, "ranges", "r", hibp.TotalRanges, "Number of ranges to mirror, starting at 00000.")

	rootCmd.AddCommand(mirrorCmd)
}

func mirrorCommand() error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}

	opts := cfg.HTTPOptions()
	// Mirroring favors completeness over latency.
	opts.Timeout = 30 * time.Second
	opts.RetryMax = max(opts.RetryMax, 10)
	opts.Padding = false

	d := hibp.NewDownloader(abs, hibp.NewHTTPRanges(opts), threads, overwrite)
	return d.ProcessRanges(ranges, false)
}
