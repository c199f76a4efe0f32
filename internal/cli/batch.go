package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/alvinbaena/pwd-analyzer/internal/config"
	"github.com/alvinbaena/pwd-analyzer/pkg/analysis"
	"github.com/alvinbaena/pwd-analyzer/pkg/hibp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/thinhdanggroup/executor"
)

var (
	batchCmd = &cobra.Command{
		Use:   "batch",
		Short: "Analyse a file of newline separated passwords concurrently",
		Long: "Analyse a file of newline separated passwords concurrently. One JSON line is written per " +
			"password, identified by its line number. Passwords are never echoed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return batchCommand(cmd.Context(), os.Stdout)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	batchCmd.Flags().StringVarP(&inputFile, "in-file", "i", "", "File with one password per line (required)")
	batchCmd.MarkFlagRequired("in-file")
	batchCmd.Flags().IntVarP(&threads, "threads", "t", 0, "Number of concurrent analyses. Defaults to twice the number of logical processors.")

	rootCmd.AddCommand(batchCmd)
}

type batchLine struct {
	Line         int     `json:"line"`
	Score        int     `json:"score"`
	Entropy      float64 `json:"entropy"`
	CrackTime    string  `json:"crack_time"`
	Breaches     int64   `json:"breaches"`
	BreachStatus string  `json:"breach_status"`
}

type batchWriter struct {
	mu          sync.Mutex
	enc         *json.Encoder
	found       uint64
	unavailable uint64
}

func (b *batchWriter) write(line int, r analysis.Report) {
	switch r.Breach.Status() {
	case hibp.StatusFound:
		atomic.AddUint64(&b.found, 1)
	case hibp.StatusUnavailable:
		atomic.AddUint64(&b.unavailable, 1)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enc.Encode(batchLine{
		Line:         line,
		Score:        r.Strength.Score,
		Entropy:      r.Strength.Entropy,
		CrackTime:    r.Strength.CrackTime,
		Breaches:     r.Breach.Count,
		BreachStatus: r.Breach.Status(),
	}); err != nil {
		log.Error().Err(err).Msgf("error writing result for line %d", line)
	}
}

func batchCommand(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	service, closer, err := newService(cfg, true)
	defer closer()
	if err != nil {
		return err
	}

	file, err := os.Open(inputFile)
	if err != nil {
		return err
	}

	defer func(file *os.File) {
		if err = file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing passwords file")
		}
	}(file)

	workers := threads
	if workers < 1 {
		workers = runtime.NumCPU() * 2
	}

	tasks, err := executor.New(executor.Config{
		ReqPerSeconds: 0,
		QueueSize:     2 * workers,
		NumWorkers:    workers,
	})
	if err != nil {
		return err
	}
	defer tasks.Close()

	w := &batchWriter{enc: json.NewEncoder(out)}
	analyze := func(line int, password string) {
		w.write(line, service.Analyze(ctx, password))
	}

	total := 0
	scanner := bufio.NewScanner(file)
	for n := 1; scanner.Scan(); n++ {
		password := scanner.Text()
		if password == "" {
			continue
		}

		total++
		if err = tasks.Publish(analyze, n, password); err != nil {
			log.Panic().Err(err).Msgf("there is a programming error here.")
		}
	}

	tasks.Wait()
	if err = scanner.Err(); err != nil {
		return err
	}

	log.Info().Msgf("analysed %d passwords: %d breached, %d could not be verified", total, atomic.LoadUint64(&w.found), atomic.LoadUint64(&w.unavailable))
	return nil
}
