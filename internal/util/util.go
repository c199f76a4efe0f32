package util

import (
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
)

func Stats() func() {
	return func() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		log.Debug().Msgf("Alloc: %d MB, TotalAlloc: %d MB, Requested: %d MB",
			ms.Alloc/1024/1024, ms.TotalAlloc/1024/1024, ms.Sys/1024/1024)
		log.Debug().Msgf("Mallocs: %d, Frees: %d, GC: %d", ms.Mallocs, ms.Frees, ms.NumGC)
	}
}

func ApplyCliSettings(verbose bool, profile bool, pprofPort uint16) {
	if verbose {
		log.Warn().Msgf("verbosity up")
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if profile {
		log.Info().Msgf("profiling is enabled for this session. Server will listen on port %d", pprofPort)
		go func() {
			if err := http.ListenAndServe(fmt.Sprintf("localhost:%d", pprofPort), nil); err != nil {
				log.Error().Err(err).Msgf("error starting profiling server on port %d", pprofPort)
				return
			}
		}()
	}
}

// CheckDiskSpace fails if the partition holding path has less than required
// bytes free. When the partition can't be determined it only warns.
func CheckDiskSpace(path string, required uint64) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	// Longest mount point that contains the path.
	mount := ""
	if parts, err := disk.Partitions(true); err == nil {
		for _, part := range parts {
			if strings.HasPrefix(abs, part.Mountpoint) && len(part.Mountpoint) > len(mount) {
				mount = part.Mountpoint
			}
		}
	} else {
		log.Debug().Err(err).Msgf("error getting current partitions")
	}

	if mount == "" {
		log.Warn().Msgf("IMPORTANT: could not check free space, the mirror needs about %.2f GiB", gib(required))
		return nil
	}

	usage, err := disk.Usage(mount)
	if err != nil {
		log.Debug().Err(err).Msgf("error getting current storage sizes")
		log.Warn().Msgf("IMPORTANT: could not check free space, the mirror needs about %.2f GiB", gib(required))
		return nil
	}

	log.Debug().Msgf("%s has %.2f GiB free", mount, gib(usage.Free))
	if required > usage.Free {
		return fmt.Errorf("drive %s does not have sufficient space free (%.2f GiB) for the download. "+
			"Please free some space before trying again", mount, gib(required))
	}
	return nil
}

func gib(b uint64) float64 {
	return float64(b) / (1024 * 1024 * 1024)
}

// ToScreamingSnakeCase turns a Go field name like TLSCert into TLS_CERT.
func ToScreamingSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteByte('_')
			}
		}
		if r == ' ' || r == '-' || r == '.' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
