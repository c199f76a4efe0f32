package cli

import (
	"github.com/alvinbaena/pwd-analyzer/internal/config"
	"github.com/alvinbaena/pwd-analyzer/pkg/analysis"
	"github.com/alvinbaena/pwd-analyzer/pkg/hibp"
	"github.com/alvinbaena/pwd-analyzer/pkg/strength"
	"github.com/rs/zerolog/log"
)

// newService wires the analyzer and the corpus source described by cfg. The
// returned function releases the caches.
func newService(cfg config.Config, memCache bool) (*analysis.Service, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var ranges hibp.RangeQuery
	if cfg.MirrorDir != "" {
		log.Info().Msgf("using the local range mirror at %s", cfg.MirrorDir)
		ranges = hibp.NewDirRanges(cfg.MirrorDir)
	} else {
		ranges = hibp.NewHTTPRanges(cfg.HTTPOptions())
	}

	if cfg.RedisURL != "" && cfg.MirrorDir == "" {
		rdb, err := hibp.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing redis client")
			}
		})
		ranges = hibp.NewRedisRanges(ranges, rdb, cfg.CacheTTL)
	}

	if memCache && cfg.CacheSize > 0 && cfg.MirrorDir == "" {
		cached, err := hibp.NewCachedRanges(ranges, cfg.CacheSize, cfg.CacheTTL)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, cached.Close)
		ranges = cached
	}

	service := analysis.NewService(
		strength.NewAnalyzer(cfg.StrengthOptions()),
		hibp.NewLookup(ranges, cfg.LookupTimeout),
		cfg.Patterns,
	)
	return service, closeAll, nil
}
