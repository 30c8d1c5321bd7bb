package pyjamaz

import (
	"context"
	"sync"

	"github.com/pyjamaz/pyjamaz/internal/cache"
	"github.com/rs/zerolog"
)

// resultFormatTag is the cache's pseudo-format for the single winning
// candidate cached per fingerprint. The winner's real Format is recorded
// inside the cache entry's metadata, not in the filename — Optimize
// doesn't know which format will win before the search runs, so it can't
// name the cache file after it in advance.
const resultFormatTag = "result"

// Optimize searches JPEG, WebP, AVIF, and PNG encodings of data (decoding
// it first into a reference raster) and returns the smallest one
// satisfying opts.Constraints while maximizing measured perceptual
// fidelity. A cache hit short-circuits the entire search.
func Optimize(ctx context.Context, data []byte, opts Options) (*Selection, error) {
	logger := opts.logger()
	logger.Info().Int("input_bytes", len(data)).Msg("optimize: job start")

	var c *cache.Cache
	var key cache.Key
	cachingEnabled := opts.CacheDir != ""
	if cachingEnabled {
		var err error
		c, err = cache.New(opts.CacheDir, opts.CacheBudgetBytes, logger)
		if err != nil {
			logger.Debug().Err(err).Msg("cache unavailable, continuing without it")
			cachingEnabled = false
		} else {
			key = fingerprintFor(data, opts)
			if entry, hit := c.Get(key, resultFormatTag); hit {
				logger.Info().Str("format", entry.Meta.Format).Msg("cache hit")
				logger.Info().Bool("passed", entry.Meta.Passed).Msg("optimize: job end (served from cache)")
				sel := selectionFromCacheEntry(entry)
				if !sel.Passed {
					return sel, ErrNoCandidateMetConstraints
				}
				return sel, nil
			}
			logger.Debug().Msg("cache miss")
		}
	}

	raster, err := decode(data, opts.AutoOrient)
	if err != nil {
		logger.Info().Err(err).Msg("optimize: job end (decode failed)")
		return nil, err
	}

	traces, err := runSearch(ctx, raster, opts.Constraints, logger)
	if err != nil {
		logger.Info().Err(err).Msg("optimize: job end (search failed)")
		return nil, err
	}

	winner, passed := selectWinner(traces, opts.Constraints)
	if winner == nil {
		logger.Info().Msg("optimize: job end (all formats failed)")
		return nil, ErrAllFormatsFailed
	}

	sel := &Selection{Passed: passed, Winner: winner, Traces: traces}

	if cachingEnabled {
		meta := cache.Meta{
			Format:    winner.Format.String(),
			Quality:   winner.Quality,
			DiffScore: winner.Diff,
			FileSize:  winner.Bytes,
			Passed:    passed,
		}
		if err := c.Put(key, resultFormatTag, winner.Data, meta); err != nil {
			logger.Debug().Err(err).Msg("cache write failed, result still returned")
		}
	}

	logger.Info().
		Str("winner_format", winner.Format.String()).
		Int64("winner_bytes", winner.Bytes).
		Bool("passed", passed).
		Msg("optimize: job end")

	if !passed {
		return sel, ErrNoCandidateMetConstraints
	}
	return sel, nil
}

// runSearch fans out searchFormat across the candidate formats with a
// bounded worker pool (default 4, capped at 16 per Constraints.workers).
func runSearch(ctx context.Context, raster *ReferenceRaster, constraints Constraints, logger zerolog.Logger) (map[Format]*FormatTrace, error) {
	formats := constraints.formats()
	workers := constraints.workers()
	if workers > len(formats) {
		workers = len(formats)
	}

	jobs := make(chan Format, len(formats))
	for _, f := range formats {
		jobs <- f
	}
	close(jobs)

	results := make(chan *FormatTrace, len(formats))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				select {
				case <-ctx.Done():
					results <- &FormatTrace{Format: f, State: StateErrored, Err: ctx.Err()}
					continue
				default:
				}
				trace := searchFormat(raster, f, constraints)
				if trace.Err != nil {
					logger.Debug().Str("format", f.String()).Err(trace.Err).Msg("format search failed")
				} else {
					logger.Info().
						Str("format", f.String()).
						Int("encode_calls", trace.EncodeCalls).
						Int("candidates", len(trace.Candidates)).
						Msg("format search complete")
				}
				results <- trace
			}
		}()
	}
	wg.Wait()
	close(results)

	traces := make(map[Format]*FormatTrace, len(formats))
	for t := range results {
		traces[t.Format] = t
	}
	return traces, nil
}

func fingerprintFor(data []byte, opts Options) cache.Key {
	formatInts := make([]int, 0, len(opts.Constraints.formats()))
	for _, f := range opts.Constraints.formats() {
		formatInts = append(formatInts, int(f))
	}
	return cache.Fingerprint(cache.FingerprintInput{
		Data:       data,
		MaxBytes:   opts.Constraints.MaxBytes,
		MaxDiff:    opts.Constraints.MaxDiff,
		Metric:     int(opts.Constraints.Metric),
		Formats:    formatInts,
		AutoOrient: opts.AutoOrient,
	})
}

func selectionFromCacheEntry(e *cache.Entry) *Selection {
	f := formatFromString(e.Meta.Format)
	cand := &Candidate{
		Format:  f,
		Quality: e.Meta.Quality,
		Data:    e.Data,
		Diff:    e.Meta.DiffScore,
		Bytes:   e.Meta.FileSize,
	}
	return &Selection{
		Passed:   e.Meta.Passed,
		Winner:   cand,
		CacheHit: true,
	}
}

func formatFromString(s string) Format {
	for _, f := range AllFormats {
		if f.String() == s {
			return f
		}
	}
	return JPEG
}
