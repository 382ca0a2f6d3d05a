// Package extractor orchestrates NID extraction: fingerprint the input,
// consult the content-addressed cache, and on a miss run recognition and
// parsing exactly once per fingerprint regardless of how many concurrent
// callers ask for it.
package extractor

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"nidextract/internal/cache"
	"nidextract/internal/logger"
	"nidextract/internal/nid"
	"nidextract/internal/ocr"
	"nidextract/pkg/models"
)

// Side selects which card side an image shows, and thereby which recognition
// engine and parser handle it.
type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

// ErrUnknownSide is returned when the side discriminator is not front or back.
var ErrUnknownSide = errors.New("unknown card side")

// Result is the extraction outcome for one image. Exactly one of Front/Back
// is populated, matching the requested side. Results are immutable once
// produced and may be shared freely.
type Result struct {
	Front *models.FrontData `json:"nid_front,omitempty"`
	Back  *models.BackData  `json:"nid_back,omitempty"`
}

// Config holds orchestrator settings.
type Config struct {
	// EnableCache toggles the content-addressed result cache.
	EnableCache bool

	// CacheMaxSize bounds the cache entry count; least-recently-accessed
	// entries are evicted first.
	CacheMaxSize uint64

	// CacheTTL expires entries after this duration.
	CacheTTL time.Duration

	// Parser configures the field extraction heuristics.
	Parser nid.Config
}

// Service sequences fingerprinting, cache lookup, recognition and parsing.
// It is safe for concurrent use.
type Service struct {
	front  ocr.Engine
	back   ocr.Engine
	parser *nid.Parser

	cacheEnabled bool
	cache        *cache.Cache[*Result]
	group        singleflight.Group

	log zerolog.Logger
}

// New creates the extraction service with explicitly injected engines for
// each card side. It starts the cache's background expiry sweep; call Close
// to release engines and stop the sweep.
func New(front, back ocr.Engine, cfg Config) *Service {
	s := &Service{
		front:        front,
		back:         back,
		parser:       nid.NewParser(cfg.Parser),
		cacheEnabled: cfg.EnableCache,
		log:          logger.WithComponent("extractor"),
	}
	if cfg.EnableCache {
		s.cache = cache.New[*Result](cfg.CacheMaxSize, cfg.CacheTTL)
		s.cache.Start()
	}
	return s
}

// Extract returns the structured extraction result for one card image.
// Byte-identical images on the same side share one cached result; concurrent
// requests for an absent fingerprint trigger exactly one recognition call,
// whose result (or error) all of them receive. Recognition errors propagate;
// unextractable fields are reported as absent, not as errors.
func (s *Service) Extract(ctx context.Context, image []byte, side Side) (*Result, error) {
	engine, err := s.engineFor(side)
	if err != nil {
		return nil, err
	}

	key := cache.Fingerprint(string(side), image)

	if s.cacheEnabled {
		if result, ok := s.cache.Get(key); ok {
			s.log.Debug().
				Str("side", string(side)).
				Str("fingerprint", key[:16]).
				Msg("Cache hit")
			return result, nil
		}
	}

	value, err, shared := s.group.Do(key, func() (any, error) {
		// A previous leader may have populated the cache between our lookup
		// and joining the flight.
		if s.cacheEnabled {
			if result, ok := s.cache.Get(key); ok {
				return result, nil
			}
		}

		start := time.Now()
		items, err := engine.Recognize(ctx, image)
		if err != nil {
			return nil, err
		}

		result := s.parse(side, items)

		if s.cacheEnabled {
			s.cache.Set(key, result)
		}

		s.log.Info().
			Str("side", string(side)).
			Str("engine", engine.Name()).
			Str("fingerprint", key[:16]).
			Int("items", len(items)).
			Dur("duration", time.Since(start)).
			Msg("Extraction completed")

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		s.log.Debug().
			Str("side", string(side)).
			Str("fingerprint", key[:16]).
			Msg("Joined in-flight extraction")
	}

	return value.(*Result), nil
}

func (s *Service) parse(side Side, items []ocr.TextItem) *Result {
	switch side {
	case SideFront:
		return &Result{Front: s.parser.ParseFront(items)}
	default:
		return &Result{Back: s.parser.ParseBack(items)}
	}
}

func (s *Service) engineFor(side Side) (ocr.Engine, error) {
	switch side {
	case SideFront:
		return s.front, nil
	case SideBack:
		return s.back, nil
	default:
		return nil, ErrUnknownSide
	}
}

// ClearCache empties the result cache, returning the number of entries removed.
func (s *Service) ClearCache() int {
	if !s.cacheEnabled {
		return 0
	}
	count := s.cache.Clear()
	s.log.Info().Int("entries_cleared", count).Msg("Cache cleared")
	return count
}

// CacheStats returns a snapshot of cache counters. Zero value when caching is
// disabled.
func (s *Service) CacheStats() cache.Stats {
	if !s.cacheEnabled {
		return cache.Stats{}
	}
	return s.cache.Stats()
}

// CacheEnabled reports whether result caching is active.
func (s *Service) CacheEnabled() bool {
	return s.cacheEnabled
}

// Close stops the cache sweep and closes both recognition engines, returning
// the first error encountered.
func (s *Service) Close() error {
	if s.cacheEnabled {
		s.cache.Stop()
	}
	var firstErr error
	closed := make(map[ocr.Engine]bool)
	for _, engine := range []ocr.Engine{s.front, s.back} {
		if engine == nil || closed[engine] {
			continue
		}
		closed[engine] = true
		if err := engine.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
