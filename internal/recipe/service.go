package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ayusman/rasoi/internal/cache"
	"github.com/ayusman/rasoi/internal/logging"
	"github.com/ayusman/rasoi/internal/metrics"
)

// Finder looks a dish up in a recipe database.
type Finder interface {
	Search(ctx context.Context, dish string) (*Recipe, error)
}

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service resolves a dish name to a recipe: cache, then database, then generator.
type Service struct {
	finder    Finder
	generator Generator
	cache     cache.Cache
	ttl       time.Duration
}

// NewService creates a Service. generator may be nil to disable the fallback and
// c may be nil to disable caching.
func NewService(finder Finder, generator Generator, c cache.Cache, ttl time.Duration) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{
		finder:    finder,
		generator: generator,
		cache:     c,
		ttl:       ttl,
	}
}

// HasGenerator reports whether the generative fallback is configured.
func (s *Service) HasGenerator() bool {
	return s.generator != nil
}

// Find returns the recipe for dish. ErrNotFound is returned only when the
// database has no match and no generator is configured.
func (s *Service) Find(ctx context.Context, dish string) (*Recipe, error) {
	dish, err := NormalizeDish(dish)
	if err != nil {
		metrics.RecipeLookups.WithLabelValues(string(StatusInvalid), "").Inc()
		return nil, err
	}

	r, err := s.find(ctx, dish)

	source := ""
	if r != nil {
		source = string(r.Source)
	}
	metrics.RecipeLookups.WithLabelValues(string(StatusOf(err)), source).Inc()

	return r, err
}

func (s *Service) find(ctx context.Context, dish string) (*Recipe, error) {
	log := logging.Ctx(ctx)
	key := cache.Key("recipe", strings.ToLower(dish))

	var cached Recipe
	if ok, err := cache.GetJSON(ctx, s.cache, "recipe", key, &cached); err != nil {
		log.Warn().Err(err).Str("dish", dish).Msg("recipe cache read failed")
	} else if ok {
		return &cached, nil
	}

	r, err := s.finder.Search(ctx, dish)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		if s.generator == nil {
			return nil, err
		}
		log.Info().Str("dish", dish).Msg("recipe not in database, generating")
		r, err = s.generate(ctx, dish)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, key, r, s.ttl); err != nil {
		log.Warn().Err(err).Str("dish", dish).Msg("recipe cache write failed")
	}
	return r, nil
}

func (s *Service) generate(ctx context.Context, dish string) (*Recipe, error) {
	text, err := s.generator.Generate(ctx, Prompt(dish))
	if err != nil {
		return nil, fmt.Errorf("generate recipe: %w", err)
	}

	g := ParseGenerated(text)
	if g.Empty() {
		return nil, fmt.Errorf("generate recipe: reply had no recognizable sections: %w", ErrPermanent)
	}

	return &Recipe{
		Name:         dish,
		Ingredients:  g.Ingredients,
		Instructions: g.Instructions,
		Caution:      g.Caution,
		Source:       SourceGenerated,
	}, nil
}
