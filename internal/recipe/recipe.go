// Package recipe looks up dishes in TheMealDB and falls back to a generative model
// when the database has no match.
package recipe

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ayusman/rasoi/internal/upstream"
)

const (
	// MaxItems caps both the ingredient and instruction lists.
	MaxItems = 7
	// MaxDishLength is the longest accepted dish name, in characters.
	MaxDishLength = 50
	// DefaultCaution is attached to every database recipe.
	DefaultCaution = "Be cautious with cooking temperature and spice levels."
)

// Source tells where a recipe came from.
type Source string

const (
	SourceDatabase  Source = "database"
	SourceGenerated Source = "generated"
)

// Recipe is a dish with up to MaxItems ingredients and instructions.
type Recipe struct {
	Name         string   `json:"name"`
	ImageURL     string   `json:"image_url,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Caution      string   `json:"caution"`
	Source       Source   `json:"source"`
}

var (
	// ErrNotFound means neither the database nor the generator produced a recipe.
	ErrNotFound = upstream.ErrNotFound
	// ErrUnavailable is a transient failure of an external service.
	ErrUnavailable = upstream.ErrUnavailable
	// ErrPermanent is a non-retryable failure of an external service.
	ErrPermanent = upstream.ErrPermanent
	// ErrInvalidDish rejects an empty or over-long dish name.
	ErrInvalidDish = errors.New("invalid dish name")
)

// Status is the outcome of a lookup as reported to clients.
type Status string

const (
	StatusFound       Status = "found"
	StatusNotFound    Status = "not_found"
	StatusUnavailable Status = "unavailable"
	StatusInvalid     Status = "invalid"
	StatusFailed      Status = "failed"
)

// StatusOf maps a lookup error to its Status. A nil error is StatusFound.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusFound
	case errors.Is(err, ErrInvalidDish):
		return StatusInvalid
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return StatusUnavailable
	default:
		return StatusFailed
	}
}

// NormalizeDish trims dish and checks its length.
func NormalizeDish(dish string) (string, error) {
	dish = strings.TrimSpace(dish)
	if dish == "" {
		return "", ErrInvalidDish
	}
	if utf8.RuneCountInString(dish) > MaxDishLength {
		return "", ErrInvalidDish
	}
	return dish, nil
}
