package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ayusman/rasoi/internal/logging"
	"github.com/ayusman/rasoi/internal/recipe"
	"github.com/ayusman/rasoi/internal/store"
	"github.com/ayusman/rasoi/internal/video"
)

// SearchRequest is one dish lookup.
type SearchRequest struct {
	Dish  string `json:"dish" validate:"required,max=50"`
	Input string `json:"input" validate:"omitempty,oneof=typed spoken"`
}

// SearchResponse is the full result of a lookup: the recipe and its videos.
type SearchResponse struct {
	ID         string         `json:"id"`
	Dish       string         `json:"dish"`
	Status     recipe.Status  `json:"status"`
	Recipe     *recipe.Recipe `json:"recipe,omitempty"`
	Videos     []video.Video  `json:"videos"`
	VideoError string         `json:"video_error,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Generated reports whether the recipe came from the generative fallback.
func (r *SearchResponse) Generated() bool {
	return r.Recipe != nil && r.Recipe.Source == recipe.SourceGenerated
}

// RecipeFinder resolves a dish to a recipe.
type RecipeFinder interface {
	Find(ctx context.Context, dish string) (*recipe.Recipe, error)
}

// Searcher runs lookups and records them in the search history.
type Searcher struct {
	recipes  RecipeFinder
	videos   video.Searcher
	store    *store.Store
	validate *validator.Validate
}

// NewSearcher creates a Searcher. videos and st may be nil.
func NewSearcher(recipes RecipeFinder, videos video.Searcher, st *store.Store) *Searcher {
	return &Searcher{
		recipes:  recipes,
		videos:   videos,
		store:    st,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate trims req and checks it against the request constraints.
func (s *Searcher) Validate(req *SearchRequest) error {
	req.Dish = strings.TrimSpace(req.Dish)
	if req.Input == "" {
		req.Input = string(store.InputTyped)
	}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Tag() {
			case "required":
				return fmt.Errorf("%w: dish is required", recipe.ErrInvalidDish)
			case "max":
				return fmt.Errorf("%w: dish must be at most %d characters", recipe.ErrInvalidDish, recipe.MaxDishLength)
			}
		}
		return fmt.Errorf("%w: %v", recipe.ErrInvalidDish, err)
	}
	return nil
}

// Search looks up the recipe and, when one is found, its videos.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) *SearchResponse {
	resp := &SearchResponse{
		ID:     uuid.NewString(),
		Dish:   strings.TrimSpace(req.Dish),
		Videos: []video.Video{},
	}

	if err := s.Validate(&req); err != nil {
		resp.Status = recipe.StatusInvalid
		resp.Error = err.Error()
		return resp
	}

	log := logging.Ctx(ctx)
	log.Info().Str("dish", req.Dish).Str("input", req.Input).Msg("Searching for dish")

	r, err := s.recipes.Find(ctx, req.Dish)
	resp.Status = recipe.StatusOf(err)
	if err != nil {
		resp.Error = err.Error()
		if resp.Status != recipe.StatusNotFound {
			log.Warn().Err(err).Str("dish", req.Dish).Str("status", string(resp.Status)).Msg("recipe lookup failed")
		}
	} else {
		resp.Recipe = r
		s.attachVideos(ctx, resp)
	}

	s.record(ctx, req, resp)
	return resp
}

func (s *Searcher) attachVideos(ctx context.Context, resp *SearchResponse) {
	if s.videos == nil {
		return
	}
	videos, err := s.videos.Search(ctx, resp.Dish)
	if err != nil {
		resp.VideoError = string(recipe.StatusOf(err))
		logging.Ctx(ctx).Warn().Err(err).Str("dish", resp.Dish).Msg("video search failed")
		return
	}
	resp.Videos = videos
}

func (s *Searcher) record(ctx context.Context, req SearchRequest, resp *SearchResponse) {
	if s.store == nil {
		return
	}
	entry := &store.Search{
		ID:     resp.ID,
		Dish:   req.Dish,
		Input:  store.InputKind(req.Input),
		Status: string(resp.Status),
	}
	if resp.Recipe != nil {
		entry.Source = string(resp.Recipe.Source)
	}
	if err := s.store.Searches().Create(ctx, entry); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to record search")
	}
}
