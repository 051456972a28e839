package api

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/ayusman/rasoi/internal/recipe"
	"github.com/ayusman/rasoi/internal/store"
	"github.com/ayusman/rasoi/internal/video"
)

// RecipeHandler serves recipe lookups, video searches and the search history.
type RecipeHandler struct {
	searcher *Searcher
	videos   video.Searcher
	store    *store.Store
}

// NewRecipeHandler creates a RecipeHandler.
func NewRecipeHandler(searcher *Searcher, videos video.Searcher, st *store.Store) *RecipeHandler {
	return &RecipeHandler{searcher: searcher, videos: videos, store: st}
}

// Search handles GET /api/recipes?dish=...&input=... and POST /api/recipes.
func (h *RecipeHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	} else {
		req.Dish = r.URL.Query().Get("dish")
		req.Input = r.URL.Query().Get("input")
	}

	resp := h.searcher.Search(r.Context(), req)
	writeJSON(w, HTTPStatus(resp.Status), resp)
}

type videosResponse struct {
	Dish   string        `json:"dish"`
	Videos []video.Video `json:"videos"`
}

// Videos handles GET /api/videos?dish=...
func (h *RecipeHandler) Videos(w http.ResponseWriter, r *http.Request) {
	if h.videos == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "video search is not configured", Status: string(recipe.StatusUnavailable)})
		return
	}

	req := SearchRequest{Dish: r.URL.Query().Get("dish")}
	if err := h.searcher.Validate(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Status: string(recipe.StatusInvalid)})
		return
	}

	videos, err := h.videos.Search(r.Context(), req.Dish)
	if err != nil {
		status := recipe.StatusOf(err)
		writeJSON(w, HTTPStatus(status), errorResponse{Error: err.Error(), Status: string(status)})
		return
	}

	writeJSON(w, http.StatusOK, videosResponse{Dish: req.Dish, Videos: videos})
}

type historyEntry struct {
	ID        string `json:"id"`
	Dish      string `json:"dish"`
	Input     string `json:"input"`
	Status    string `json:"status"`
	Source    string `json:"source,omitempty"`
	CreatedAt string `json:"created_at"`
}

type historyResponse struct {
	Searches []historyEntry `json:"searches"`
}

// History handles GET /api/history?limit=N.
func (h *RecipeHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, historyResponse{Searches: []historyEntry{}})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	searches, err := h.store.Searches().List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list searches")
		return
	}

	response := historyResponse{Searches: make([]historyEntry, 0, len(searches))}
	for _, s := range searches {
		response.Searches = append(response.Searches, historyEntry{
			ID:        s.ID,
			Dish:      s.Dish,
			Input:     string(s.Input),
			Status:    s.Status,
			Source:    s.Source,
			CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, response)
}
