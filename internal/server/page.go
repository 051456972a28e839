package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/ayusman/rasoi/internal/logging"
	"github.com/ayusman/rasoi/internal/recipe"
	"github.com/ayusman/rasoi/internal/server/api"
)

//go:embed templates/*.html
var templateFS embed.FS

type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() *pageRenderer {
	funcs := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}
	tmpl := template.Must(template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html"))
	return &pageRenderer{tmpl: tmpl}
}

type pageData struct {
	Dish         string
	MaxDish      int
	SpeechUpload bool
	SpeechListen bool
	Result       *api.SearchResponse
	Message      string
	LastDish     string
}

// handleIndex renders the search page. With ?dish= it runs the lookup and renders
// the result below the search box.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		MaxDish:      recipe.MaxDishLength,
		SpeechUpload: s.config.Transcriber != nil,
		SpeechListen: s.config.Listener != nil,
	}

	status := http.StatusOK
	if dish := r.URL.Query().Get("dish"); dish != "" {
		resp := s.searcher.Search(r.Context(), api.SearchRequest{
			Dish:  dish,
			Input: r.URL.Query().Get("input"),
		})
		data.Dish = resp.Dish
		data.Result = resp
		data.Message = pageMessage(resp)
		status = api.HTTPStatus(resp.Status)
	} else if s.config.Store != nil {
		if last, err := s.config.Store.Searches().Latest(r.Context()); err == nil {
			data.LastDish = last.Dish
		}
	}

	var buf bytes.Buffer
	if err := s.page.tmpl.Execute(&buf, data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func pageMessage(resp *api.SearchResponse) string {
	switch resp.Status {
	case recipe.StatusNotFound:
		return "Recipe not found in TheMealDB, and no generator is configured."
	case recipe.StatusUnavailable:
		return "A recipe service is temporarily unavailable. Please try again shortly."
	case recipe.StatusInvalid:
		return "Please enter a dish name of at most 50 characters."
	case recipe.StatusFailed:
		return "The recipe could not be generated."
	}
	return ""
}
