package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/rasoi/internal/cache"
	"github.com/ayusman/rasoi/internal/recipe"
	"github.com/ayusman/rasoi/internal/store"
)

func TestAPI_RecipeWorkflow(t *testing.T) {
	// Fake TheMealDB: only knows Arrabiata
	mealdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Query().Get("s"), "arrabiata") {
			w.Write([]byte(`{"meals":[{"strMeal":"Spicy Arrabiata Penne","strMealThumb":"https://img/a.jpg","strInstructions":"Boil water. Cook penne. Serve.","strIngredient1":"penne rigate","strIngredient2":"olive oil","strIngredient3":""}]}`))
			return
		}
		w.Write([]byte(`{"meals":null}`))
	}))
	defer mealdb.Close()

	// Fake Gemini
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Ingredients:\n- paneer\n- yogurt\nInstructions:\nStep 1: Marinate\nStep 2: Grill\nCaution:\nSkewers get hot."}]}}]}`))
	}))
	defer gemini.Close()

	tmpDir := t.TempDir()
	st, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	svc := recipe.NewService(
		recipe.NewMealDBClient(mealdb.URL, 5*time.Second),
		recipe.NewGeminiClient(gemini.URL, "gemini-1.5-pro-latest", "test-key", 5*time.Second),
		cache.NewSQLite(st),
		time.Hour,
	)

	srv := New(Config{Recipes: svc, Store: st})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Database hit
	resp, err := client.Get(ts.URL + "/api/recipes?dish=Arrabiata")
	if err != nil {
		t.Fatalf("GET /api/recipes error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var found struct {
		Status string `json:"status"`
		Recipe struct {
			Name         string   `json:"name"`
			Ingredients  []string `json:"ingredients"`
			Instructions []string `json:"instructions"`
			Caution      string   `json:"caution"`
			Source       string   `json:"source"`
		} `json:"recipe"`
	}
	json.NewDecoder(resp.Body).Decode(&found)
	resp.Body.Close()

	if found.Recipe.Name != "Spicy Arrabiata Penne" || found.Recipe.Source != "database" {
		t.Errorf("recipe = %+v", found.Recipe)
	}
	if len(found.Recipe.Ingredients) != 2 || len(found.Recipe.Instructions) != 3 {
		t.Errorf("ingredients = %v, instructions = %v", found.Recipe.Ingredients, found.Recipe.Instructions)
	}
	if found.Recipe.Caution != recipe.DefaultCaution {
		t.Errorf("caution = %q", found.Recipe.Caution)
	}

	// 2. Generated fallback
	resp, _ = client.Get(ts.URL + "/api/recipes?dish=paneer+tikka&input=spoken")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET generated status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	json.NewDecoder(resp.Body).Decode(&found)
	resp.Body.Close()

	if found.Recipe.Source != "generated" {
		t.Errorf("source = %q, want generated", found.Recipe.Source)
	}
	if len(found.Recipe.Ingredients) != 2 || found.Recipe.Ingredients[0] != "paneer" {
		t.Errorf("ingredients = %v", found.Recipe.Ingredients)
	}
	if found.Recipe.Caution != "Skewers get hot." {
		t.Errorf("caution = %q", found.Recipe.Caution)
	}

	// 3. History lists both, newest first
	resp, _ = client.Get(ts.URL + "/api/history")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/history status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var history struct {
		Searches []struct {
			Dish   string `json:"dish"`
			Input  string `json:"input"`
			Source string `json:"source"`
		} `json:"searches"`
	}
	json.NewDecoder(resp.Body).Decode(&history)
	resp.Body.Close()

	if len(history.Searches) != 2 {
		t.Fatalf("len(searches) = %d, want 2", len(history.Searches))
	}
	if history.Searches[0].Dish != "paneer tikka" || history.Searches[0].Input != "spoken" {
		t.Errorf("latest search = %+v", history.Searches[0])
	}

	// 4. Invalid dish
	resp, _ = client.Get(ts.URL + "/api/recipes?dish=" + strings.Repeat("x", 51))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("long dish status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	resp.Body.Close()

	// 5. Disabled features report unavailable
	resp, _ = client.Post(ts.URL+"/api/speech/listen", "application/json", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("listen status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	resp.Body.Close()
}
