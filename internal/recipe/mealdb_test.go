package recipe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealDBClient_Search(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.php", r.URL.Path)
		gotQuery = r.URL.Query().Get("s")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meals":[{"strMeal":"Kedgeree","strMealThumb":"http://img/k.jpg","strInstructions":"Boil rice. Flake fish.","strIngredient1":"rice","strIngredient2":null}]}`))
	}))
	defer ts.Close()

	c := NewMealDBClient(ts.URL+"/", 5*time.Second)
	r, err := c.Search(context.Background(), "kedgeree & eggs")
	require.NoError(t, err)

	assert.Equal(t, "kedgeree & eggs", gotQuery)
	assert.Equal(t, "Kedgeree", r.Name)
	assert.Equal(t, "http://img/k.jpg", r.ImageURL)
	assert.Equal(t, []string{"rice"}, r.Ingredients)
	assert.Equal(t, []string{"Boil rice", "Flake fish."}, r.Instructions)
}

func TestMealDBClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"null meals", http.StatusOK, `{"meals":null}`, ErrNotFound},
		{"empty meals", http.StatusOK, `{"meals":[]}`, ErrNotFound},
		{"server error", http.StatusBadGateway, ``, ErrUnavailable},
		{"rate limited", http.StatusTooManyRequests, ``, ErrUnavailable},
		{"bad request", http.StatusBadRequest, ``, ErrPermanent},
		{"bad json", http.StatusOK, `<html>`, ErrPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := NewMealDBClient(ts.URL, 5*time.Second)
			_, err := c.Search(context.Background(), "nothing")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMealDBClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := NewMealDBClient(url, time.Second)
	_, err := c.Search(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}
