package recipe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ayusman/rasoi/internal/upstream"
)

// Meal is one entry of a TheMealDB search response. Field values are strings or null.
type Meal map[string]any

func (m Meal) field(name string) string {
	if v, ok := m[name].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

type searchResponse struct {
	Meals []Meal `json:"meals"`
}

// MealDBClient searches TheMealDB by dish name.
type MealDBClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *upstream.Breaker
}

// NewMealDBClient creates a client for the API rooted at baseURL.
func NewMealDBClient(baseURL string, timeout time.Duration) *MealDBClient {
	return &MealDBClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    upstream.NewBreaker("mealdb", upstream.BreakerSettings{}),
	}
}

// Search returns the first meal matching dish.
func (c *MealDBClient) Search(ctx context.Context, dish string) (*Recipe, error) {
	return upstream.Do(c.breaker, func() (*Recipe, error) {
		meal, err := c.first(ctx, dish)
		if err != nil {
			return nil, err
		}
		return FromMeal(meal), nil
	})
}

func (c *MealDBClient) first(ctx context.Context, dish string) (Meal, error) {
	endpoint := c.baseURL + "/search.php?s=" + url.QueryEscape(dish)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("mealdb: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream.TransportError(ctx, "mealdb", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstream.StatusError("mealdb", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("mealdb: failed to decode response: %v: %w", err, ErrPermanent)
	}

	if len(body.Meals) == 0 {
		return nil, fmt.Errorf("mealdb: no meal named %q: %w", dish, ErrNotFound)
	}
	return body.Meals[0], nil
}

// FromMeal extracts a Recipe from a database entry: the first MaxItems ingredient
// slots that are non-empty, instructions split on ". " and capped at MaxItems, and
// the default caution.
func FromMeal(meal Meal) *Recipe {
	r := &Recipe{
		Name:         meal.field("strMeal"),
		ImageURL:     meal.field("strMealThumb"),
		Ingredients:  []string{},
		Instructions: []string{},
		Caution:      DefaultCaution,
		Source:       SourceDatabase,
	}

	for i := 1; i <= MaxItems; i++ {
		if v := meal.field(fmt.Sprintf("strIngredient%d", i)); v != "" {
			r.Ingredients = append(r.Ingredients, v)
		}
	}

	for _, step := range strings.Split(meal.field("strInstructions"), ". ") {
		if len(r.Instructions) == MaxItems {
			break
		}
		if step = strings.TrimSpace(step); step != "" {
			r.Instructions = append(r.Instructions, step)
		}
	}

	return r
}
