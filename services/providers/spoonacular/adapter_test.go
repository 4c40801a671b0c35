package spoonacular

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/services/providers"
)

func TestNewAdapter(t *testing.T) {
	t.Run("missing API key", func(t *testing.T) {
		_, err := NewAdapter(Config{})
		assert.Error(t, err)
	})

	t.Run("defaults applied", func(t *testing.T) {
		adapter, err := NewAdapter(Config{APIKey: "test-key"})
		require.NoError(t, err)
		assert.Equal(t, "spoonacular", adapter.Name())
		assert.Equal(t, defaultBaseURL, adapter.config.BaseURL)
	})
}

func TestAdapter_SuggestFoods(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/food/ingredients/search", r.URL.Path)
		assert.Equal(t, "chicken", r.URL.Query().Get("query"))
		assert.Equal(t, "3", r.URL.Query().Get("number"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"name": "chicken breast"}, {"name": "chicken thigh"}]}`))
	}))
	defer server.Close()

	adapter, err := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	payload, err := adapter.Invoke(context.Background(), providers.FoodSuggestionRequest{
		Query:      "chicken",
		MaxResults: 3,
	})
	require.NoError(t, err)

	names, ok := payload.([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"chicken breast", "chicken thigh"}, names)
}

func TestAdapter_SearchRecipes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/complexSearch", r.URL.Path)
		assert.Equal(t, "chicken,rice", r.URL.Query().Get("includeIngredients"))
		assert.Equal(t, "vegetarian", r.URL.Query().Get("diet"))
		assert.Equal(t, "dinner", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{
			"id": 42,
			"title": "Chicken Rice Bowl",
			"preparationMinutes": 10,
			"cookingMinutes": 20,
			"servings": 2,
			"sourceUrl": "https://example.com/42",
			"nutrition": {"nutrients": [
				{"name": "Calories", "amount": 520},
				{"name": "Protein", "amount": 38},
				{"name": "Carbohydrates", "amount": 55},
				{"name": "Fat", "amount": 14}
			]},
			"extendedIngredients": [{"name": "chicken"}, {"name": "rice"}]
		}]}`))
	}))
	defer server.Close()

	adapter, err := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	payload, err := adapter.Invoke(context.Background(), providers.RecipeSearchRequest{
		Ingredients: []string{"chicken", "rice"},
		Diet:        "vegetarian",
		MealType:    "dinner",
		MaxResults:  5,
	})
	require.NoError(t, err)

	recipes, ok := payload.([]models.Recipe)
	require.True(t, ok)
	require.Len(t, recipes, 1)

	recipe := recipes[0]
	assert.Equal(t, "42", recipe.ID)
	assert.Equal(t, "Chicken Rice Bowl", recipe.Name)
	assert.Equal(t, []string{"chicken", "rice"}, recipe.Ingredients)
	assert.Equal(t, 520.0, recipe.Nutrition.Calories)
	assert.Equal(t, 38.0, recipe.Nutrition.Protein)
	assert.Equal(t, 55.0, recipe.Nutrition.Carbs)
	assert.Equal(t, 14.0, recipe.Nutrition.Fat)
	assert.Equal(t, 2, recipe.Servings)
}

func TestAdapter_DietMapping(t *testing.T) {
	var gotDiet string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDiet = r.URL.Query().Get("diet")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	adapter, err := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	tests := []struct {
		diet string
		want string
	}{
		{"keto", "ketogenic"},
		{"low-carb", "ketogenic"},
		{"Vegan", "vegan"},
		{"gluten-free", "gluten free"},
		{"carnivore", ""}, // unrecognized diets are omitted
	}

	for _, tt := range tests {
		_, err := adapter.Invoke(context.Background(), providers.RecipeSearchRequest{
			Ingredients: []string{"egg"},
			Diet:        tt.diet,
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, gotDiet, "diet %q", tt.diet)
	}
}

func TestAdapter_ErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRetryable bool
	}{
		{"payment required is terminal", http.StatusPaymentRequired, false},
		{"too many requests is transient", http.StatusTooManyRequests, true},
		{"server error is transient", http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			adapter, err := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = adapter.Invoke(context.Background(), providers.FoodSuggestionRequest{Query: "x"})
			require.Error(t, err)

			provErr, ok := err.(*providers.ProviderError)
			require.True(t, ok)
			assert.Equal(t, tt.status, provErr.StatusCode)
			assert.Equal(t, tt.wantRetryable, providers.IsRetryable(err))
		})
	}
}

func TestAdapter_UnsupportedRequest(t *testing.T) {
	adapter, err := NewAdapter(Config{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = adapter.Invoke(context.Background(), providers.GenerationRequest{Prompt: "x"})
	assert.Error(t, err)
}
