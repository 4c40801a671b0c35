// Package spoonacular adapts the Spoonacular food API to the provider
// interface, serving the recipes kind: ingredient suggestions and full
// recipe search with nutrition.
package spoonacular

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/services/providers"
)

const defaultBaseURL = "https://api.spoonacular.com"

// dietMapping translates user-facing dietary restrictions to the API's diet
// parameter values.
var dietMapping = map[string]string{
	"vegetarian":  "vegetarian",
	"vegan":       "vegan",
	"gluten-free": "gluten free",
	"dairy-free":  "dairy free",
	"keto":        "ketogenic",
	"paleo":       "paleo",
	"low-carb":    "ketogenic",
}

// Config configures the Spoonacular adapter.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Adapter implements the Provider interface for the Spoonacular API.
type Adapter struct {
	config     Config
	httpClient *http.Client
}

// NewAdapter creates a new Spoonacular adapter.
func NewAdapter(config Config) (*Adapter, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("spoonacular: missing API key")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	return &Adapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Name returns the provider name.
func (a *Adapter) Name() string { return "spoonacular" }

// Invoke dispatches on the request type. Food suggestions return []string;
// recipe searches return []models.Recipe.
func (a *Adapter) Invoke(ctx context.Context, req providers.Request) (interface{}, error) {
	switch r := req.(type) {
	case providers.FoodSuggestionRequest:
		return a.suggestFoods(ctx, r)
	case providers.RecipeSearchRequest:
		return a.searchRecipes(ctx, r)
	default:
		return nil, providers.NewProviderError(a.Name(), "UNSUPPORTED_REQUEST",
			fmt.Sprintf("spoonacular cannot serve %T", req), 0, false, nil)
	}
}

// IsAvailable checks if the provider is currently reachable.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	_, err := a.suggestFoods(ctx, providers.FoodSuggestionRequest{Query: "apple", MaxResults: 1})
	return err == nil
}

type ingredientSearchResponse struct {
	Results []struct {
		Name string `json:"name"`
	} `json:"results"`
}

func (a *Adapter) suggestFoods(ctx context.Context, req providers.FoodSuggestionRequest) ([]string, error) {
	max := req.MaxResults
	if max <= 0 {
		max = 5
	}

	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("number", strconv.Itoa(max))
	params.Set("apiKey", a.config.APIKey)

	var out ingredientSearchResponse
	if err := a.get(ctx, "/food/ingredients/search", params, &out); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(out.Results))
	for _, item := range out.Results {
		names = append(names, item.Name)
	}
	return names, nil
}

type complexSearchResponse struct {
	Results []struct {
		ID             int    `json:"id"`
		Title          string `json:"title"`
		ReadyInMinutes int    `json:"readyInMinutes"`
		PreparationMin int    `json:"preparationMinutes"`
		CookingMinutes int    `json:"cookingMinutes"`
		Servings       int    `json:"servings"`
		SourceURL      string `json:"sourceUrl"`
		Nutrition      struct {
			Nutrients []struct {
				Name   string  `json:"name"`
				Amount float64 `json:"amount"`
			} `json:"nutrients"`
		} `json:"nutrition"`
		ExtendedIngredients []struct {
			Name string `json:"name"`
		} `json:"extendedIngredients"`
	} `json:"results"`
}

func (a *Adapter) searchRecipes(ctx context.Context, req providers.RecipeSearchRequest) ([]models.Recipe, error) {
	max := req.MaxResults
	if max <= 0 {
		max = 10
	}

	params := url.Values{}
	params.Set("includeIngredients", strings.Join(req.Ingredients, ","))
	params.Set("number", strconv.Itoa(max))
	params.Set("addRecipeInformation", "true")
	params.Set("addRecipeNutrition", "true")
	params.Set("fillIngredients", "true")
	params.Set("sort", "max-used-ingredients")
	params.Set("apiKey", a.config.APIKey)

	if diet, ok := dietMapping[strings.ToLower(req.Diet)]; ok {
		params.Set("diet", diet)
	}
	if req.MealType != "" {
		params.Set("type", req.MealType)
	}

	var out complexSearchResponse
	if err := a.get(ctx, "/recipes/complexSearch", params, &out); err != nil {
		return nil, err
	}

	recipes := make([]models.Recipe, 0, len(out.Results))
	for _, raw := range out.Results {
		recipe := models.Recipe{
			ID:          strconv.Itoa(raw.ID),
			Name:        raw.Title,
			PrepMinutes: raw.PreparationMin,
			CookMinutes: raw.CookingMinutes,
			Servings:    raw.Servings,
			SourceURL:   raw.SourceURL,
		}
		for _, ing := range raw.ExtendedIngredients {
			recipe.Ingredients = append(recipe.Ingredients, ing.Name)
		}
		for _, n := range raw.Nutrition.Nutrients {
			switch n.Name {
			case "Calories":
				recipe.Nutrition.Calories = n.Amount
			case "Protein":
				recipe.Nutrition.Protein = n.Amount
			case "Carbohydrates":
				recipe.Nutrition.Carbs = n.Amount
			case "Fat":
				recipe.Nutrition.Fat = n.Amount
			case "Fiber":
				recipe.Nutrition.Fiber = n.Amount
			case "Sugar":
				recipe.Nutrition.Sugar = n.Amount
			case "Sodium":
				recipe.Nutrition.Sodium = n.Amount
			}
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// get performs one GET round trip, classifying transport and status errors
// as retryable or not.
func (a *Adapter) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.config.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return providers.NewProviderError(a.Name(), "REQUEST_ERROR",
			"failed to build request", 0, false, err)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return providers.NewProviderError(a.Name(), "NETWORK_ERROR",
			"request failed", 0, true, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.NewProviderError(a.Name(), "READ_ERROR",
			"failed to read response", resp.StatusCode, true, err)
	}

	if resp.StatusCode != http.StatusOK {
		return providers.NewProviderError(a.Name(), "API_ERROR",
			fmt.Sprintf("spoonacular returned status %d", resp.StatusCode),
			resp.StatusCode, retryableStatus(resp.StatusCode), nil)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return providers.NewProviderError(a.Name(), "UNMARSHAL_ERROR",
			"failed to unmarshal response", resp.StatusCode, false, err)
	}
	return nil
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout ||
		status >= 500
}
