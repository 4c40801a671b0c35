package providers

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// Kind identifies an external service consumed through the gateway.
// Each kind carries its own rate budget, cache TTL, and fallback behavior.
type Kind string

const (
	// KindGeneration is the LLM text-generation service.
	KindGeneration Kind = "generation"

	// KindEmbedding is the text-embedding service.
	KindEmbedding Kind = "embedding"

	// KindRecipes is the recipe/nutrition lookup service.
	KindRecipes Kind = "recipes"
)

// Request is an external service request. Signature must be deterministic
// for identical requests; it keys the gateway's response cache.
type Request interface {
	Kind() Kind
	Signature() string
}

// Provider executes requests against one backing service. Implementations
// perform a single attempt per Invoke; retry and fallback policy live in the
// gateway.
type Provider interface {
	// Name returns the provider name (e.g., "gemini", "spoonacular")
	Name() string

	// Invoke performs the request and returns the kind-specific payload:
	// string for generation, []float64 for embedding, []string or
	// []models.Recipe for recipe lookups.
	Invoke(ctx context.Context, req Request) (interface{}, error)

	// IsAvailable checks if the provider is currently reachable
	IsAvailable(ctx context.Context) bool
}

// GenerationRequest asks the LLM for coaching text. Prompt is the fully
// composed prompt sent to the provider; Message preserves the user's raw ask
// so a degraded answer can be routed by its topic instead of by prompt
// boilerplate.
type GenerationRequest struct {
	Prompt  string
	Message string
}

func (r GenerationRequest) Kind() Kind { return KindGeneration }

func (r GenerationRequest) Signature() string {
	return signature(string(KindGeneration), r.Prompt)
}

// EmbeddingRequest asks for the embedding vector of a text.
type EmbeddingRequest struct {
	Text string
}

func (r EmbeddingRequest) Kind() Kind { return KindEmbedding }

func (r EmbeddingRequest) Signature() string {
	return signature(string(KindEmbedding), r.Text)
}

// FoodSuggestionRequest asks for food name suggestions matching a query.
type FoodSuggestionRequest struct {
	Query      string
	MaxResults int
}

func (r FoodSuggestionRequest) Kind() Kind { return KindRecipes }

func (r FoodSuggestionRequest) Signature() string {
	return signature(string(KindRecipes), "suggest", r.Query, fmt.Sprintf("%d", r.MaxResults))
}

// RecipeSearchRequest asks for full recipes matching ingredients and an
// optional diet.
type RecipeSearchRequest struct {
	Ingredients []string
	Diet        string
	MealType    string
	MaxResults  int
}

func (r RecipeSearchRequest) Kind() Kind { return KindRecipes }

func (r RecipeSearchRequest) Signature() string {
	return signature(string(KindRecipes), "search",
		strings.Join(r.Ingredients, ","), r.Diet, r.MealType, fmt.Sprintf("%d", r.MaxResults))
}

// signature hashes the normalized request fields into a stable cache key.
func signature(parts ...string) string {
	joined := strings.ToLower(strings.TrimSpace(strings.Join(parts, "|")))
	sum := md5.Sum([]byte(joined))
	return hex.EncodeToString(sum[:])
}

// ProviderError represents an error from a provider
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Code is the error code
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Retryable indicates if the request can be retried
	Retryable bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, retryable bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Cause:      cause,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if provErr, ok := err.(*ProviderError); ok {
		return provErr.Retryable
	}
	return false
}
