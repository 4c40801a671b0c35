package coach

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/services"
	"github.com/peakform/coachd/services/gateway"
	"github.com/peakform/coachd/services/providers"
	"github.com/peakform/coachd/services/retrieval"
)

const noEvidence = "No research available."

// Plan is a generated coaching plan.
type Plan struct {
	ID              string        `json:"id"`
	Macros          models.Macros `json:"macros"`
	PlanText        string        `json:"plan_text"`
	FoodSuggestions []string      `json:"food_suggestions,omitempty"`

	// Degraded is set when any part of the plan came from a fallback rather
	// than the live services.
	Degraded  bool      `json:"degraded"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatReply is the answer to a conversational message.
type ChatReply struct {
	Reply    string `json:"reply"`
	Degraded bool   `json:"degraded"`
}

// Service is the coaching orchestrator. It owns no domain logic beyond
// sequencing: macros, constraint-aware retrieval, food lookup, generation.
type Service struct {
	gateway   *gateway.Service
	retrieval *retrieval.Service
	topK      int
	logger    *zap.Logger
}

// New creates the coach. topK bounds how much evidence each query pulls in.
func New(gw *gateway.Service, retr *retrieval.Service, topK int, logger *zap.Logger) *Service {
	return &Service{gateway: gw, retrieval: retr, topK: topK, logger: logger}
}

// GeneratePlan builds a personalized plan: macro targets, constraint-aware
// evidence retrieval per category, food suggestions, and LLM generation. The
// plan is marked degraded when the generation or food lookup fell back.
func (s *Service) GeneratePlan(ctx context.Context, profile models.UserProfile) (*Plan, error) {
	macros, err := CalculateMacros(profile)
	if err != nil {
		return nil, err
	}

	workoutEvidence := s.evidence(ctx, buildWorkoutQuery(profile), models.CategoryWorkout)
	nutritionEvidence := s.evidence(ctx, buildNutritionQuery(profile), models.CategoryNutrition)

	degraded := false
	var foods []string
	foodResp, err := s.gateway.Call(ctx, providers.FoodSuggestionRequest{
		Query:      buildFoodQuery(profile),
		MaxResults: 5,
	})
	if err != nil {
		s.logger.Warn("food suggestions unavailable", zap.Error(err))
	} else {
		foods, _ = foodResp.Payload.([]string)
		degraded = degraded || foodResp.Degraded
	}

	prompt := buildPlanPrompt(profile, macros, workoutEvidence, nutritionEvidence, foods)
	genResp, err := s.gateway.Call(ctx, providers.GenerationRequest{
		Prompt: prompt,
		// Routes a degraded answer to the goal's topic template.
		Message: strings.ReplaceAll(profile.Goal, "_", " ") + " plan",
	})
	if err != nil {
		return nil, err
	}
	planText, ok := genResp.Payload.(string)
	if !ok {
		return nil, services.WrapInternal("generation provider returned unexpected payload", nil)
	}

	return &Plan{
		ID:              uuid.New().String(),
		Macros:          macros,
		PlanText:        planText,
		FoodSuggestions: foods,
		Degraded:        degraded || genResp.Degraded,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// Chat answers a conversational message. Greetings are answered locally;
// everything else is grounded on retrieved evidence and generated.
func (s *Service) Chat(ctx context.Context, message string) (*ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, services.NewDomainError(services.ErrorTypeValidation,
			"message must not be empty", services.ErrInvalidQuery)
	}

	if gateway.IsGreeting(message) {
		return &ChatReply{Reply: gateway.GreetingResponse()}, nil
	}

	workoutEvidence := s.evidence(ctx, message, models.CategoryWorkout)
	nutritionEvidence := s.evidence(ctx, message, models.CategoryNutrition)

	prompt := buildChatPrompt(message, workoutEvidence, nutritionEvidence)
	resp, err := s.gateway.Call(ctx, providers.GenerationRequest{Prompt: prompt, Message: message})
	if err != nil {
		return nil, err
	}
	reply, ok := resp.Payload.(string)
	if !ok {
		return nil, services.WrapInternal("generation provider returned unexpected payload", nil)
	}
	return &ChatReply{Reply: reply, Degraded: resp.Degraded}, nil
}

// evidence retrieves supporting chunks for a query, degrading to a stock
// line when retrieval is unavailable. Missing evidence never blocks a plan.
func (s *Service) evidence(ctx context.Context, query string, category models.Category) string {
	result, err := s.retrieval.Retrieve(ctx, query, s.topK, category)
	if err != nil {
		s.logger.Warn("evidence retrieval unavailable",
			zap.String("category", string(category)),
			zap.Error(err))
		return noEvidence
	}
	if len(result.Results) == 0 {
		return noEvidence
	}
	return result.ContextBlock()
}

// buildChatPrompt grounds a conversational answer on retrieved evidence.
func buildChatPrompt(message, workoutEvidence, nutritionEvidence string) string {
	var b strings.Builder
	b.WriteString("You are an expert AI fitness coach and nutritionist. You have access to research-based information about fitness and nutrition.\n\n")
	b.WriteString("User Question: " + message + "\n\n")
	b.WriteString("Relevant Workout Information:\n" + workoutEvidence + "\n\n")
	b.WriteString("Relevant Nutrition Information:\n" + nutritionEvidence + "\n\n")
	b.WriteString(`Instructions:
1. Answer the user's question directly and helpfully
2. Use the provided research information when relevant
3. If the user is asking for a personalized plan, ask them for their details (age, weight, height, goal, etc.)
4. Keep responses conversational but informative
5. If you need more information to give a proper answer, ask specific questions
6. Be encouraging and supportive
7. If the question is not fitness/nutrition related, politely redirect to fitness topics

Provide a helpful, accurate response based on the research information available.`)
	return b.String()
}
