package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/peakform/coachd/app"
	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/utils"
)

// GeneratePlanHandler builds a personalized coaching plan from a profile.
func GeneratePlanHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var profile models.UserProfile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			_ = utils.WriteBadRequest(w, "invalid JSON body", nil)
			return
		}

		if err := utils.ValidateStruct(profile); err != nil {
			fields := utils.GetValidationFields(err)
			details := make(map[string]interface{}, len(fields))
			for k, v := range fields {
				details[k] = v
			}
			_ = utils.WriteBadRequest(w, "invalid user profile", details)
			return
		}

		plan, err := deps.Coach.GeneratePlan(r.Context(), profile)
		if err != nil {
			deps.Logger.Error("plan generation failed", zap.Error(err))
			respondDomainError(w, err)
			return
		}

		_ = utils.WriteOK(w, plan)
	}
}

// ChatRequest is the conversational endpoint's request body.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatHandler answers a conversational coaching message.
func ChatHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "invalid JSON body", nil)
			return
		}

		reply, err := deps.Coach.Chat(r.Context(), req.Message)
		if err != nil {
			deps.Logger.Error("chat failed", zap.Error(err))
			respondDomainError(w, err)
			return
		}

		_ = utils.WriteOK(w, reply)
	}
}
