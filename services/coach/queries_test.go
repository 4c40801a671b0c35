package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/peakform/coachd/models"
)

func TestBuildWorkoutQuery(t *testing.T) {
	tests := []struct {
		name    string
		profile models.UserProfile
		want    string
	}{
		{
			name:    "full gym default",
			profile: models.UserProfile{Goal: "muscle_gain", GymAccess: "full_gym"},
			want:    "best workout for muscle_gain",
		},
		{
			name:    "no gym adds bodyweight terms",
			profile: models.UserProfile{Goal: "fat_loss", GymAccess: "no_gym"},
			want:    "best workout for fat_loss calisthenics bodyweight home workout",
		},
		{
			name: "home gym with equipment",
			profile: models.UserProfile{
				Goal:               "muscle_gain",
				GymAccess:          "home_gym",
				EquipmentAvailable: []string{"dumbbells", "resistance_bands"},
			},
			want: "best workout for muscle_gain home gym limited equipment using dumbbells resistance_bands",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildWorkoutQuery(tt.profile))
		})
	}
}

func TestBuildNutritionQuery(t *testing.T) {
	assert.Equal(t, "nutrition for fat_loss vegetarian",
		buildNutritionQuery(models.UserProfile{Goal: "fat_loss", Diet: "vegetarian"}))

	assert.Equal(t, "nutrition for fat_loss no cook meals hostel nutrition",
		buildNutritionQuery(models.UserProfile{Goal: "fat_loss", LivingSituation: "hostel"}))

	assert.Equal(t, "nutrition for muscle_gain minimal cooking simple meals",
		buildNutritionQuery(models.UserProfile{Goal: "muscle_gain", CookingAbility: "limited_cooking"}))
}

func TestBuildFoodQuery(t *testing.T) {
	assert.Equal(t, "muscle_gain vegetarian high protein",
		buildFoodQuery(models.UserProfile{Goal: "muscle_gain", Diet: "vegetarian"}))

	assert.Equal(t, "fat_loss high protein no cook ready to eat",
		buildFoodQuery(models.UserProfile{Goal: "fat_loss", CookingAbility: "no_cooking"}))
}

func TestBuildPlanPrompt_Constraints(t *testing.T) {
	macros := models.Macros{Calories: 2500, Protein: 150, Fats: 70, Carbs: 300}

	t.Run("hostel no-cook profile", func(t *testing.T) {
		prompt := buildPlanPrompt(models.UserProfile{
			Age: 22, WeightKg: 70, HeightCm: 175,
			Goal: "fat_loss", Activity: "light", DaysPerWeek: 3,
			LivingSituation: "hostel", GymAccess: "no_gym",
			DietaryRestrictions: []string{"vegetarian"},
			BudgetLevel:         "low",
		}, macros, "squat evidence", "protein evidence", []string{"greek yogurt"})

		assert.Contains(t, prompt, "NO GYM ACCESS")
		assert.Contains(t, prompt, "NO COOKING ABILITY")
		assert.Contains(t, prompt, "DIETARY RESTRICTIONS: vegetarian")
		assert.Contains(t, prompt, "LOW BUDGET")
		assert.Contains(t, prompt, "Calories 2500 kcal")
		assert.Contains(t, prompt, "squat evidence")
		assert.Contains(t, prompt, "greek yogurt")
	})

	t.Run("unconstrained profile", func(t *testing.T) {
		prompt := buildPlanPrompt(models.UserProfile{
			Age: 30, WeightKg: 80, HeightCm: 180,
			Goal: "muscle_gain", Activity: "moderate", DaysPerWeek: 4,
		}, macros, noEvidence, noEvidence, nil)

		assert.Contains(t, prompt, "No specific constraints")
		assert.Contains(t, prompt, "Living: home | Cooking: can_cook | Gym: full_gym")
	})
}
