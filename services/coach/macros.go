// Package coach composes retrieval, macro math, and external services into
// personalized plans and chat answers.
package coach

import (
	"math"

	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/services"
)

// activityMultipliers scale BMR to total daily energy expenditure.
var activityMultipliers = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"active":    1.725,
}

// CalculateMacros derives daily calorie and macro targets from the profile
// using the Mifflin-St Jeor equation. Fat loss subtracts 500 kcal, muscle
// gain adds 300; protein is 1.8 g/kg and fat 25% of calories, with carbs
// filling the remainder.
func CalculateMacros(profile models.UserProfile) (models.Macros, error) {
	multiplier, ok := activityMultipliers[profile.Activity]
	if !ok {
		return models.Macros{}, services.NewDomainError(services.ErrorTypeValidation,
			"unknown activity level", services.ErrInvalidProfile).
			WithDetail("activity", profile.Activity)
	}

	bmr := 10*profile.WeightKg + 6.25*profile.HeightCm - 5*float64(profile.Age)
	if profile.Gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}

	tdee := bmr * multiplier
	switch profile.Goal {
	case "fat_loss":
		tdee -= 500
	case "muscle_gain":
		tdee += 300
	}

	protein := profile.WeightKg * 1.8
	fat := (0.25 * tdee) / 9
	carbs := (tdee - (protein*4 + fat*9)) / 4

	return models.Macros{
		Calories: int(math.Round(tdee)),
		Protein:  int(math.Round(protein)),
		Fats:     int(math.Round(fat)),
		Carbs:    int(math.Round(carbs)),
	}, nil
}
