package coach

import (
	"fmt"
	"strings"

	"github.com/peakform/coachd/models"
)

// buildWorkoutQuery shapes the retrieval query around the user's training
// constraints so the evidence matches what they can actually do.
func buildWorkoutQuery(profile models.UserProfile) string {
	query := "best workout for " + profile.Goal

	switch profile.GymAccess {
	case "no_gym", "bodyweight_only":
		query += " calisthenics bodyweight home workout"
	case "home_gym":
		query += " home gym limited equipment"
	}

	if len(profile.EquipmentAvailable) > 0 {
		query += " using " + strings.Join(profile.EquipmentAvailable, " ")
	}
	return query
}

// buildNutritionQuery shapes the retrieval query around diet and cooking
// constraints.
func buildNutritionQuery(profile models.UserProfile) string {
	query := strings.TrimSpace("nutrition for " + profile.Goal + " " + profile.Diet)

	if profile.CookingAbility == "no_cooking" || profile.LivingSituation == "hostel" {
		query += " no cook meals hostel nutrition"
	} else if profile.CookingAbility == "limited_cooking" {
		query += " minimal cooking simple meals"
	}
	return query
}

// buildFoodQuery shapes the food-suggestion lookup.
func buildFoodQuery(profile models.UserProfile) string {
	query := strings.TrimSpace(profile.Goal+" "+profile.Diet) + " high protein"

	if profile.CookingAbility == "no_cooking" || profile.LivingSituation == "hostel" {
		query += " no cook ready to eat"
	}
	return query
}

// buildPlanPrompt assembles the generation prompt: user details, hard
// constraints, macro targets, retrieved evidence, and food options.
func buildPlanPrompt(profile models.UserProfile, macros models.Macros, workoutEvidence, nutritionEvidence string, foods []string) string {
	var constraints []string

	switch profile.GymAccess {
	case "no_gym", "bodyweight_only":
		constraints = append(constraints, "NO GYM ACCESS - Must use bodyweight/calisthenics exercises only")
	case "home_gym":
		equipment := "basic equipment"
		if len(profile.EquipmentAvailable) > 0 {
			equipment = strings.Join(profile.EquipmentAvailable, ", ")
		}
		constraints = append(constraints, "HOME GYM - Limited equipment: "+equipment)
	}

	if profile.CookingAbility == "no_cooking" || profile.LivingSituation == "hostel" {
		constraints = append(constraints, "NO COOKING ABILITY - Must suggest no-cook, ready-to-eat meals only")
	} else if profile.CookingAbility == "limited_cooking" {
		constraints = append(constraints, "LIMITED COOKING - Prefer simple, minimal cooking meals")
	}

	if len(profile.DietaryRestrictions) > 0 {
		constraints = append(constraints, "DIETARY RESTRICTIONS: "+strings.Join(profile.DietaryRestrictions, ", "))
	}
	if profile.BudgetLevel == "low" {
		constraints = append(constraints, "LOW BUDGET - Focus on affordable, cost-effective options")
	}

	constraintText := "No specific constraints"
	if len(constraints) > 0 {
		lines := make([]string, len(constraints))
		for i, c := range constraints {
			lines[i] = "- " + c
		}
		constraintText = strings.Join(lines, "\n")
	}

	var b strings.Builder
	b.WriteString("You are an expert evidence-based fitness coach who adapts recommendations to user constraints.\n\n")

	fmt.Fprintf(&b, "USER DETAILS:\nAge: %d | Weight: %.0fkg | Height: %.0fcm\n",
		profile.Age, profile.WeightKg, profile.HeightCm)
	fmt.Fprintf(&b, "Goal: %s | Activity: %s | Days/Week: %d\n",
		profile.Goal, profile.Activity, profile.DaysPerWeek)
	fmt.Fprintf(&b, "Living: %s | Cooking: %s | Gym: %s\n\n",
		orDefault(profile.LivingSituation, "home"),
		orDefault(profile.CookingAbility, "can_cook"),
		orDefault(profile.GymAccess, "full_gym"))

	b.WriteString("IMPORTANT CONSTRAINTS TO FOLLOW:\n")
	b.WriteString(constraintText)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "MACROS:\nCalories %d kcal | Protein %dg | Carbs %dg | Fats %dg\n\n",
		macros.Calories, macros.Protein, macros.Carbs, macros.Fats)

	b.WriteString("WORKOUT RESEARCH:\n" + workoutEvidence + "\n\n")
	b.WriteString("NUTRITION RESEARCH:\n" + nutritionEvidence + "\n\n")
	b.WriteString("FOOD OPTIONS:\n" + strings.Join(foods, ", ") + "\n\n")

	b.WriteString(`TASK - ADAPT ALL RECOMMENDATIONS TO USER CONSTRAINTS:
1. WORKOUT PLAN:
   - If NO GYM: Provide bodyweight/calisthenics exercises with progressions
   - If HOME GYM: Use available equipment or suggest alternatives
   - If FULL GYM: Provide complete gym-based routine
   - Include specific exercises, sets, reps, and progression methods

2. NUTRITION PLAN:
   - If NO COOKING: Focus on ready-to-eat foods (yogurt, eggs, nuts, fruits, protein powder, etc.)
   - If LIMITED COOKING: Simple preparations (boiled eggs, overnight oats, etc.)
   - If CAN COOK: Full cooking options
   - Provide specific meal examples with portions

3. PRACTICAL ADAPTATIONS:
   - Suggest equipment alternatives if needed
   - Provide food swaps based on availability/budget
   - Include shopping lists for the user's situation

4. TIMELINE: Realistic timeline considering constraints

CRITICAL: Your recommendations MUST work within the user's constraints. Don't suggest gym exercises if they have no gym access, or cooking meals if they can't cook.

Respond in a clear, structured format with practical, actionable advice.`)

	return b.String()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
