package models

// UserProfile carries everything the coach needs to personalize a plan.
// Mirrors the intake form; validated at the HTTP boundary.
type UserProfile struct {
	Age         int     `json:"age" validate:"required,gte=13,lte=100"`
	WeightKg    float64 `json:"weight_kg" validate:"required,gt=20,lt=400"`
	HeightCm    float64 `json:"height_cm" validate:"required,gt=100,lt=250"`
	Gender      string  `json:"gender" validate:"required,oneof=male female"`
	Goal        string  `json:"goal" validate:"required,oneof=fat_loss muscle_gain maintenance"`
	Activity    string  `json:"activity" validate:"required,oneof=sedentary light moderate active"`
	Diet        string  `json:"diet,omitempty"`
	DaysPerWeek int     `json:"days_per_week" validate:"required,gte=1,lte=7"`

	// Lifestyle constraints the plan must respect.
	LivingSituation     string   `json:"living_situation,omitempty"`     // home, hostel, apartment, shared
	CookingAbility      string   `json:"cooking_ability,omitempty"`      // can_cook, limited_cooking, no_cooking
	GymAccess           string   `json:"gym_access,omitempty"`           // full_gym, home_gym, no_gym, bodyweight_only
	EquipmentAvailable  []string `json:"equipment_available,omitempty"`  // dumbbells, resistance_bands, ...
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"` // vegetarian, vegan, lactose_intolerant, ...
	BudgetLevel         string   `json:"budget_level,omitempty"`         // low, moderate, high
}

// Macros is a daily calorie and macronutrient target.
type Macros struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein_g"`
	Fats     int `json:"fats_g"`
	Carbs    int `json:"carbs_g"`
}

// NutritionInfo summarizes the nutrition of a recipe or ingredient.
type NutritionInfo struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs_g"`
	Fat      float64 `json:"fat_g"`
	Fiber    float64 `json:"fiber_g,omitempty"`
	Sugar    float64 `json:"sugar_g,omitempty"`
	Sodium   float64 `json:"sodium_mg,omitempty"`
}

// Recipe is a recipe returned by the recipe/nutrition service.
type Recipe struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Ingredients []string      `json:"ingredients,omitempty"`
	Nutrition   NutritionInfo `json:"nutrition"`
	PrepMinutes int           `json:"prep_minutes,omitempty"`
	CookMinutes int           `json:"cook_minutes,omitempty"`
	Servings    int           `json:"servings,omitempty"`
	SourceURL   string        `json:"source_url,omitempty"`
}
