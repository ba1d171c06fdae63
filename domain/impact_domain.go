package domain

var (
	MessageSuccessGetImpactMetrics = "impact metrics retrieved successfully"
	MessageFailedGetImpactMetrics  = "failed to retrieve impact metrics"
)

type (
	// ImpactFactors converts a delivered donation quantity (kg) into impact figures.
	ImpactFactors struct {
		MealsPerKg               float64
		CO2PerKg                 float64
		BeneficiariesPerDonation int64
	}

	ImpactSummary struct {
		From                string  `json:"from"`
		To                  string  `json:"to"`
		MealsSaved          int64   `json:"meals_saved"`
		KgFoodSaved         float64 `json:"kg_food_saved"`
		CO2Saved            float64 `json:"co2_saved"`
		BeneficiariesServed int64   `json:"beneficiaries_served"`
	}
)
