package domain

// InsurancePlan is a plan row from the insurance_plans table, selected
// during the lead flow and supplied verbatim to the checkout. Adesao is
// the one-time enrollment fee; MonthlyPayment the recurring premium.
type InsurancePlan struct {
	ID             string  `json:"id,omitempty"`
	CategoryName   string  `json:"category_name"`
	Adesao         float64 `json:"adesao"`
	MonthlyPayment float64 `json:"monthly_payment"`
	VehicleRange   string  `json:"vehicle_range,omitempty"`
}
