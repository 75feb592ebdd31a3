// internal/api/predict/models.go
package predict

import "churnshield/internal/models"

// Response is the JSON body returned to the caller. Probability is rounded
// for presentation; the log sink keeps the raw value.
type Response struct {
	CustomerID       string                `json:"customer_id"`
	ChurnProbability float64               `json:"churn_probability"`
	RiskLevel        models.RiskLevel      `json:"risk_level"`
	Explanations     []models.Contribution `json:"explanations"`
}
