// internal/models/prediction.go
package models

import "time"

// RiskLevel is the discretized bucket derived from churn probability.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Contribution is one feature's signed impact on a single prediction.
// Feature names follow the encoded column schema, so one-hot columns appear
// as "<feature>_<category>".
type Contribution struct {
	Feature string  `json:"feature"`
	Impact  float64 `json:"impact"`
}

// PredictionResult is the full per-request output of the serving pipeline.
type PredictionResult struct {
	CustomerID       string         `json:"customer_id"`
	ChurnProbability float64        `json:"churn_probability"`
	RiskLevel        RiskLevel      `json:"risk_level"`
	Explanations     []Contribution `json:"explanations"`
}

// PredictionLogEntry is one append-only row in the prediction log.
type PredictionLogEntry struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id"`
	Probability    float64   `json:"prediction_prob"`
	PredictedClass int       `json:"prediction_class"`
	RiskLevel      string    `json:"risk_level"`
	CreatedAt      time.Time `json:"prediction_date"`
}
