// internal/api/predict/validation.go
package predict

import (
	"churnshield/internal/common/validation"
)

// requestSchema validates the structural shape of a prediction request:
// every model feature must be present with a sane type. Value-level quirks
// (blank TotalCharges, unseen categories) are cleaning policy, not
// validation failures, so they are deliberately not constrained here.
const requestSchema = `{
	"type": "object",
	"required": [
		"gender", "SeniorCitizen", "Partner", "Dependents", "tenure",
		"PhoneService", "MultipleLines", "InternetService", "OnlineSecurity",
		"OnlineBackup", "DeviceProtection", "TechSupport", "StreamingTV",
		"StreamingMovies", "Contract", "PaperlessBilling", "PaymentMethod",
		"MonthlyCharges", "TotalCharges"
	],
	"properties": {
		"customer_id":      {"type": "string"},
		"gender":           {"type": "string"},
		"SeniorCitizen":    {"type": ["integer", "number", "string"]},
		"Partner":          {"type": "string"},
		"Dependents":       {"type": "string"},
		"tenure":           {"type": ["number", "string"]},
		"PhoneService":     {"type": "string"},
		"MultipleLines":    {"type": "string"},
		"InternetService":  {"type": "string"},
		"OnlineSecurity":   {"type": "string"},
		"OnlineBackup":     {"type": "string"},
		"DeviceProtection": {"type": "string"},
		"TechSupport":      {"type": "string"},
		"StreamingTV":      {"type": "string"},
		"StreamingMovies":  {"type": "string"},
		"Contract":         {"type": "string"},
		"PaperlessBilling": {"type": "string"},
		"PaymentMethod":    {"type": "string"},
		"MonthlyCharges":   {"type": ["number", "string"]},
		"TotalCharges":     {"type": ["number", "string"]}
	}
}`

// validateRequest checks the raw JSON body against the request schema.
func validateRequest(body []byte) (*validation.Result, error) {
	return validation.ValidateJSON(requestSchema, body)
}
