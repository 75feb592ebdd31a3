// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"os"
)

// Load reads a feature catalog from a JSON file.
func Load(path string) (*FeatureCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c FeatureCatalog
	err = json.Unmarshal(data, &c)
	return &c, err
}

// Default returns the built-in catalog for the Telco churn model, used when
// no catalog file is configured.
func Default() *FeatureCatalog {
	return &FeatureCatalog{
		Version: "1",
		Categorical: []Feature{
			{Name: "gender", Description: "Customer gender", Importance: "Trivial"},
			{Name: "SeniorCitizen", Description: "Whether the customer is a senior citizen", Importance: "High"},
			{Name: "Partner", Description: "Whether the customer has a partner", Importance: "Medium"},
			{Name: "Dependents", Description: "Whether the customer has dependents", Importance: "Medium"},
			{Name: "InternetService", Description: "Customer's internet service provider", Importance: "Extreme"},
			{Name: "Contract", Description: "The contract term of the customer", Importance: "Extreme"},
			{Name: "PaymentMethod", Description: "The customer's payment method", Importance: "High"},
		},
		Numerical: []Feature{
			{Name: "tenure", Description: "Number of months the customer has stayed with the company", Importance: "Extreme"},
			{Name: "MonthlyCharges", Description: "The amount charged to the customer monthly", Importance: "High"},
			{Name: "TotalCharges", Description: "The total amount charged to the customer", Importance: "Medium"},
		},
	}
}
