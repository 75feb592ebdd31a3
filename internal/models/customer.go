// internal/models/customer.go
package models

// RawRecord is one customer account snapshot as received from the API
// boundary or the training dataset. Values are untyped: strings, numbers,
// possibly blank. Treated as immutable once received.
type RawRecord map[string]interface{}

// CanonicalRecord is the cleaned, typed view of a RawRecord. A feature that
// is absent from both maps is missing and gets imputed by the encoder.
type CanonicalRecord struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// NewCanonicalRecord returns an empty record with initialized maps.
func NewCanonicalRecord() *CanonicalRecord {
	return &CanonicalRecord{
		Numeric:     make(map[string]float64),
		Categorical: make(map[string]string),
	}
}

// CustomerID extracts the optional customer identifier from a raw record,
// defaulting to "Unknown". The identifier carries no predictive signal and
// is stripped before encoding.
func (r RawRecord) CustomerID() string {
	for _, key := range []string{"customer_id", "customerID"} {
		if v, ok := r[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return "Unknown"
}
