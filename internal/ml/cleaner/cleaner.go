// internal/ml/cleaner/cleaner.go

// Package cleaner normalizes raw customer records into the canonical tabular
// shape expected by the encoder. Cleaning is stateless: the same rules apply
// at training and at inference, so the fitted scaling statistics stay valid.
package cleaner

import (
	"fmt"
	"strconv"
	"strings"

	"churnshield/internal/common/errors"
	"churnshield/internal/models"
)

// Identifier fields stripped from every record; they carry no predictive
// signal and were excluded from training.
var identifierFields = []string{"customerID", "customer_id"}

// Cleaner normalizes raw records against a declared feature set.
type Cleaner struct {
	numeric     []string
	categorical []string
}

// New creates a Cleaner for the given numeric and categorical feature names.
func New(numeric, categorical []string) *Cleaner {
	return &Cleaner{numeric: numeric, categorical: categorical}
}

// Clean converts a raw record into a canonical one.
//
// Malformed but present values never abort cleaning: a TotalCharges value
// that fails numeric coercion becomes 0.0 (brand-new accounts have blank
// lifetime charges in this dataset, and the fitted scaler was computed under
// that substitution), any other non-coercible numeric is left missing for
// the encoder's median imputation, and SeniorCitizen's 0/1 flag is rewritten
// as a categorical string so it one-hot encodes downstream. Only a
// structurally absent field is an error.
func (c *Cleaner) Clean(raw models.RawRecord) (*models.CanonicalRecord, error) {
	rec := models.NewCanonicalRecord()

	for _, name := range c.numeric {
		v, ok := raw[name]
		if !ok {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("missing required field: %s", name))
		}
		f, err := coerceFloat(v)
		if err != nil {
			if name == "TotalCharges" {
				rec.Numeric[name] = 0.0
			}
			// other numerics stay missing; encoder imputes the median
			continue
		}
		rec.Numeric[name] = f
	}

	for _, name := range c.categorical {
		v, ok := raw[name]
		if !ok {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("missing required field: %s", name))
		}
		s := coerceString(v)
		if name == "SeniorCitizen" {
			s = normalizeSeniorCitizen(v)
		}
		if s == "" {
			// blank categorical stays missing; encoder imputes the mode
			continue
		}
		rec.Categorical[name] = s
	}

	return rec, nil
}

// coerceFloat attempts numeric coercion from numbers and numeric strings.
func coerceFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return 0, fmt.Errorf("blank numeric value")
		}
		return strconv.ParseFloat(trimmed, 64)
	default:
		return 0, fmt.Errorf("cannot coerce %T to float", v)
	}
}

func coerceString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// normalizeSeniorCitizen maps the 0/1 numeric flag (or its string forms) to
// the "0"/"1" categorical representation used at training time.
func normalizeSeniorCitizen(v interface{}) string {
	if f, err := coerceFloat(v); err == nil {
		if f != 0 {
			return "1"
		}
		return "0"
	}
	s := strings.TrimSpace(coerceString(v))
	switch strings.ToLower(s) {
	case "yes", "true":
		return "1"
	case "no", "false":
		return "0"
	}
	return s
}

// StripIdentifiers removes customer identifier keys from a raw record copy.
// The original record is not mutated.
func StripIdentifiers(raw models.RawRecord) models.RawRecord {
	out := make(models.RawRecord, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	for _, id := range identifierFields {
		delete(out, id)
	}
	return out
}
