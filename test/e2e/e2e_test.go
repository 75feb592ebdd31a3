// test/e2e/e2e_test.go

// End-to-end exercise of the full system: train a model on a synthetic
// separable dataset, stand up the HTTP server around it and drive the login
// and prediction flow over the wire.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnshield/internal/api"
	"churnshield/internal/api/stats"
	"churnshield/internal/common/auth"
	"churnshield/internal/common/config"
	"churnshield/internal/common/logger"
	"churnshield/internal/ml/pipeline"
	"churnshield/internal/ml/training"
	"churnshield/internal/models"
)

func writeDataset(t *testing.T) string {
	t.Helper()

	header := strings.Join([]string{
		"customerID", "gender", "SeniorCitizen", "Partner", "Dependents", "tenure",
		"PhoneService", "MultipleLines", "InternetService", "OnlineSecurity",
		"OnlineBackup", "DeviceProtection", "TechSupport", "StreamingTV",
		"StreamingMovies", "Contract", "PaperlessBilling", "PaymentMethod",
		"MonthlyCharges", "TotalCharges", "Churn",
	}, ",")

	var b strings.Builder
	b.WriteString(header + "\n")
	for i := 0; i < 40; i++ {
		tenure := 1 + i%6
		monthly := 85.0 + float64(i%10)
		b.WriteString(fmt.Sprintf(
			"C%04d,Female,%d,No,No,%d,Yes,No,Fiber optic,No,No,No,No,Yes,Yes,Month-to-month,Yes,Electronic check,%.2f,%.2f,Yes\n",
			i, i%2, tenure, monthly, float64(tenure)*monthly))
	}
	for i := 0; i < 40; i++ {
		tenure := 48 + i%24
		monthly := 50.0 + float64(i%8)
		b.WriteString(fmt.Sprintf(
			"L%04d,Male,0,Yes,Yes,%d,Yes,Yes,DSL,Yes,Yes,Yes,Yes,No,No,Two year,No,Mailed check,%.2f,%.2f,No\n",
			i, tenure, monthly, float64(tenure)*monthly))
	}

	path := filepath.Join(t.TempDir(), "churn.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestTrainAndServe(t *testing.T) {
	// train
	trainCfg := training.DefaultConfig()
	trainCfg.DataPath = writeDataset(t)
	trainCfg.ArtifactPath = filepath.Join(t.TempDir(), "models", "churn_model.json")
	trainCfg.Boosting.NumTrees = 40
	trainCfg.Boosting.MaxDepth = 3

	result, err := training.Run(trainCfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	require.Greater(t, result.Metrics.ROCAUC, 0.9)

	// load the artifact exactly as the server binary would
	pipe, err := pipeline.Load(trainCfg.ArtifactPath)
	require.NoError(t, err)

	deps := api.Dependencies{
		Pipeline:    pipe,
		Options:     pipeline.DefaultOptions(),
		JWT:         auth.NewJWTManager(config.AuthConfig{JWTSecret: "e2e-secret", TokenTTL: 5, Issuer: "e2e"}),
		DemoAccount: true,
		Dataset:     stats.DatasetSummary{TotalCustomers: 80, ChurnedCount: 40, ChurnRate: 0.5},
	}
	srv := api.NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, deps, logger.NewTestLogger(t))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// health reports the loaded model
	healthResp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer healthResp.Body.Close()
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(healthResp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, true, health["model_loaded"])

	// prediction requires auth
	predictBody := map[string]interface{}{
		"customer_id":      "E2E-0001",
		"gender":           "Female",
		"SeniorCitizen":    0,
		"Partner":          "No",
		"Dependents":       "No",
		"tenure":           2,
		"PhoneService":     "Yes",
		"MultipleLines":    "No",
		"InternetService":  "Fiber optic",
		"OnlineSecurity":   "No",
		"OnlineBackup":     "No",
		"DeviceProtection": "No",
		"TechSupport":      "No",
		"StreamingTV":      "Yes",
		"StreamingMovies":  "Yes",
		"Contract":         "Month-to-month",
		"PaperlessBilling": "Yes",
		"PaymentMethod":    "Electronic check",
		"MonthlyCharges":   89.5,
		"TotalCharges":     "179.0",
	}
	rawBody, err := json.Marshal(predictBody)
	require.NoError(t, err)

	noAuth, err := http.Post(ts.URL+"/predict", "application/json", bytes.NewReader(rawBody))
	require.NoError(t, err)
	noAuth.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, noAuth.StatusCode)

	// login via the demo account
	loginBody, _ := json.Marshal(map[string]string{"username": "admin", "password": "admin123"})
	loginResp, err := http.Post(ts.URL+"/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer loginResp.Body.Close()
	require.Equal(t, http.StatusOK, loginResp.StatusCode)

	var login models.LoginResponse
	require.NoError(t, json.NewDecoder(loginResp.Body).Decode(&login))
	require.NotEmpty(t, login.AccessToken)

	// authenticated prediction
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/predict", bytes.NewReader(rawBody))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	predictResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer predictResp.Body.Close()
	require.Equal(t, http.StatusOK, predictResp.StatusCode)

	var prediction struct {
		CustomerID       string  `json:"customer_id"`
		ChurnProbability float64 `json:"churn_probability"`
		RiskLevel        string  `json:"risk_level"`
		Explanations     []struct {
			Feature string  `json:"feature"`
			Impact  float64 `json:"impact"`
		} `json:"explanations"`
	}
	require.NoError(t, json.NewDecoder(predictResp.Body).Decode(&prediction))

	assert.Equal(t, "E2E-0001", prediction.CustomerID)
	assert.Greater(t, prediction.ChurnProbability, 0.5,
		"short-tenure month-to-month fiber customer must score as a churner")
	require.NotEmpty(t, prediction.Explanations)
	assert.LessOrEqual(t, len(prediction.Explanations), 5)

	top := prediction.Explanations[0].Feature
	matched := false
	for _, prefix := range []string{"tenure", "Contract_", "InternetService_"} {
		if strings.HasPrefix(top, prefix) {
			matched = true
			break
		}
	}
	assert.True(t, matched, "top driver %q should be tenure, contract or internet service", top)

	// stats endpoint works with the same token
	statsReq, err := http.NewRequest(http.MethodGet, ts.URL+"/stats", nil)
	require.NoError(t, err)
	statsReq.Header.Set("Authorization", "Bearer "+login.AccessToken)

	statsResp, err := http.DefaultClient.Do(statsReq)
	require.NoError(t, err)
	defer statsResp.Body.Close()
	require.Equal(t, http.StatusOK, statsResp.StatusCode)

	var statsBody stats.Response
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&statsBody))
	assert.Equal(t, 80, statsBody.Dataset.TotalCustomers)
}
