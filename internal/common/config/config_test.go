// internal/common/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "churnshield", cfg.App.Name)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "models/churn_model.json", cfg.Model.ArtifactPath)
	assert.Equal(t, "data/WA_Fn-UseC_-Telco-Customer-Churn.csv", cfg.Model.DatasetPath)
	assert.Equal(t, 5, cfg.Model.TopK)
	assert.Equal(t, 0.7, cfg.Model.HighThreshold)
	assert.Equal(t, 0.4, cfg.Model.MediumThreshold)
	assert.Equal(t, 60, cfg.Auth.TokenTTL)
	assert.Equal(t, "predictions", cfg.Database.Elasticsearch.Index)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9090
	cfg.Model.TopK = 3
	applyDefaults(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Model.TopK)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"non-positive top_k", func(c *Config) { c.Model.TopK = 0; c.Model.TopK = -1 }, "top_k"},
		{"inverted thresholds", func(c *Config) { c.Model.MediumThreshold = 0.8 }, "medium_threshold"},
		{"production requires jwt secret", func(c *Config) { c.App.Environment = "production" }, "jwt_secret"},
		{"notifications need a region", func(c *Config) {
			c.Notifications.Enabled = true
			c.Notifications.AWSRegion = ""
		}, "aws_region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServerConfigAddr(t *testing.T) {
	cfg := ServerConfig{Host: "0.0.0.0", Port: 8000}
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host: "db", Port: 5432, User: "svc", Password: "pw",
		Database: "churn", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=svc password=pw dbname=churn sslmode=disable", cfg.GetDSN())
}
