// internal/api/features/handler.go
package features

import (
	"encoding/json"
	"net/http"

	"churnshield/internal/common/logger"
	"churnshield/pkg/catalog"
)

// Handler serves GET /features with descriptive metadata about the model's
// input features. The catalog is static per process.
type Handler struct {
	catalog *catalog.FeatureCatalog
	logger  logger.Logger
}

func NewHandler(c *catalog.FeatureCatalog, log logger.Logger) *Handler {
	if c == nil {
		c = catalog.Default()
	}
	return &Handler{
		catalog: c,
		logger:  log.WithFields(map[string]interface{}{"endpoint": "features"}),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.catalog)
}
