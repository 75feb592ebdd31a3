// internal/ml/pipeline/artifact.go
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"churnshield/internal/common/errors"
	"churnshield/internal/ml/cleaner"
)

// Save serializes the pipeline to a JSON artifact. The write is atomic
// (temp file + rename) so a crashed training run never leaves a partial
// artifact behind.
func (p *Pipeline) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pipeline: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".churn_model_*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return nil
}

// Load reads and validates a pipeline artifact. A missing file returns
// MODEL_NOT_FOUND (the server degrades gracefully); a present but
// structurally broken artifact returns MODEL_INCOMPATIBLE (fatal).
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewModelNotFoundError(path)
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var p Pipeline
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.NewModelIncompatibleError(fmt.Sprintf("artifact is not valid JSON: %v", err))
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	p.clean = cleaner.New(p.Encoder.NumericFeatures, p.Encoder.CategoricalFeatures)
	return &p, nil
}
