// pkg/catalog/schema.go
package catalog

// FeatureCatalog is the static descriptive metadata served to the UI. It
// documents the model's inputs; nothing on the prediction path reads it.
type FeatureCatalog struct {
	Version     string    `json:"version"`
	Categorical []Feature `json:"categorical"`
	Numerical   []Feature `json:"numerical"`
}

type Feature struct {
	Name        string `json:"name"`
	Description string `json:"desc"`
	Importance  string `json:"importance"`
}
