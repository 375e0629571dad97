// Package artifact loads the immutable model bundles the prediction pipelines
// are built from: the scoring ensemble, the fitted scaler, the ordered
// training-time feature names and the numeric columns the scaler applies to.
package artifact

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/medalcast/internal/domain/gbt"
)

// Scaler is a fitted per-column affine transform aligned with NumericCols.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Document is the serialized bundle.
type Document struct {
	ModelVersion string              `json:"model_version,omitempty"`
	Model        gbt.Definition      `json:"model"`
	Scaler       Scaler              `json:"scaler"`
	FeatureNames []string            `json:"feature_names"`
	NumericCols  []string            `json:"numeric_cols"`
	Categories   map[string][]string `json:"categories,omitempty"`
}

// Bundle is a loaded, validated artifact. Accessors return copies so a Bundle
// can be shared across goroutines without synchronization.
type Bundle struct {
	source       string
	modelVersion string
	model        *gbt.Ensemble
	mean         []float64
	scale        []float64
	featureNames []string
	numericCols  []string
	categories   map[string][]string
}

// New validates doc and compiles its model.
func New(source string, doc Document) (*Bundle, error) {
	if len(doc.FeatureNames) == 0 {
		return nil, fmt.Errorf("%w: feature_names is empty", ErrInvalidBundle)
	}
	seen := make(map[string]struct{}, len(doc.FeatureNames))
	for _, name := range doc.FeatureNames {
		if name == "" {
			return nil, fmt.Errorf("%w: empty feature name", ErrInvalidBundle)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate feature name %q", ErrInvalidBundle, name)
		}
		seen[name] = struct{}{}
	}

	if len(doc.Scaler.Mean) != len(doc.NumericCols) || len(doc.Scaler.Scale) != len(doc.NumericCols) {
		return nil, fmt.Errorf("%w: scaler has %d means and %d scales for %d numeric columns",
			ErrInvalidBundle, len(doc.Scaler.Mean), len(doc.Scaler.Scale), len(doc.NumericCols))
	}
	numeric := make(map[string]struct{}, len(doc.NumericCols))
	for i, col := range doc.NumericCols {
		if _, ok := seen[col]; !ok {
			return nil, fmt.Errorf("%w: numeric column %q not in feature_names", ErrInvalidBundle, col)
		}
		if _, dup := numeric[col]; dup {
			return nil, fmt.Errorf("%w: duplicate numeric column %q", ErrInvalidBundle, col)
		}
		numeric[col] = struct{}{}
		if !finite(doc.Scaler.Mean[i]) || !finite(doc.Scaler.Scale[i]) {
			return nil, fmt.Errorf("%w: non-finite scaler parameters for %q", ErrInvalidBundle, col)
		}
	}

	for field, values := range doc.Categories {
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: categories for %q are empty", ErrInvalidBundle, field)
		}
	}

	model, err := gbt.Compile(doc.Model, doc.FeatureNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBundle, err)
	}

	scale := slices.Clone(doc.Scaler.Scale)
	for i, s := range scale {
		// Zero-variance columns are fitted with unit scale.
		if s == 0 {
			scale[i] = 1
		}
	}

	cats := make(map[string][]string, len(doc.Categories))
	for field, values := range doc.Categories {
		cats[field] = slices.Clone(values)
	}

	return &Bundle{
		source:       source,
		modelVersion: doc.ModelVersion,
		model:        model,
		mean:         slices.Clone(doc.Scaler.Mean),
		scale:        scale,
		featureNames: slices.Clone(doc.FeatureNames),
		numericCols:  slices.Clone(doc.NumericCols),
		categories:   cats,
	}, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Source returns where the bundle was loaded from.
func (b *Bundle) Source() string { return b.source }

// ModelVersion returns the version embedded in the bundle, or "".
func (b *Bundle) ModelVersion() string { return b.modelVersion }

// Model returns the compiled ensemble. The ensemble is read-only.
func (b *Bundle) Model() *gbt.Ensemble { return b.model }

// FeatureNames returns the ordered training-time feature names.
func (b *Bundle) FeatureNames() []string { return slices.Clone(b.featureNames) }

// NumericCols returns the columns the scaler applies to.
func (b *Bundle) NumericCols() []string { return slices.Clone(b.numericCols) }

// ScalerParams returns mean and scale of the i-th numeric column.
func (b *Bundle) ScalerParams(i int) (mean, scale float64) { return b.mean[i], b.scale[i] }

// Categories returns the fit-ordered categories per field, if the bundle has them.
func (b *Bundle) Categories() map[string][]string {
	out := make(map[string][]string, len(b.categories))
	for k, v := range b.categories {
		out[k] = slices.Clone(v)
	}
	return out
}
