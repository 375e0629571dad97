// Package features turns validated requests into the exact feature vector a
// model bundle was trained on.
package features

import (
	"sort"
	"strings"

	"github.com/okian/medalcast/internal/domain/artifact"
)

// Record is a validated request split into numeric and categorical values,
// keyed by external field name.
type Record struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// Aligned is a feature vector ordered like the bundle's feature names.
type Aligned struct {
	Values []float64
	// Unseen lists categorical fields whose value is neither an indicator
	// column nor the known reference category. They encode as all zeros.
	Unseen []string
}

type scaledCol struct {
	mean  float64
	scale float64
}

// Aligner holds the lookup tables derived from one bundle. It never mutates
// after construction and is safe for concurrent use.
type Aligner struct {
	featureNames []string
	index        map[string]int
	numericCols  []string
	scaler       map[string]scaledCol
	rename       map[string]string
	categorical  []string
	// onehot maps field -> value -> vector position.
	onehot map[string]map[string]int
	// reference holds the dropped first category per field, when known.
	reference map[string]string
}

// NewAligner builds the rename, scaling and one-hot tables for b.
func NewAligner(b *artifact.Bundle, opts ...Option) *Aligner {
	a := &Aligner{
		featureNames: b.FeatureNames(),
		numericCols:  b.NumericCols(),
		rename:       map[string]string{},
	}
	for _, opt := range opts {
		opt(a)
	}

	a.index = make(map[string]int, len(a.featureNames))
	for i, name := range a.featureNames {
		a.index[name] = i
	}
	a.scaler = make(map[string]scaledCol, len(a.numericCols))
	for i, col := range a.numericCols {
		mean, scale := b.ScalerParams(i)
		a.scaler[col] = scaledCol{mean: mean, scale: scale}
	}
	a.buildOneHot(b.Categories())
	return a
}

// buildOneHot uses the fit-ordered categories when the bundle lists them and
// falls back to reading field_value columns out of the feature names.
func (a *Aligner) buildOneHot(categories map[string][]string) {
	a.onehot = make(map[string]map[string]int, len(a.categorical))
	a.reference = make(map[string]string)
	for _, field := range a.categorical {
		a.onehot[field] = map[string]int{}
		cats, ok := categories[field]
		if !ok {
			continue
		}
		a.reference[field] = cats[0]
		for _, v := range cats[1:] {
			if pos, ok := a.index[field+"_"+v]; ok {
				a.onehot[field][v] = pos
			}
		}
	}

	// Longest field prefix wins so "sport_type_X" never lands under "sport".
	fields := append([]string(nil), a.categorical...)
	sort.Slice(fields, func(i, j int) bool { return len(fields[i]) > len(fields[j]) })
	for pos, name := range a.featureNames {
		if _, numeric := a.scaler[name]; numeric {
			continue
		}
		for _, field := range fields {
			value, ok := strings.CutPrefix(name, field+"_")
			if !ok {
				continue
			}
			if _, listed := categories[field]; !listed {
				a.onehot[field][value] = pos
			}
			break
		}
	}
}

// FeatureNames returns the output order.
func (a *Aligner) FeatureNames() []string {
	return append([]string(nil), a.featureNames...)
}

// Check verifies that the given external numeric fields cover every scaler
// column once renamed. Run it at startup to catch artifact skew early.
func (a *Aligner) Check(numericFields []string) error {
	have := make(map[string]struct{}, len(numericFields))
	for _, f := range numericFields {
		have[a.internalName(f)] = struct{}{}
	}
	return a.checkNumeric(have)
}

// Unreachable lists feature names that no numeric field or categorical value
// can set. Such columns are always zero.
func (a *Aligner) Unreachable(numericFields []string) []string {
	reach := make(map[int]struct{}, len(a.featureNames))
	for _, f := range numericFields {
		if pos, ok := a.index[a.internalName(f)]; ok {
			reach[pos] = struct{}{}
		}
	}
	for _, values := range a.onehot {
		for _, pos := range values {
			reach[pos] = struct{}{}
		}
	}
	var out []string
	for pos, name := range a.featureNames {
		if _, ok := reach[pos]; !ok {
			out = append(out, name)
		}
	}
	return out
}

func (a *Aligner) internalName(field string) string {
	if to, ok := a.rename[field]; ok {
		return to
	}
	return field
}

func (a *Aligner) checkNumeric(have map[string]struct{}) error {
	var missing []string
	for _, col := range a.numericCols {
		if _, ok := have[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingFeatureError{Missing: missing}
	}
	return nil
}

// Align renames, scales, one-hot encodes and reindexes rec. The result always
// has len(FeatureNames()) values in that order.
func (a *Aligner) Align(rec Record) (Aligned, error) {
	renamed := make(map[string]float64, len(rec.Numeric))
	present := make(map[string]struct{}, len(rec.Numeric))
	for field, x := range rec.Numeric {
		name := a.internalName(field)
		renamed[name] = x
		present[name] = struct{}{}
	}
	if err := a.checkNumeric(present); err != nil {
		return Aligned{}, err
	}

	values := make([]float64, len(a.featureNames))
	for name, x := range renamed {
		if sc, ok := a.scaler[name]; ok {
			x = (x - sc.mean) / sc.scale
		}
		if pos, ok := a.index[name]; ok {
			values[pos] = x
		}
	}

	var unseen []string
	for _, field := range a.categorical {
		v, ok := rec.Categorical[field]
		if !ok {
			continue
		}
		if pos, hit := a.onehot[field][v]; hit {
			values[pos] = 1
			continue
		}
		if ref, known := a.reference[field]; known && ref != v {
			unseen = append(unseen, field)
		}
	}

	return Aligned{Values: values, Unseen: unseen}, nil
}
