package gbt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type compiledNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	yes       int
	no        int
	missing   int
}

type compiledTree []compiledNode

// Ensemble is a compiled, read-only tree ensemble. It is safe for concurrent use.
type Ensemble struct {
	objective  Objective
	baseMargin float64
	trees      []compiledTree
	nFeatures  int
}

// Compile resolves split feature names against featureNames and flattens every
// tree into an index-addressed slice.
func Compile(def Definition, featureNames []string) (*Ensemble, error) {
	switch def.Objective {
	case BinaryLogistic, SquaredError:
	case "":
		return nil, fmt.Errorf("%w: objective is required", ErrInvalidModel)
	default:
		return nil, fmt.Errorf("%w: unsupported objective %q", ErrInvalidModel, def.Objective)
	}
	if len(def.Trees) == 0 {
		return nil, fmt.Errorf("%w: no trees", ErrInvalidModel)
	}

	index := make(map[string]int, len(featureNames))
	for i, name := range featureNames {
		index[name] = i
	}

	base := defaultBaseScore
	if def.BaseScore != nil {
		base = *def.BaseScore
	}
	margin := base
	if def.Objective == BinaryLogistic {
		if base <= 0 || base >= 1 {
			return nil, fmt.Errorf("%w: base_score %v outside (0,1) for %s", ErrInvalidModel, base, def.Objective)
		}
		margin = math.Log(base / (1 - base))
	}

	e := &Ensemble{
		objective:  def.Objective,
		baseMargin: margin,
		trees:      make([]compiledTree, 0, len(def.Trees)),
		nFeatures:  len(featureNames),
	}
	for i, root := range def.Trees {
		t, err := compileTree(root, index, len(featureNames))
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		e.trees = append(e.trees, t)
	}
	return e, nil
}

func compileTree(root *Node, index map[string]int, nFeatures int) (compiledTree, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrInvalidModel)
	}

	// Breadth-first flattening; position 0 is the root.
	var nodes []*Node
	pos := make(map[int]int)
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == nil {
			return nil, fmt.Errorf("%w: nil node", ErrInvalidModel)
		}
		if _, dup := pos[n.NodeID]; dup {
			return nil, fmt.Errorf("%w: duplicate nodeid %d", ErrInvalidModel, n.NodeID)
		}
		pos[n.NodeID] = len(nodes)
		nodes = append(nodes, n)
		queue = append(queue, n.Children...)
	}

	tree := make(compiledTree, len(nodes))
	for i, n := range nodes {
		if n.Leaf != nil {
			if len(n.Children) != 0 {
				return nil, fmt.Errorf("%w: leaf %d has children", ErrInvalidModel, n.NodeID)
			}
			tree[i] = compiledNode{leaf: true, value: *n.Leaf}
			continue
		}

		feature, err := resolveFeature(n.Split, index, nFeatures)
		if err != nil {
			return nil, err
		}
		c := compiledNode{feature: feature, threshold: n.SplitCondition}
		for _, ref := range []struct {
			id  int
			dst *int
		}{{n.Yes, &c.yes}, {n.No, &c.no}, {n.Missing, &c.missing}} {
			p, ok := pos[ref.id]
			if !ok || !isChild(n, ref.id) {
				return nil, fmt.Errorf("%w: node %d references unknown child %d", ErrInvalidModel, n.NodeID, ref.id)
			}
			*ref.dst = p
		}
		tree[i] = c
	}
	return tree, nil
}

func isChild(n *Node, id int) bool {
	for _, c := range n.Children {
		if c.NodeID == id {
			return true
		}
	}
	return false
}

// resolveFeature maps a split name to a vector position. Dumps produced without
// feature names use the positional form "f<i>".
func resolveFeature(split string, index map[string]int, nFeatures int) (int, error) {
	if i, ok := index[split]; ok {
		return i, nil
	}
	if rest, ok := strings.CutPrefix(split, "f"); ok {
		if i, err := strconv.Atoi(rest); err == nil && i >= 0 && i < nFeatures {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, split)
}

// Objective returns the training objective.
func (e *Ensemble) Objective() Objective { return e.objective }

// NumTrees returns the number of trees in the ensemble.
func (e *Ensemble) NumTrees() int { return len(e.trees) }

// NumFeatures returns the expected feature vector length.
func (e *Ensemble) NumFeatures() int { return e.nFeatures }

// Margin returns the untransformed sum of the base margin and all leaf values.
func (e *Ensemble) Margin(x []float64) (float64, error) {
	if len(x) != e.nFeatures {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(x), e.nFeatures)
	}
	sum := e.baseMargin
	for _, t := range e.trees {
		sum += t.eval(x)
	}
	return sum, nil
}

func (t compiledTree) eval(x []float64) float64 {
	i := 0
	// Children always sit after their parent, so the walk terminates.
	for {
		n := t[i]
		if n.leaf {
			return n.value
		}
		v := x[n.feature]
		switch {
		case math.IsNaN(v):
			i = n.missing
		case v < n.threshold:
			i = n.yes
		default:
			i = n.no
		}
	}
}

// Predict returns the model output on the objective's scale: a probability for
// binary:logistic, the regression value otherwise.
func (e *Ensemble) Predict(x []float64) (float64, error) {
	m, err := e.Margin(x)
	if err != nil {
		return 0, err
	}
	if e.objective == BinaryLogistic {
		return sigmoid(m), nil
	}
	return m, nil
}

// PredictProba returns the positive-class probability.
func (e *Ensemble) PredictProba(x []float64) (float64, error) {
	if e.objective != BinaryLogistic {
		return 0, fmt.Errorf("%w: objective %s", ErrNotClassifier, e.objective)
	}
	return e.Predict(x)
}

func sigmoid(m float64) float64 {
	return 1 / (1 + math.Exp(-m))
}
