// Package gbt evaluates gradient-boosted tree ensembles exported in the
// XGBoost JSON dump layout.
package gbt

// Objective names the learning task the ensemble was trained for.
type Objective string

// Supported objectives.
const (
	BinaryLogistic Objective = "binary:logistic"
	SquaredError   Objective = "reg:squarederror"
)

// defaultBaseScore matches the trainer's global bias when none is exported.
const defaultBaseScore = 0.5

// Node is one node of a dumped tree. A node is a leaf when Leaf is set;
// otherwise it splits on the feature named by Split.
type Node struct {
	NodeID         int      `json:"nodeid"`
	Depth          int      `json:"depth,omitempty"`
	Split          string   `json:"split,omitempty"`
	SplitCondition float64  `json:"split_condition"`
	Yes            int      `json:"yes"`
	No             int      `json:"no"`
	Missing        int      `json:"missing"`
	Leaf           *float64 `json:"leaf,omitempty"`
	Children       []*Node  `json:"children,omitempty"`
}

// Definition is the serialized ensemble.
type Definition struct {
	Objective Objective `json:"objective"`
	BaseScore *float64  `json:"base_score,omitempty"`
	Trees     []*Node   `json:"trees"`
}
