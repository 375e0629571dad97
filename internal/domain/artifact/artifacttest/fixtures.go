// Package artifacttest provides small, hand-built model bundles for tests.
package artifacttest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/medalcast/internal/domain/artifact"
	"github.com/okian/medalcast/internal/domain/gbt"
)

func leaf(v float64) *float64 { return &v }

func f(v float64) *float64 { return &v }

func stump(id0 int, split string, cond, yes, no float64) *gbt.Node {
	return &gbt.Node{
		NodeID: id0, Split: split, SplitCondition: cond, Yes: 1, No: 2, Missing: 1,
		Children: []*gbt.Node{{NodeID: 1, Leaf: leaf(yes)}, {NodeID: 2, Leaf: leaf(no)}},
	}
}

// AthleteDocument is a two-tree classifier over the athlete feature layout.
// For the reference request (prev_medals_noc 100, sport Swimming) the margin is
// 1.2, a probability of about 0.7685.
func AthleteDocument() artifact.Document {
	return artifact.Document{
		ModelVersion: "xgboost-athlete-test",
		Model: gbt.Definition{
			Objective: gbt.BinaryLogistic,
			BaseScore: f(0.5),
			Trees: []*gbt.Node{
				stump(0, "Prev_medals_NOC", 0.5, -0.6, 0.8),
				stump(0, "sport_Swimming", 0.5, -0.2, 0.4),
			},
		},
		Scaler: artifact.Scaler{
			Mean:  []float64{25, 178, 72, 22.5, 3, 300, 50},
			Scale: []float64{5, 10, 12, 2.5, 3, 200, 80},
		},
		FeatureNames: []string{
			"Age", "Height", "Weight", "BMI", "Years_since_first",
			"is_team_sport", "is_first_appearance",
			"NOC_athletes_this_year", "Prev_medals_NOC",
			"sex_M", "season_Winter",
			"sport_Athletics", "sport_Swimming",
			"age_group_24-28", "age_group_29-35",
			"region_China", "region_United States",
		},
		NumericCols: []string{
			"Age", "Height", "Weight", "BMI", "Years_since_first",
			"NOC_athletes_this_year", "Prev_medals_NOC",
		},
		Categories: map[string][]string{
			"sex":       {"F", "M"},
			"season":    {"Summer", "Winter"},
			"sport":     {"Archery", "Athletics", "Swimming"},
			"age_group": {"18-23", "24-28", "29-35"},
			"region":    {"Australia", "China", "United States"},
		},
	}
}

// CountryDocument is a two-tree regressor over the country feature layout.
// For the reference request (prev_medals_1 45, region United States) it
// predicts 10 + 25 + 8 = 43 medals.
func CountryDocument() artifact.Document {
	return artifact.Document{
		ModelVersion: "xgboost-country-test",
		Model: gbt.Definition{
			Objective: gbt.SquaredError,
			BaseScore: f(10),
			Trees: []*gbt.Node{
				stump(0, "prev_medals_1", 0, -3, 25),
				stump(0, "region_United States", 0.5, 0, 8),
			},
		},
		Scaler: artifact.Scaler{
			Mean:  []float64{1990, 120, 10, 10, 110, 25, 22, 0},
			Scale: []float64{30, 150, 15, 15, 140, 2, 1.5, 5},
		},
		FeatureNames: []string{
			"year", "num_athletes", "prev_medals_1", "prev_medals_2", "prev_athletes",
			"avg_age", "avg_bmi", "is_host", "medal_change_prev",
			"season_Winter", "region_China", "region_United States",
		},
		NumericCols: []string{
			"year", "num_athletes", "prev_medals_1", "prev_medals_2", "prev_athletes",
			"avg_age", "avg_bmi", "medal_change_prev",
		},
	}
}

// AthleteRequest is the reference athlete request.
func AthleteRequest() map[string]any {
	return map[string]any{
		"age": 24.0, "height": 180.0, "weight": 75.0, "bmi": 23.1,
		"years_since_first": 4.0, "is_team_sport": 0.0, "is_first_appearance": 0.0,
		"noc_athletes_this_year": 500.0, "prev_medals_noc": 100.0,
		"sex": "M", "season": "Summer", "sport": "Swimming",
		"age_group": "24-28", "region": "United States",
	}
}

// CountryRequest is the reference country request.
func CountryRequest() map[string]any {
	return map[string]any{
		"year": 2028.0, "season": "Summer", "region": "United States",
		"num_athletes": 420.0, "prev_medals_1": 45.0, "prev_medals_2": 38.0,
		"prev_athletes": 411.0, "avg_age": 26.8, "avg_bmi": 22.5,
		"is_host": 0.0, "medal_change_prev": 5.0,
	}
}

// MustBundle builds a bundle from doc or fails the test.
func MustBundle(t testing.TB, doc artifact.Document) *artifact.Bundle {
	t.Helper()
	b, err := artifact.New("test", doc)
	if err != nil {
		t.Fatalf("build bundle: %v", err)
	}
	return b
}

// WriteJSON encodes doc into dir/name and returns the path.
func WriteJSON(t testing.TB, dir, name string, doc artifact.Document) string {
	t.Helper()
	path := filepath.Join(dir, name)
	fh, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer fh.Close()
	if err := artifact.Encode(fh, doc); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}
