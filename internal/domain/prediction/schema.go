package prediction

import (
	"maps"
	"slices"

	"github.com/okian/medalcast/internal/domain/features"
	"github.com/okian/medalcast/internal/domain/validate"
)

var seasons = []string{"Summer", "Winter"}

// AthleteSchema returns the athlete request constraints.
func AthleteSchema() *validate.Schema {
	return validate.NewSchema(ModelAthlete,
		validate.Number("age", 10, 80),
		validate.Number("height", 120, 250),
		validate.Number("weight", 30, 200),
		validate.Number("bmi", 10, 60),
		validate.AtLeast("years_since_first", 0),
		validate.Integer("is_team_sport", 0, 1),
		validate.Integer("is_first_appearance", 0, 1),
		validate.AtLeast("noc_athletes_this_year", 1),
		validate.AtLeast("prev_medals_noc", 0),
		validate.OneOf("sex", "M", "F"),
		validate.OneOf("season", seasons...),
		validate.NonEmpty("sport"),
		validate.Text("age_group"),
		validate.NonEmpty("region"),
	)
}

// CountrySchema returns the country request constraints.
func CountrySchema() *validate.Schema {
	return validate.NewSchema(ModelCountry,
		validate.Integer("year", 1896, 2070),
		validate.OneOf("season", seasons...),
		validate.NonEmpty("region"),
		validate.AtLeast("num_athletes", 1),
		validate.AtLeast("prev_medals_1", 0),
		validate.AtLeast("prev_medals_2", 0),
		validate.AtLeast("prev_athletes", 0),
		validate.Number("avg_age", 15, 50),
		validate.Number("avg_bmi", 15, 35),
		validate.Integer("is_host", 0, 1),
		validate.Integer("medal_change_prev", -100, 100),
	)
}

// athleteRename maps request names to the names the athlete model was fit on.
var athleteRename = map[string]string{
	"age":                    "Age",
	"height":                 "Height",
	"weight":                 "Weight",
	"bmi":                    "BMI",
	"years_since_first":      "Years_since_first",
	"noc_athletes_this_year": "NOC_athletes_this_year",
	"prev_medals_noc":        "Prev_medals_NOC",
}

var (
	athleteCategorical = []string{"sex", "season", "sport", "age_group", "region"}
	countryCategorical = []string{"season", "region"}
)

// numericFields lists, sorted, the keys a record fills in Numeric.
func numericFields(rec features.Record) []string {
	return slices.Sorted(maps.Keys(rec.Numeric))
}
