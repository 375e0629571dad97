// Package prediction turns validated athlete and country requests into
// user-facing medal predictions.
package prediction

import "github.com/okian/medalcast/internal/domain/features"

// Model names used in logs, metrics and errors.
const (
	ModelAthlete = "athlete"
	ModelCountry = "country"
)

// Default model versions reported when neither the bundle nor the caller
// provides one.
const (
	DefaultAthleteVersion = "xgboost-athlete-2026"
	DefaultCountryVersion = "xgboost-country-2026"
)

// AthleteRequest describes one athlete's appearance at a Games.
type AthleteRequest struct {
	Age                 float64 `json:"age" yaml:"age"`
	Height              float64 `json:"height" yaml:"height"`
	Weight              float64 `json:"weight" yaml:"weight"`
	BMI                 float64 `json:"bmi" yaml:"bmi"`
	YearsSinceFirst     int     `json:"years_since_first" yaml:"years_since_first"`
	IsTeamSport         int     `json:"is_team_sport" yaml:"is_team_sport"`
	IsFirstAppearance   int     `json:"is_first_appearance" yaml:"is_first_appearance"`
	NOCAthletesThisYear int     `json:"noc_athletes_this_year" yaml:"noc_athletes_this_year"`
	PrevMedalsNOC       int     `json:"prev_medals_noc" yaml:"prev_medals_noc"`
	Sex                 string  `json:"sex" yaml:"sex"`
	Season              string  `json:"season" yaml:"season"`
	Sport               string  `json:"sport" yaml:"sport"`
	AgeGroup            string  `json:"age_group" yaml:"age_group"`
	Region              string  `json:"region" yaml:"region"`
}

func (r AthleteRequest) record() features.Record {
	return features.Record{
		Numeric: map[string]float64{
			"age":                    r.Age,
			"height":                 r.Height,
			"weight":                 r.Weight,
			"bmi":                    r.BMI,
			"years_since_first":      float64(r.YearsSinceFirst),
			"is_team_sport":          float64(r.IsTeamSport),
			"is_first_appearance":    float64(r.IsFirstAppearance),
			"noc_athletes_this_year": float64(r.NOCAthletesThisYear),
			"prev_medals_noc":        float64(r.PrevMedalsNOC),
		},
		Categorical: map[string]string{
			"sex":       r.Sex,
			"season":    r.Season,
			"sport":     r.Sport,
			"age_group": r.AgeGroup,
			"region":    r.Region,
		},
	}
}

// AthleteResponse is the medal probability for one athlete.
type AthleteResponse struct {
	Probability    float64 `json:"probability"`
	PredictedLabel string  `json:"predicted_label"`
	Confidence     string  `json:"confidence"`
	ModelVersion   string  `json:"model_version"`
}

// CountryRequest describes one nation's delegation at a Games.
type CountryRequest struct {
	Year            int     `json:"year" yaml:"year"`
	Season          string  `json:"season" yaml:"season"`
	Region          string  `json:"region" yaml:"region"`
	NumAthletes     int     `json:"num_athletes" yaml:"num_athletes"`
	PrevMedals1     int     `json:"prev_medals_1" yaml:"prev_medals_1"`
	PrevMedals2     int     `json:"prev_medals_2" yaml:"prev_medals_2"`
	PrevAthletes    int     `json:"prev_athletes" yaml:"prev_athletes"`
	AvgAge          float64 `json:"avg_age" yaml:"avg_age"`
	AvgBMI          float64 `json:"avg_bmi" yaml:"avg_bmi"`
	IsHost          int     `json:"is_host" yaml:"is_host"`
	MedalChangePrev int     `json:"medal_change_prev" yaml:"medal_change_prev"`
}

func (r CountryRequest) record() features.Record {
	return features.Record{
		Numeric: map[string]float64{
			"year":              float64(r.Year),
			"num_athletes":      float64(r.NumAthletes),
			"prev_medals_1":     float64(r.PrevMedals1),
			"prev_medals_2":     float64(r.PrevMedals2),
			"prev_athletes":     float64(r.PrevAthletes),
			"avg_age":           r.AvgAge,
			"avg_bmi":           r.AvgBMI,
			"is_host":           float64(r.IsHost),
			"medal_change_prev": float64(r.MedalChangePrev),
		},
		Categorical: map[string]string{
			"season": r.Season,
			"region": r.Region,
		},
	}
}

// CountryResponse is the predicted medal total with a display range.
type CountryResponse struct {
	PredictedTotalMedals float64 `json:"predicted_total_medals"`
	PredictedRangeLow    int     `json:"predicted_range_low"`
	PredictedRangeHigh   int     `json:"predicted_range_high"`
	ModelVersion         string  `json:"model_version"`
}
