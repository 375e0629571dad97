package validate_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/medalcast/internal/domain/validate"
	. "github.com/smartystreets/goconvey/convey"
)

type sample struct {
	Age    float64 `json:"age"`
	Count  int     `json:"count"`
	Sex    string  `json:"sex"`
	Region string  `json:"region"`
	Group  string  `json:"group"`
}

func sampleSchema() *validate.Schema {
	return validate.NewSchema("sample",
		validate.Number("age", 10, 80),
		validate.AtLeast("count", 1),
		validate.OneOf("sex", "M", "F"),
		validate.NonEmpty("region"),
		validate.Text("group"),
	)
}

func validInput() map[string]any {
	return map[string]any{"age": 24.5, "count": 3.0, "sex": "F", "region": "France", "group": ""}
}

func TestSchemaValidate(t *testing.T) {
	Convey("Given a schema", t, func() {
		s := sampleSchema()
		So(s.Name(), ShouldEqual, "sample")
		So(s.Fields(), ShouldResemble, []string{"age", "count", "sex", "region", "group"})

		Convey("When the input satisfies every constraint", func() {
			Convey("Then validation passes and extra keys are ignored", func() {
				in := validInput()
				in["unused"] = true
				So(s.Validate(in), ShouldBeNil)
			})
		})

		Convey("When bounds are hit exactly", func() {
			in := validInput()
			in["age"] = 80.0
			in["count"] = 1

			Convey("Then they are inclusive", func() {
				So(s.Validate(in), ShouldBeNil)
			})
		})

		Convey("When an integer is too large to decode", func() {
			in := validInput()
			in["count"] = json.Number("1e19")
			err := s.Validate(in)

			Convey("Then it is reported against the integer cap", func() {
				var verr *validate.Error
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Violations, ShouldResemble, []validate.Violation{
					{Field: "count", Constraint: "must be <= 2147483647"},
				})
			})
		})

		Convey("When an integer sits on the cap", func() {
			in := validInput()
			in["count"] = float64(validate.MaxInteger)

			Convey("Then it is accepted", func() {
				So(s.Validate(in), ShouldBeNil)
			})
		})

		Convey("When several fields are wrong", func() {
			in := validInput()
			in["age"] = 9.0
			in["count"] = 2.5
			in["sex"] = "X"
			in["region"] = ""
			delete(in, "group")

			err := s.Validate(in)

			Convey("Then every violation is reported in field order", func() {
				var verr *validate.Error
				So(errors.As(err, &verr), ShouldBeTrue)
				So(errors.Is(err, validate.ErrValidation), ShouldBeTrue)
				So(verr.Fields(), ShouldResemble, []string{"age", "count", "sex", "region", "group"})
				So(verr.Violations[0].Constraint, ShouldEqual, "must be >= 10")
				So(verr.Violations[1].Constraint, ShouldEqual, "must be an integer")
				So(verr.Violations[2].Constraint, ShouldEqual, "must be one of M, F")
				So(verr.Violations[3].Constraint, ShouldEqual, "must not be empty")
				So(verr.Violations[4].Constraint, ShouldEqual, "is required")
				So(err.Error(), ShouldStartWith, "invalid sample request: age must be >= 10")
			})
		})

		Convey("When types are wrong", func() {
			in := validInput()
			in["age"] = "old"
			in["sex"] = 1.0
			in["count"] = math.Inf(1)

			err := s.Validate(in)

			Convey("Then type constraints are reported", func() {
				var verr *validate.Error
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Violations, ShouldResemble, []validate.Violation{
					{Field: "age", Constraint: "must be a number"},
					{Field: "count", Constraint: "must be a number"},
					{Field: "sex", Constraint: "must be a string"},
				})
			})
		})

		Convey("When a value exceeds the upper bound", func() {
			in := validInput()
			in["age"] = 80.5
			err := s.Validate(in)

			Convey("Then the bound is named", func() {
				So(err.Error(), ShouldContainSubstring, "age must be <= 80")
			})
		})

		Convey("When a field is null", func() {
			in := validInput()
			in["region"] = nil
			err := s.Validate(in)

			Convey("Then it counts as missing", func() {
				So(err.Error(), ShouldContainSubstring, "region is required")
			})
		})
	})
}

func TestSchemaDecode(t *testing.T) {
	Convey("Given a valid input", t, func() {
		s := sampleSchema()

		Convey("When decoding JSON-shaped values", func() {
			var out sample
			err := s.Decode(validInput(), &out)

			Convey("Then the struct is populated", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, sample{Age: 24.5, Count: 3, Sex: "F", Region: "France"})
			})
		})

		Convey("When numbers arrive as json.Number or Go ints", func() {
			in := validInput()
			in["age"] = json.Number("30")
			in["count"] = 7
			var out sample
			err := s.Decode(in, &out)

			Convey("Then they are accepted", func() {
				So(err, ShouldBeNil)
				So(out.Age, ShouldEqual, 30)
				So(out.Count, ShouldEqual, 7)
			})
		})

		Convey("When an integer would overflow int", func() {
			in := validInput()
			in["count"] = json.Number("1e19")
			var out sample
			err := s.Decode(in, &out)

			Convey("Then it is rejected instead of wrapping negative", func() {
				So(errors.Is(err, validate.ErrValidation), ShouldBeTrue)
				So(out.Count, ShouldEqual, 0)
			})
		})

		Convey("When the input is invalid", func() {
			in := validInput()
			in["age"] = 100.0
			var out sample
			err := s.Decode(in, &out)

			Convey("Then nothing is decoded", func() {
				So(errors.Is(err, validate.ErrValidation), ShouldBeTrue)
				So(out, ShouldResemble, sample{})
			})
		})
	})
}
