package artifact_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/okian/medalcast/internal/domain/artifact"
	"github.com/okian/medalcast/internal/domain/artifact/artifacttest"
	"github.com/okian/medalcast/internal/domain/gbt"
	. "github.com/smartystreets/goconvey/convey"
)

const countryYAML = `
model_version: yaml-country
model:
  objective: reg:squarederror
  base_score: 2
  trees:
    - nodeid: 0
      split: year
      split_condition: 0
      yes: 1
      no: 2
      missing: 1
      children:
        - {nodeid: 1, leaf: 1}
        - {nodeid: 2, leaf: 3}
scaler:
  mean: [2000]
  scale: [20]
feature_names: [year, season_Winter]
numeric_cols: [year]
`

func encoded(doc artifact.Document) []byte {
	var buf bytes.Buffer
	if err := artifact.Encode(&buf, doc); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestLoad(t *testing.T) {
	Convey("Given bundle files on disk", t, func() {
		dir := t.TempDir()
		ctx := context.Background()

		Convey("When loading a JSON bundle", func() {
			path := artifacttest.WriteJSON(t, dir, "athlete.json", artifacttest.AthleteDocument())
			b, err := artifact.Load(ctx, path)

			Convey("Then all four parts are available", func() {
				So(err, ShouldBeNil)
				So(b.Source(), ShouldEqual, path)
				So(b.ModelVersion(), ShouldEqual, "xgboost-athlete-test")
				So(b.FeatureNames(), ShouldHaveLength, 17)
				So(b.NumericCols(), ShouldHaveLength, 7)
				So(b.Model().NumTrees(), ShouldEqual, 2)
				mean, scale := b.ScalerParams(0)
				So(mean, ShouldEqual, 25)
				So(scale, ShouldEqual, 5)
				So(b.Categories()["sport"], ShouldResemble, []string{"Archery", "Athletics", "Swimming"})
			})

			Convey("And returned slices are copies", func() {
				names := b.FeatureNames()
				names[0] = "mutated"
				So(b.FeatureNames()[0], ShouldEqual, "Age")
			})
		})

		Convey("When loading a YAML bundle", func() {
			path := filepath.Join(dir, "country.yml")
			So(os.WriteFile(path, []byte(countryYAML), 0o600), ShouldBeNil)
			b, err := artifact.Load(ctx, path)

			Convey("Then it decodes like JSON", func() {
				So(err, ShouldBeNil)
				So(b.ModelVersion(), ShouldEqual, "yaml-country")
				got, err := b.Model().Predict([]float64{1, 0})
				So(err, ShouldBeNil)
				So(got, ShouldAlmostEqual, 5)
			})
		})

		Convey("When loading a gzip-compressed bundle", func() {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			_, _ = zw.Write(encoded(artifacttest.CountryDocument()))
			So(zw.Close(), ShouldBeNil)
			path := filepath.Join(dir, "country.json.gz")
			So(os.WriteFile(path, buf.Bytes(), 0o600), ShouldBeNil)

			b, err := artifact.Load(ctx, path)

			Convey("Then it is decompressed transparently", func() {
				So(err, ShouldBeNil)
				So(b.ModelVersion(), ShouldEqual, "xgboost-country-test")
			})
		})

		Convey("When loading a zstd-compressed bundle", func() {
			enc, err := zstd.NewWriter(nil)
			So(err, ShouldBeNil)
			raw := enc.EncodeAll(encoded(artifacttest.AthleteDocument()), nil)
			_ = enc.Close()
			path := filepath.Join(dir, "athlete.json.zst")
			So(os.WriteFile(path, raw, 0o600), ShouldBeNil)

			b, err := artifact.Load(ctx, path)

			Convey("Then it is decompressed transparently", func() {
				So(err, ShouldBeNil)
				So(b.Model().Objective(), ShouldEqual, gbt.BinaryLogistic)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := artifact.Load(ctx, filepath.Join(dir, "nope.json"))

			Convey("Then a read error is returned", func() {
				So(errors.Is(err, artifact.ErrRead), ShouldBeTrue)
			})
		})

		Convey("When the extension is unknown", func() {
			path := filepath.Join(dir, "model.pkl")
			So(os.WriteFile(path, []byte("x"), 0o600), ShouldBeNil)
			_, err := artifact.Load(ctx, path)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, artifact.ErrRead), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, ".pkl")
			})
		})
	})
}

func TestParseMissingFields(t *testing.T) {
	Convey("Given a bundle without scaler and numeric_cols", t, func() {
		raw := []byte(`{"model": {"objective": "reg:squarederror", "trees": [{"nodeid": 0, "leaf": 1}]},
			"feature_names": ["a"], "numeric_cols": null}`)

		_, err := artifact.Parse("inline", raw, artifact.FormatJSON)

		Convey("Then loading fails fast naming every absent field", func() {
			So(errors.Is(err, artifact.ErrMissingField), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "scaler, numeric_cols")
			So(err.Error(), ShouldNotContainSubstring, "feature_names")
		})
	})

	Convey("Given an empty object", t, func() {
		_, err := artifact.Parse("inline", []byte(`{}`), artifact.FormatJSON)

		Convey("Then all four fields are reported", func() {
			So(errors.Is(err, artifact.ErrMissingField), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "model, scaler, feature_names, numeric_cols")
		})
	})
}

func TestParseInvalid(t *testing.T) {
	Convey("Given structurally invalid bundles", t, func() {
		Convey("A top-level array", func() {
			_, err := artifact.Parse("inline", []byte(`[]`), artifact.FormatJSON)
			So(errors.Is(err, artifact.ErrInvalidBundle), ShouldBeTrue)
		})

		Convey("Malformed JSON", func() {
			_, err := artifact.Parse("inline", []byte(`{"model":`), artifact.FormatJSON)
			So(errors.Is(err, artifact.ErrInvalidBundle), ShouldBeTrue)
		})

		Convey("An unsupported objective fails schema validation", func() {
			raw := []byte(`{"model": {"objective": "multi:softmax", "trees": [{"nodeid": 0, "leaf": 1}]},
				"scaler": {"mean": [], "scale": []}, "feature_names": ["a"], "numeric_cols": []}`)
			_, err := artifact.Parse("inline", raw, artifact.FormatJSON)
			So(errors.Is(err, artifact.ErrInvalidBundle), ShouldBeTrue)
		})

		Convey("Feature names as a string fails schema validation", func() {
			raw := []byte(`{"model": {"objective": "reg:squarederror", "trees": [{"nodeid": 0, "leaf": 1}]},
				"scaler": {"mean": [], "scale": []}, "feature_names": "a", "numeric_cols": []}`)
			_, err := artifact.Parse("inline", raw, artifact.FormatJSON)
			So(errors.Is(err, artifact.ErrInvalidBundle), ShouldBeTrue)
		})
	})
}

func TestNewSemanticChecks(t *testing.T) {
	Convey("Given documents that pass the schema but not the semantic checks", t, func() {
		Convey("Scaler length differs from numeric columns", func() {
			doc := artifacttest.CountryDocument()
			doc.Scaler.Mean = doc.Scaler.Mean[:2]
			_, err := artifact.New("t", doc)
			So(errors.Is(err, artifact.ErrInvalidBundle), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "scaler")
		})

		Convey("Numeric column outside feature names", func() {
			doc := artifacttest.CountryDocument()
			doc.NumericCols[0] = "gdp"
			_, err := artifact.New("t", doc)
			So(errors.Is(err, artifact.ErrInvalidBundle), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `"gdp"`)
		})

		Convey("Duplicate feature names", func() {
			doc := artifacttest.CountryDocument()
			doc.FeatureNames = append(doc.FeatureNames, "year")
			_, err := artifact.New("t", doc)
			So(errors.Is(err, artifact.ErrInvalidBundle), ShouldBeTrue)
		})

		Convey("Model splits on an unknown feature", func() {
			doc := artifacttest.CountryDocument()
			doc.Model.Trees[0].Split = "gdp"
			_, err := artifact.New("t", doc)
			So(errors.Is(err, artifact.ErrInvalidBundle), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "gdp")
		})

		Convey("Zero scale is treated as unit scale", func() {
			doc := artifacttest.CountryDocument()
			doc.Scaler.Scale[7] = 0
			b, err := artifact.New("t", doc)
			So(err, ShouldBeNil)
			_, scale := b.ScalerParams(7)
			So(scale, ShouldEqual, 1)
		})
	})
}
