package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	service "github.com/okian/medalcast/internal/app"
	"github.com/okian/medalcast/internal/domain/artifact/artifacttest"
	"github.com/okian/medalcast/internal/domain/prediction"
	"github.com/okian/medalcast/internal/domain/validate"
	"github.com/okian/medalcast/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// newStartedService writes both fixture bundles to a temp dir and starts a
// service over them.
func newStartedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	dir := t.TempDir()
	opts = append([]service.Option{
		service.WithAthleteArtifact(artifacttest.WriteJSON(t, dir, "athlete.json", artifacttest.AthleteDocument())),
		service.WithCountryArtifact(artifacttest.WriteJSON(t, dir, "country.json", artifacttest.CountryDocument())),
	}, opts...)
	svc := service.New(opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then nothing is loaded yet", func() {
			So(svc, ShouldNotBeNil)
			So(svc.ModelsLoaded(), ShouldBeFalse)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("And predictions are refused", func() {
			_, err := svc.PredictAthlete(context.Background(), artifacttest.AthleteRequest())
			So(errors.Is(err, service.ErrNotReady), ShouldBeTrue)
			_, err = svc.PredictCountry(context.Background(), artifacttest.CountryRequest())
			So(errors.Is(err, service.ErrNotReady), ShouldBeTrue)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service over valid bundles", t, func() {
		svc := newStartedService(t, service.WithLogger(logger.Get()))
		defer svc.Stop()

		Convey("Then it reports loaded models and stats", func() {
			So(svc.ModelsLoaded(), ShouldBeTrue)
			stats := svc.GetStats()
			So(stats["models_loaded"], ShouldEqual, true)
			athlete, ok := stats["athlete"].(map[string]interface{})
			So(ok, ShouldBeTrue)
			So(athlete["model_version"], ShouldEqual, "xgboost-athlete-test")
			So(athlete["trees"], ShouldEqual, 2)
			So(athlete["features"], ShouldEqual, 17)
		})

		Convey("When starting again", func() {
			err := svc.Start(context.Background())

			Convey("Then it is a no-op", func() {
				So(err, ShouldBeNil)
				So(svc.ModelsLoaded(), ShouldBeTrue)
			})
		})

		Convey("When predicting both models", func() {
			athlete, err1 := svc.PredictAthlete(context.Background(), artifacttest.AthleteRequest())
			country, err2 := svc.PredictCountry(context.Background(), artifacttest.CountryRequest())

			Convey("Then the fixture answers come back", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(athlete.Probability, ShouldEqual, 0.7685)
				So(athlete.Confidence, ShouldEqual, "High")
				So(country.PredictedTotalMedals, ShouldEqual, 43.0)
				So(country.PredictedRangeLow, ShouldEqual, 37)
				So(country.PredictedRangeHigh, ShouldEqual, 49)
			})
		})

		Convey("When a request is invalid", func() {
			req := artifacttest.CountryRequest()
			req["avg_bmi"] = 99.0
			_, err := svc.PredictCountry(context.Background(), req)

			Convey("Then the validation error reaches the caller", func() {
				So(errors.Is(err, validate.ErrValidation), ShouldBeTrue)
			})
		})
	})
}

func TestService_StartFailures(t *testing.T) {
	Convey("Given a service whose country bundle is missing", t, func() {
		dir := t.TempDir()
		svc := service.New(
			service.WithAthleteArtifact(artifacttest.WriteJSON(t, dir, "athlete.json", artifacttest.AthleteDocument())),
			service.WithCountryArtifact(filepath.Join(dir, "absent.json")),
		)
		err := svc.Start(context.Background())

		Convey("Then start fails and nothing is served", func() {
			So(errors.Is(err, service.ErrLoadBundle), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "country")
			So(svc.ModelsLoaded(), ShouldBeFalse)
		})
	})

	Convey("Given bundles swapped between the models", t, func() {
		dir := t.TempDir()
		svc := service.New(
			service.WithAthleteArtifact(artifacttest.WriteJSON(t, dir, "country.json", artifacttest.CountryDocument())),
			service.WithCountryArtifact(artifacttest.WriteJSON(t, dir, "athlete.json", artifacttest.AthleteDocument())),
		)
		err := svc.Start(context.Background())

		Convey("Then the feature skew is caught at startup", func() {
			So(errors.Is(err, service.ErrLoadBundle), ShouldBeTrue)
			So(svc.ModelsLoaded(), ShouldBeFalse)
		})
	})
}

func TestService_Versions(t *testing.T) {
	Convey("Given bundles without embedded versions", t, func() {
		dir := t.TempDir()
		athleteDoc := artifacttest.AthleteDocument()
		athleteDoc.ModelVersion = ""
		countryDoc := artifacttest.CountryDocument()
		countryDoc.ModelVersion = ""
		svc := service.New(
			service.WithAthleteArtifact(artifacttest.WriteJSON(t, dir, "athlete.json", athleteDoc)),
			service.WithCountryArtifact(artifacttest.WriteJSON(t, dir, "country.json", countryDoc)),
			service.WithModelVersions("", "country-v9"),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then configured versions fill in and defaults cover the rest", func() {
			a, err := svc.PredictAthlete(context.Background(), artifacttest.AthleteRequest())
			So(err, ShouldBeNil)
			So(a.ModelVersion, ShouldEqual, prediction.DefaultAthleteVersion)
			c, err := svc.PredictCountry(context.Background(), artifacttest.CountryRequest())
			So(err, ShouldBeNil)
			So(c.ModelVersion, ShouldEqual, "country-v9")
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newStartedService(t)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(svc.ModelsLoaded(), ShouldBeFalse)
			})

			Convey("And stopping twice is safe", func() {
				So(svc.Stop, ShouldNotPanic)
			})
		})
	})
}

func TestService_Concurrency(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newStartedService(t)
		defer svc.Stop()

		Convey("When many goroutines predict at once", func() {
			const workers = 32
			var wg sync.WaitGroup
			results := make([]prediction.AthleteResponse, workers)
			errs := make([]error, workers)
			for i := range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					results[i], errs[i] = svc.PredictAthlete(context.Background(), artifacttest.AthleteRequest())
				}()
			}
			wg.Wait()

			Convey("Then every answer is identical", func() {
				for i := range workers {
					So(errs[i], ShouldBeNil)
					So(results[i], ShouldResemble, results[0])
				}
			})
		})
	})
}

func TestService_ShippedBundles(t *testing.T) {
	Convey("Given the bundles shipped under models/", t, func() {
		svc := service.New(
			service.WithAthleteArtifact(filepath.Join("..", "..", service.DefaultAthleteArtifact)),
			service.WithCountryArtifact(filepath.Join("..", "..", service.DefaultCountryArtifact)),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the reference athlete gets a high chance", func() {
			resp, err := svc.PredictAthlete(context.Background(), artifacttest.AthleteRequest())
			So(err, ShouldBeNil)
			So(resp.Probability, ShouldEqual, 0.8176)
			So(resp.PredictedLabel, ShouldEqual, prediction.LabelHigh)
			So(resp.ModelVersion, ShouldEqual, prediction.DefaultAthleteVersion)
		})

		Convey("Then the reference country gets a medal range", func() {
			resp, err := svc.PredictCountry(context.Background(), artifacttest.CountryRequest())
			So(err, ShouldBeNil)
			So(resp.PredictedTotalMedals, ShouldEqual, 57)
			So(resp.PredictedRangeLow, ShouldEqual, 48)
			So(resp.PredictedRangeHigh, ShouldEqual, 66)
			So(resp.ModelVersion, ShouldEqual, prediction.DefaultCountryVersion)
		})
	})
}

func TestService_Logging(t *testing.T) {
	Convey("Given a service logging JSON to a buffer", t, func() {
		var buf bytes.Buffer
		logger.SetOutput(&buf)
		So(logger.InitWithFormat("json"), ShouldBeNil)
		Reset(func() {
			logger.SetOutput(os.Stdout)
			_ = logger.Init()
		})

		svc := newStartedService(t, service.WithLogger(logger.Named("service")))

		Convey("Then the start line reports the models as loaded", func() {
			So(buf.String(), ShouldContainSubstring, `"msg":"prediction service started"`)
			So(buf.String(), ShouldContainSubstring, `"modelsLoaded":true`)
		})

		Convey("Then the stop line reports them as unloaded", func() {
			svc.Stop()
			So(buf.String(), ShouldContainSubstring, `"msg":"prediction service stopped"`)
			So(buf.String(), ShouldContainSubstring, `"modelsLoaded":false`)
		})
	})
}
