package config_test

import (
	"errors"
	"testing"

	"github.com/okian/medalcast/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.AthleteModelVersion, convey.ShouldEqual, "xgboost-athlete-2026")
			convey.So(cfg.CountryModelVersion, convey.ShouldEqual, "xgboost-country-2026")
			convey.So(cfg.AllowedOrigins, convey.ShouldContain, "http://localhost:8501")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid fields", t, func() {
		cases := map[string]func(*config.Config){
			"addr":               func(c *config.Config) { c.Addr = " " },
			"athlete_artifact":   func(c *config.Config) { c.AthleteArtifact = "" },
			"country_artifact":   func(c *config.Config) { c.CountryArtifact = "" },
			"request_timeout_ms": func(c *config.Config) { c.RequestTimeoutMS = 0 },
			"max_body_bytes":     func(c *config.Config) { c.MaxBodyBytes = -1 },
		}

		for field, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldStartWith, "medalcast: invalid configuration: ")
			convey.So(err.Error(), convey.ShouldContainSubstring, field)
		}
	})
}
