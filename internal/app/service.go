// Package service owns the loaded model bundles and exposes the prediction
// operations the HTTP API and CLI depend on.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/medalcast/internal/domain/artifact"
	"github.com/okian/medalcast/internal/domain/prediction"
	"github.com/okian/medalcast/pkg/logger"
	"github.com/okian/medalcast/pkg/metrics"
)

// Default artifact locations, relative to the working directory.
const (
	DefaultAthleteArtifact = "models/athlete_medal_model.json"
	DefaultCountryArtifact = "models/country_medal_model.json"
)

// Service is the immutable prediction registry built at Start. Predictors
// are swapped as a unit, so handlers never see a half-loaded state.
type Service struct {
	mu sync.RWMutex

	// Configuration
	athletePath    string
	countryPath    string
	athleteVersion string
	countryVersion string

	// State
	athlete       *prediction.AthletePredictor
	country       *prediction.CountryPredictor
	athleteBundle *artifact.Bundle
	countryBundle *artifact.Bundle
	started       bool
	startedAt     time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAthleteArtifact sets the athlete bundle path.
func WithAthleteArtifact(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.athletePath = path
		}
	}
}

// WithCountryArtifact sets the country bundle path.
func WithCountryArtifact(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.countryPath = path
		}
	}
}

// WithModelVersions sets the versions reported for bundles that carry none.
func WithModelVersions(athlete, country string) Option {
	return func(s *Service) {
		if athlete != "" {
			s.athleteVersion = athlete
		}
		if country != "" {
			s.countryVersion = country
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		athletePath:    DefaultAthleteArtifact,
		countryPath:    DefaultCountryArtifact,
		athleteVersion: prediction.DefaultAthleteVersion,
		countryVersion: prediction.DefaultCountryVersion,
		logger:         nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads both bundles concurrently and builds the predictors. Either
// bundle failing aborts the start and leaves the service unloaded.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting prediction service...",
		logger.String("athleteArtifact", s.athletePath),
		logger.String("countryArtifact", s.countryPath),
	)

	var athleteBundle, countryBundle *artifact.Bundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		athleteBundle, err = s.load(gctx, prediction.ModelAthlete, s.athletePath)
		return err
	})
	g.Go(func() (err error) {
		countryBundle, err = s.load(gctx, prediction.ModelCountry, s.countryPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	athlete, err := prediction.NewAthletePredictor(athleteBundle,
		prediction.WithLogger(s.logger),
		prediction.WithModelVersion(s.athleteVersion),
	)
	if err != nil {
		metrics.RecordArtifactLoadError(prediction.ModelAthlete)
		return fmt.Errorf("%w: %w", ErrLoadBundle, err)
	}
	country, err := prediction.NewCountryPredictor(countryBundle,
		prediction.WithLogger(s.logger),
		prediction.WithModelVersion(s.countryVersion),
	)
	if err != nil {
		metrics.RecordArtifactLoadError(prediction.ModelCountry)
		return fmt.Errorf("%w: %w", ErrLoadBundle, err)
	}

	for name, cols := range map[string][]string{
		prediction.ModelAthlete: athlete.Unreachable(),
		prediction.ModelCountry: country.Unreachable(),
	} {
		if len(cols) > 0 {
			s.logger.Warn(ctx, "feature columns no request can set; they are always zero",
				logger.String("model", name),
				logger.Strings("columns", cols),
			)
		}
	}

	s.athlete, s.country = athlete, country
	s.athleteBundle, s.countryBundle = athleteBundle, countryBundle
	s.started = true
	s.startedAt = time.Now()
	metrics.UpdateModelLoaded(prediction.ModelAthlete, true)
	metrics.UpdateModelLoaded(prediction.ModelCountry, true)

	s.logger.Info(ctx, "prediction service started",
		logger.Bool("modelsLoaded", true),
		logger.String("athleteVersion", athlete.Version()),
		logger.String("countryVersion", country.Version()),
		logger.Int("athleteTrees", athleteBundle.Model().NumTrees()),
		logger.Int("countryTrees", countryBundle.Model().NumTrees()),
	)

	return nil
}

func (s *Service) load(ctx context.Context, model, path string) (*artifact.Bundle, error) {
	start := time.Now()
	b, err := artifact.Load(ctx, path)
	if err != nil {
		metrics.RecordArtifactLoadError(model)
		s.logger.Error(ctx, "failed to load model bundle",
			logger.String("model", model),
			logger.String("path", path),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadBundle, model, err)
	}
	elapsed := time.Since(start)
	metrics.RecordArtifactLoad(model, float64(elapsed.Microseconds())/1000)
	s.logger.Debug(ctx, "model bundle loaded",
		logger.String("model", model),
		logger.String("path", path),
		logger.Duration("elapsed", elapsed),
	)
	return b, nil
}

// Stop releases the loaded bundles.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping prediction service...")

	s.athlete, s.country = nil, nil
	s.athleteBundle, s.countryBundle = nil, nil
	s.started = false
	metrics.UpdateModelLoaded(prediction.ModelAthlete, false)
	metrics.UpdateModelLoaded(prediction.ModelCountry, false)

	s.logger.Info(context.Background(), "prediction service stopped", logger.Bool("modelsLoaded", false))
}

// ModelsLoaded reports whether both predictors are ready.
func (s *Service) ModelsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// PredictAthlete validates and scores an athlete request.
func (s *Service) PredictAthlete(ctx context.Context, in map[string]any) (prediction.AthleteResponse, error) {
	s.mu.RLock()
	p := s.athlete
	s.mu.RUnlock()
	if p == nil {
		return prediction.AthleteResponse{}, ErrNotReady
	}
	return p.Predict(ctx, in)
}

// PredictCountry validates and scores a country request.
func (s *Service) PredictCountry(ctx context.Context, in map[string]any) (prediction.CountryResponse, error) {
	s.mu.RLock()
	p := s.country
	s.mu.RUnlock()
	if p == nil {
		return prediction.CountryResponse{}, ErrNotReady
	}
	return p.Predict(ctx, in)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"models_loaded": s.started,
	}

	if s.started {
		stats["uptime_seconds"] = int(time.Since(s.startedAt).Seconds())
		stats[prediction.ModelAthlete] = bundleStats(s.athleteBundle, s.athlete.Version())
		stats[prediction.ModelCountry] = bundleStats(s.countryBundle, s.country.Version())
	}

	return stats
}

func bundleStats(b *artifact.Bundle, version string) map[string]interface{} {
	return map[string]interface{}{
		"source":        b.Source(),
		"model_version": version,
		"objective":     string(b.Model().Objective()),
		"trees":         b.Model().NumTrees(),
		"features":      len(b.FeatureNames()),
	}
}
