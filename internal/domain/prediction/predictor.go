package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/okian/medalcast/internal/domain/artifact"
	"github.com/okian/medalcast/internal/domain/features"
	"github.com/okian/medalcast/internal/domain/gbt"
	"github.com/okian/medalcast/internal/domain/validate"
	"github.com/okian/medalcast/pkg/logger"
	"github.com/okian/medalcast/pkg/metrics"
)

// Classifier returns the positive-class probability for an aligned vector.
type Classifier interface {
	PredictProba(x []float64) (float64, error)
}

// Regressor returns the regression output for an aligned vector.
type Regressor interface {
	Predict(x []float64) (float64, error)
}

// pipeline is the part both predictors share: schema, aligner and identity.
type pipeline struct {
	name    string
	version string
	schema  *validate.Schema
	aligner *features.Aligner
	log     logger.Logger
}

func newPipeline(model string, b *artifact.Bundle, schema *validate.Schema, numeric []string, o options, fopts ...features.Option) (pipeline, error) {
	aligner := features.NewAligner(b, fopts...)
	if err := aligner.Check(numeric); err != nil {
		return pipeline{}, fmt.Errorf("%s bundle %s: %w", model, b.Source(), err)
	}
	version := b.ModelVersion()
	if version == "" {
		version = o.version
	}
	return pipeline{
		name:    model,
		version: version,
		schema:  schema,
		aligner: aligner,
		log:     o.log(model),
	}, nil
}

func (o options) log(model string) logger.Logger {
	if o.logger == nil {
		return logger.Nop()
	}
	return o.logger.Named(model + "_predictor")
}

// recorder is a request struct pointer that can be decoded into and split
// into aligner input.
type recorder interface {
	record() features.Record
}

// prepare validates and decodes in into req, then aligns it.
func (p pipeline) prepare(ctx context.Context, in map[string]any, req recorder) ([]float64, error) {
	if err := p.schema.Decode(in, req); err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			for _, f := range verr.Fields() {
				metrics.RecordValidationViolation(p.name, f)
			}
			metrics.RecordPrediction(p.name, metrics.OutcomeInvalid)
		}
		return nil, err
	}

	aligned, err := p.aligner.Align(req.record())
	if err != nil {
		metrics.RecordPrediction(p.name, metrics.OutcomeFeatureMismatch)
		p.log.Error(ctx, "feature alignment failed", logger.Error(err))
		return nil, err
	}
	for _, field := range aligned.Unseen {
		metrics.RecordUnseenCategory(p.name, field)
	}
	if len(aligned.Unseen) > 0 {
		p.log.Debug(ctx, "unseen categorical values encoded as zeros", logger.Strings("fields", aligned.Unseen))
	}
	return aligned.Values, nil
}

// invoke calls score, converting errors and panics into *Error.
func (p pipeline) invoke(ctx context.Context, score func() (float64, error)) (out float64, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Model: p.name, Msg: fmt.Sprint(r)}
		}
		if err != nil {
			metrics.RecordPrediction(p.name, metrics.OutcomeFailed)
			p.log.Error(ctx, "model call failed", logger.Error(err))
		}
	}()

	out, err = score()
	if err != nil {
		return 0, &Error{Model: p.name, Msg: err.Error(), Err: err}
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, &Error{Model: p.name, Msg: fmt.Sprintf("non-finite model output %v", out)}
	}
	return out, nil
}

func (p pipeline) done(start time.Time) {
	metrics.RecordPrediction(p.name, metrics.OutcomeSuccess)
	metrics.RecordPredictionLatency(p.name, float64(time.Since(start).Microseconds())/1000)
}

// AthletePredictor scores athlete requests with a binary classifier.
type AthletePredictor struct {
	pipeline
	model Classifier
}

// NewAthletePredictor builds the athlete pipeline over b. It fails when the
// bundle's scaler columns cannot be produced from an athlete request or its
// model is not a classifier.
func NewAthletePredictor(b *artifact.Bundle, opts ...Option) (*AthletePredictor, error) {
	o := options{version: DefaultAthleteVersion}
	for _, opt := range opts {
		opt(&o)
	}
	p, err := newPipeline(ModelAthlete, b, AthleteSchema(), numericFields(AthleteRequest{}.record()), o,
		features.WithRename(athleteRename),
		features.WithCategorical(athleteCategorical...),
	)
	if err != nil {
		return nil, err
	}
	model := o.classifier
	if model == nil {
		if b.Model().Objective() != gbt.BinaryLogistic {
			return nil, fmt.Errorf("athlete bundle %s: %w", b.Source(), gbt.ErrNotClassifier)
		}
		model = b.Model()
	}
	return &AthletePredictor{pipeline: p, model: model}, nil
}

// Version returns the reported model version.
func (a *AthletePredictor) Version() string { return a.version }

// FeatureNames returns the aligned vector layout.
func (a *AthletePredictor) FeatureNames() []string { return a.aligner.FeatureNames() }

// Unreachable lists feature columns no athlete request can set.
func (a *AthletePredictor) Unreachable() []string {
	return a.aligner.Unreachable(numericFields(AthleteRequest{}.record()))
}

// Predict validates in, aligns it and returns the bucketed probability.
func (a *AthletePredictor) Predict(ctx context.Context, in map[string]any) (AthleteResponse, error) {
	start := time.Now()
	var req AthleteRequest
	x, err := a.prepare(ctx, in, &req)
	if err != nil {
		return AthleteResponse{}, err
	}

	p, err := a.invoke(ctx, func() (float64, error) {
		v, err := a.model.PredictProba(x)
		if err == nil && (v < 0 || v > 1) {
			return 0, fmt.Errorf("probability %v outside [0, 1]", v)
		}
		return v, err
	})
	if err != nil {
		return AthleteResponse{}, err
	}

	label, confidence := Bucket(p)
	resp := AthleteResponse{
		Probability:    roundTo(p, 4),
		PredictedLabel: label,
		Confidence:     confidence,
		ModelVersion:   a.version,
	}
	metrics.RecordAthleteProbability(resp.Probability)
	a.done(start)
	a.log.Debug(ctx, "athlete prediction",
		logger.Float64("probability", resp.Probability),
		logger.String("confidence", confidence),
	)
	return resp, nil
}

// CountryPredictor scores country requests with a regressor.
type CountryPredictor struct {
	pipeline
	model Regressor
}

// NewCountryPredictor builds the country pipeline over b.
func NewCountryPredictor(b *artifact.Bundle, opts ...Option) (*CountryPredictor, error) {
	o := options{version: DefaultCountryVersion}
	for _, opt := range opts {
		opt(&o)
	}
	p, err := newPipeline(ModelCountry, b, CountrySchema(), numericFields(CountryRequest{}.record()), o,
		features.WithCategorical(countryCategorical...),
	)
	if err != nil {
		return nil, err
	}
	model := o.regressor
	if model == nil {
		if b.Model().Objective() != gbt.SquaredError {
			return nil, fmt.Errorf("country bundle %s: %w", b.Source(), gbt.ErrNotRegressor)
		}
		model = b.Model()
	}
	return &CountryPredictor{pipeline: p, model: model}, nil
}

// Version returns the reported model version.
func (c *CountryPredictor) Version() string { return c.version }

// FeatureNames returns the aligned vector layout.
func (c *CountryPredictor) FeatureNames() []string { return c.aligner.FeatureNames() }

// Unreachable lists feature columns no country request can set.
func (c *CountryPredictor) Unreachable() []string {
	return c.aligner.Unreachable(numericFields(CountryRequest{}.record()))
}

// Predict validates in, aligns it and returns the medal total and range.
func (c *CountryPredictor) Predict(ctx context.Context, in map[string]any) (CountryResponse, error) {
	start := time.Now()
	var req CountryRequest
	x, err := c.prepare(ctx, in, &req)
	if err != nil {
		return CountryResponse{}, err
	}

	pred, err := c.invoke(ctx, func() (float64, error) { return c.model.Predict(x) })
	if err != nil {
		return CountryResponse{}, err
	}

	total, low, high := MedalRange(pred)
	resp := CountryResponse{
		PredictedTotalMedals: total,
		PredictedRangeLow:    low,
		PredictedRangeHigh:   high,
		ModelVersion:         c.version,
	}
	metrics.RecordCountryMedals(total)
	c.done(start)
	c.log.Debug(ctx, "country prediction",
		logger.Float64("raw", pred),
		logger.Int("low", low),
		logger.Int("high", high),
	)
	return resp, nil
}
