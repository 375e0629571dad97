package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/medalcast/internal/domain/prediction"
)

// ErrInvariant is returned when a response is well-formed but out of range.
var ErrInvariant = errors.New("response out of range")

// ReferenceAthlete is the example athlete request used by smoke runs.
func ReferenceAthlete() map[string]any {
	return map[string]any{
		"age": 24, "height": 180, "weight": 75, "bmi": 23.1,
		"years_since_first": 4, "is_team_sport": 0, "is_first_appearance": 0,
		"noc_athletes_this_year": 500, "prev_medals_noc": 100,
		"sex": "M", "season": "Summer", "sport": "Swimming",
		"age_group": "24-28", "region": "United States",
	}
}

// ReferenceCountry is the example country request used by smoke runs.
func ReferenceCountry() map[string]any {
	return map[string]any{
		"year": 2028, "season": "Summer", "region": "United States",
		"num_athletes": 420, "prev_medals_1": 45, "prev_medals_2": 38,
		"prev_athletes": 411, "avg_age": 26.8, "avg_bmi": 22.5,
		"is_host": 0, "medal_change_prev": 5,
	}
}

// SmokeConfig controls a smoke run.
type SmokeConfig struct {
	// Workers is the number of requests in flight at once.
	Workers int
	// Rounds is how many times each reference request is sent.
	Rounds int
}

// Report summarises a smoke run.
type Report struct {
	Requests  int64
	Succeeded int64
	Failed    int64
	Duration  time.Duration
	Slowest   time.Duration
	Errors    []string
}

// Smoke checks health, then sends both reference requests cfg.Rounds times
// with at most cfg.Workers in flight, checking every response against the
// documented output ranges. A failed request is counted and reported, not
// returned; the error is non-nil only when the server is unhealthy or ctx ends.
func (c *Client) Smoke(ctx context.Context, cfg SmokeConfig) (*Report, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = 1
	}
	if err := c.Health(ctx); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	var (
		report  Report
		slowest atomic.Int64
		mu      sync.Mutex
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Rounds; i++ {
		for _, call := range []func(context.Context) error{c.smokeAthlete, c.smokeCountry} {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				t := time.Now()
				err := call(gctx)
				elapsed := int64(time.Since(t))
				for {
					cur := slowest.Load()
					if elapsed <= cur || slowest.CompareAndSwap(cur, elapsed) {
						break
					}
				}
				atomic.AddInt64(&report.Requests, 1)
				if err != nil {
					atomic.AddInt64(&report.Failed, 1)
					mu.Lock()
					report.Errors = append(report.Errors, err.Error())
					mu.Unlock()
					return nil
				}
				atomic.AddInt64(&report.Succeeded, 1)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	report.Slowest = time.Duration(slowest.Load())
	slices.Sort(report.Errors)
	report.Errors = slices.Compact(report.Errors)
	return &report, nil
}

func (c *Client) smokeAthlete(ctx context.Context) error {
	resp, err := c.PredictAthlete(ctx, ReferenceAthlete())
	if err != nil {
		return fmt.Errorf("athlete: %w", err)
	}
	if resp.Probability < 0 || resp.Probability > 1 {
		return fmt.Errorf("athlete: %w: probability %v", ErrInvariant, resp.Probability)
	}
	if !slices.Contains(prediction.Labels(), resp.PredictedLabel) {
		return fmt.Errorf("athlete: %w: label %q", ErrInvariant, resp.PredictedLabel)
	}
	return nil
}

func (c *Client) smokeCountry(ctx context.Context) error {
	resp, err := c.PredictCountry(ctx, ReferenceCountry())
	if err != nil {
		return fmt.Errorf("country: %w", err)
	}
	if resp.PredictedTotalMedals < 0 {
		return fmt.Errorf("country: %w: total %v", ErrInvariant, resp.PredictedTotalMedals)
	}
	if resp.PredictedRangeLow < 0 || resp.PredictedRangeHigh-resp.PredictedRangeLow < 5 {
		return fmt.Errorf("country: %w: range [%d, %d]", ErrInvariant, resp.PredictedRangeLow, resp.PredictedRangeHigh)
	}
	return nil
}

// Print writes a human-readable summary of r to w.
func (r *Report) Print(w io.Writer) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "requests:  %d\n", r.Requests)
	p.Fprintf(w, "succeeded: %d\n", r.Succeeded)
	p.Fprintf(w, "failed:    %d\n", r.Failed)
	p.Fprintf(w, "duration:  %v\n", r.Duration.Round(time.Millisecond))
	p.Fprintf(w, "slowest:   %v\n", r.Slowest.Round(time.Microsecond))
	if r.Duration > 0 {
		p.Fprintf(w, "rate:      %.1f req/s\n", float64(r.Requests)/r.Duration.Seconds())
	}
	for _, e := range r.Errors {
		p.Fprintf(w, "error:     %s\n", e)
	}
}
