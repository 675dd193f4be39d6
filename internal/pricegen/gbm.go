package pricegen

import (
	"math"
	"time"

	"stratsim/internal/simerr"
)

// GBMParams configures a geometric Brownian motion,
// price[t] = price[t-1] * exp((mu - sigma^2/2)*dt + sigma*sqrt(dt)*Z).
type GBMParams struct {
	Initial  float64       `yaml:"initial"`
	Mu       float64       `yaml:"mu"`
	Sigma    float64       `yaml:"sigma"`
	Dt       float64       `yaml:"dt"`
	Start    time.Time     `yaml:"start"`
	Interval time.Duration `yaml:"interval"`
}

type GBM struct {
	params GBMParams
}

func NewGBM(p GBMParams) (*GBM, error) {
	if p.Sigma < 0 {
		return nil, &simerr.ParameterError{Param: "sigma", Reason: "must be non-negative"}
	}
	if p.Dt < 0 {
		return nil, &simerr.ParameterError{Param: "dt", Reason: "must be positive"}
	}
	if p.Initial < 0 {
		return nil, &simerr.ParameterError{Param: "initial", Reason: "must be non-negative"}
	}
	if p.Initial == 0 {
		p.Initial = 100
	}
	if p.Dt == 0 {
		p.Dt = 1.0 / 252
	}
	p.Start, p.Interval = startAndInterval(p.Start, p.Interval)
	return &GBM{params: p}, nil
}

func (g *GBM) Name() string { return "gbm" }

// Generate returns steps+1 points, the configured initial price included.
func (g *GBM) Generate(steps int, seed int64) ([]PricePoint, error) {
	if err := validateSteps(steps); err != nil {
		return nil, err
	}
	rng := newRNG(seed)
	p := g.params

	drift := (p.Mu - 0.5*p.Sigma*p.Sigma) * p.Dt
	diffusion := p.Sigma * math.Sqrt(p.Dt)

	points := make([]PricePoint, 0, steps+1)
	points = append(points, PricePoint{Time: p.Start, Price: p.Initial})
	price := p.Initial
	for i := 1; i <= steps; i++ {
		price *= math.Exp(drift + diffusion*rng.NormFloat64())
		if err := checkFinite(price, i); err != nil {
			return nil, err
		}
		points = append(points, PricePoint{
			Time:  p.Start.Add(time.Duration(i) * p.Interval),
			Price: price,
		})
	}
	return points, nil
}
