package pricegen

import (
	"time"

	"stratsim/internal/simerr"
)

// RandomWalkParams configures an arithmetic random walk,
// price[t] = price[t-1] + drift + volatility*Z.
type RandomWalkParams struct {
	Initial    float64       `yaml:"initial"`
	Drift      float64       `yaml:"drift"`
	Volatility float64       `yaml:"volatility"`
	Start      time.Time     `yaml:"start"`
	Interval   time.Duration `yaml:"interval"`
}

type RandomWalk struct {
	params RandomWalkParams
}

// NewRandomWalk validates params eagerly; nothing is simulated on error.
func NewRandomWalk(p RandomWalkParams) (*RandomWalk, error) {
	if p.Volatility < 0 {
		return nil, &simerr.ParameterError{Param: "volatility", Reason: "must be non-negative"}
	}
	if p.Initial == 0 {
		p.Initial = 100
	}
	p.Start, p.Interval = startAndInterval(p.Start, p.Interval)
	return &RandomWalk{params: p}, nil
}

func (g *RandomWalk) Name() string { return "random-walk" }

// Generate returns steps+1 points, the configured initial price included.
func (g *RandomWalk) Generate(steps int, seed int64) ([]PricePoint, error) {
	if err := validateSteps(steps); err != nil {
		return nil, err
	}
	rng := newRNG(seed)
	p := g.params

	points := make([]PricePoint, 0, steps+1)
	points = append(points, PricePoint{Time: p.Start, Price: p.Initial})
	price := p.Initial
	for i := 1; i <= steps; i++ {
		price += p.Drift + p.Volatility*rng.NormFloat64()
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
