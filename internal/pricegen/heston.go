package pricegen

import (
	"math"
	"math/rand"
	"time"

	"stratsim/internal/simerr"
)

// HestonParams configures a Heston stochastic-volatility model with an
// independent compound-Poisson jump component added to the log price.
type HestonParams struct {
	Initial  float64       `yaml:"initial"`
	Mu       float64       `yaml:"mu"`
	V0       float64       `yaml:"v0"`    // initial variance
	Kappa    float64       `yaml:"kappa"` // mean-reversion speed
	Theta    float64       `yaml:"theta"` // long-run variance
	Xi       float64       `yaml:"xi"`    // volatility of variance
	Rho      float64       `yaml:"rho"`   // price/variance correlation
	Dt       float64       `yaml:"dt"`
	JumpRate float64       `yaml:"jump_rate"` // Poisson arrivals per unit time
	JumpMean float64       `yaml:"jump_mean"` // mean log jump size
	JumpStd  float64       `yaml:"jump_std"`  // log jump size std dev
	Start    time.Time     `yaml:"start"`
	Interval time.Duration `yaml:"interval"`
}

type Heston struct {
	params HestonParams
}

func NewHeston(p HestonParams) (*Heston, error) {
	switch {
	case p.V0 < 0:
		return nil, &simerr.ParameterError{Param: "v0", Reason: "must be non-negative"}
	case p.Kappa < 0:
		return nil, &simerr.ParameterError{Param: "kappa", Reason: "must be non-negative"}
	case p.Theta < 0:
		return nil, &simerr.ParameterError{Param: "theta", Reason: "must be non-negative"}
	case p.Xi < 0:
		return nil, &simerr.ParameterError{Param: "xi", Reason: "must be non-negative"}
	case p.Rho < -1 || p.Rho > 1:
		return nil, &simerr.ParameterError{Param: "rho", Reason: "must be in [-1, 1]"}
	case p.Dt < 0:
		return nil, &simerr.ParameterError{Param: "dt", Reason: "must be positive"}
	case p.JumpRate < 0:
		return nil, &simerr.ParameterError{Param: "jump_rate", Reason: "must be non-negative"}
	case p.JumpStd < 0:
		return nil, &simerr.ParameterError{Param: "jump_std", Reason: "must be non-negative"}
	case p.Initial < 0:
		return nil, &simerr.ParameterError{Param: "initial", Reason: "must be non-negative"}
	}
	if p.Initial == 0 {
		p.Initial = 100
	}
	if p.Dt == 0 {
		p.Dt = 1.0 / 252
	}
	p.Start, p.Interval = startAndInterval(p.Start, p.Interval)
	return &Heston{params: p}, nil
}

func (g *Heston) Name() string { return "heston-jump-diffusion" }

// Generate returns exactly steps points: the initial price followed by
// steps-1 simulated increments.
//
// The variance process uses a full-truncation floor: the updated variance is
// clamped at zero each step, so sqrt(v) is always defined. The clamp is a
// silent documented correction; only a non-finite price that survives it is
// surfaced as an error.
func (g *Heston) Generate(steps int, seed int64) ([]PricePoint, error) {
	if err := validateSteps(steps); err != nil {
		return nil, err
	}
	rng := newRNG(seed)
	p := g.params

	rhoComp := math.Sqrt(1 - p.Rho*p.Rho)
	sqrtDt := math.Sqrt(p.Dt)

	points := make([]PricePoint, 0, steps)
	points = append(points, PricePoint{Time: p.Start, Price: p.Initial})

	logPrice := math.Log(p.Initial)
	v := p.V0
	for i := 1; i < steps; i++ {
		z1 := rng.NormFloat64()
		z2 := rng.NormFloat64()
		zp := p.Rho*z1 + rhoComp*z2

		// Log-price increment driven by the current (floored) variance.
		logPrice += (p.Mu-0.5*v)*p.Dt + math.Sqrt(v)*sqrtDt*zp
		logPrice += g.jump(rng)

		// Variance update, floored at zero (full truncation).
		v = math.Max(0, v+p.Kappa*(p.Theta-v)*p.Dt+p.Xi*math.Sqrt(v*p.Dt)*z1)

		price := math.Exp(logPrice)
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

// jump draws the compound-Poisson log-price jump for one step.
func (g *Heston) jump(rng *rand.Rand) float64 {
	if g.params.JumpRate == 0 {
		return 0
	}
	n := poisson(rng, g.params.JumpRate*g.params.Dt)
	var total float64
	for j := 0; j < n; j++ {
		total += g.params.JumpMean + g.params.JumpStd*rng.NormFloat64()
	}
	return total
}

// poisson draws from Poisson(lambda) via Knuth's method. Step intensities
// here are small (rate*dt), so the multiplicative loop stays short.
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	prod := rng.Float64()
	for prod > limit {
		k++
		prod *= rng.Float64()
	}
	return k
}
