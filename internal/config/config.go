// Package config loads the run configuration from flags and an optional
// YAML file.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"stratsim/internal/pricegen"
)

/*
YAML config example:

generator: gbm
strategies: ["2MA", "2MACD"]
steps: 1170
seed: 42
candle_period: 5
position_size: 10
execution: close
initial_capital: 100000
risk_free_rate: 0.02
periods_per_year: 252
report_path: report.csv
gbm:
  initial: 100
  mu: 0.05
  sigma: 0.2
two_ma:
  fast: 10
  slow: 20
two_macd:
  fast: 12
  slow: 26
  signal: 9
*/

// MAParams configure the 2MA strategy.
type MAParams struct {
	Fast int `yaml:"fast"`
	Slow int `yaml:"slow"`
}

// MACDParams configure the 2MACD strategy.
type MACDParams struct {
	Fast   int `yaml:"fast"`
	Slow   int `yaml:"slow"`
	Signal int `yaml:"signal"`
}

type Config struct {
	Generator      string   `yaml:"generator"`  // random-walk | gbm | heston
	Strategies     []string `yaml:"strategies"` // 2MA | 2MACD
	Steps          int      `yaml:"steps"`
	Seed           int64    `yaml:"seed"`
	CandlePeriod   int      `yaml:"candle_period"`
	PositionSize   float64  `yaml:"position_size"`
	Execution      string   `yaml:"execution"` // close | next-open
	InitialCapital float64  `yaml:"initial_capital"`
	RiskFreeRate   float64  `yaml:"risk_free_rate"`
	PeriodsPerYear int      `yaml:"periods_per_year"`
	ReportPath     string   `yaml:"report_path"` // optional CSV metric export

	RandomWalk pricegen.RandomWalkParams `yaml:"random_walk"`
	GBM        pricegen.GBMParams        `yaml:"gbm"`
	Heston     pricegen.HestonParams     `yaml:"heston"`

	TwoMA   MAParams   `yaml:"two_ma"`
	TwoMACD MACDParams `yaml:"two_macd"`
}

// Load parses flags and, when -config names a YAML file, lets the file win.
func Load() (Config, error) {
	generator := flag.String("generator", "random-walk", "Price model: random-walk, gbm or heston")
	strategies := flag.String("strategies", "2MA", "Comma-separated strategies: 2MA, 2MACD")
	steps := flag.Int("steps", 1170, "Number of generated price steps")
	seed := flag.Int64("seed", 42, "Random seed (same seed, same path)")
	candlePeriod := flag.Int("candle-period", 1, "Price points per candle")
	positionSize := flag.Float64("position-size", 1, "Position size per trade")
	execution := flag.String("execution", "close", "Execution price: close or next-open")
	initialCapital := flag.Float64("initial-capital", 100000, "Starting capital for the equity curve")
	riskFreeRate := flag.Float64("risk-free-rate", 0, "Annual risk-free rate, e.g. 0.02")
	reportPath := flag.String("report", "", "Optional CSV file for the flat metric report")
	configFile := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
		cfg = cfg.withDefaults()
		return cfg, cfg.Validate()
	}

	cfg := Config{
		Generator:      *generator,
		Strategies:     strings.Split(*strategies, ","),
		Steps:          *steps,
		Seed:           *seed,
		CandlePeriod:   *candlePeriod,
		PositionSize:   *positionSize,
		Execution:      *execution,
		InitialCapital: *initialCapital,
		RiskFreeRate:   *riskFreeRate,
		ReportPath:     *reportPath,
	}
	cfg = cfg.withDefaults()
	return cfg, cfg.Validate()
}

func (c Config) withDefaults() Config {
	if c.CandlePeriod == 0 {
		c.CandlePeriod = 1
	}
	if c.PositionSize == 0 {
		c.PositionSize = 1
	}
	if c.Execution == "" {
		c.Execution = "close"
	}
	if c.InitialCapital == 0 {
		c.InitialCapital = 100000
	}
	if c.PeriodsPerYear == 0 {
		c.PeriodsPerYear = 252
	}
	if c.TwoMA == (MAParams{}) {
		c.TwoMA = MAParams{Fast: 10, Slow: 20}
	}
	if c.TwoMACD == (MACDParams{}) {
		c.TwoMACD = MACDParams{Fast: 12, Slow: 26, Signal: 9}
	}
	return c
}

// Validate rejects combinations the pipeline would only discover mid-run.
// Numeric model parameters are validated by the generator constructors.
func (c Config) Validate() error {
	switch c.Generator {
	case "random-walk", "gbm", "heston":
	default:
		return fmt.Errorf("unknown generator %q", c.Generator)
	}
	for _, s := range c.Strategies {
		switch strings.TrimSpace(s) {
		case "2MA", "2MACD":
		default:
			return fmt.Errorf("unknown strategy %q", s)
		}
	}
	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy required")
	}
	if c.Steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", c.Steps)
	}
	switch c.Execution {
	case "close", "next-open", "":
	default:
		return fmt.Errorf("unknown execution mode %q", c.Execution)
	}
	return nil
}
