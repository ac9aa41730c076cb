package factor

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidNumFactors = errors.New("number of factors must be positive")
	ErrInvalidIterations = errors.New("iterations must be positive")
	ErrInvalidLearnRate  = errors.New("learn rate must be positive")
	ErrNegativeReg       = errors.New("regularization must not be negative")
	ErrNegativeStdDev    = errors.New("init standard deviation must not be negative")
	ErrInvalidEvalSize   = errors.New("eval samples must be positive")
)

// Options configures BPR matrix factorization training
type Options struct {
	NumFactors int `json:"num_factors"`
	Iterations int `json:"iterations"`

	LearnRate   float64 `json:"learn_rate"`
	RegUser     float64 `json:"reg_user"`
	RegPositive float64 `json:"reg_positive"`
	RegNegative float64 `json:"reg_negative"`
	RegBias     float64 `json:"reg_bias"`

	InitMean   float64 `json:"init_mean"`
	InitStdDev float64 `json:"init_std_dev"`

	// EvalSamples is the number of fixed (user, positive, negative) triples used
	// to score each iteration
	EvalSamples int    `json:"eval_samples"`
	Seed        uint64 `json:"seed"`
}

func NewDefaultOptions() *Options {
	return &Options{
		NumFactors:  10,
		Iterations:  30,
		LearnRate:   0.05,
		RegUser:     0.0025,
		RegPositive: 0.0025,
		RegNegative: 0.00025,
		RegBias:     0.0,
		InitMean:    0.0,
		InitStdDev:  0.1,
		EvalSamples: 1000,
		Seed:        1,
	}
}

func (o *Options) Validate() error {
	if o.NumFactors <= 0 {
		return fmt.Errorf("%d, %w", o.NumFactors, ErrInvalidNumFactors)
	}
	if o.Iterations <= 0 {
		return fmt.Errorf("%d, %w", o.Iterations, ErrInvalidIterations)
	}
	if o.LearnRate <= 0 {
		return fmt.Errorf("%f, %w", o.LearnRate, ErrInvalidLearnRate)
	}
	for name, reg := range map[string]float64{
		"user":     o.RegUser,
		"positive": o.RegPositive,
		"negative": o.RegNegative,
		"bias":     o.RegBias,
	} {
		if reg < 0 {
			return fmt.Errorf("%s regularization %f, %w", name, reg, ErrNegativeReg)
		}
	}
	if o.InitStdDev < 0 {
		return fmt.Errorf("%f, %w", o.InitStdDev, ErrNegativeStdDev)
	}
	if o.EvalSamples <= 0 {
		return fmt.Errorf("%d, %w", o.EvalSamples, ErrInvalidEvalSize)
	}
	return nil
}
