package broadphase

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultMargin pads every leaf box on each side, in world units.
	DefaultMargin = 1.0
	// DefaultPrediction scales the displacement added to a reinserted leaf.
	DefaultPrediction = 2.0
)

// Options configures a BroadPhase.
type Options struct {
	Margin     float64
	Prediction float64
	PairTest   PairTestFunc
	Logger     *zap.SugaredLogger
}

type Option func(*Options)

func WithMargin(margin float64) Option {
	return func(o *Options) { o.Margin = margin }
}

func WithPrediction(prediction float64) Option {
	return func(o *Options) { o.Prediction = prediction }
}

// WithPairTest replaces DefaultPairTest. A nil test accepts every pair.
func WithPairTest(f PairTestFunc) Option {
	return func(o *Options) {
		if f == nil {
			f = func(a, b interface{}) bool { return true }
		}
		o.PairTest = f
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *Options) { o.Logger = logger }
}

func DefaultOptions() Options {
	return Options{
		Margin:     DefaultMargin,
		Prediction: DefaultPrediction,
		PairTest:   DefaultPairTest,
		Logger:     zap.NewNop().Sugar(),
	}
}

// Validate ensures the options describe a usable broad-phase.
func (o Options) Validate() error {
	if math.IsNaN(o.Margin) || math.IsInf(o.Margin, 0) || o.Margin < 0 {
		return errors.Errorf("margin must be a finite non-negative number, got %v", o.Margin)
	}
	if math.IsNaN(o.Prediction) || math.IsInf(o.Prediction, 0) || o.Prediction < 0 {
		return errors.Errorf("prediction must be a finite non-negative number, got %v", o.Prediction)
	}
	if o.PairTest == nil {
		return errors.New("pair test is required")
	}
	if o.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}
