// Package anysgd implements the optimizers used to train
// CTC models, along with gradient clipping and learning
// rate schedules.
//
// Optimizers form a closed set of variants; each variant
// carries its own hyper-parameters, and Apply dispatches
// on the concrete type.
package anysgd

import (
	"strings"

	"github.com/unixpickle/ctcnet"
)

// OptimizerNames lists the names accepted by
// ParseOptimizer.
var OptimizerNames = []string{"adagrad", "adadelta", "adam", "momentum", "rmsprop", "sgd"}

// An Optimizer is one of SGD, Momentum, Adam, Adagrad,
// Adadelta or RMSProp.
type Optimizer interface {
	// Name returns the name that ParseOptimizer maps to
	// the optimizer.
	Name() string

	optimizer()
}

// SGD is plain gradient descent.
type SGD struct{}

func (SGD) Name() string { return "sgd" }
func (SGD) optimizer()   {}

// ParseOptimizer creates an optimizer with default
// hyper-parameters from its name.
// Names are case-insensitive.
func ParseOptimizer(name string) (Optimizer, error) {
	switch strings.ToLower(name) {
	case "adagrad":
		return Adagrad{InitialAccumulator: adagradDefaultInitialAccumulator}, nil
	case "adadelta":
		return Adadelta{Rho: adadeltaDefaultRho, Epsilon: adadeltaDefaultEpsilon}, nil
	case "adam":
		return Adam{
			Beta1:   adamDefaultBeta1,
			Beta2:   adamDefaultBeta2,
			Epsilon: adamDefaultEpsilon,
		}, nil
	case "momentum":
		return Momentum{Momentum: DefaultMomentum}, nil
	case "rmsprop":
		return RMSProp{Decay: rmspropDefaultDecay, Epsilon: rmspropDefaultEpsilon}, nil
	case "sgd":
		return SGD{}, nil
	}
	return nil, &ctcnet.ConfigError{Key: "optimizer", Value: name, Valid: OptimizerNames}
}
