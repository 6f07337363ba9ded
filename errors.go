package pso

import "errors"

// Configuration errors reported by Config.Validate and the constructors that
// consume a Config.  They are sentinel values so callers can test for a
// specific failure with errors.Is.
var (
	ErrBadBounds    = errors.New("pso: lower bound must be strictly below upper bound in every dimension")
	ErrBadSwarmSize = errors.New("pso: swarm size must be positive")
	ErrBadDims      = errors.New("pso: number of dimensions must be positive")
	ErrBadIter      = errors.New("pso: iteration budget must be positive")
	ErrBadTol       = errors.New("pso: convergence tolerance must not be negative")
	ErrTargetPair   = errors.New("pso: target objective value and tolerance must be set together")
)
