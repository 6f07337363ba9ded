// Package report turns swarm runs into human artifacts: periodic progress
// logs, an appendable CSV ledger of run summaries, sqlite persistence, and
// convergence/diversity charts.  It only consumes engine state; the engine
// packages never import it.
package report

import (
	"log/slog"

	"github.com/swarmlab/pso"
)

// Progress logs a line for every Every-th iteration snapshot.  The zero
// value logs every 10th iteration to slog.Default().
type Progress struct {
	Logger *slog.Logger
	Every  int
}

// Observe reports one iteration snapshot, logging it when the iteration
// number lands on the configured stride.  Feed it from the solver loop:
//
//	for solv.Next() {
//		prog.Observe(solv.History()[solv.Niter()-1])
//	}
func (p *Progress) Observe(snap pso.Snapshot) {
	every := p.Every
	if every <= 0 {
		every = 10
	}
	if snap.Iter%every != 0 {
		return
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("iteration",
		slog.Int("iter", snap.Iter),
		slog.Float64("best", snap.Best),
		slog.Float64("diversity", snap.Diversity),
	)
}
