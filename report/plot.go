package report

import (
	"fmt"
	"math"

	"github.com/swarmlab/pso"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Chart dimensions match the reference figures.
const (
	plotW = 10 * vg.Inch
	plotH = 6 * vg.Inch
)

// PlotConvergence charts the best and mean personal-best value per iteration
// and saves the result to path (format by extension, e.g. .png).
func PlotConvergence(hist []pso.Snapshot, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Objective value"
	p.Add(plotter.NewGrid())

	bestPts := make(plotter.XYs, len(hist))
	meanPts := make(plotter.XYs, len(hist))
	for i, snap := range hist {
		bestPts[i].X = float64(snap.Iter)
		bestPts[i].Y = snap.Best
		meanPts[i].X = float64(snap.Iter)
		meanPts[i].Y = snap.MeanBest
	}

	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return fmt.Errorf("report: convergence plot: %w", err)
	}
	meanLine, err := plotter.NewLine(meanPts)
	if err != nil {
		return fmt.Errorf("report: convergence plot: %w", err)
	}
	meanLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(bestLine, meanLine)
	p.Legend.Add("best", bestLine)
	p.Legend.Add("mean personal best", meanLine)
	p.Legend.Top = true

	if err := p.Save(plotW, plotH, path); err != nil {
		return fmt.Errorf("report: convergence plot: %w", err)
	}
	return nil
}

// PlotDiversity charts the swarm's mean pairwise particle distance per
// iteration, the collapse trace of the run.
func PlotDiversity(hist []pso.Snapshot, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Mean particle distance"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(hist))
	for i, snap := range hist {
		pts[i].X = float64(snap.Iter)
		pts[i].Y = snap.Diversity
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("report: diversity plot: %w", err)
	}
	p.Add(line)

	if err := p.Save(plotW, plotH, path); err != nil {
		return fmt.Errorf("report: diversity plot: %w", err)
	}
	return nil
}

// PlotDeltas charts |Δbest| between consecutive iterations, which makes
// stalls and breakthrough moments visible.  Histories shorter than two
// iterations have no deltas and produce no file.
func PlotDeltas(hist []pso.Snapshot, title, path string) error {
	if len(hist) < 2 {
		return nil
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Change in best value"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(hist)-1)
	for i := 1; i < len(hist); i++ {
		pts[i-1].X = float64(hist[i].Iter)
		pts[i-1].Y = math.Abs(hist[i].Best - hist[i-1].Best)
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("report: delta plot: %w", err)
	}
	p.Add(line)

	if err := p.Save(plotW, plotH, path); err != nil {
		return fmt.Errorf("report: delta plot: %w", err)
	}
	return nil
}
