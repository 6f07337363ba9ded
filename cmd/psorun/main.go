// Command psorun drives a particle swarm against one of the bench package's
// objective functions and reports the run: progress logs while it works, a
// printed summary at the end, and optional CSV/sqlite/plot artifacts.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/swarmlab/pso"
	"github.com/swarmlab/pso/bench"
	"github.com/swarmlab/pso/report"
	"github.com/swarmlab/pso/swarm"
)

var (
	cfgPath  string
	funcName string

	particles int
	dims      int
	iters     int
	evals     int
	stall     int
	inertia   float64
	cognition float64
	social    float64
	tol       float64
	vmaxFrac  float64
	seed      int64
	workers   int

	dbPath   string
	csvPath  string
	plotDir  string
	progress int
	topk     int
)

var rootCmd = &cobra.Command{
	Use:   "psorun",
	Short: "Optimize a benchmark function with a particle swarm",
	Long: `psorun runs a global-best particle swarm against a named benchmark
function.  Parameters come from built-in defaults, then an optional YAML
config file, then flags, each layer overriding the previous one.  The
function's own box bounds define the search space.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&cfgPath, "config", "", "YAML file with run parameters")
	flags.StringVar(&funcName, "func", "michalewicz", "benchmark function (michalewicz, styblinski, rosenbrock, sphere take --dims; or an exact name like Ackley)")
	flags.IntVar(&particles, "particles", 0, "number of particles")
	flags.IntVar(&dims, "dims", 0, "problem dimensions for the parametric functions")
	flags.IntVar(&iters, "iters", 0, "iteration budget")
	flags.IntVar(&evals, "evals", 0, "objective evaluation budget (0 = unlimited)")
	flags.IntVar(&stall, "stall", 0, "stop after this many iterations without improvement (0 = off)")
	flags.Float64Var(&inertia, "inertia", 0, "inertia weight w")
	flags.Float64Var(&cognition, "cognition", 0, "cognitive coefficient c1")
	flags.Float64Var(&social, "social", 0, "social coefficient c2")
	flags.Float64Var(&tol, "tol", 0, "convergence tolerance around the known optimum")
	flags.Float64Var(&vmaxFrac, "vmax-frac", 0, "velocity clamp as a fraction of the bound range (0 = off)")
	flags.Int64Var(&seed, "seed", -1, "random seed (-1 = time-based, 0 = shared package default, >0 = fixed)")
	flags.IntVar(&workers, "workers", 0, "parallel objective evaluations (0 = serial)")
	flags.StringVar(&dbPath, "db", "", "sqlite file for per-iteration state (\":memory:\" works)")
	flags.StringVar(&csvPath, "csv", "", "CSV ledger to append the run summary to")
	flags.StringVar(&plotDir, "plots", "", "directory for convergence/diversity/delta charts")
	flags.IntVar(&progress, "progress", 10, "log progress every N iterations")
	flags.IntVar(&topk, "top", 5, "number of elite solutions to keep and print")
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := pso.DefaultConfig()
	if cfgPath != "" {
		raw, err := os.ReadFile(cfgPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	applyFlags(cmd, &cfg)

	fn, err := pickFunc(funcName, cfg.NumDims)
	if err != nil {
		return err
	}

	// the function owns the geometry and the convergence target
	low, up := fn.Bounds()
	cfg.NumDims = len(low)
	cfg.LowerBound, cfg.UpperBound = low[0], up[0]
	if optima := fn.Optima(); len(optima) > 0 {
		opt := optima[0].Val
		cfg.KnownMin = &opt
		if cfg.Tol == nil {
			t := 1e-3
			cfg.Tol = &t
		}
	} else {
		cfg.KnownMin, cfg.Tol = nil, nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	resolveSeed(&cfg)

	rng := cfg.NewRng()
	pop := swarm.NewPopulationRand(cfg.NumParticles, low, up, rng)

	arch := pso.NewArchive(topk)
	opts := []swarm.Option{
		swarm.LearnFactors(cfg.Cognition, cfg.Social),
		swarm.FixedInertia(cfg.Inertia),
		swarm.Rand(rng),
		swarm.Elites(arch),
	}
	if cfg.VmaxFrac > 0 {
		vs := make([]float64, len(low))
		for i := range vs {
			vs[i] = cfg.VmaxFrac * (up[i] - low[i])
		}
		opts = append(opts, swarm.Vmax(vs))
	}

	var db *sql.DB
	if dbPath != "" {
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		opts = append(opts, swarm.DB(db))
	}

	var ev pso.Evaler
	if workers > 0 {
		ev = pso.ParallelEvaler{NWorkers: workers}
	}

	it := swarm.NewIterator(ev, pop, low, up, opts...)
	solv := pso.NewSolver(it, pso.Func(fn.Eval), cfg)
	solv.MaxEval = evals

	slog.Info("starting run",
		slog.String("func", fn.Name()),
		slog.Int("particles", cfg.NumParticles),
		slog.Int("dims", cfg.NumDims),
		slog.Int("iters", cfg.MaxIter),
		slog.Int64("seed", cfg.Seed),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	prog := &report.Progress{Every: progress}
	start := time.Now()
loop:
	for solv.Next() {
		prog.Observe(solv.History()[solv.Niter()-1])
		select {
		case <-ctx.Done():
			slog.Warn("interrupted, reporting partial run")
			break loop
		default:
		}
	}
	elapsed := time.Since(start)
	if err := solv.Err(); err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}

	res := solv.Result()
	printSummary(fn, solv, arch, elapsed)

	sum := report.NewSummary(fn.Name(), cfg, res, elapsed)
	if csvPath != "" {
		runno, err := sum.AppendCSV(csvPath)
		if err != nil {
			return err
		}
		slog.Info("summary appended", slog.Int("run", runno), slog.String("path", csvPath))
	}
	if db != nil {
		if err := report.SaveDB(db, sum); err != nil {
			return err
		}
	}
	if plotDir != "" {
		if err := writePlots(fn.Name(), res, plotDir); err != nil {
			return err
		}
	}
	return nil
}

// applyFlags copies explicitly set flags over cfg, so flag values win over
// the config file and file values win over defaults.  The seed flag's -1
// default also stands in when no layer names a seed.
func applyFlags(cmd *cobra.Command, cfg *pso.Config) {
	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.NumParticles = particles
	}
	if flags.Changed("dims") {
		cfg.NumDims = dims
	}
	if flags.Changed("iters") {
		cfg.MaxIter = iters
	}
	if flags.Changed("stall") {
		cfg.MaxNoImprove = stall
	}
	if flags.Changed("inertia") {
		cfg.Inertia = inertia
	}
	if flags.Changed("cognition") {
		cfg.Cognition = cognition
	}
	if flags.Changed("social") {
		cfg.Social = social
	}
	if flags.Changed("tol") {
		t := tol
		cfg.Tol = &t
	}
	if flags.Changed("vmax-frac") {
		cfg.VmaxFrac = vmaxFrac
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
}

// resolveSeed turns a negative seed, the time-based sentinel, into a fresh
// clock seed.  Seeds from any layer pass through otherwise.
func resolveSeed(cfg *pso.Config) {
	if cfg.Seed < 0 {
		cfg.Seed = time.Now().UnixNano()
	}
}

func pickFunc(name string, dims int) (bench.Func, error) {
	if dims <= 0 {
		dims = 5
	}
	switch strings.ToLower(name) {
	case "michalewicz":
		return bench.Michalewicz{NDim: dims}, nil
	case "styblinski":
		return bench.Styblinski{NDim: dims}, nil
	case "rosenbrock":
		return bench.Rosenbrock{NDim: dims}, nil
	case "sphere":
		return bench.Sphere{NDim: dims}, nil
	}
	for _, fn := range bench.AllFuncs {
		if strings.EqualFold(fn.Name(), name) {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("unknown benchmark function %q", name)
}

func printSummary(fn bench.Func, solv *pso.Solver, arch *pso.Archive, elapsed time.Duration) {
	fmt.Printf("%v: %v after %v iterations, %v evals, %v\n",
		fn.Name(), solv.State(), solv.Niter(), solv.Neval(), elapsed.Round(time.Millisecond))
	if optima := fn.Optima(); len(optima) > 0 {
		fmt.Printf("    optimum: %+v\n", optima[0])
	}
	fmt.Printf("    best: %+v\n", solv.Best())

	if arch.Len() > 0 {
		fmt.Println("    top solutions:")
		for i, p := range arch.Best() {
			fmt.Printf("      %v. %v @ %v\n", i+1, p.Val, p.Pos())
		}
	}
}

func writePlots(name string, res pso.Result, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}
	if err := report.PlotConvergence(res.History, name+" convergence", filepath.Join(dir, "convergence.png")); err != nil {
		return err
	}
	if err := report.PlotDiversity(res.History, name+" swarm diversity", filepath.Join(dir, "diversity.png")); err != nil {
		return err
	}
	if err := report.PlotDeltas(res.History, name+" convergence analysis", filepath.Join(dir, "deltas.png")); err != nil {
		return err
	}
	slog.Info("plots written", slog.String("dir", dir))
	return nil
}
