package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/swarmlab/pso"
)

// Summary is the record of one finished run, ready for the CSV ledger or the
// results database.
type Summary struct {
	RunID   string
	Func    string
	Config  pso.Config
	Result  pso.Result
	Elapsed time.Duration
	// AllocMB is the process heap in megabytes when the summary was taken,
	// a rough memory figure for comparing configurations.
	AllocMB float64
}

// NewSummary captures a finished run under a fresh run id.  The memory
// figure is sampled at call time, so build the summary right after the run.
func NewSummary(funcname string, cfg pso.Config, res pso.Result, elapsed time.Duration) Summary {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Summary{
		RunID:   uuid.NewString(),
		Func:    funcname,
		Config:  cfg,
		Result:  res,
		Elapsed: elapsed,
		AllocMB: float64(ms.HeapAlloc) / 1e6,
	}
}

// Final reports the mean personal best and diversity at the end of the run,
// or NaNs when the run recorded no history.
func (s Summary) Final() (meanBest, diversity float64) {
	if n := len(s.Result.History); n > 0 {
		last := s.Result.History[n-1]
		return last.MeanBest, last.Diversity
	}
	return math.NaN(), math.NaN()
}

var csvHeader = []string{
	"run", "run_id", "func",
	"particles", "dims", "inertia", "cognition", "social",
	"state", "best", "iters", "nevals",
	"mean_best", "diversity", "elapsed_s", "alloc_mb",
}

// AppendCSV appends the summary as one row of the ledger at path, creating
// the file with a header row when needed.  The run column auto-increments:
// one past the highest run number already present.  It returns the assigned
// run number.
func (s Summary) AppendCSV(path string) (run int, err error) {
	run = 1
	if f, openErr := os.Open(path); openErr == nil {
		r := csv.NewReader(f)
		// resumed ledgers can mix row widths with ours
		r.FieldsPerRecord = -1
		rows, readErr := r.ReadAll()
		f.Close()
		if readErr != nil {
			return 0, fmt.Errorf("report: read ledger %v: %w", path, readErr)
		}
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			// non-numeric first fields (the header) don't count
			if n, convErr := strconv.Atoi(row[0]); convErr == nil && n >= run {
				run = n + 1
			}
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("report: open ledger %v: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("report: stat ledger %v: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return 0, fmt.Errorf("report: write ledger %v: %w", path, err)
		}
	}

	meanBest, diversity := s.Final()
	rec := []string{
		strconv.Itoa(run),
		s.RunID,
		s.Func,
		strconv.Itoa(s.Config.NumParticles),
		strconv.Itoa(s.Config.NumDims),
		ftoa(s.Config.Inertia),
		ftoa(s.Config.Cognition),
		ftoa(s.Config.Social),
		s.Result.State.String(),
		ftoa(s.Result.Best.Val),
		strconv.Itoa(s.Result.Niter),
		strconv.Itoa(s.Result.Neval),
		ftoa(meanBest),
		ftoa(diversity),
		ftoa(s.Elapsed.Seconds()),
		ftoa(s.AllocMB),
	}
	if err := w.Write(rec); err != nil {
		return 0, fmt.Errorf("report: write ledger %v: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("report: write ledger %v: %w", path, err)
	}
	return run, nil
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
