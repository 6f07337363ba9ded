package report

import (
	"database/sql"
	"fmt"
)

const (
	// TblRuns is the name of the sql table holding one row per finished run.
	TblRuns = "runs"
	// TblRunHistory is the name of the sql table holding the per-iteration
	// best/mean/diversity trace for each run.
	TblRunHistory = "runhistory"
)

// SaveDB persists the summary and its iteration history into db, creating
// the tables as needed.  These run-level aggregates complement the swarm
// package's per-particle tables; both can share one database file.
func SaveDB(db *sql.DB, s Summary) error {
	stmt := "CREATE TABLE IF NOT EXISTS " + TblRuns +
		" (id TEXT, func TEXT, particles INTEGER, dims INTEGER" +
		", inertia REAL, cognition REAL, social REAL" +
		", state TEXT, best REAL, niter INTEGER, neval INTEGER" +
		", elapsed_s REAL, alloc_mb REAL);"
	if _, err := db.Exec(stmt); err != nil {
		return fmt.Errorf("report: create table %v: %w", TblRuns, err)
	}

	stmt = "CREATE TABLE IF NOT EXISTS " + TblRunHistory +
		" (run TEXT, iter INTEGER, best REAL, meanbest REAL, diversity REAL);"
	if _, err := db.Exec(stmt); err != nil {
		return fmt.Errorf("report: create table %v: %w", TblRunHistory, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("report: save run %v: %w", s.RunID, err)
	}

	_, err = tx.Exec(
		"INSERT INTO "+TblRuns+" VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?);",
		s.RunID, s.Func,
		s.Config.NumParticles, s.Config.NumDims,
		s.Config.Inertia, s.Config.Cognition, s.Config.Social,
		s.Result.State.String(), s.Result.Best.Val,
		s.Result.Niter, s.Result.Neval,
		s.Elapsed.Seconds(), s.AllocMB,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("report: save run %v: %w", s.RunID, err)
	}

	for _, snap := range s.Result.History {
		_, err = tx.Exec(
			"INSERT INTO "+TblRunHistory+" VALUES (?,?,?,?,?);",
			s.RunID, snap.Iter, snap.Best, snap.MeanBest, snap.Diversity,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("report: save run %v: %w", s.RunID, err)
		}
	}

	return tx.Commit()
}
