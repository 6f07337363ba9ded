package swarm

import (
	"database/sql"
	"fmt"
)

const (
	// TblParticles is the name of the sql database table that contains
	// positions and values for particles for each iteration.
	TblParticles = "swarmparticles"
	// TblParticlesBest is the name of the sql database table that contains
	// each particle's personal best position at each iteration.
	TblParticlesBest = "swarmparticlesbest"
	// TblBest is the name of the sql database table that contains
	// the best position for the entire swarm at each iteration.
	TblBest = "swarmbest"
)

// DB directs the iterator to record swarm state into db after initialization
// and after every iteration.  Iteration zero is the initial population.
func DB(db *sql.DB) Option {
	return func(it *Iterator) {
		it.Db = db
	}
}

func (it *Iterator) initdb() error {
	s := "CREATE TABLE IF NOT EXISTS " + TblParticles + " (particle INTEGER, iter INTEGER, val REAL"
	s += it.xdbsql("define")
	s += ");"
	if _, err := it.Db.Exec(s); err != nil {
		return fmt.Errorf("swarm: create table %v: %w", TblParticles, err)
	}

	s = "CREATE TABLE IF NOT EXISTS " + TblParticlesBest + " (particle INTEGER, iter INTEGER, best REAL"
	s += it.xdbsql("define")
	s += ");"
	if _, err := it.Db.Exec(s); err != nil {
		return fmt.Errorf("swarm: create table %v: %w", TblParticlesBest, err)
	}

	s = "CREATE TABLE IF NOT EXISTS " + TblBest + " (iter INTEGER, val REAL"
	s += it.xdbsql("define")
	s += ");"
	if _, err := it.Db.Exec(s); err != nil {
		return fmt.Errorf("swarm: create table %v: %w", TblBest, err)
	}
	return nil
}

func (it *Iterator) xdbsql(op string) string {
	s := ""
	for i := range it.Pop[0].Pos() {
		if op == "?" {
			s += ",?"
		} else if op == "define" {
			s += fmt.Sprintf(",x%v REAL", i)
		} else if op == "x" {
			s += fmt.Sprintf(",x%v", i)
		} else {
			panic("invalid db op " + op)
		}
	}
	return s
}

func pos2iface(pos []float64) []interface{} {
	iface := []interface{}{}
	for _, v := range pos {
		iface = append(iface, v)
	}
	return iface
}

func (it *Iterator) updateDb() error {
	if it.Db == nil {
		return nil
	}
	if !it.dbdone {
		if err := it.initdb(); err != nil {
			return err
		}
		it.dbdone = true
	}

	tx, err := it.Db.Begin()
	if err != nil {
		return fmt.Errorf("swarm: log iteration %v: %w", it.count, err)
	}

	s0 := "INSERT INTO " + TblParticles + " (particle,iter,val" + it.xdbsql("x") + ") VALUES (?,?,?" + it.xdbsql("?") + ");"
	s1 := "INSERT INTO " + TblParticlesBest + " (particle,iter,best" + it.xdbsql("x") + ") VALUES (?,?,?" + it.xdbsql("?") + ");"
	for _, p := range it.Pop {
		args := []interface{}{p.Id, it.count, p.Val}
		args = append(args, pos2iface(p.Pos())...)
		if _, err := tx.Exec(s0, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("swarm: log iteration %v: %w", it.count, err)
		}

		args = []interface{}{p.Id, it.count, p.Best.Val}
		args = append(args, pos2iface(p.Best.Pos())...)
		if _, err := tx.Exec(s1, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("swarm: log iteration %v: %w", it.count, err)
		}
	}

	s2 := "INSERT INTO " + TblBest + " (iter,val" + it.xdbsql("x") + ") VALUES (?,?" + it.xdbsql("?") + ");"
	glob := it.best
	args := []interface{}{it.count, glob.Val}
	args = append(args, pos2iface(glob.Pos())...)
	if _, err := tx.Exec(s2, args...); err != nil {
		tx.Rollback()
		return fmt.Errorf("swarm: log iteration %v: %w", it.count, err)
	}

	return tx.Commit()
}
