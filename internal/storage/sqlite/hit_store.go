package sqlite

import (
	"database/sql"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/cluster3d/internal/cluster3d"
	"github.com/banshee-data/cluster3d/internal/config"
	"github.com/banshee-data/cluster3d/internal/hits"
)

// HitStore provides persistence for the 3D hits of a run.
type HitStore struct {
	db *sql.DB
}

// NewHitStore creates a new HitStore.
func NewHitStore(db *sql.DB) *HitStore {
	return &HitStore{db: db}
}

// InsertHits stores hs for runID in one transaction. The position in hs is
// kept as hit_index so ListByRun returns them in the same order.
func (s *HitStore) InsertHits(runID string, hs []cluster3d.Hit3D) error {
	return retryOnBusy(func() error {
		return inTx(s.db, func(tx *sql.Tx) error {
			return insertHits(tx, runID, hs)
		})
	})
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func inTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func insertHits(db execer, runID string, hs []cluster3d.Hit3D) error {
	stmt, err := db.Prepare(`
		INSERT INTO cluster_hits (
			run_id, hit_index, x, y, z, time, time_unc, time_rms, drift_time,
			charge, charge_unc, rms_x, rms_y, rms_z, unc_x, unc_y, unc_z,
			wire_x, wire_v, wire_u
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert hit: %w", err)
	}
	defer stmt.Close()

	for i, h := range hs {
		_, err := stmt.Exec(
			runID, i, h.Position.X, h.Position.Y, h.Position.Z,
			h.Time, h.TimeUncertainty, h.TimeRMS, h.DriftTime,
			h.Charge, h.ChargeUncertainty,
			h.RMS.X, h.RMS.Y, h.RMS.Z,
			h.Uncertainty.X, h.Uncertainty.Y, h.Uncertainty.Z,
			int(h.Constituents[0]), int(h.Constituents[1]), int(h.Constituents[2]),
		)
		if err != nil {
			return fmt.Errorf("insert hit %d: %w", i, err)
		}
	}
	return nil
}

// ListByRun returns the hits stored for runID in insertion order.
func (s *HitStore) ListByRun(runID string) ([]cluster3d.Hit3D, error) {
	rows, err := s.db.Query(`
		SELECT x, y, z, time, time_unc, time_rms, drift_time,
		       charge, charge_unc, rms_x, rms_y, rms_z, unc_x, unc_y, unc_z,
		       wire_x, wire_v, wire_u
		FROM cluster_hits
		WHERE run_id = ?
		ORDER BY hit_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query hits: %w", err)
	}
	defer rows.Close()

	var out []cluster3d.Hit3D
	for rows.Next() {
		var h cluster3d.Hit3D
		var pos, rms, unc r3.Vec
		var wx, wv, wu int
		err := rows.Scan(
			&pos.X, &pos.Y, &pos.Z,
			&h.Time, &h.TimeUncertainty, &h.TimeRMS, &h.DriftTime,
			&h.Charge, &h.ChargeUncertainty,
			&rms.X, &rms.Y, &rms.Z,
			&unc.X, &unc.Y, &unc.Z,
			&wx, &wv, &wu,
		)
		if err != nil {
			return nil, fmt.Errorf("scan hit row: %w", err)
		}
		h.Position, h.RMS, h.Uncertainty = pos, rms, unc
		h.Constituents = [3]hits.HitIndex{hits.HitIndex(wx), hits.HitIndex(wv), hits.HitIndex(wu)}
		out = append(out, h)
	}
	return out, rows.Err()
}

// SaveResult records a run and its final hits in one transaction, so a
// failure leaves neither behind. It returns the new run.
func SaveResult(db *sql.DB, eventID string, cfg *config.ClusterConfig, res *cluster3d.Result) (*Run, error) {
	run, err := NewRun(eventID, cfg, res)
	if err != nil {
		return nil, err
	}
	err = retryOnBusy(func() error {
		return inTx(db, func(tx *sql.Tx) error {
			if err := insertRun(tx, run); err != nil {
				return err
			}
			return insertHits(tx, run.RunID, res.Hits())
		})
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}
