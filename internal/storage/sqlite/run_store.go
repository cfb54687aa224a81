package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/cluster3d/internal/cluster3d"
	"github.com/banshee-data/cluster3d/internal/config"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("run not found")

// Run is one Process call over one event.
type Run struct {
	RunID      string          `json:"run_id"`
	EventID    string          `json:"event_id"`
	TimeZero   float64         `json:"time_zero"`
	ParamsJSON json.RawMessage `json:"params_json,omitempty"`
	WireHits   int             `json:"wire_hits"`
	Candidates int             `json:"candidates"`
	Hits3D     int             `json:"hits_3d"`
	EDeposit   float64         `json:"edeposit"`
	Energy     float64         `json:"energy"`
	CreatedAt  int64           `json:"created_at"`
}

// NewRun summarises a clusterer result. The tuning config is stored with
// every default filled in, so params_json can be loaded back as a config
// file to reproduce the run.
func NewRun(eventID string, cfg *config.ClusterConfig, res *cluster3d.Result) (*Run, error) {
	params, err := json.Marshal(cfg.Resolved())
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	r := &Run{
		EventID:    eventID,
		TimeZero:   res.TimeZero,
		ParamsJSON: params,
		Candidates: res.Candidates,
		Hits3D:     len(res.Hits()),
	}
	if res.Arena != nil {
		r.WireHits = res.Arena.Len()
	}
	if res.Final != nil {
		r.EDeposit = res.Final.EDeposit
		r.Energy = res.Final.Energy
	}
	return r, nil
}

// RunStore provides persistence for clusterer runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Prepare(query string) (*sql.Stmt, error)
}

// Insert persists a run. If RunID is empty, a UUID is generated.
func (s *RunStore) Insert(run *Run) error {
	return retryOnBusy(func() error {
		return insertRun(s.db, run)
	})
}

func insertRun(db execer, run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var paramsStr interface{}
	if len(run.ParamsJSON) > 0 {
		paramsStr = string(run.ParamsJSON)
	}

	_, err := db.Exec(`
		INSERT INTO cluster_runs (
			run_id, event_id, time_zero, params_json, wire_hits,
			candidates, hits_3d, edeposit, energy, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.EventID, run.TimeZero, paramsStr, run.WireHits,
		run.Candidates, run.Hits3D, run.EDeposit, run.Energy, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const runColumns = `run_id, event_id, time_zero, params_json, wire_hits,
	candidates, hits_3d, edeposit, energy, created_at`

// Get returns the run with the given ID, or ErrRunNotFound.
func (s *RunStore) Get(runID string) (*Run, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM cluster_runs WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return scanRun(rows)
}

// ListByEvent returns the runs of an event, newest first.
func (s *RunStore) ListByEvent(eventID string) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT `+runColumns+`
		FROM cluster_runs
		WHERE event_id = ?
		ORDER BY created_at DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Delete removes a run and, through the foreign key, its hits.
func (s *RunStore) Delete(runID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM cluster_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil
	})
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var r Run
	var paramsStr sql.NullString
	err := rows.Scan(
		&r.RunID, &r.EventID, &r.TimeZero, &paramsStr, &r.WireHits,
		&r.Candidates, &r.Hits3D, &r.EDeposit, &r.Energy, &r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run row: %w", err)
	}
	if paramsStr.Valid {
		r.ParamsJSON = json.RawMessage(paramsStr.String)
	}
	return &r, nil
}
