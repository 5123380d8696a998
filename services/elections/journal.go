package elections

import (
	"context"
	"database/sql"
	"time"

	"github.com/dan-ringwald/balotilo/services/elections/db"

	_ "modernc.org/sqlite"
)

// Journal records per-election outcomes in a local sqlite file so a batch
// can be audited after the fact.
type Journal struct {
	db    *sql.DB
	runID int64
}

func OpenJournal(path string) (*Journal, error) {
	sqlite, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := sqlite.Exec(db.Schema); err != nil {
		sqlite.Close()
		return nil, err
	}

	res, err := sqlite.Exec(
		"INSERT INTO runs (started_at) VALUES (?)",
		time.Now().Unix(),
	)
	if err != nil {
		sqlite.Close()
		return nil, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		sqlite.Close()
		return nil, err
	}

	return &Journal{db: sqlite, runID: runID}, nil
}

func (j *Journal) Record(ctx context.Context, outcome Outcome) error {
	detail := ""
	if outcome.Err != nil {
		detail = outcome.Err.Error()
	}
	_, err := j.db.ExecContext(
		ctx,
		`INSERT INTO outcomes (run_id, directory, title, election_id, status, detail, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.runID,
		outcome.Directory,
		outcome.Title,
		string(outcome.ElectionID),
		string(outcome.Status),
		detail,
		time.Now().Unix(),
	)
	return err
}

func (j *Journal) Close() error {
	return j.db.Close()
}
