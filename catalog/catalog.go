// Package catalog indexes names recognised by a template in SQLite, keyed
// by the time range each name covers, so a query range can be answered
// without listing the source again.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/isotime"
)

// Entry is one recorded name.
type Entry struct {
	Name     string            `json:"name"`
	Template string            `json:"template"`
	Range    isotime.TimeRange `json:"-"`
	Extras   map[string]string `json:"extras,omitempty"`
	ScanID   string            `json:"scan_id,omitempty"`
}

// Scan is one pass of a scanner over a source.
type Scan struct {
	ID         string     `json:"id"`
	Template   string     `json:"template"`
	Source     string     `json:"source"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Matched    int        `json:"matched"`
	Skipped    int        `json:"skipped"`
}

// Store reads and writes the catalog tables created by db.Migrate.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewStore wraps an open database. A nil logger disables logging.
func NewStore(db *sql.DB, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{db: db, logger: logger, now: time.Now}
}

// BeginScan records the start of a scan and returns its id.
func (s *Store) BeginScan(ctx context.Context, template, source string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (id, template, source, started_at) VALUES (?, ?, ?, ?)`,
		id, template, source, s.now().UTC())
	if err != nil {
		return "", errors.Wrapf(err, "begin scan of %s", source)
	}
	s.logger.Debugw("Scan started", "scan_id", id, "template", template, "source", source)
	return id, nil
}

// FinishScan stamps a scan with its finish time and counts.
func (s *Store) FinishScan(ctx context.Context, id string, matched, skipped int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scans SET finished_at = ?, matched = ?, skipped = ? WHERE id = ?`,
		s.now().UTC(), matched, skipped, id)
	if err != nil {
		return errors.Wrapf(err, "finish scan %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "finish scan %s", id)
	}
	if n == 0 {
		return errors.NewNotFoundError("scan %s", id)
	}
	return nil
}

// GetScan loads one scan by id.
func (s *Store) GetScan(ctx context.Context, id string) (Scan, error) {
	var (
		sc       Scan
		finished sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, template, source, started_at, finished_at, matched, skipped FROM scans WHERE id = ?`, id,
	).Scan(&sc.ID, &sc.Template, &sc.Source, &sc.StartedAt, &finished, &sc.Matched, &sc.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return Scan{}, errors.NewNotFoundError("scan %s", id)
	}
	if err != nil {
		return Scan{}, errors.Wrapf(err, "get scan %s", id)
	}
	if finished.Valid {
		sc.FinishedAt = &finished.Time
	}
	return sc, nil
}

// Put inserts an entry or replaces the one with the same name and template.
func (s *Store) Put(ctx context.Context, e Entry) error {
	extras := e.Extras
	if extras == nil {
		extras = map[string]string{}
	}
	extrasJSON, err := json.Marshal(extras)
	if err != nil {
		return errors.Wrapf(err, "encode extras of %s", e.Name)
	}
	var scanID sql.NullString
	if e.ScanID != "" {
		scanID = sql.NullString{String: e.ScanID, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (name, template, start_ms, stop_ms, start, stop, extras, scan_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, template) DO UPDATE SET
			start_ms = excluded.start_ms,
			stop_ms = excluded.stop_ms,
			start = excluded.start,
			stop = excluded.stop,
			extras = excluded.extras,
			scan_id = excluded.scan_id`,
		e.Name, e.Template,
		e.Range.Start.EpochMillis(), e.Range.Stop.EpochMillis(),
		isotime.Recompose(e.Range.Start), isotime.Recompose(e.Range.Stop),
		string(extrasJSON), scanID)
	if err != nil {
		return errors.Wrapf(err, "put %s", e.Name)
	}
	return nil
}

// Query returns the entries of template whose ranges intersect r, ordered
// by start time then name.
func (s *Store) Query(ctx context.Context, template string, r isotime.TimeRange) ([]Entry, error) {
	// millisecond columns narrow the scan; the text columns decide
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, template, start, stop, extras, scan_id
		FROM entries
		WHERE template = ? AND start_ms <= ? AND stop_ms >= ?
		ORDER BY start_ms, name`,
		template, r.Stop.EpochMillis(), r.Start.EpochMillis())
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", template)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if e.Range.Intersects(r) {
			out = append(out, e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "query %s", template)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := isotime.Compare(out[i].Range.Start, out[j].Range.Start); c != 0 {
			return c < 0
		}
		return out[i].Name < out[j].Name
	})
	s.logger.Debugw("Catalog query", "template", template, "range", r.String(), "count", len(out))
	return out, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e           Entry
		start, stop string
		extras      string
		scanID      sql.NullString
	)
	if err := rows.Scan(&e.Name, &e.Template, &start, &stop, &extras, &scanID); err != nil {
		return Entry{}, errors.Wrap(err, "scan entry row")
	}
	var err error
	if e.Range.Start, err = isotime.Decompose(start); err != nil {
		return Entry{}, errors.Wrapf(err, "entry %s start", e.Name)
	}
	if e.Range.Stop, err = isotime.Decompose(stop); err != nil {
		return Entry{}, errors.Wrapf(err, "entry %s stop", e.Name)
	}
	if err := json.Unmarshal([]byte(extras), &e.Extras); err != nil {
		return Entry{}, errors.Wrapf(err, "entry %s extras", e.Name)
	}
	if len(e.Extras) == 0 {
		e.Extras = nil
	}
	e.ScanID = scanID.String
	return e, nil
}

// Count returns how many entries template has.
func (s *Store) Count(ctx context.Context, template string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE template = ?`, template).Scan(&n)
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", template)
	}
	return n, nil
}

// Delete removes one entry.
func (s *Store) Delete(ctx context.Context, template, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE template = ? AND name = ?`, template, name)
	if err != nil {
		return errors.Wrapf(err, "delete %s", name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError("entry %s", name)
	}
	return nil
}
