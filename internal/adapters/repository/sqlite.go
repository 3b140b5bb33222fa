package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/pkg/logger"
)

// SQLiteStore persists published snapshots so a restart can serve the last
// leaderboard before the first refresh completes.
type SQLiteStore struct {
	db     *sql.DB
	keep   int
	logger logger.Logger
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := NewSQLiteStore(db, opts...)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an open database. Call Migrate before use.
func NewSQLiteStore(db *sql.DB, opts ...SQLiteOption) *SQLiteStore {
	s := &SQLiteStore{db: db, keep: 1}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("sqlite")
	}
	return s
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save writes snap and prunes snapshots beyond the retention count.
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	cols, err := json.Marshal(snap.PitchColumns)
	if err != nil {
		return fmt.Errorf("encode pitch columns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO snapshots (run_id, generated_at, pitch_columns) VALUES (?, ?, ?)",
		snap.RunID, snap.GeneratedAt.UTC(), string(cols),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}

	rowStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO leaderboard_rows (snapshot_id, position, pitcher_id, player_name, team, ip, whip, pitching_plus)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer rowStmt.Close()
	cellStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO pitch_cells (snapshot_id, pitcher_id, pitch_name, pitching_plus) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer cellStmt.Close()

	for i, e := range snap.Entries {
		if _, err := rowStmt.ExecContext(ctx, id, i, e.PitcherID, e.Name,
			nullString(e.Team), nullFloat(e.IP), nullFloat(e.WHIP), e.PitchingPlus,
		); err != nil {
			return fmt.Errorf("insert row %s: %w", e.PitcherID, err)
		}
		for name, v := range e.ByPitch {
			if _, err := cellStmt.ExecContext(ctx, id, e.PitcherID, name, v); err != nil {
				return fmt.Errorf("insert cell %s/%s: %w", e.PitcherID, name, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY id DESC LIMIT ?
		)`, s.keep); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	for _, table := range []string{"leaderboard_rows", "pitch_cells"} {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE snapshot_id NOT IN (SELECT id FROM snapshots)"); err != nil {
			return fmt.Errorf("prune %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Latest loads the most recent snapshot. Returns ErrNoSnapshot if none was saved.
func (s *SQLiteStore) Latest(ctx context.Context) (*Snapshot, error) {
	var (
		id   int64
		snap Snapshot
		cols string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, run_id, generated_at, pitch_columns FROM snapshots ORDER BY id DESC LIMIT 1",
	).Scan(&id, &snap.RunID, &snap.GeneratedAt, &cols)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(cols), &snap.PitchColumns); err != nil {
		return nil, fmt.Errorf("decode pitch columns: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pitcher_id, player_name, team, ip, whip, pitching_plus
		FROM leaderboard_rows WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			r        model.LeaderboardRow
			team     sql.NullString
			ip, whip sql.NullFloat64
		)
		if err := rows.Scan(&r.PitcherID, &r.Name, &team, &ip, &whip, &r.PitchingPlus); err != nil {
			return nil, err
		}
		if team.Valid {
			r.Team = model.Some(team.String)
		}
		if ip.Valid {
			r.IP = model.Some(ip.Float64)
		}
		if whip.Valid {
			r.WHIP = model.Some(whip.Float64)
		}
		r.ByPitch = make(map[string]int)
		snap.Entries = append(snap.Entries, Entry{LeaderboardRow: r})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	snap.index()

	cells, err := s.db.QueryContext(ctx,
		"SELECT pitcher_id, pitch_name, pitching_plus FROM pitch_cells WHERE snapshot_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}
	defer cells.Close()
	for cells.Next() {
		var (
			pid, name string
			v         int
		)
		if err := cells.Scan(&pid, &name, &v); err != nil {
			return nil, err
		}
		if i, ok := snap.byID[pid]; ok {
			snap.Entries[i].ByPitch[name] = v
		}
	}
	if err := cells.Err(); err != nil {
		return nil, err
	}
	assignRanksWithTies(snap.Entries)
	return &snap, nil
}

func nullString(o model.Optional[string]) sql.NullString {
	v, ok := o.Get()
	return sql.NullString{String: v, Valid: ok}
}

func nullFloat(o model.Optional[float64]) sql.NullFloat64 {
	v, ok := o.Get()
	return sql.NullFloat64{Float64: v, Valid: ok}
}
