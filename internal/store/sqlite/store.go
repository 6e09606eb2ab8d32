// Package sqlite provides the SQLite-backed RoomStore adapter.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasenlucas/undercover-bluff/internal/game"
	"github.com/lucasenlucas/undercover-bluff/internal/store/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists rooms and rosters in SQLite. Conditional updates keyed by
// the version column provide the compare-and-swap contract.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func applyMigrations(sqlDB *sql.DB) error {
	if _, err := sqlDB.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		var applied int
		err := sqlDB.QueryRow(
			"SELECT COUNT(1) FROM schema_migrations WHERE name = ?", entry.Name(),
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if applied > 0 {
			continue
		}
		content, err := migrations.FS.ReadFile(entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", entry.Name(), err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", entry.Name(), err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)",
			entry.Name(), time.Now().UTC().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT,
		sqlite3lib.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func (s *Store) CreateRoom(ctx context.Context, room *game.Room) error {
	imposters, err := json.Marshal(room.Imposters)
	if err != nil {
		return fmt.Errorf("encode imposters: %w", err)
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO games (code, host_id, phase, round, topic, item, imposters, version, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.Code, room.HostID, string(room.Phase), room.Round,
		room.Topic, room.Item, string(imposters), room.Version,
		room.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return game.ErrDuplicateCode
		}
		return fmt.Errorf("insert game: %w", err)
	}
	for _, p := range room.Players {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO players (id, game_code, name, is_connected, join_order)
VALUES (?, ?, ?, ?, ?)`,
			p.ID, room.Code, p.Name, boolToInt(p.Connected), p.JoinOrder,
		); err != nil {
			return fmt.Errorf("insert player: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetRoom(ctx context.Context, code string) (*game.Room, error) {
	room, err := s.getGame(ctx, s.sqlDB, code)
	if err != nil {
		return nil, err
	}
	players, err := s.listPlayers(ctx, code)
	if err != nil {
		return nil, err
	}
	room.Players = players
	return room, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getGame(ctx context.Context, q querier, code string) (*game.Room, error) {
	var (
		room      game.Room
		phase     string
		imposters string
		createdAt int64
	)
	err := q.QueryRowContext(ctx, `
SELECT code, host_id, phase, round, topic, item, imposters, version, created_at
FROM games WHERE code = ?`, code).Scan(
		&room.Code, &room.HostID, &phase, &room.Round,
		&room.Topic, &room.Item, &imposters, &room.Version, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select game: %w", err)
	}
	room.Phase = game.Phase(phase)
	room.CreatedAt = time.UnixMilli(createdAt).UTC()
	if err := json.Unmarshal([]byte(imposters), &room.Imposters); err != nil {
		return nil, fmt.Errorf("decode imposters: %w", err)
	}
	return &room, nil
}

func (s *Store) listPlayers(ctx context.Context, code string) ([]game.Player, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, is_connected, join_order
FROM players WHERE game_code = ? ORDER BY join_order`, code)
	if err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	defer rows.Close()

	var players []game.Player
	for rows.Next() {
		var (
			p         game.Player
			connected int
		)
		if err := rows.Scan(&p.ID, &p.Name, &connected, &p.JoinOrder); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		p.Connected = connected != 0
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Store) CompareAndSwap(ctx context.Context, room *game.Room) (*game.Room, error) {
	imposters, err := json.Marshal(room.Imposters)
	if err != nil {
		return nil, fmt.Errorf("encode imposters: %w", err)
	}
	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE games
SET phase = ?, round = ?, topic = ?, item = ?, imposters = ?, version = version + 1
WHERE code = ? AND version = ?`,
		string(room.Phase), room.Round, room.Topic, room.Item, string(imposters),
		room.Code, room.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Either the room is gone or another writer moved the version.
		if _, err := s.getGame(ctx, s.sqlDB, room.Code); err != nil {
			return nil, err
		}
		return nil, game.ErrVersionConflict
	}
	return s.GetRoom(ctx, room.Code)
}

func (s *Store) AddPlayerIfAbsent(ctx context.Context, code string, p game.Player) (game.Player, bool, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return game.Player{}, false, fmt.Errorf("begin join: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.getGame(ctx, tx, code); err != nil {
		return game.Player{}, false, err
	}

	existing, err := findPlayerByName(ctx, tx, code, p.Name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return game.Player{}, false, err
	}

	var order int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM players WHERE game_code = ?", code,
	).Scan(&order); err != nil {
		return game.Player{}, false, fmt.Errorf("count players: %w", err)
	}
	p.JoinOrder = order

	_, err = tx.ExecContext(ctx, `
INSERT INTO players (id, game_code, name, is_connected, join_order)
VALUES (?, ?, ?, ?, ?)`,
		p.ID, code, p.Name, boolToInt(p.Connected), p.JoinOrder,
	)
	if err != nil {
		if isConstraintViolation(err) {
			// Lost a same-name join race; the earlier insert wins.
			existing, ferr := findPlayerByName(ctx, tx, code, p.Name)
			if ferr != nil {
				return game.Player{}, false, fmt.Errorf("reread player: %w", ferr)
			}
			return existing, false, tx.Commit()
		}
		return game.Player{}, false, fmt.Errorf("insert player: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return game.Player{}, false, fmt.Errorf("commit join: %w", err)
	}
	return p, true, nil
}

func findPlayerByName(ctx context.Context, q querier, code, name string) (game.Player, error) {
	var (
		p         game.Player
		connected int
	)
	err := q.QueryRowContext(ctx, `
SELECT id, name, is_connected, join_order
FROM players WHERE game_code = ? AND name = ?`, code, name).Scan(
		&p.ID, &p.Name, &connected, &p.JoinOrder,
	)
	if err != nil {
		return game.Player{}, err
	}
	p.Connected = connected != 0
	return p, nil
}

func (s *Store) SetConnected(ctx context.Context, code, playerID string, connected bool) error {
	res, err := s.sqlDB.ExecContext(ctx,
		"UPDATE players SET is_connected = ? WHERE game_code = ? AND id = ?",
		boolToInt(connected), code, playerID,
	)
	if err != nil {
		return fmt.Errorf("update presence: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return game.ErrRoomNotFound
	}
	return nil
}

func (s *Store) DeleteRoom(ctx context.Context, code string) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM players WHERE game_code = ?", code); err != nil {
		return fmt.Errorf("delete players: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM games WHERE code = ?", code)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return game.ErrRoomNotFound
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
