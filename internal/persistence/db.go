// Package persistence provides SQLite-based game storage: the game model
// snapshot, the AI registry records, the event log and save metadata.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/frontier/internal/ai"
	"github.com/talgya/frontier/internal/engine"
	"github.com/talgya/frontier/internal/entropy"
	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/rules"
)

// DB wraps a SQLite connection for game persistence.
type DB struct {
	conn *sqlx.DB
}

// SaveInfo describes one stored save.
type SaveInfo struct {
	ID        string    `db:"id" json:"id"`
	Turn      int       `db:"turn" json:"turn"`
	Seed      int64     `db:"seed" json:"seed"`
	Draws     int       `db:"draws" json:"draws"`
	AIObjects int       `db:"ai_objects" json:"ai_objects"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		id TEXT PRIMARY KEY,
		turn INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		draws INTEGER NOT NULL,
		ai_objects INTEGER NOT NULL,
		stats_json TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		save_id TEXT PRIMARY KEY REFERENCES saves(id),
		game_lz4 BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ai_objects (
		save_id TEXT NOT NULL REFERENCES saves(id),
		position INTEGER NOT NULL,
		tag TEXT NOT NULL,
		object_id TEXT NOT NULL,
		record_json TEXT NOT NULL,
		PRIMARY KEY (save_id, position)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn);
	CREATE INDEX IF NOT EXISTS idx_saves_created ON saves(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveGame stores a complete save of the simulation and returns its id.
// Events of turns finished since the previous save are appended to the
// event log.
func (db *DB) SaveGame(sim *engine.Simulation) (string, error) {
	var (
		gameJSON, statsJSON []byte
		records             []ai.Record
		events              []engine.Event
		turn, draws         int
		seed                int64
		err                 error
	)
	sim.View(func() {
		turn = sim.Game.Turn
		seed, draws = sim.Rand.Seed(), sim.Rand.Draws()
		records = sim.AI.Save()
		events = append(events, sim.Events...)
		if gameJSON, err = json.Marshal(sim.Game); err != nil {
			return
		}
		statsJSON, err = json.Marshal(sim.Stats)
	})
	if err != nil {
		return "", fmt.Errorf("encode game: %w", err)
	}

	from, err := db.eventsThrough()
	if err != nil {
		return "", fmt.Errorf("event watermark: %w", err)
	}

	id := uuid.NewString()
	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO saves (id, turn, seed, draws, ai_objects, stats_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, turn, seed, draws, len(records), string(statsJSON), time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("insert save: %w", err)
	}
	packed, err := compress(gameJSON)
	if err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO snapshots (save_id, game_lz4) VALUES (?, ?)", id, packed); err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.Preparex("INSERT INTO ai_objects (save_id, position, tag, object_id, record_json) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", r.ID, err)
		}
		if _, err := stmt.Exec(id, i, r.Tag, r.ID, string(data)); err != nil {
			return "", fmt.Errorf("insert ai object %s: %w", r.ID, err)
		}
	}

	n := 0
	for _, e := range events {
		if e.Turn < from || e.Turn >= turn {
			continue
		}
		if _, err := tx.Exec(
			"INSERT INTO events (turn, description, category) VALUES (?, ?, ?)",
			e.Turn, e.Description, e.Category,
		); err != nil {
			return "", fmt.Errorf("insert event: %w", err)
		}
		n++
	}

	for key, value := range map[string]string{
		"latest_save":    id,
		"events_through": fmt.Sprintf("%d", turn),
	} {
		if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return "", fmt.Errorf("save meta: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("game saved", "save", id, "turn", turn, "ai_objects", len(records), "events", n)
	return id, nil
}

// LoadGame restores a save into a new simulation. An empty id loads the
// latest save. The AI registry is integrity-checked with fixing enabled
// and synced against the game; the random source is reseeded from the
// game seed and the turn. The event log is cut back to the loaded turn.
func (db *DB) LoadGame(id string, rs *rules.Ruleset) (*engine.Simulation, error) {
	if id == "" {
		latest, err := db.GetMeta("latest_save")
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no saved game")
		}
		if err != nil {
			return nil, fmt.Errorf("latest save: %w", err)
		}
		id = latest
	}

	var save struct {
		SaveInfo
		StatsJSON string `db:"stats_json"`
	}
	if err := db.conn.Get(&save, "SELECT id, turn, seed, draws, ai_objects, stats_json, created_at FROM saves WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("save %s: %w", id, err)
	}
	var packed []byte
	if err := db.conn.Get(&packed, "SELECT game_lz4 FROM snapshots WHERE save_id = ?", id); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	gameJSON, err := decompress(packed)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}

	g := &model.Game{}
	if err := json.Unmarshal(gameJSON, g); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	g.Rules = rs
	g.Reindex()

	var rows []string
	if err := db.conn.Select(&rows, "SELECT record_json FROM ai_objects WHERE save_id = ? ORDER BY position", id); err != nil {
		return nil, fmt.Errorf("ai objects: %w", err)
	}
	records := make([]ai.Record, len(rows))
	for i, data := range rows {
		if err := json.Unmarshal([]byte(data), &records[i]); err != nil {
			return nil, fmt.Errorf("decode ai object %d: %w", i, err)
		}
	}

	sim, err := engine.NewSimulation(g, entropy.NewSource(save.Seed+int64(save.Turn)))
	if err != nil {
		return nil, err
	}
	if err := sim.AI.Load(records); err != nil {
		return nil, fmt.Errorf("load ai: %w", err)
	}
	if sim.AI.CheckIntegrity(true) < 0 {
		return nil, fmt.Errorf("ai registry of save %s is broken", id)
	}
	sim.AI.Sync()
	if err := json.Unmarshal([]byte(save.StatsJSON), &sim.Stats); err != nil {
		slog.Warn("discarding saved stats", "save", id, "error", err)
	}

	if _, err := db.conn.Exec("DELETE FROM events WHERE turn >= ?", save.Turn); err != nil {
		return nil, fmt.Errorf("trim events: %w", err)
	}
	if err := db.SaveMeta("events_through", fmt.Sprintf("%d", save.Turn)); err != nil {
		return nil, fmt.Errorf("save meta: %w", err)
	}
	events, err := db.RecentEvents(1000)
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	sim.Events = events

	slog.Info("game loaded", "save", id, "turn", save.Turn, "ai_objects", len(records), "events", len(events))
	return sim, nil
}

// ListSaves returns the stored saves, newest first.
func (db *DB) ListSaves(limit int) ([]SaveInfo, error) {
	var saves []SaveInfo
	err := db.conn.Select(&saves,
		"SELECT id, turn, seed, draws, ai_objects, created_at FROM saves ORDER BY created_at DESC, turn DESC LIMIT ?",
		limit,
	)
	return saves, err
}

// Prune deletes all but the newest keep saves.
func (db *DB) Prune(keep int) (int, error) {
	var old []string
	if err := db.conn.Select(&old, "SELECT id FROM saves ORDER BY created_at DESC, turn DESC LIMIT -1 OFFSET ?", keep); err != nil {
		return 0, err
	}
	if len(old) == 0 {
		return 0, nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	for _, table := range []string{"ai_objects", "snapshots"} {
		q, args, err := sqlx.In("DELETE FROM "+table+" WHERE save_id IN (?)", old)
		if err != nil {
			return 0, err
		}
		if _, err := tx.Exec(tx.Rebind(q), args...); err != nil {
			return 0, fmt.Errorf("prune %s: %w", table, err)
		}
	}
	q, args, err := sqlx.In("DELETE FROM saves WHERE id IN (?)", old)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(tx.Rebind(q), args...); err != nil {
		return 0, fmt.Errorf("prune saves: %w", err)
	}
	return len(old), tx.Commit()
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// eventsThrough is the first turn whose events are not yet stored.
func (db *DB) eventsThrough() (int, error) {
	var turn int
	err := db.conn.Get(&turn, "SELECT CAST(value AS INTEGER) FROM world_meta WHERE key = 'events_through'")
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return turn, err
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT turn, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
