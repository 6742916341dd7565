package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema defines the SQLite database schema for match records and
// player identities. Uses modernc.org/sqlite which is a pure Go SQLite
// driver with no CGO dependencies.
//
// Names are globally unique across players and aliases: players.name
// and aliases.alt_name each carry a UNIQUE constraint, and the resolver
// checks both tables before creating either kind of entry.
const schema = `
CREATE TABLE IF NOT EXISTS players (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT UNIQUE NOT NULL,
	is_me      INTEGER NOT NULL DEFAULT 0,
	created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS aliases (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	player_id  INTEGER NOT NULL,
	alt_name   TEXT UNIQUE NOT NULL,
	created_at TEXT DEFAULT (datetime('now')),
	FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS games (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	replay_file      TEXT UNIQUE NOT NULL,
	played_at        TEXT,
	duration_seconds REAL,
	duration_text    TEXT,
	map_name         TEXT,
	map_tileset      TEXT,
	game_type        TEXT,
	winner_name      TEXT,
	loser_name       TEXT,
	winner_race      TEXT,
	loser_race       TEXT,
	my_result        TEXT,
	parsed_at        TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS game_players (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id   INTEGER NOT NULL,
	player_id INTEGER NOT NULL,
	slot      INTEGER NOT NULL,
	race      TEXT,
	is_winner INTEGER NOT NULL DEFAULT 0,
	apm       REAL,
	FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE,
	FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS chat_messages (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id   INTEGER NOT NULL,
	player_id INTEGER NOT NULL,
	message   TEXT,
	game_time TEXT,
	frame     INTEGER,
	FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE,
	FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
);

-- Indexes for common query patterns
CREATE INDEX IF NOT EXISTS idx_aliases_player ON aliases(player_id);
CREATE INDEX IF NOT EXISTS idx_games_played_at ON games(played_at);
CREATE INDEX IF NOT EXISTS idx_games_winner ON games(winner_name);
CREATE INDEX IF NOT EXISTS idx_games_loser ON games(loser_name);
CREATE INDEX IF NOT EXISTS idx_game_players_game ON game_players(game_id);
CREATE INDEX IF NOT EXISTS idx_game_players_player ON game_players(player_id);
CREATE INDEX IF NOT EXISTS idx_chat_messages_game ON chat_messages(game_id);
`

// InitSchema initializes the database schema.
// It creates all tables and indexes if they don't already exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
