package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"starrecord/internal/match"
)

// Writer provides methods to persist assembled match records.
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new database writer.
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// SaveRecord stores one match record: the games row, one game_players
// row per participant, and the chat transcript, in a single
// transaction. The record itself is never mutated; retroactive
// my_result corrections happen via RecomputeMyResults.
func (w *Writer) SaveRecord(ctx context.Context, rec match.Record) (int64, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var winnerName, loserName, winnerRace, loserRace *string
	if rec.Winner != nil {
		winnerName = &rec.Winner.Name
	}
	if rec.Loser != nil {
		loserName = &rec.Loser.Name
	}
	for _, p := range rec.Participants {
		if p.Identity == nil {
			continue
		}
		race := p.Race.String()
		if rec.Winner != nil && p.Identity.ID == rec.Winner.ID {
			winnerRace = &race
		}
		if rec.Loser != nil && p.Identity.ID == rec.Loser.ID {
			loserRace = &race
		}
	}

	var playedAt *string
	if !rec.PlayedAt.IsZero() {
		s := rec.PlayedAt.UTC().Format(time.DateTime)
		playedAt = &s
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO games
			(replay_file, played_at, duration_seconds, duration_text,
			 map_name, map_tileset, game_type,
			 winner_name, loser_name, winner_race, loser_race, my_result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ReplayKey, playedAt, rec.DurationSeconds, rec.DurationText,
		rec.MapName, rec.MapTileset, rec.GameType,
		winnerName, loserName, winnerRace, loserRace, string(rec.MyResult),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert game: %w", err)
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new game id: %w", err)
	}

	identityBySlot := make(map[int]int64, len(rec.Participants))
	for _, p := range rec.Participants {
		if p.Identity == nil {
			continue
		}
		identityBySlot[p.Slot] = p.Identity.ID
		isWinner := 0
		if p.IsWinner {
			isWinner = 1
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO game_players (game_id, player_id, slot, race, is_winner, apm)
			VALUES (?, ?, ?, ?, ?, ?)`,
			gameID, p.Identity.ID, p.Slot, p.Race.String(), isWinner, p.APM,
		); err != nil {
			return 0, fmt.Errorf("failed to insert game player: %w", err)
		}
	}

	for _, msg := range rec.Chat {
		playerID, ok := identityBySlot[msg.Slot]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chat_messages (game_id, player_id, message, game_time, frame)
			VALUES (?, ?, ?, ?, ?)`,
			gameID, playerID, msg.Text, match.FormatDuration(msg.Offset), msg.Frame,
		); err != nil {
			return 0, fmt.Errorf("failed to insert chat message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit game: %w", err)
	}
	return gameID, nil
}

// RecomputeMyResults re-derives my_result for every stored game against
// the current set of self names. Called after a late set-name or
// inferred self registration so old records catch up.
func (w *Writer) RecomputeMyResults(ctx context.Context, selfNames []string) error {
	if len(selfNames) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(selfNames)), ", ")
	query := fmt.Sprintf(`
		UPDATE games SET my_result = CASE
			WHEN winner_name IN (%s) THEN 'win'
			WHEN loser_name IN (%s) THEN 'loss'
			ELSE 'unknown'
		END`, placeholders, placeholders)

	args := make([]any, 0, len(selfNames)*2)
	for i := 0; i < 2; i++ {
		for _, name := range selfNames {
			args = append(args, name)
		}
	}

	if _, err := w.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to recompute my_result: %w", err)
	}
	return nil
}
