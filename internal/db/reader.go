package db

import (
	"context"
	"database/sql"
	"fmt"

	"starrecord/internal/identity"
)

// Reader provides query methods over stored matches.
type Reader struct {
	db *sql.DB
}

// NewReader creates a new database reader.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// GameSummary is one stored game seen from the local user's side.
type GameSummary struct {
	PlayedAt     string
	MapName      string
	Result       string // "win", "loss" or "unknown" vs this opponent
	DurationText string
}

// HeadToHead is the record against one opponent.
type HeadToHead struct {
	Opponent string
	Wins     int
	Losses   int
	Games    []GameSummary
}

// OpponentSummary is one line of the all-opponents report.
type OpponentSummary struct {
	Opponent   string
	Wins       int
	Losses     int
	LastPlayed string
}

// GameExists reports whether a replay key has already been imported.
func (r *Reader) GameExists(ctx context.Context, replayKey string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM games WHERE replay_file = ?", replayKey).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check game existence: %w", err)
	}
	return true, nil
}

// NameCounts returns how often each identity appeared across all stored
// games, most frequent first. This feeds self-inference.
func (r *Reader) NameCounts(ctx context.Context) ([]identity.FrequencyCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.is_me, COUNT(*) AS appearances
		FROM game_players gp
		JOIN players p ON gp.player_id = p.id
		GROUP BY p.id
		ORDER BY appearances DESC, p.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query name counts: %w", err)
	}
	defer rows.Close()

	var counts []identity.FrequencyCount
	for rows.Next() {
		var ident identity.Identity
		var isMe, count int
		if err := rows.Scan(&ident.ID, &ident.Name, &isMe, &count); err != nil {
			return nil, fmt.Errorf("failed to scan name count: %w", err)
		}
		ident.IsSelf = isMe != 0
		counts = append(counts, identity.FrequencyCount{Identity: &ident, Count: count})
	}
	return counts, rows.Err()
}

// RecordVs returns the head-to-head record against one opponent
// (canonical name), newest game first.
func (r *Reader) RecordVs(ctx context.Context, opponent string, selfNames []string) (*HeadToHead, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(played_at, ''), COALESCE(map_name, ''),
		       COALESCE(winner_name, ''), COALESCE(loser_name, ''),
		       COALESCE(duration_text, '')
		FROM games
		WHERE winner_name = ? OR loser_name = ?
		ORDER BY played_at DESC`, opponent, opponent)
	if err != nil {
		return nil, fmt.Errorf("failed to query games vs %s: %w", opponent, err)
	}
	defer rows.Close()

	self := make(map[string]bool, len(selfNames))
	for _, name := range selfNames {
		self[name] = true
	}

	record := &HeadToHead{Opponent: opponent}
	for rows.Next() {
		var playedAt, mapName, winner, loser, duration string
		if err := rows.Scan(&playedAt, &mapName, &winner, &loser, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}

		result := "unknown"
		switch {
		case self[winner] && loser == opponent:
			record.Wins++
			result = "win"
		case self[loser] && winner == opponent:
			record.Losses++
			result = "loss"
		}
		record.Games = append(record.Games, GameSummary{
			PlayedAt:     playedAt,
			MapName:      mapName,
			Result:       result,
			DurationText: duration,
		})
	}
	return record, rows.Err()
}

// Opponents summarizes wins and losses against every opponent the local
// user has played. Empty when no self identity is registered.
func (r *Reader) Opponents(ctx context.Context, selfNames []string) ([]OpponentSummary, error) {
	if len(selfNames) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(winner_name, ''), COALESCE(loser_name, ''),
		       COALESCE(played_at, '')
		FROM games
		ORDER BY played_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	self := make(map[string]bool, len(selfNames))
	for _, name := range selfNames {
		self[name] = true
	}

	type tally struct {
		wins, losses int
		lastPlayed   string
	}
	stats := make(map[string]*tally)
	var order []string

	for rows.Next() {
		var winner, loser, playedAt string
		if err := rows.Scan(&winner, &loser, &playedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}

		var opponent string
		won := false
		switch {
		case self[winner] && loser != "" && !self[loser]:
			opponent = loser
			won = true
		case self[loser] && winner != "" && !self[winner]:
			opponent = winner
		default:
			continue
		}

		t, ok := stats[opponent]
		if !ok {
			t = &tally{lastPlayed: playedAt}
			stats[opponent] = t
			order = append(order, opponent)
		}
		if won {
			t.wins++
		} else {
			t.losses++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summaries := make([]OpponentSummary, 0, len(order))
	for _, opponent := range order {
		t := stats[opponent]
		summaries = append(summaries, OpponentSummary{
			Opponent:   opponent,
			Wins:       t.wins,
			Losses:     t.losses,
			LastPlayed: t.lastPlayed,
		})
	}
	return summaries, nil
}
