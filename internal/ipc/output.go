package ipc

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"starrecord/internal/match"
)

// Output handles NDJSON (newline-delimited JSON) output to stdout, for
// callers driving the CLI as a subprocess. All methods are thread-safe.
type Output struct {
	mu sync.Mutex
}

// NewOutput creates a new NDJSON output handler.
func NewOutput() *Output {
	return &Output{}
}

// Log sends a log message.
func (o *Output) Log(level, msg string) {
	o.writeJSON(map[string]interface{}{
		"type":  "log",
		"level": level,
		"msg":   msg,
	})
}

// Error sends an error message.
func (o *Output) Error(msg string) {
	o.writeJSON(map[string]interface{}{
		"type": "error",
		"msg":  msg,
	})
}

// Record sends one assembled match record.
func (o *Output) Record(rec match.Record) {
	participants := make([]map[string]interface{}, 0, len(rec.Participants))
	for _, p := range rec.Participants {
		name := ""
		if p.Identity != nil {
			name = p.Identity.Name
		}
		participants = append(participants, map[string]interface{}{
			"slot":      p.Slot,
			"name":      name,
			"race":      p.Race.String(),
			"is_winner": p.IsWinner,
			"apm":       p.APM,
		})
	}

	chat := make([]map[string]interface{}, 0, len(rec.Chat))
	for _, msg := range rec.Chat {
		chat = append(chat, map[string]interface{}{
			"slot":   msg.Slot,
			"frame":  msg.Frame,
			"offset": msg.Offset.Seconds(),
			"text":   msg.Text,
		})
	}

	obj := map[string]interface{}{
		"type":             "record",
		"replay_key":       rec.ReplayKey,
		"map_name":         rec.MapName,
		"map_tileset":      rec.MapTileset,
		"game_type":        rec.GameType,
		"duration_seconds": rec.DurationSeconds,
		"duration_text":    rec.DurationText,
		"my_result":        string(rec.MyResult),
		"participants":     participants,
		"chat":             chat,
	}
	if rec.Winner != nil {
		obj["winner"] = rec.Winner.Name
	}
	if rec.Loser != nil {
		obj["loser"] = rec.Loser.Name
	}
	if !rec.PlayedAt.IsZero() {
		obj["played_at"] = rec.PlayedAt.UTC().Format("2006-01-02 15:04:05")
	}
	o.writeJSON(obj)
}

// writeJSON writes a JSON object to stdout followed by a newline.
func (o *Output) writeJSON(obj map[string]interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()

	data, err := json.Marshal(obj)
	if err != nil {
		// Fallback to stderr if JSON marshaling fails
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintf(os.Stdout, "%s\n", data)
}
