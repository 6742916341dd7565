// Package match assembles normalized match records from decoded replay
// intermediates.
package match

import (
	"fmt"
	"time"

	"starrecord/internal/identity"
	"starrecord/internal/replay"
)

// MyResult is the local user's result for one match.
type MyResult string

const (
	ResultWin     MyResult = "win"
	ResultLoss    MyResult = "loss"
	ResultUnknown MyResult = "unknown"
)

// Participant is one resolved player in a match, in slot order.
type Participant struct {
	Slot     int
	Identity *identity.Identity
	Race     replay.Race
	IsWinner bool
	APM      float64
}

// Record is the immutable normalized form of one decoded replay, ready
// for persistence. Winner and Loser are nil when the outcome could not
// be determined.
type Record struct {
	ReplayKey       string
	PlayedAt        time.Time
	DurationSeconds float64
	DurationText    string
	MapName         string
	MapTileset      string
	GameType        string
	Participants    []Participant
	Winner          *identity.Identity
	Loser           *identity.Identity
	MyResult        MyResult
	Chat            []replay.ChatEvent
}

// Assemble combines a decode result with resolved identities into one
// Record. It is a pure function over already-decoded data: re-running
// it after a later self-identity registration yields an updated record
// without touching the container again. identities is keyed by slot
// index and must cover every declared slot.
func Assemble(res *replay.Result, identities map[int]*identity.Identity, playedAt time.Time) Record {
	rec := Record{
		ReplayKey:       res.Key,
		PlayedAt:        playedAt,
		DurationSeconds: res.Duration().Seconds(),
		DurationText:    FormatDuration(res.Duration()),
		MapName:         res.Header.MapName,
		MapTileset:      res.Header.TilesetName(),
		GameType:        res.Header.GameTypeName(),
		MyResult:        ResultUnknown,
		Chat:            res.Chat,
	}

	var self *identity.Identity
	selfCount := 0
	for _, slot := range res.Header.Slots {
		ident := identities[slot.Index]
		rec.Participants = append(rec.Participants, Participant{
			Slot:     slot.Index,
			Identity: ident,
			Race:     slot.Race,
			IsWinner: res.Outcome.WinnerSlot == slot.Index,
			APM:      res.APM(slot.Index),
		})
		if ident != nil && ident.IsSelf {
			self = ident
			selfCount++
		}
	}

	if res.Outcome.Determined() {
		rec.Winner = identities[res.Outcome.WinnerSlot]
	}
	if res.Outcome.LoserSlot >= 0 {
		rec.Loser = identities[res.Outcome.LoserSlot]
	}

	// my_result needs exactly one self identity among the participants.
	if selfCount == 1 {
		switch {
		case rec.Winner != nil && rec.Winner.ID == self.ID:
			rec.MyResult = ResultWin
		case rec.Loser != nil && rec.Loser.ID == self.ID:
			rec.MyResult = ResultLoss
		}
	}

	return rec
}

// FormatDuration renders a duration as H:MM:SS.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total%3600/60, total%60)
}
