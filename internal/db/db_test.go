package db_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"starrecord/internal/db"
	"starrecord/internal/identity"
	"starrecord/internal/match"
	"starrecord/internal/replay"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func testRecord(winner, loser *identity.Identity, myResult match.MyResult) match.Record {
	return match.Record{
		ReplayKey:       "2026-02-07@020624_AliceVsBob.rep",
		PlayedAt:        time.Date(2026, 2, 7, 2, 6, 24, 0, time.UTC),
		DurationSeconds: 100,
		DurationText:    "0:01:40",
		MapName:         "Fighting Spirit",
		MapTileset:      "Jungle",
		GameType:        "One on One",
		Participants: []match.Participant{
			{Slot: 0, Identity: winner, Race: replay.RaceTerran, IsWinner: true, APM: 120},
			{Slot: 1, Identity: loser, Race: replay.RaceZerg, APM: 90},
		},
		Winner:   winner,
		Loser:    loser,
		MyResult: myResult,
		Chat: []replay.ChatEvent{
			{Slot: 0, Frame: 48, Offset: 2 * time.Second, Text: "gl hf"},
		},
	}
}

func TestStoreLookupCreateAlias(t *testing.T) {
	ctx := context.Background()
	store := db.NewStore(openTestDB(t))

	missing, err := store.LookupByName(ctx, "Alice")
	if err != nil {
		t.Fatalf("LookupByName failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("unseen name resolved to %+v", missing)
	}

	created, err := store.CreateIdentity(ctx, "Alice")
	if err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}
	if created.ID == 0 || created.Name != "Alice" {
		t.Fatalf("created = %+v", created)
	}

	if err := store.RegisterAlias(ctx, created.ID, "AliceSmurf"); err != nil {
		t.Fatalf("RegisterAlias failed: %v", err)
	}
	viaAlias, err := store.LookupByName(ctx, "AliceSmurf")
	if err != nil {
		t.Fatalf("lookup via alias failed: %v", err)
	}
	if viaAlias == nil || viaAlias.ID != created.ID || viaAlias.Name != "Alice" {
		t.Errorf("alias lookup = %+v, want identity %d", viaAlias, created.ID)
	}

	aliases, err := store.ListAliases(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListAliases failed: %v", err)
	}
	if len(aliases) != 1 || aliases[0] != "AliceSmurf" {
		t.Errorf("aliases = %v", aliases)
	}
}

func TestStoreSetSelf(t *testing.T) {
	ctx := context.Background()
	store := db.NewStore(openTestDB(t))

	if _, err := store.CreateIdentity(ctx, "Alice"); err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}
	if err := store.SetSelf(ctx, "Alice", true); err != nil {
		t.Fatalf("SetSelf failed: %v", err)
	}

	ident, err := store.LookupByName(ctx, "Alice")
	if err != nil {
		t.Fatalf("LookupByName failed: %v", err)
	}
	if !ident.IsSelf {
		t.Error("identity not marked as self")
	}

	names, err := store.SelfNames(ctx)
	if err != nil {
		t.Fatalf("SelfNames failed: %v", err)
	}
	if len(names) != 1 || names[0] != "Alice" {
		t.Errorf("SelfNames = %v", names)
	}
}

func TestSaveRecordAndQueries(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := db.NewStore(conn)
	writer := db.NewWriter(conn)
	reader := db.NewReader(conn)

	alice, err := store.CreateIdentity(ctx, "Alice")
	if err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}
	bob, err := store.CreateIdentity(ctx, "Bob")
	if err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}

	rec := testRecord(alice, bob, match.ResultUnknown)
	gameID, err := writer.SaveRecord(ctx, rec)
	if err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	if gameID == 0 {
		t.Fatal("SaveRecord returned game id 0")
	}

	exists, err := reader.GameExists(ctx, rec.ReplayKey)
	if err != nil {
		t.Fatalf("GameExists failed: %v", err)
	}
	if !exists {
		t.Error("stored game not found by replay key")
	}
	exists, err = reader.GameExists(ctx, "never-imported.rep")
	if err != nil {
		t.Fatalf("GameExists failed: %v", err)
	}
	if exists {
		t.Error("unknown replay key reported as existing")
	}

	var chatCount int
	if err := conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chat_messages WHERE game_id = ?", gameID).Scan(&chatCount); err != nil {
		t.Fatalf("chat count query failed: %v", err)
	}
	if chatCount != 1 {
		t.Errorf("chat_messages = %d rows, want 1", chatCount)
	}

	counts, err := reader.NameCounts(ctx)
	if err != nil {
		t.Fatalf("NameCounts failed: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("NameCounts = %d entries, want 2", len(counts))
	}
	for _, c := range counts {
		if c.Count != 1 {
			t.Errorf("count for %s = %d, want 1", c.Identity.Name, c.Count)
		}
	}
}

func TestSaveRecordDuplicateKeyFails(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := db.NewStore(conn)
	writer := db.NewWriter(conn)

	alice, _ := store.CreateIdentity(ctx, "Alice")
	bob, _ := store.CreateIdentity(ctx, "Bob")
	rec := testRecord(alice, bob, match.ResultUnknown)

	if _, err := writer.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("first SaveRecord failed: %v", err)
	}
	if _, err := writer.SaveRecord(ctx, rec); err == nil {
		t.Fatal("storing the same replay key twice should fail")
	}
}

func TestRecomputeMyResults(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := db.NewStore(conn)
	writer := db.NewWriter(conn)

	alice, _ := store.CreateIdentity(ctx, "Alice")
	bob, _ := store.CreateIdentity(ctx, "Bob")
	rec := testRecord(alice, bob, match.ResultUnknown)
	if _, err := writer.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	if err := writer.RecomputeMyResults(ctx, []string{"Alice"}); err != nil {
		t.Fatalf("RecomputeMyResults failed: %v", err)
	}
	var myResult string
	if err := conn.QueryRowContext(ctx,
		"SELECT my_result FROM games WHERE replay_file = ?", rec.ReplayKey).Scan(&myResult); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if myResult != "win" {
		t.Errorf("my_result = %q after recompute, want win", myResult)
	}

	if err := writer.RecomputeMyResults(ctx, []string{"Bob"}); err != nil {
		t.Fatalf("RecomputeMyResults failed: %v", err)
	}
	if err := conn.QueryRowContext(ctx,
		"SELECT my_result FROM games WHERE replay_file = ?", rec.ReplayKey).Scan(&myResult); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if myResult != "loss" {
		t.Errorf("my_result = %q after recompute, want loss", myResult)
	}
}

func TestRecordVsAndOpponents(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := db.NewStore(conn)
	writer := db.NewWriter(conn)
	reader := db.NewReader(conn)

	alice, _ := store.CreateIdentity(ctx, "Alice")
	bob, _ := store.CreateIdentity(ctx, "Bob")

	win := testRecord(alice, bob, match.ResultWin)
	if _, err := writer.SaveRecord(ctx, win); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	loss := testRecord(bob, alice, match.ResultLoss)
	loss.ReplayKey = "2026-02-08@113000_rematch.rep"
	loss.PlayedAt = time.Date(2026, 2, 8, 11, 30, 0, 0, time.UTC)
	if _, err := writer.SaveRecord(ctx, loss); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	record, err := reader.RecordVs(ctx, "Bob", []string{"Alice"})
	if err != nil {
		t.Fatalf("RecordVs failed: %v", err)
	}
	if record.Wins != 1 || record.Losses != 1 {
		t.Errorf("record vs Bob = %d-%d, want 1-1", record.Wins, record.Losses)
	}
	if len(record.Games) != 2 {
		t.Fatalf("got %d games, want 2", len(record.Games))
	}
	if record.Games[0].Result != "loss" {
		t.Errorf("newest game result = %q, want loss", record.Games[0].Result)
	}

	opponents, err := reader.Opponents(ctx, []string{"Alice"})
	if err != nil {
		t.Fatalf("Opponents failed: %v", err)
	}
	if len(opponents) != 1 {
		t.Fatalf("got %d opponents, want 1", len(opponents))
	}
	if opponents[0].Opponent != "Bob" || opponents[0].Wins != 1 || opponents[0].Losses != 1 {
		t.Errorf("opponent summary = %+v", opponents[0])
	}
}
