// Package manager ties decoding, identity resolution and persistence
// together: one call turns a replay file into a stored match record.
package manager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"starrecord/internal/db"
	"starrecord/internal/identity"
	"starrecord/internal/match"
	"starrecord/internal/replay"
)

// Replay filenames commonly embed the game time, e.g.
// "2026-02-07@020624_Fighting Spirit.rep".
var filenameDate = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})@(\d{6})`)

// Manager processes replays end to end against one database.
type Manager struct {
	store    *db.Store
	writer   *db.Writer
	reader   *db.Reader
	resolver *identity.Resolver
	log      *slog.Logger
}

// New builds a manager over an open database.
func New(database *sql.DB, log *slog.Logger) *Manager {
	store := db.NewStore(database)
	return &Manager{
		store:    store,
		writer:   db.NewWriter(database),
		reader:   db.NewReader(database),
		resolver: identity.NewResolver(store),
		log:      log,
	}
}

// Resolver exposes the identity resolver for alias registration.
func (m *Manager) Resolver() *identity.Resolver { return m.resolver }

// Reader exposes the query side for reporting commands.
func (m *Manager) Reader() *db.Reader { return m.reader }

// SelfNames returns the canonical names currently marked as the local
// user.
func (m *Manager) SelfNames(ctx context.Context) ([]string, error) {
	return m.store.SelfNames(ctx)
}

// ProcessReplay decodes one replay file and stores the resulting match
// record. Returns (nil, nil) when the replay was already imported.
// Stream-level damage degrades to a partial record; only structural
// decode failures surface as errors.
func (m *Manager) ProcessReplay(ctx context.Context, path string) (*match.Record, error) {
	key := filepath.Base(path)

	exists, err := m.reader.GameExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if exists {
		m.log.Debug("replay already imported", "replay", key)
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay %s: %w", key, err)
	}

	res, err := replay.Decode(data, key)
	if err != nil {
		return nil, fmt.Errorf("decode replay %s: %w", key, err)
	}
	if res.CommandDiag != nil {
		m.log.Warn("command section unusable, keeping header-only record",
			"replay", key, "section", res.CommandDiag.Section)
	}
	if res.StreamDiag != nil {
		m.log.Warn("command stream truncated, keeping partial record",
			"replay", key, "reason", res.StreamDiag.Reason)
	}

	identities := make(map[int]*identity.Identity, len(res.Header.Slots))
	for _, slot := range res.Header.Slots {
		if slot.Name == "" {
			continue
		}
		ident, err := m.resolver.ResolveSlotIdentity(ctx, slot.Name)
		if err != nil {
			return nil, err
		}
		identities[slot.Index] = ident
	}

	rec := match.Assemble(res, identities, playedAt(key, res.Header))
	if _, err := m.writer.SaveRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("store replay %s: %w", key, err)
	}

	m.log.Info("replay stored",
		"replay", key, "map", rec.MapName, "result", string(rec.MyResult))
	return &rec, nil
}

// ImportFolder processes every .rep file under dir with bounded
// parallelism. Individual decode failures are logged and skipped so one
// bad file never aborts a batch. Returns the number of newly stored
// games.
func (m *Manager) ImportFolder(ctx context.Context, dir string, parallelism int) (int, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".rep") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(paths)
	m.log.Info("replay files found", "dir", dir, "count", len(paths))

	if parallelism < 1 {
		parallelism = 1
	}

	var imported atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			rec, err := m.ProcessReplay(gctx, path)
			if err != nil {
				m.log.Warn("replay skipped", "replay", filepath.Base(path), "error", err)
				return nil
			}
			if rec != nil {
				imported.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(imported.Load()), err
	}
	return int(imported.Load()), nil
}

// SetSelf marks a name as the local user, creating the identity if
// needed, and recomputes my_result for already-stored games.
func (m *Manager) SetSelf(ctx context.Context, name string) error {
	if _, err := m.resolver.ResolveSlotIdentity(ctx, name); err != nil {
		return err
	}
	if err := m.store.SetSelf(ctx, name, true); err != nil {
		return err
	}
	return m.recomputeResults(ctx)
}

// DetectSelf infers the local user's identity by appearance frequency
// across stored games. An existing registration wins; a frequency tie
// means no inference, and nil is returned.
func (m *Manager) DetectSelf(ctx context.Context) (*identity.Identity, error) {
	counts, err := m.reader.NameCounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		if c.Identity.IsSelf {
			return c.Identity, nil
		}
	}

	inferred := identity.InferSelf(counts)
	if inferred == nil {
		m.log.Info("self inference ambiguous or no data, register a name manually")
		return nil, nil
	}

	if err := m.store.SetSelf(ctx, inferred.Name, true); err != nil {
		return nil, err
	}
	if err := m.recomputeResults(ctx); err != nil {
		return nil, err
	}
	inferred.IsSelf = true
	m.log.Info("self identity inferred", "name", inferred.Name)
	return inferred, nil
}

// OpponentOf picks the opposing canonical name from a record, from the
// local user's point of view.
func (m *Manager) OpponentOf(ctx context.Context, rec *match.Record) (string, error) {
	selfNames, err := m.store.SelfNames(ctx)
	if err != nil {
		return "", err
	}
	self := make(map[string]bool, len(selfNames))
	for _, name := range selfNames {
		self[name] = true
	}

	var winner, loser string
	if rec.Winner != nil {
		winner = rec.Winner.Name
	}
	if rec.Loser != nil {
		loser = rec.Loser.Name
	}
	switch {
	case self[winner]:
		return loser, nil
	case self[loser]:
		return winner, nil
	case winner != "":
		return winner, nil
	default:
		return loser, nil
	}
}

func (m *Manager) recomputeResults(ctx context.Context) error {
	selfNames, err := m.store.SelfNames(ctx)
	if err != nil {
		return err
	}
	return m.writer.RecomputeMyResults(ctx, selfNames)
}

// playedAt prefers the timestamp embedded in the replay filename and
// falls back to the header's creation time.
func playedAt(key string, hdr *replay.Header) time.Time {
	if groups := filenameDate.FindStringSubmatch(key); groups != nil {
		stamp := groups[1] + " " + groups[2][:2] + ":" + groups[2][2:4] + ":" + groups[2][4:6]
		if t, err := time.Parse(time.DateTime, stamp); err == nil {
			return t
		}
	}
	return hdr.CreatedAt
}
