package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"starrecord/internal/identity"
)

// Store implements identity.Store on top of the players and aliases
// tables.
type Store struct {
	db *sql.DB
}

// NewStore creates an identity store over an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// LookupByName finds an identity by canonical name first, then by
// alias. Returns (nil, nil) when the name is unseen.
func (s *Store) LookupByName(ctx context.Context, name string) (*identity.Identity, error) {
	ident, err := scanIdentity(s.db.QueryRowContext(ctx,
		"SELECT id, name, is_me FROM players WHERE name = ?", name))
	if err != nil {
		return nil, fmt.Errorf("failed to look up player: %w", err)
	}
	if ident != nil {
		return ident, nil
	}

	ident, err = scanIdentity(s.db.QueryRowContext(ctx,
		`SELECT p.id, p.name, p.is_me FROM aliases a
		 JOIN players p ON a.player_id = p.id
		 WHERE a.alt_name = ?`, name))
	if err != nil {
		return nil, fmt.Errorf("failed to look up alias: %w", err)
	}
	return ident, nil
}

// CreateIdentity inserts a new player row with the given canonical
// name.
func (s *Store) CreateIdentity(ctx context.Context, name string) (*identity.Identity, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO players (name) VALUES (?)", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new player id: %w", err)
	}
	return &identity.Identity{ID: id, Name: name}, nil
}

// ListAliases returns every alias bound to an identity.
func (s *Store) ListAliases(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT alt_name FROM aliases WHERE player_id = ? ORDER BY alt_name", id)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	defer rows.Close()

	var aliases []string
	for rows.Next() {
		var alias string
		if err := rows.Scan(&alias); err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		aliases = append(aliases, alias)
	}
	return aliases, rows.Err()
}

// RegisterAlias binds an alternate name to an identity.
func (s *Store) RegisterAlias(ctx context.Context, id int64, altName string) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO aliases (player_id, alt_name) VALUES (?, ?)", id, altName); err != nil {
		return fmt.Errorf("failed to register alias: %w", err)
	}
	return nil
}

// SetSelf marks one player as the local user.
func (s *Store) SetSelf(ctx context.Context, name string, isSelf bool) error {
	flag := 0
	if isSelf {
		flag = 1
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE players SET is_me = ? WHERE name = ?", flag, name); err != nil {
		return fmt.Errorf("failed to update is_me: %w", err)
	}
	return nil
}

// SelfNames returns the canonical names marked as the local user.
func (s *Store) SelfNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM players WHERE is_me = 1")
	if err != nil {
		return nil, fmt.Errorf("failed to query self names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanIdentity(row *sql.Row) (*identity.Identity, error) {
	var ident identity.Identity
	var isMe int
	err := row.Scan(&ident.ID, &ident.Name, &isMe)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ident.IsSelf = isMe != 0
	return &ident, nil
}
