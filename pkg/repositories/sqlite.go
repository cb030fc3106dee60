package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cbodonnell/hideseek/pkg/game/types"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string, migrations string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := migrate(ctx, db, migrations); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

// migrate runs every file in dir in name order.
func migrate(ctx context.Context, db *sql.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %v", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		migrationPath := filepath.Join(dir, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) ListPlayers(ctx context.Context) ([]types.PlayerData, error) {
	q := `
	SELECT player_id, name, score, last_active FROM players ORDER BY player_id;
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %v", err)
	}
	defer rows.Close()

	players := []types.PlayerData{}
	for rows.Next() {
		var player types.PlayerData
		if err := rows.Scan(&player.ID, &player.Name, &player.Score, &player.LastActive); err != nil {
			return nil, fmt.Errorf("failed to scan player: %v", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %v", err)
	}
	return players, nil
}

func (r *SQLiteRepository) SavePlayer(ctx context.Context, player types.PlayerData) error {
	q := `
	INSERT OR REPLACE INTO players (player_id, name, score, last_active)
	VALUES (?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, player.ID, player.Name, player.Score, player.LastActive)
	if err != nil {
		return fmt.Errorf("failed to save player: %v", err)
	}
	return nil
}

// LoadPlayer returns one player or ErrNotFound.
func (r *SQLiteRepository) LoadPlayer(ctx context.Context, id string) (*types.PlayerData, error) {
	q := `
	SELECT player_id, name, score, last_active FROM players WHERE player_id = ?;
	`
	var player types.PlayerData
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&player.ID, &player.Name, &player.Score, &player.LastActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{PlayerID: id}
		}
		return nil, fmt.Errorf("failed to scan player: %v", err)
	}
	return &player, nil
}
