package repositories

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/cbodonnell/hideseek/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func migrationsDir(t *testing.T) string {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations", "sqlite")
}

func TestStaticRepository(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	repo := NewStaticRepository(func() time.Time { return now })

	players, err := repo.ListPlayers(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 5)
	assert.Equal(t, types.PlayerData{ID: "player1", Name: "ShadowRunner", Score: 1250, LastActive: now.Add(-time.Hour).UnixMilli()}, players[0])
	assert.Equal(t, "BlockSeeker", players[3].Name)
	assert.Equal(t, now.Add(-90*time.Minute).UnixMilli(), players[3].LastActive)
	assert.Equal(t, types.PlayerData{ID: DefaultViewerID, Name: "You", Score: 450, LastActive: now.UnixMilli()}, players[4])

	repo.SetViewer("0x00000000000000000000000000000000000000a1")
	players, err = repo.ListPlayers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x00000000000000000000000000000000000000a1", players[4].ID)

	repo.SetViewer("")
	players, _ = repo.ListPlayers(context.Background())
	assert.Equal(t, DefaultViewerID, players[4].ID)
}

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "players.db")
	repo, err := NewSQLiteRepository(ctx, path, migrationsDir(t))
	require.NoError(t, err)
	defer repo.Close(ctx)

	players, err := repo.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Empty(t, players)

	require.NoError(t, repo.SavePlayer(ctx, types.PlayerData{ID: "1", Name: "ShadowRunner", Score: 1250, LastActive: 10}))
	require.NoError(t, repo.SavePlayer(ctx, types.PlayerData{ID: "2", Name: "CryptoNinja", Score: 980, LastActive: 20}))
	require.NoError(t, repo.SavePlayer(ctx, types.PlayerData{ID: "1", Name: "ShadowRunner", Score: 1300, LastActive: 30}))

	players, err = repo.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, types.PlayerData{ID: "1", Name: "ShadowRunner", Score: 1300, LastActive: 30}, players[0])

	player, err := repo.LoadPlayer(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "CryptoNinja", player.Name)

	_, err = repo.LoadPlayer(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

func TestSQLiteRepository_MissingMigrations(t *testing.T) {
	_, err := NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "players.db"), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNewRepository(t *testing.T) {
	ctx := context.Background()

	repo, err := NewRepository(ctx, "static", "")
	require.NoError(t, err)
	assert.IsType(t, &StaticRepository{}, repo)

	repo, err = NewRepository(ctx, "sqlite://"+filepath.Join(t.TempDir(), "players.db"), migrationsDir(t))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepository{}, repo)
	require.NoError(t, repo.Close(ctx))

	_, err = NewRepository(ctx, "mysql://localhost", "")
	assert.Error(t, err)
}
