package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/cbodonnell/hideseek/pkg/game/types"
)

// Repository is a ranking source. Its data is informational and never
// authoritative for game state.
type Repository interface {
	Close(ctx context.Context) error
	ListPlayers(ctx context.Context) ([]types.PlayerData, error)
}

// ViewerAware repositories include the connected wallet in their roster.
type ViewerAware interface {
	SetViewer(id string)
}

const StaticURL = "static"

// NewRepository opens the repository named by url: "static",
// "sqlite://<path>" or a postgres connection string.
func NewRepository(ctx context.Context, url string, migrations string) (Repository, error) {
	switch {
	case url == "" || url == StaticURL:
		return NewStaticRepository(nil), nil
	case strings.HasPrefix(url, "sqlite://"):
		repo, err := NewSQLiteRepository(ctx, strings.TrimPrefix(url, "sqlite://"), migrations)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		repo, err := NewPostgresRepository(ctx, url)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported players url %q", url)
	}
}
