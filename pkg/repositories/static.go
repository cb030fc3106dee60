package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/cbodonnell/hideseek/pkg/game/types"
)

// DefaultViewerID stands in for the viewer until a wallet connects.
const DefaultViewerID = "player5"

type staticPlayer struct {
	id    string
	name  string
	score int64
	idle  time.Duration
}

var roster = []staticPlayer{
	{id: "player1", name: "ShadowRunner", score: 1250, idle: time.Hour},
	{id: "player2", name: "CryptoNinja", score: 980, idle: 2 * time.Hour},
	{id: "player3", name: "FHEGhost", score: 750, idle: 30 * time.Minute},
	{id: "player4", name: "BlockSeeker", score: 620, idle: 90 * time.Minute},
}

// StaticRepository serves a fixed demo roster. Activity times are relative
// to the moment of listing and the viewer is always active.
type StaticRepository struct {
	lock     sync.RWMutex
	viewerID string
	now      func() time.Time
}

// NewStaticRepository creates the demo roster. now defaults to time.Now.
func NewStaticRepository(now func() time.Time) *StaticRepository {
	if now == nil {
		now = time.Now
	}
	return &StaticRepository{
		viewerID: DefaultViewerID,
		now:      now,
	}
}

func (r *StaticRepository) SetViewer(id string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if id == "" {
		id = DefaultViewerID
	}
	r.viewerID = id
}

func (r *StaticRepository) Close(ctx context.Context) error {
	return nil
}

func (r *StaticRepository) ListPlayers(ctx context.Context) ([]types.PlayerData, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	now := r.now()
	players := make([]types.PlayerData, 0, len(roster)+1)
	for _, p := range roster {
		players = append(players, types.PlayerData{
			ID:         p.id,
			Name:       p.name,
			Score:      p.score,
			LastActive: now.Add(-p.idle).UnixMilli(),
		})
	}
	players = append(players, types.PlayerData{
		ID:         r.viewerID,
		Name:       "You",
		Score:      450,
		LastActive: now.UnixMilli(),
	})
	return players, nil
}
