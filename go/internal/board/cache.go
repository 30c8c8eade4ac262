package board

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/boardsync/go/internal/models"
)

const snapshotKeyPrefix = "boardsync:snapshot:"

// DefaultSnapshotTTL bounds staleness if an invalidation is ever lost.
const DefaultSnapshotTTL = 5 * time.Minute

// Cache is a redis read-through cache for board snapshots. Every join of a
// busy board would otherwise re-assemble the same nested projection; the
// cache serves it from one GET until the next write invalidates it.
//
// All failures degrade to a cache miss; the cache never fails a read path.
type Cache struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewCache creates a snapshot cache over an existing redis client.
func NewCache(rc *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Cache{rc: rc, ttl: ttl}
}

// Get returns the cached snapshot for a board, if present.
func (c *Cache) Get(ctx context.Context, boardID uuid.UUID) (*models.BoardSnapshot, bool) {
	data, err := c.rc.Get(ctx, snapshotKeyPrefix+boardID.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("board_id", boardID.String()).Msg("snapshot cache read failed")
		}
		return nil, false
	}

	var snap models.BoardSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Str("board_id", boardID.String()).Msg("corrupt cached snapshot, dropping")
		c.Invalidate(ctx, boardID)
		return nil, false
	}
	return &snap, true
}

// Set stores a snapshot.
func (c *Cache) Set(ctx context.Context, snap *models.BoardSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Warn().Err(err).Str("board_id", snap.ID.String()).Msg("failed to marshal snapshot for cache")
		return
	}
	if err := c.rc.Set(ctx, snapshotKeyPrefix+snap.ID.String(), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("board_id", snap.ID.String()).Msg("snapshot cache write failed")
	}
}

// Invalidate drops the cached snapshot for a board.
func (c *Cache) Invalidate(ctx context.Context, boardID uuid.UUID) {
	if err := c.rc.Del(ctx, snapshotKeyPrefix+boardID.String()).Err(); err != nil {
		log.Warn().Err(err).Str("board_id", boardID.String()).Msg("snapshot cache invalidation failed")
	}
}
