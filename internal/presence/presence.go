package presence

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const opTimeout = 2 * time.Second

// Publisher mirrors room occupancy into Redis hashes (room:<name>) so
// external dashboards can see active rooms without asking the game server.
// Everything here is best-effort: a Redis failure is logged and never
// touches room state. A nil Publisher is valid and does nothing, which is
// how presence is disabled.
type Publisher struct {
	log *zap.SugaredLogger
	rdb *redis.Client
}

func NewPublisher(log *zap.SugaredLogger, rdb *redis.Client) *Publisher {
	return &Publisher{log: log, rdb: rdb}
}

func roomKey(name string) string { return "room:" + name }

// Update writes the room's current member count.
func (p *Publisher) Update(room string, members int) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := p.rdb.HSet(ctx, roomKey(room),
		"name", room,
		"members", strconv.Itoa(members),
		"updatedAt", time.Now().UTC().Format(time.RFC3339),
	).Err()
	if err != nil {
		p.log.Warnw("presence update failed", "room", room, "error", err)
	}
}

// Remove drops the room's hash after the last member left.
func (p *Publisher) Remove(room string) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := p.rdb.Del(ctx, roomKey(room)).Err(); err != nil {
		p.log.Warnw("presence remove failed", "room", room, "error", err)
	}
}
