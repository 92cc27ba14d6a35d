package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/matst80/relayroom/internal/obs"
	"github.com/redis/go-redis/v9"
)

// rosterEntry is the JSON form stored per client.
type rosterEntry struct {
	ID     int       `json:"id"`
	Name   string    `json:"name"`
	Addr   string    `json:"addr"`
	Joined time.Time `json:"joined"`
}

// redisPublisher keeps relayroom:client:<id> keys in sync with the roster.
// Keys carry a TTL so a crashed relay does not leave ghosts behind.
type redisPublisher struct {
	client    *redis.Client
	keyTTL    time.Duration
	opTimeout time.Duration
}

// NewRedis connects to Redis and verifies it with a bounded ping.
func NewRedis(addr, password string, db int) (Publisher, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &redisPublisher{client: rdb, keyTTL: 24 * time.Hour, opTimeout: 2 * time.Second}, nil
}

func clientKey(id int) string { return "relayroom:client:" + strconv.Itoa(id) }

func (p *redisPublisher) Join(id int, name, addr string) {
	data, err := json.Marshal(rosterEntry{ID: id, Name: name, Addr: addr, Joined: time.Now().UTC()})
	if err != nil {
		obs.Error("presence.marshal", obs.Fields{"err": err.Error(), "id": id})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.opTimeout)
	defer cancel()
	if err := p.client.Set(ctx, clientKey(id), data, p.keyTTL).Err(); err != nil {
		obs.Warn("presence.join", obs.Fields{"err": err.Error(), "id": id})
	}
}

func (p *redisPublisher) Leave(id int) {
	ctx, cancel := context.WithTimeout(context.Background(), p.opTimeout)
	defer cancel()
	if err := p.client.Del(ctx, clientKey(id)).Err(); err != nil {
		obs.Warn("presence.leave", obs.Fields{"err": err.Error(), "id": id})
	}
}

func (p *redisPublisher) Close() error { return p.client.Close() }
