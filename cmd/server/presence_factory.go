package main

import (
	"github.com/matst80/relayroom/internal/obs"
	"github.com/matst80/relayroom/internal/presence"
)

// newPresencePublisher creates either a no-op or Redis-backed roster mirror
// based on configuration.
func newPresencePublisher() (presence.Publisher, error) {
	if cfg.RedisAddr == "" {
		obs.Info("presence.backend", obs.Fields{"type": "none"})
		return presence.NewNop(), nil
	}
	obs.Info("presence.backend", obs.Fields{"type": "redis", "addr": cfg.RedisAddr})
	return presence.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}
