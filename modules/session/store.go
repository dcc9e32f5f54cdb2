package session

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"prism-studio-server/modules/common/config"
)

const (
	snapshotKeyPrefix = "studio:session:"
	snapshotTTL       = 2 * time.Hour
)

// SnapshotStore - Redis-backed last-known status per session, so a client
// reconnecting to the websocket can recover state it missed
type SnapshotStore struct {
	rdb *redis.Client
}

// ConnectStore - nil when Redis is disabled or unreachable; the server keeps
// working with in-memory sessions only
func ConnectStore(cfg *config.Config) *SnapshotStore {
	if !cfg.RedisEnabled {
		return nil
	}

	log.Printf("🔌 Connecting to Redis: %s", cfg.GetRedisAddr())

	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, // managed Redis endpoints with self-signed chains
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("❌ Redis ping failed: %v - snapshot store disabled", err)
		return nil
	}

	log.Println("✅ Redis snapshot store connected")
	return &SnapshotStore{rdb: rdb}
}

// Save - persist the snapshot and publish it for any external subscriber.
// Failures are logged only; live status is best-effort.
func (s *SnapshotStore) Save(ctx context.Context, sessionID string, snap Snapshot) {
	if s == nil || s.rdb == nil {
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("⚠️ Failed to marshal snapshot for %s: %v", sessionID, err)
		return
	}

	if err := s.rdb.Set(ctx, snapshotKeyPrefix+sessionID, data, snapshotTTL).Err(); err != nil {
		log.Printf("⚠️ Failed to store snapshot for %s: %v", sessionID, err)
	}

	channel := snapshotChannel(sessionID)
	if err := s.rdb.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("⚠️ Failed to publish snapshot for %s: %v", sessionID, err)
	}
}

// Load - last persisted snapshot, ok=false when none exists
func (s *SnapshotStore) Load(ctx context.Context, sessionID string) (Snapshot, bool) {
	var snap Snapshot
	if s == nil || s.rdb == nil {
		return snap, false
	}

	data, err := s.rdb.Get(ctx, snapshotKeyPrefix+sessionID).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("⚠️ Failed to load snapshot for %s: %v", sessionID, err)
		}
		return snap, false
	}

	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("⚠️ Corrupt snapshot for %s: %v", sessionID, err)
		return snap, false
	}
	return snap, true
}

func snapshotChannel(sessionID string) string {
	return snapshotKeyPrefix + sessionID + ":events"
}
