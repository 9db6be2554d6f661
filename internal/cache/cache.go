package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Credential is a bearer token and the instant after which it must no
// longer be handed out. ExpiresAt already has the refresh margin applied.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (c Credential) ValidAt(now time.Time) bool {
	return c.Token != "" && now.Before(c.ExpiresAt)
}

// CredentialStore holds the process-wide provider credential. It never
// stores flight data.
type CredentialStore interface {
	Get(ctx context.Context) (Credential, bool)
	Set(ctx context.Context, cred Credential) error
	Close() error
}

type MemoryStore struct {
	mu   sync.RWMutex
	cred Credential
	set  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.set
}

func (s *MemoryStore) Set(ctx context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	s.set = true
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// RedisStore shares the credential between service instances so that a
// horizontally scaled deployment performs one exchange per token lifetime.
type RedisStore struct {
	client *redis.Client
	key    string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Key      string
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host: "localhost",
		Port: "6379",
		DB:   0,
		Key:  "flightcapacity:provider-token",
	}
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.Key), nil
}

func NewRedisStoreFromClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisConfig().Key
	}
	return &RedisStore{
		client: client,
		key:    key,
	}
}

func (s *RedisStore) Get(ctx context.Context) (Credential, bool) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		return Credential{}, false
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, false
	}

	return cred, true
}

func (s *RedisStore) Set(ctx context.Context, cred Credential) error {
	ttl := time.Until(cred.ExpiresAt)
	if ttl <= 0 {
		return errors.New("credential already expired")
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.key, data, ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
