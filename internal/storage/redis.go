package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jobdeck/jobdeck/internal/logger"
)

// changeChannel carries "<instanceID>|<key>" messages so every process
// sharing the store learns about writes it did not make itself.
const changeChannel = "jobdeck:changes"

// RedisStore persists each document as one JSON blob under its key and uses
// pub/sub to re-broadcast externally-originated changes. Local writes notify
// local subscribers directly; the pub/sub reader skips messages carrying our
// own instance id so a write is never delivered twice.
type RedisStore struct {
	client     *redis.Client
	hub        *hub
	instanceID string
	pubsub     *redis.PubSub
	log        logger.Logger
}

func NewRedisStore(ctx context.Context, opts *redis.Options, log logger.Logger) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	s := &RedisStore{
		client:     client,
		hub:        newHub(),
		instanceID: uuid.NewString(),
		log:        log,
	}

	s.pubsub = client.Subscribe(ctx, changeChannel)
	// Wait for the subscription to be confirmed before returning, so no
	// external change slips past between construction and the read loop.
	if _, err := s.pubsub.Receive(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}
	go s.readLoop()

	return s, nil
}

func (s *RedisStore) readLoop() {
	for msg := range s.pubsub.Channel() {
		key, ok := externalKey(msg.Payload, s.instanceID)
		if !ok {
			continue
		}
		s.hub.broadcast(key)
	}
}

// externalKey decides whether one pub/sub message is an externally-originated
// change worth re-broadcasting. Messages carrying our own instance id are
// echoes of writes already delivered locally by Put; payloads without the
// origin separator are malformed and ignored.
func externalKey(payload, instanceID string) (string, bool) {
	origin, key, ok := strings.Cut(payload, "|")
	if !ok || origin == instanceID || key == "" {
		return "", false
	}
	return key, true
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	// No TTL: documents live until overwritten.
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	s.hub.broadcast(key)

	payload := s.instanceID + "|" + key
	if err := s.client.Publish(ctx, changeChannel, payload).Err(); err != nil {
		// The write itself landed; other processes just won't hear about
		// it until their next write cycle. Log and move on.
		s.log.Warn("publish change failed", logger.String("key", key), logger.Error(err))
	}
	return nil
}

func (s *RedisStore) Subscribe(fn func(key string)) func() {
	return s.hub.subscribe(fn)
}

func (s *RedisStore) Close() error {
	if err := s.pubsub.Close(); err != nil {
		s.client.Close()
		return err
	}
	return s.client.Close()
}
