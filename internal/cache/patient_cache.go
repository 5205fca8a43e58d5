// Package cache keeps recently read patient documents in Redis.
//
// Entries are keyed by a per-patient generation. Writers bump the generation
// instead of deleting the entry, so a reader that loaded a document before a
// write can only park it under a generation nobody asks for any more.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yusufkecer/anamnesis-backend/internal/domain"
)

const (
	keyPrefix = "anamnesis:patient:"
	genPrefix = "anamnesis:patient-gen:"
)

type PatientCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect opens a client and pings it once.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func NewPatientCache(client *redis.Client, ttl time.Duration) *PatientCache {
	return &PatientCache{client: client, ttl: ttl}
}

func entryKey(id string, gen int64) string {
	return keyPrefix + id + ":" + strconv.FormatInt(gen, 10)
}

// Get returns the cached document and the generation it was looked up under.
// hit is false on a miss; pass gen to Set once the document is loaded.
func (c *PatientCache) Get(ctx context.Context, id string) (p *domain.Patient, gen int64, hit bool, err error) {
	gen, err = c.client.Get(ctx, genPrefix+id).Int64()
	if errors.Is(err, redis.Nil) {
		gen, err = 0, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read cache generation: %w", err)
	}

	raw, err := c.client.Get(ctx, entryKey(id, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("failed to read cached patient: %w", err)
	}

	var cached domain.Patient
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, gen, false, fmt.Errorf("failed to decode cached patient: %w", err)
	}
	return &cached, gen, true, nil
}

func (c *PatientCache) Set(ctx context.Context, p *domain.Patient, gen int64) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode patient: %w", err)
	}
	if err := c.client.Set(ctx, entryKey(p.ID, gen), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache patient: %w", err)
	}
	return nil
}

// Invalidate moves the patient to a new generation. The generation key
// outlives any entry written under it, so a reset to zero never revives one.
func (c *PatientCache) Invalidate(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genPrefix+id)
		if c.ttl > 0 {
			pipe.Expire(ctx, genPrefix+id, 2*c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate patient: %w", err)
	}
	return nil
}
