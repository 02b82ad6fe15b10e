package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Simplici0/juzely/internal/garment"
	"github.com/Simplici0/juzely/internal/quote"
)

const (
	keyNamespace  = "juzely"
	quotePrefix   = "quote"
	garmentPrefix = "garment"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	SetXX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
	SAdd(context.Context, string, ...any) *redis.IntCmd
	SRem(context.Context, string, ...any) *redis.IntCmd
	SMembers(context.Context, string) *redis.StringSliceCmd
}

// Redis stores each record as a JSON string keyed by id, plus one set of ids
// per garment type for listing.
type Redis struct {
	store cmdable
	raw   *redis.Client
	now   func() time.Time
}

// NewRedis connects to url and verifies connectivity.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{store: raw, raw: raw, now: time.Now}, nil
}

func (s *Redis) quoteKey(id string) string {
	return fmt.Sprintf("%s:%s:%s", keyNamespace, quotePrefix, id)
}

func (s *Redis) garmentKey(g garment.Type) string {
	return fmt.Sprintf("%s:%s:%s", keyNamespace, garmentPrefix, g)
}

func (s *Redis) Save(ctx context.Context, q quote.Quote) (string, error) {
	rec := quote.NewRecord(q, s.now())
	if err := s.SaveRecord(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *Redis) SaveRecord(ctx context.Context, rec quote.Record) error {
	if err := s.put(ctx, rec); err != nil {
		return persistenceError("save quote", err)
	}
	if err := s.store.SAdd(ctx, s.garmentKey(rec.Quote.GarmentType), rec.ID).Err(); err != nil {
		// Drop the record so a failed save leaves nothing behind.
		_ = s.store.Del(ctx, s.quoteKey(rec.ID)).Err()
		return persistenceError("index quote", err)
	}
	return nil
}

func (s *Redis) GetByID(ctx context.Context, id string) (quote.Record, error) {
	rec, err := s.get(ctx, id)
	if errors.Is(err, redis.Nil) {
		return quote.Record{}, quote.ErrNotFound
	}
	if err != nil {
		return quote.Record{}, persistenceError("get quote", err)
	}
	return rec, nil
}

// ListByGarmentType returns the garment's records, newest first. Index
// entries whose record has gone are skipped.
func (s *Redis) ListByGarmentType(ctx context.Context, g garment.Type) ([]quote.Record, error) {
	ids, err := s.store.SMembers(ctx, s.garmentKey(g)).Result()
	if err != nil {
		return nil, persistenceError("list quotes", err)
	}

	records := make([]quote.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.get(ctx, id)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, persistenceError("list quotes", err)
		}
		records = append(records, rec)
	}
	sortNewestFirst(records)
	return records, nil
}

func (s *Redis) Update(ctx context.Context, id string, p quote.Patch) (bool, error) {
	rec, err := s.get(ctx, id)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, persistenceError("update quote", err)
	}

	p.Apply(&rec, s.now())
	payload, err := json.Marshal(rec)
	if err != nil {
		return false, persistenceError("update quote", fmt.Errorf("encode quote %s: %w", id, err))
	}
	// XX only overwrites an existing key, so a concurrent Delete wins.
	written, err := s.store.SetXX(ctx, s.quoteKey(id), payload, 0).Result()
	if err != nil {
		return false, persistenceError("update quote", err)
	}
	return written, nil
}

func (s *Redis) Delete(ctx context.Context, id string) (bool, error) {
	rec, err := s.get(ctx, id)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, persistenceError("delete quote", err)
	}

	removed, err := s.store.Del(ctx, s.quoteKey(id)).Result()
	if err != nil {
		return false, persistenceError("delete quote", err)
	}
	if err := s.store.SRem(ctx, s.garmentKey(rec.Quote.GarmentType), id).Err(); err != nil {
		return false, persistenceError("unindex quote", err)
	}
	return removed > 0, nil
}

// Search scans every garment index and filters in memory.
func (s *Redis) Search(ctx context.Context, c Criteria) ([]quote.Record, error) {
	garments := garment.All()
	if c.Garment != "" {
		garments = []garment.Type{c.Garment}
	}

	matched := make([]quote.Record, 0)
	for _, g := range garments {
		records, err := s.ListByGarmentType(ctx, g)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if c.Matches(rec) {
				matched = append(matched, rec)
			}
		}
	}
	sortNewestFirst(matched)
	return matched, nil
}

func (s *Redis) Stats(ctx context.Context) (Stats, error) {
	records, err := s.Search(ctx, Criteria{})
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{TotalQuotes: len(records), ByGarment: map[garment.Type]int{}}
	for _, rec := range records {
		stats.ByGarment[rec.Quote.GarmentType]++
		created := rec.CreatedAt
		if stats.OldestQuote == nil || created.Before(*stats.OldestQuote) {
			stats.OldestQuote = &created
		}
		if stats.NewestQuote == nil || created.After(*stats.NewestQuote) {
			stats.NewestQuote = &created
		}
	}
	return stats, nil
}

func (s *Redis) PurgeOlderThan(ctx context.Context, age time.Duration) (int, error) {
	if age <= 0 {
		return 0, fmt.Errorf("purge age must be positive, got %s", age)
	}
	records, err := s.Search(ctx, Criteria{})
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-age)
	purged := 0
	for _, rec := range records {
		if !rec.CreatedAt.Before(cutoff) {
			continue
		}
		ok, err := s.Delete(ctx, rec.ID)
		if err != nil {
			return purged, err
		}
		if ok {
			purged++
		}
	}
	return purged, nil
}

func (s *Redis) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}

func (s *Redis) get(ctx context.Context, id string) (quote.Record, error) {
	raw, err := s.store.Get(ctx, s.quoteKey(id)).Result()
	if err != nil {
		return quote.Record{}, err
	}
	var rec quote.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return quote.Record{}, fmt.Errorf("decode quote %s: %w", id, err)
	}
	return rec, nil
}

func (s *Redis) put(ctx context.Context, rec quote.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode quote %s: %w", rec.ID, err)
	}
	return s.store.Set(ctx, s.quoteKey(rec.ID), payload, 0).Err()
}
