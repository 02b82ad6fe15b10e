// Package store implements quote.Store on SQLite and Redis.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Simplici0/juzely/internal/apperr"
	"github.com/Simplici0/juzely/internal/garment"
	"github.com/Simplici0/juzely/internal/metrics"
	"github.com/Simplici0/juzely/internal/quote"
)

// DefaultRetention is how long records survive PurgeOlderThan by default.
const DefaultRetention = 30 * 24 * time.Hour

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Criteria filters a Search. Zero fields match everything.
type Criteria struct {
	Garment garment.Type
	Fit     string
	From    time.Time
	To      time.Time
	Query   string
}

// Matches reports whether r satisfies c.
func (c Criteria) Matches(r quote.Record) bool {
	if c.Garment != "" && r.Quote.GarmentType != c.Garment {
		return false
	}
	if c.Fit != "" && !strings.EqualFold(r.Quote.SizeInfo.SelectedFit, c.Fit) {
		return false
	}
	if !c.From.IsZero() && r.CreatedAt.Before(c.From) {
		return false
	}
	if !c.To.IsZero() && r.CreatedAt.After(c.To) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(c.Query)); q != "" {
		if !strings.Contains(strings.ToLower(r.Title), q) && !strings.Contains(strings.ToLower(r.Notes), q) {
			return false
		}
	}
	return true
}

// Stats summarizes the stored quotes.
type Stats struct {
	TotalQuotes int                  `json:"totalQuotes"`
	ByGarment   map[garment.Type]int `json:"byGarment"`
	OldestQuote *time.Time           `json:"oldestQuote,omitempty"`
	NewestQuote *time.Time           `json:"newestQuote,omitempty"`
}

// Manager is the full store surface used by the server: the quote.Store
// contract plus search, stats and retention.
type Manager interface {
	quote.Store
	// SaveRecord inserts a fully built record in one write.
	SaveRecord(ctx context.Context, rec quote.Record) error
	Search(ctx context.Context, c Criteria) ([]quote.Record, error)
	Stats(ctx context.Context) (Stats, error)
	PurgeOlderThan(ctx context.Context, age time.Duration) (int, error)
	Close() error
}

func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperr.As(err) != nil {
		return err
	}
	return apperr.Wrap(apperr.CodePersistence, fmt.Errorf("%s: %w", op, err), "unable to persist quote")
}

func sortNewestFirst(records []quote.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", raw, err)
	}
	return t, nil
}

// Instrumented records a metric for every call on the wrapped Manager.
type Instrumented struct {
	inner   Manager
	metrics *metrics.Metrics
}

func NewInstrumented(inner Manager, m *metrics.Metrics) *Instrumented {
	return &Instrumented{inner: inner, metrics: m}
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	if errors.Is(err, quote.ErrNotFound) {
		err = nil
	}
	s.metrics.ObserveStore(op, time.Since(start), err)
}

func (s *Instrumented) Save(ctx context.Context, q quote.Quote) (id string, err error) {
	defer func(start time.Time) { s.observe("save", start, err) }(time.Now())
	return s.inner.Save(ctx, q)
}

func (s *Instrumented) SaveRecord(ctx context.Context, rec quote.Record) (err error) {
	defer func(start time.Time) { s.observe("save", start, err) }(time.Now())
	return s.inner.SaveRecord(ctx, rec)
}

func (s *Instrumented) GetByID(ctx context.Context, id string) (r quote.Record, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())
	return s.inner.GetByID(ctx, id)
}

func (s *Instrumented) ListByGarmentType(ctx context.Context, g garment.Type) (rs []quote.Record, err error) {
	defer func(start time.Time) { s.observe("list", start, err) }(time.Now())
	return s.inner.ListByGarmentType(ctx, g)
}

func (s *Instrumented) Update(ctx context.Context, id string, p quote.Patch) (ok bool, err error) {
	defer func(start time.Time) { s.observe("update", start, err) }(time.Now())
	return s.inner.Update(ctx, id, p)
}

func (s *Instrumented) Delete(ctx context.Context, id string) (ok bool, err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())
	return s.inner.Delete(ctx, id)
}

func (s *Instrumented) Search(ctx context.Context, c Criteria) (rs []quote.Record, err error) {
	defer func(start time.Time) { s.observe("search", start, err) }(time.Now())
	return s.inner.Search(ctx, c)
}

func (s *Instrumented) Stats(ctx context.Context) (st Stats, err error) {
	defer func(start time.Time) { s.observe("stats", start, err) }(time.Now())
	return s.inner.Stats(ctx)
}

func (s *Instrumented) PurgeOlderThan(ctx context.Context, age time.Duration) (n int, err error) {
	defer func(start time.Time) { s.observe("purge", start, err) }(time.Now())
	return s.inner.PurgeOlderThan(ctx, age)
}

func (s *Instrumented) Close() error { return s.inner.Close() }
