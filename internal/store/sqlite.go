package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/juzely/internal/garment"
	"github.com/Simplici0/juzely/internal/quote"
)

// SQLite stores quotes in the quotes table created by the migrations.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, now: time.Now}
}

// likeEscaper makes % and _ in a search query match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const recordColumns = `
	id,
	COALESCE(title, ''),
	COALESCE(notes, ''),
	version,
	quote_json,
	created_at,
	updated_at
`

func (s *SQLite) Save(ctx context.Context, q quote.Quote) (string, error) {
	rec := quote.NewRecord(q, s.now())
	if err := s.SaveRecord(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *SQLite) SaveRecord(ctx context.Context, rec quote.Record) error {
	q := rec.Quote
	payload, err := json.Marshal(q)
	if err != nil {
		return persistenceError("encode quote", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quotes (
			id,
			quote_id,
			garment_type,
			selected_fit,
			title,
			notes,
			version,
			currency,
			total_price,
			quote_json,
			created_at,
			updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		q.QuoteID,
		string(q.GarmentType),
		q.SizeInfo.SelectedFit,
		nilIfEmpty(rec.Title),
		nilIfEmpty(rec.Notes),
		rec.Version,
		q.Currency,
		q.Pricing.TotalPrice,
		string(payload),
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return persistenceError("insert quote", err)
	}
	return nil
}

func (s *SQLite) GetByID(ctx context.Context, id string) (quote.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM quotes WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return quote.Record{}, quote.ErrNotFound
	}
	if err != nil {
		return quote.Record{}, persistenceError("get quote", err)
	}
	return rec, nil
}

func (s *SQLite) ListByGarmentType(ctx context.Context, g garment.Type) ([]quote.Record, error) {
	return s.Search(ctx, Criteria{Garment: g})
}

func (s *SQLite) Update(ctx context.Context, id string, p quote.Patch) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE quotes
		SET
			title = COALESCE(?, title),
			notes = COALESCE(?, notes),
			updated_at = ?
		WHERE id = ?
	`, trimmedOrNil(p.Title), trimmedOrNil(p.Notes), formatTime(s.now()), id)
	if err != nil {
		return false, persistenceError("update quote", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, persistenceError("update quote", err)
	}
	return affected > 0, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return false, persistenceError("delete quote", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, persistenceError("delete quote", err)
	}
	return affected > 0, nil
}

// Search returns matching records, newest first.
func (s *SQLite) Search(ctx context.Context, c Criteria) ([]quote.Record, error) {
	var from, to string
	if !c.From.IsZero() {
		from = formatTime(c.From)
	}
	if !c.To.IsZero() {
		to = formatTime(c.To)
	}
	query := strings.TrimSpace(c.Query)
	like := "%" + likeEscaper.Replace(query) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM quotes
		WHERE (? = '' OR garment_type = ?)
			AND (? = '' OR selected_fit = ? COLLATE NOCASE)
			AND (? = '' OR created_at >= ?)
			AND (? = '' OR created_at <= ?)
			AND (? = '' OR COALESCE(title, '') LIKE ? ESCAPE '\' OR COALESCE(notes, '') LIKE ? ESCAPE '\')
		ORDER BY created_at DESC, id DESC
	`,
		string(c.Garment), string(c.Garment),
		c.Fit, c.Fit,
		from, from,
		to, to,
		query, like, like,
	)
	if err != nil {
		return nil, persistenceError("search quotes", err)
	}
	defer rows.Close()

	records := make([]quote.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, persistenceError("scan quote", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, persistenceError("search quotes", err)
	}

	return records, nil
}

func (s *SQLite) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByGarment: map[garment.Type]int{}}

	rows, err := s.db.QueryContext(ctx, `
		SELECT garment_type, COUNT(*), MIN(created_at), MAX(created_at)
		FROM quotes
		GROUP BY garment_type
	`)
	if err != nil {
		return Stats{}, persistenceError("quote stats", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			g              string
			count          int
			oldest, newest string
		)
		if err := rows.Scan(&g, &count, &oldest, &newest); err != nil {
			return Stats{}, persistenceError("scan quote stats", err)
		}
		stats.TotalQuotes += count
		stats.ByGarment[garment.Type(g)] = count

		if err := widen(&stats, oldest, newest); err != nil {
			return Stats{}, persistenceError("quote stats", err)
		}
	}

	if err := rows.Err(); err != nil {
		return Stats{}, persistenceError("quote stats", err)
	}

	return stats, nil
}

func widen(stats *Stats, oldestRaw, newestRaw string) error {
	oldest, err := parseTime(oldestRaw)
	if err != nil {
		return err
	}
	newest, err := parseTime(newestRaw)
	if err != nil {
		return err
	}
	if stats.OldestQuote == nil || oldest.Before(*stats.OldestQuote) {
		stats.OldestQuote = &oldest
	}
	if stats.NewestQuote == nil || newest.After(*stats.NewestQuote) {
		stats.NewestQuote = &newest
	}
	return nil
}

// PurgeOlderThan deletes records created more than age ago.
func (s *SQLite) PurgeOlderThan(ctx context.Context, age time.Duration) (int, error) {
	if age <= 0 {
		return 0, fmt.Errorf("purge age must be positive, got %s", age)
	}
	cutoff := formatTime(s.now().Add(-age))

	result, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, persistenceError("purge quotes", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, persistenceError("purge quotes", err)
	}
	return int(affected), nil
}

// Close is a no-op; the *sql.DB belongs to the caller.
func (s *SQLite) Close() error { return nil }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (quote.Record, error) {
	var (
		rec                  quote.Record
		payload              string
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.ID, &rec.Title, &rec.Notes, &rec.Version, &payload, &createdAt, &updatedAt); err != nil {
		return quote.Record{}, err
	}
	if err := json.Unmarshal([]byte(payload), &rec.Quote); err != nil {
		return quote.Record{}, fmt.Errorf("decode quote %s: %w", rec.ID, err)
	}

	var err error
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return quote.Record{}, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return quote.Record{}, err
	}
	return rec, nil
}

func nilIfEmpty(v string) any {
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	return v
}

func trimmedOrNil(v *string) any {
	if v == nil {
		return nil
	}
	return strings.TrimSpace(*v)
}
