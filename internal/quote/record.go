package quote

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Simplici0/juzely/internal/garment"
)

// RecordVersion is stamped on every persisted record.
const RecordVersion = "1.0"

// ErrNotFound is returned by Store.GetByID when no record has the id.
var ErrNotFound = errors.New("quote not found")

// Record is a persisted Quote plus its storage metadata.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Quote     Quote     `json:"quote"`
}

// NewRecord assigns a durable, time-sortable id to q.
func NewRecord(q Quote, now time.Time) Record {
	now = now.UTC()
	return Record{
		ID:        ulid.Make().String(),
		Version:   RecordVersion,
		CreatedAt: now,
		UpdatedAt: now,
		Quote:     q,
	}
}

// Patch is the set of fields an update may change. Nil fields are left alone.
type Patch struct {
	Title *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Notes == nil
}

// Apply merges p into r and refreshes UpdatedAt.
func (p Patch) Apply(r *Record, now time.Time) {
	if p.Title != nil {
		r.Title = strings.TrimSpace(*p.Title)
	}
	if p.Notes != nil {
		r.Notes = strings.TrimSpace(*p.Notes)
	}
	r.UpdatedAt = now.UTC()
}

// Store persists quotes. Implementations label I/O failures with
// apperr.CodePersistence and must not leave a partial record behind.
type Store interface {
	Save(ctx context.Context, q Quote) (string, error)
	GetByID(ctx context.Context, id string) (Record, error)
	ListByGarmentType(ctx context.Context, g garment.Type) ([]Record, error)
	Update(ctx context.Context, id string, p Patch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}
