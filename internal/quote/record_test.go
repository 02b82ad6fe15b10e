package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/juzely/internal/garment"
)

func TestNewRecordStampsMetadata(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	q := Quote{QuoteID: "quote_x", GarmentType: garment.Hoodie}

	r := NewRecord(q, now)

	require.Len(t, r.ID, 26)
	assert.Equal(t, RecordVersion, r.Version)
	assert.Equal(t, now.UTC(), r.CreatedAt)
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
	assert.Equal(t, "quote_x", r.Quote.QuoteID)

	other := NewRecord(q, now)
	assert.NotEqual(t, r.ID, other.ID)
}

func TestPatchApplyOnlyTouchesSetFields(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r := Record{ID: "1", Title: "old", Notes: "keep", CreatedAt: created, UpdatedAt: created}

	title := "  Team order  "
	later := created.Add(time.Hour)
	Patch{Title: &title}.Apply(&r, later)

	assert.Equal(t, "Team order", r.Title)
	assert.Equal(t, "keep", r.Notes)
	assert.Equal(t, created, r.CreatedAt)
	assert.Equal(t, later, r.UpdatedAt)
}

func TestPatchIsEmpty(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())
	notes := ""
	assert.False(t, Patch{Notes: &notes}.IsEmpty())
}

func TestPricingTaxRate(t *testing.T) {
	cases := []struct {
		name string
		p    Pricing
		want float64
	}{
		{name: "stored", p: Pricing{VATRate: 0.055, SubtotalAfterDiscount: 100, TaxAmount: 20}, want: 0.055},
		{name: "derived", p: Pricing{SubtotalAfterDiscount: 569.25, DeliveryCost: 4, TaxAmount: 114.65}, want: 0.2},
		{name: "nothing taxed", p: Pricing{}, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.p.TaxRate())
		})
	}
}
