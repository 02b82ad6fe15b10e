package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/juzely/internal/garment"
	"github.com/Simplici0/juzely/internal/pricing"
	"github.com/Simplici0/juzely/internal/quote"
	"github.com/Simplici0/juzely/internal/sizing"
)

func exampleRecord(t *testing.T) quote.Record {
	t.Helper()
	cfg, err := pricing.Default()
	require.NoError(t, err)

	tmpl, err := sizing.NewRegistry().Get(garment.TShirt, "oversized")
	require.NoError(t, err)

	q, err := pricing.Calculate(quote.Selection{
		GarmentType:   garment.TShirt,
		Fabric:        "cotton_organic",
		Colourway:     "two_colors",
		Embellishment: "embroidery",
		Finishings:    "standard",
		Packaging:     "standard",
		Delivery:      "standard",
		Quantity:      25,
		SelectedFit:   "oversized",
		SizeMatrix:    sizing.ApplyTemplate(tmpl),
	}, cfg)
	require.NoError(t, err)
	q.CreatedAt = time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)

	return quote.Record{ID: "01JTESTRECORD", Title: "Atelier", Quote: q}
}

func TestWriteTextMatchesDownloadLayout(t *testing.T) {
	rec := exampleRecord(t)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, rec.Quote))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "DEVIS JUZELY - "+rec.Quote.QuoteID+"\n"+strings.Repeat("=", 50)))
	for _, line := range []string{
		"Type de vêtement: TSHIRT",
		"Date: 02/05/2025",
		"- Tissu: Coton Bio (+2.00€)",
		"- Coloris: Deux couleurs (+1.00€)",
		"- Embellissement: Broderie (+5.00€)",
		"- Livraison: Standard (7-10 jours) (4.00€)",
		"- Prix unitaire: 25.30€",
		"- Quantité: 25",
		"- Sous-total: 632.50€",
		"- Remise quantité: -63.25€ (10.0%)",
		"- TVA (20.0%): 114.65€",
		"TOTAL: 687.90€",
	} {
		assert.Contains(t, out, line+"\n")
	}
	assert.NotContains(t, out, "Référence")
	assert.NotContains(t, out, "NOTES")
}

func TestWriteRecordTextIncludesTitleAndNotes(t *testing.T) {
	rec := exampleRecord(t)
	rec.Notes = "Livrer avant le salon"

	var buf bytes.Buffer
	require.NoError(t, WriteRecordText(&buf, rec))
	out := buf.String()

	assert.Contains(t, out, "Date: 02/05/2025\nRéférence: Atelier\n\nDÉTAILS:")
	assert.Contains(t, out, "NOTES:\nLivrer avant le salon\n\nTOTAL: 687.90€")
}

func TestWriteTextShowsPricedVATRate(t *testing.T) {
	cases := []struct {
		name string
		edit func(*quote.Pricing)
		want string
	}{
		{name: "rate stored on the quote", edit: func(p *quote.Pricing) { p.VATRate = 0.055 }, want: "- TVA (5.5%): 114.65€"},
		{name: "rate derived for older records", edit: func(p *quote.Pricing) { p.VATRate = 0 }, want: "- TVA (20.0%): 114.65€"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := exampleRecord(t)
			tc.edit(&rec.Quote.Pricing)

			var buf bytes.Buffer
			require.NoError(t, WriteRecordText(&buf, rec))
			assert.Contains(t, buf.String(), tc.want+"\n")
		})
	}
}

func TestMoneyUsesCurrencyCode(t *testing.T) {
	assert.Equal(t, "4.00€", money(4, "EUR"))
	assert.Equal(t, "4.00€", money(4, ""))
	assert.Equal(t, "12.50 CHF", money(12.5, "CHF"))
}

func TestFilenames(t *testing.T) {
	rec := exampleRecord(t)
	assert.Equal(t, "devis_"+rec.Quote.QuoteID+".txt", TextFilename(rec.Quote))
	assert.Equal(t, "devis_01JTESTRECORD.xlsx", XLSXFilename(rec))
}

func TestWriteXLSX(t *testing.T) {
	rec := exampleRecord(t)
	measurements := sizing.NewRegistry().Measurements(garment.TShirt)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rec, measurements))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{quoteSheet, sizeSheet}, f.GetSheetList())

	get := func(sheet, cell string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, rec.Quote.QuoteID, get(quoteSheet, "B1"))
	assert.Equal(t, "Atelier", get(quoteSheet, "B2"))
	assert.Equal(t, "T-Shirt", get(quoteSheet, "B3"))
	assert.Equal(t, "Coton Bio", get(quoteSheet, "B8"))
	assert.Equal(t, "Total", get(quoteSheet, "A24"))
	assert.Equal(t, "687.9", get(quoteSheet, "B24"))

	assert.Equal(t, "oversized", get(sizeSheet, "B1"))
	assert.Equal(t, "XS", get(sizeSheet, "B3"))
	assert.Equal(t, "XL", get(sizeSheet, "F3"))
	assert.Equal(t, "A - Total Length (cm)", get(sizeSheet, "A4"))
	assert.Equal(t, "I - Shoulder-to-Shoulder (cm)", get(sizeSheet, "A12"))
	// M chest width on the oversized grade: 56 + 6
	assert.Equal(t, "62", get(sizeSheet, "D5"))
}

func TestWriteSheetsReportCellErrors(t *testing.T) {
	rec := exampleRecord(t)

	f := excelize.NewFile()
	defer f.Close()

	// Neither sheet exists in a fresh workbook, so the first write fails.
	err := writeQuoteSheet(f, rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), quoteSheet)

	err = writeSizeSheet(f, rec.Quote.SizeInfo, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), sizeSheet)

	assert.Error(t, setCell(f, "Sheet1", 0, 1, "x"), "column 0 has no cell name")
}
