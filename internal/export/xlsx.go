package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/juzely/internal/quote"
	"github.com/Simplici0/juzely/internal/sizing"
)

const (
	quoteSheet = "Devis"
	sizeSheet  = "Tailles"
)

// WriteXLSX writes a workbook with the quote lines on one sheet and the size
// matrix on another. measurements orders and labels the matrix rows; keys
// not listed keep their stored order.
func WriteXLSX(w io.Writer, r quote.Record, measurements []sizing.Measurement) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), quoteSheet); err != nil {
		return fmt.Errorf("rename quote sheet: %w", err)
	}
	if err := writeQuoteSheet(f, r); err != nil {
		return err
	}

	if _, err := f.NewSheet(sizeSheet); err != nil {
		return fmt.Errorf("add size sheet: %w", err)
	}
	if err := writeSizeSheet(f, r.Quote.SizeInfo, measurements); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write quote workbook: %w", err)
	}
	return nil
}

// XLSXFilename is the download name for a record's workbook.
func XLSXFilename(r quote.Record) string {
	return "devis_" + r.ID + ".xlsx"
}

func writeQuoteSheet(f *excelize.File, r quote.Record) error {
	q := r.Quote
	rows := [][]any{
		{"Devis", q.QuoteID},
		{"Référence", r.Title},
		{"Type de vêtement", q.GarmentType.DisplayName()},
		{"Date", q.CreatedAt.Format("02/01/2006")},
		{"Devise", q.Currency},
		{},
		{"Poste", "Option", "Coût", "Multiplicateur"},
		{"Tissu", q.Breakdown.Fabric.Name, q.Breakdown.Fabric.Cost, q.Breakdown.Fabric.Multiplier},
		{"Coloris", q.Breakdown.Colourway.Name, q.Breakdown.Colourway.Cost},
		{"Embellissement", q.Breakdown.Embellishment.Name, q.Breakdown.Embellishment.Cost},
		{"Finitions", q.Breakdown.Finishings.Name, q.Breakdown.Finishings.Cost},
		{"Emballage", q.Breakdown.Packaging.Name, q.Breakdown.Packaging.Cost},
		{"Livraison", q.Breakdown.Delivery.Name, q.Breakdown.Delivery.Cost},
		{},
		{"Prix de base", q.Pricing.BasePrice},
		{"Prix unitaire", q.Pricing.UnitPrice},
		{"Quantité", q.Pricing.Quantity},
		{"Sous-total", q.Pricing.Subtotal},
		{"Remise quantité (%)", q.Pricing.QuantityDiscount.Percentage * 100},
		{"Remise quantité", q.Pricing.QuantityDiscount.Amount},
		{"Sous-total après remise", q.Pricing.SubtotalAfterDiscount},
		{"Livraison", q.Pricing.DeliveryCost},
		{"TVA", q.Pricing.TaxAmount},
		{"Total", q.Pricing.TotalPrice},
		{},
		{"Supplément taille personnalisée (%)", q.Surcharges.CustomSize * 100},
		{"Supplément commande urgente (%)", q.Surcharges.RushOrder * 100},
	}

	for i, row := range rows {
		for j, value := range row {
			if err := setCell(f, quoteSheet, j+1, i+1, value); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(quoteSheet, "A", "A", 34); err != nil {
		return fmt.Errorf("size quote sheet: %w", err)
	}
	if err := f.SetColWidth(quoteSheet, "B", "B", 28); err != nil {
		return fmt.Errorf("size quote sheet: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("%s cell (%d,%d): %w", sheet, col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("%s cell %s: %w", sheet, cell, err)
	}
	return nil
}

func writeSizeSheet(f *excelize.File, info quote.SizeInfo, measurements []sizing.Measurement) error {
	// set keeps the first failure; later writes are skipped.
	var firstErr error
	set := func(col, row int, value any) {
		if firstErr == nil {
			firstErr = setCell(f, sizeSheet, col, row, value)
		}
	}

	set(1, 1, "Coupe")
	set(2, 1, info.SelectedFit)

	order := make([]sizing.MeasurementKey, len(measurements))
	labels := make(map[sizing.MeasurementKey]sizing.Measurement, len(measurements))
	for i, m := range measurements {
		order[i] = m.Key
		labels[m.Key] = m
	}
	matrix := info.SizeData.OrderKeys(order)
	sizes := matrix.Sizes()

	const header = 3
	set(1, header, "Mesure")
	for j, size := range sizes {
		set(j+2, header, string(size))
	}

	for i, key := range matrix.Keys() {
		row := header + 1 + i
		label := string(key)
		if m, ok := labels[key]; ok {
			label = fmt.Sprintf("%s - %s (%s)", m.Letter, m.Label, m.Unit)
		}
		set(1, row, label)
		for j, size := range sizes {
			if v, ok := matrix.Get(size, key); ok {
				set(j+2, row, v)
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}
	if err := f.SetColWidth(sizeSheet, "A", "A", 32); err != nil {
		return fmt.Errorf("size measurement sheet: %w", err)
	}
	return nil
}
