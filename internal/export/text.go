// Package export renders quotes as downloadable documents.
package export

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Simplici0/juzely/internal/quote"
)

var textTemplate = template.Must(template.New("devis").Funcs(template.FuncMap{
	"money":   money,
	"upper":   strings.ToUpper,
	"percent": func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
	"rule":    func() string { return strings.Repeat("=", 50) },
}).Parse(`DEVIS JUZELY - {{.Quote.QuoteID}}
{{rule}}

Type de vêtement: {{upper (print .Quote.GarmentType)}}
Date: {{.Quote.CreatedAt.Format "02/01/2006"}}
{{- with .Title}}
Référence: {{.}}
{{- end}}

DÉTAILS:
- Tissu: {{.Quote.Breakdown.Fabric.Name}} (+{{money .Quote.Breakdown.Fabric.Cost .Quote.Currency}})
- Coloris: {{.Quote.Breakdown.Colourway.Name}} (+{{money .Quote.Breakdown.Colourway.Cost .Quote.Currency}})
- Embellissement: {{.Quote.Breakdown.Embellishment.Name}} (+{{money .Quote.Breakdown.Embellishment.Cost .Quote.Currency}})
- Finitions: {{.Quote.Breakdown.Finishings.Name}} (+{{money .Quote.Breakdown.Finishings.Cost .Quote.Currency}})
- Emballage: {{.Quote.Breakdown.Packaging.Name}} (+{{money .Quote.Breakdown.Packaging.Cost .Quote.Currency}})
- Livraison: {{.Quote.Breakdown.Delivery.Name}} ({{money .Quote.Breakdown.Delivery.Cost .Quote.Currency}})

TARIFICATION:
- Prix unitaire: {{money .Quote.Pricing.UnitPrice .Quote.Currency}}
- Quantité: {{.Quote.Pricing.Quantity}}
- Sous-total: {{money .Quote.Pricing.Subtotal .Quote.Currency}}
- Remise quantité: -{{money .Quote.Pricing.QuantityDiscount.Amount .Quote.Currency}} ({{percent .Quote.Pricing.QuantityDiscount.Percentage}})
- Livraison: {{money .Quote.Pricing.DeliveryCost .Quote.Currency}}
- TVA ({{percent .Quote.Pricing.TaxRate}}): {{money .Quote.Pricing.TaxAmount .Quote.Currency}}
{{- with .Notes}}

NOTES:
{{.}}
{{- end}}

TOTAL: {{money .Quote.Pricing.TotalPrice .Quote.Currency}}
`))

type textData struct {
	Quote quote.Quote
	Title string
	Notes string
}

// WriteText writes the plain-text summary of q. The tax line shows the rate q
// was priced with.
func WriteText(w io.Writer, q quote.Quote) error {
	return writeText(w, textData{Quote: q})
}

// WriteRecordText is WriteText plus the record's title and notes.
func WriteRecordText(w io.Writer, r quote.Record) error {
	return writeText(w, textData{Quote: r.Quote, Title: r.Title, Notes: r.Notes})
}

func writeText(w io.Writer, data textData) error {
	if err := textTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render quote text: %w", err)
	}
	return nil
}

// TextFilename is the download name for a quote's text summary.
func TextFilename(q quote.Quote) string {
	return "devis_" + q.QuoteID + ".txt"
}

func money(amount float64, currency string) string {
	if currency == "" || currency == "EUR" {
		return fmt.Sprintf("%.2f€", amount)
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}
