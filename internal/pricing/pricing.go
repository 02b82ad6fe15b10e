// Package pricing turns a customer Selection into a priced Quote.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/juzely/internal/apperr"
	"github.com/Simplici0/juzely/internal/garment"
	"github.com/Simplici0/juzely/internal/quote"
	"github.com/Simplici0/juzely/internal/sizing"
)

const (
	// FallbackBasePrice is charged when neither the garment nor the default
	// garment has a configured base price.
	FallbackBasePrice = 15.00
	// UnspecifiedName labels breakdown lines whose option is absent or unknown.
	UnspecifiedName = "Non spécifié"
)

var one = decimal.NewFromInt(1)

// Calculator prices selections against one Config. The clock and id source
// are the only non-deterministic inputs and can be replaced in tests.
type Calculator struct {
	cfg   *Config
	now   func() time.Time
	newID func() string
}

func NewCalculator(cfg *Config) *Calculator {
	return &Calculator{cfg: cfg, now: time.Now, newID: newQuoteID}
}

func (c *Calculator) Config() *Config { return c.cfg }

// Calculate computes a quote with the default clock and id source.
func Calculate(sel quote.Selection, cfg *Config) (quote.Quote, error) {
	return NewCalculator(cfg).Calculate(sel)
}

// Calculate returns a complete Quote or a CALCULATION_FAILED error, never a
// partial result. Unknown option ids cost nothing; they are not errors.
func (c *Calculator) Calculate(sel quote.Selection) (q quote.Quote, err error) {
	defer func() {
		if r := recover(); r != nil {
			q = quote.Quote{}
			err = apperr.Wrap(apperr.CodeCalculation, fmt.Errorf("panic: %v", r), "unable to calculate quote")
		}
	}()

	if c == nil || c.cfg == nil {
		return quote.Quote{}, apperr.Wrap(apperr.CodeCalculation, errors.New("pricing config is nil"), "unable to calculate quote")
	}
	cfg := c.cfg

	garmentType := sel.GarmentType
	if garmentType == "" {
		garmentType = garment.Default
	}

	basePrice := decimal.NewFromFloat(cfg.basePrice(garmentType))

	fabric, fabricKnown := cfg.FabricPricing[sel.Fabric]
	if !fabricKnown {
		fabric = FabricOption{Multiplier: 1}
	}
	fabricAdditional := decimal.NewFromFloat(fabric.AdditionalCost)
	fabricMultiplier := decimal.NewFromFloat(fabric.Multiplier)

	colourway := adder(cfg.ColourwayPricing, sel.Colourway)
	embellishment := adder(cfg.EmbellishmentPricing, sel.Embellishment)
	finishings := adder(cfg.FinishingsPricing, sel.Finishings)
	packaging := adder(cfg.PackagingPricing, sel.Packaging)

	unitPrice := basePrice.
		Add(fabricAdditional).
		Add(colourway.cost).
		Add(embellishment.cost).
		Add(finishings.cost).
		Add(packaging.cost).
		Mul(fabricMultiplier)

	var surcharges quote.Surcharges
	if sel.IsCustomSize && cfg.CustomSizeUpcharge.Enabled {
		unitPrice = unitPrice.Mul(one.Add(decimal.NewFromFloat(cfg.CustomSizeUpcharge.Percentage)))
		surcharges.CustomSize = cfg.CustomSizeUpcharge.Percentage
	}
	if sel.IsRushOrder && cfg.RushOrderUpcharge.Enabled {
		unitPrice = unitPrice.Mul(one.Add(decimal.NewFromFloat(cfg.RushOrderUpcharge.Percentage)))
		surcharges.RushOrder = cfg.RushOrderUpcharge.Percentage
	}

	quantity := decimal.NewFromInt(int64(sel.Quantity))
	subtotal := unitPrice.Mul(quantity)

	discountRate := cfg.discountRate(sel.Quantity)
	discountAmount := subtotal.Mul(decimal.NewFromFloat(discountRate))
	subtotalAfterDiscount := subtotal.Sub(discountAmount)

	delivery, deliveryKnown, err := cfg.delivery(sel.Delivery)
	if err != nil {
		return quote.Quote{}, apperr.Wrap(apperr.CodeCalculation, err, "unable to calculate quote")
	}
	deliveryCost := decimal.NewFromFloat(delivery.Cost)

	totalBeforeTax := subtotalAfterDiscount.Add(deliveryCost)
	taxAmount := totalBeforeTax.Mul(decimal.NewFromFloat(cfg.Taxes.VAT))
	totalPrice := totalBeforeTax.Add(taxAmount)

	fabricName := UnspecifiedName
	if fabricKnown {
		fabricName = nameOr(fabric.Name)
	}
	// An unknown delivery is charged at the standard rate but not named after it.
	deliveryName := UnspecifiedName
	if deliveryKnown {
		deliveryName = nameOr(delivery.Name)
	}

	selectedFit := sel.SelectedFit
	if selectedFit == "" {
		selectedFit = string(sizing.FitCustom)
	}

	currency := cfg.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	return quote.Quote{
		QuoteID:     c.newID(),
		GarmentType: garmentType,
		Selections:  sel,
		Pricing: quote.Pricing{
			BasePrice: money(basePrice),
			UnitPrice: money(unitPrice),
			Quantity:  sel.Quantity,
			Subtotal:  money(subtotal),
			QuantityDiscount: quote.Discount{
				Percentage: discountRate,
				Amount:     money(discountAmount),
			},
			SubtotalAfterDiscount: money(subtotalAfterDiscount),
			DeliveryCost:          money(deliveryCost),
			VATRate:               cfg.Taxes.VAT,
			TaxAmount:             money(taxAmount),
			TotalPrice:            money(totalPrice),
		},
		Breakdown: quote.Breakdown{
			Fabric: quote.FabricLine{
				Name:       fabricName,
				Cost:       money(fabricAdditional),
				Multiplier: fabric.Multiplier,
			},
			Colourway:     colourway.line(),
			Embellishment: embellishment.line(),
			Finishings:    finishings.line(),
			Packaging:     packaging.line(),
			Delivery:      quote.Line{Name: deliveryName, Cost: money(deliveryCost)},
		},
		Surcharges: surcharges,
		SizeInfo: quote.SizeInfo{
			SelectedFit:  selectedFit,
			IsCustomSize: sel.IsCustomSize,
			SizeData:     sel.SizeMatrix.Clone(),
		},
		CreatedAt: c.now().UTC(),
		Currency:  currency,
	}, nil
}

// QuickSelection is the default configuration used for instant estimates.
func QuickSelection(g garment.Type, quantity int) quote.Selection {
	if g == "" {
		g = garment.Default
	}
	return quote.Selection{
		GarmentType:   g,
		Fabric:        "cotton",
		Colourway:     "single",
		Embellishment: "none",
		Finishings:    "standard",
		Packaging:     "standard",
		Delivery:      StandardDelivery,
		Quantity:      quantity,
	}
}

func (c *Config) basePrice(g garment.Type) float64 {
	if price, ok := c.BasePrice[g]; ok {
		return price
	}
	if price, ok := c.BasePrice[garment.Default]; ok {
		return price
	}
	return FallbackBasePrice
}

// discountRate returns 0 when no tier matches.
func (c *Config) discountRate(quantity int) float64 {
	for _, tier := range c.QuantityDiscounts {
		if tier.Contains(quantity) {
			return tier.Discount
		}
	}
	return 0
}

// delivery resolves id, falling back to the standard option. known reports
// whether id itself was found.
func (c *Config) delivery(id string) (d DeliveryOption, known bool, err error) {
	if d, ok := c.DeliveryPricing[id]; ok {
		return d, true, nil
	}
	d, ok := c.DeliveryPricing[StandardDelivery]
	if !ok {
		return DeliveryOption{}, false, fmt.Errorf("delivery option %q has no standard fallback", id)
	}
	return d, false, nil
}

type resolved struct {
	name string
	cost decimal.Decimal
}

func (r resolved) line() quote.Line {
	return quote.Line{Name: r.name, Cost: money(r.cost)}
}

func adder(options map[string]Option, id string) resolved {
	o, ok := options[id]
	if !ok {
		return resolved{name: UnspecifiedName, cost: decimal.Zero}
	}
	return resolved{name: nameOr(o.Name), cost: decimal.NewFromFloat(o.AdditionalCost)}
}

func nameOr(name string) string {
	if name == "" {
		return UnspecifiedName
	}
	return name
}

// money is the single rounding point: half away from zero, two decimals.
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func newQuoteID() string {
	return "quote_" + uuid.NewString()
}
