package pricing

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/juzely/internal/apperr"
	"github.com/Simplici0/juzely/internal/garment"
	"github.com/Simplici0/juzely/internal/quote"
	"github.com/Simplici0/juzely/internal/sizing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Default()
	require.NoError(t, err)
	return cfg
}

func fixedCalculator(cfg *Config) *Calculator {
	return &Calculator{
		cfg:   cfg,
		now:   func() time.Time { return time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC) },
		newID: func() string { return "quote_fixed" },
	}
}

func exampleSelection() quote.Selection {
	return quote.Selection{
		GarmentType:   garment.TShirt,
		Fabric:        "cotton_organic",
		Colourway:     "two_colors",
		Embellishment: "embroidery",
		Finishings:    "standard",
		Packaging:     "standard",
		Delivery:      "standard",
		Quantity:      25,
	}
}

func TestCalculate_WorkedExample(t *testing.T) {
	q, err := Calculate(exampleSelection(), defaultConfig(t))
	require.NoError(t, err)

	p := q.Pricing
	nearlyEqual(t, "basePrice", p.BasePrice, 15)
	nearlyEqual(t, "unitPrice", p.UnitPrice, 25.30)
	nearlyEqual(t, "subtotal", p.Subtotal, 632.50)
	nearlyEqual(t, "discount.percentage", p.QuantityDiscount.Percentage, 0.10)
	nearlyEqual(t, "discount.amount", p.QuantityDiscount.Amount, 63.25)
	nearlyEqual(t, "subtotalAfterDiscount", p.SubtotalAfterDiscount, 569.25)
	nearlyEqual(t, "deliveryCost", p.DeliveryCost, 4)
	nearlyEqual(t, "taxAmount", p.TaxAmount, 114.65)
	nearlyEqual(t, "vatRate", p.VATRate, 0.2)
	nearlyEqual(t, "totalPrice", p.TotalPrice, 687.90)
	assert.Equal(t, 25, p.Quantity)

	b := q.Breakdown
	assert.Equal(t, quote.FabricLine{Name: "Coton Bio", Cost: 2, Multiplier: 1.1}, b.Fabric)
	assert.Equal(t, quote.Line{Name: "Deux couleurs", Cost: 1}, b.Colourway)
	assert.Equal(t, quote.Line{Name: "Broderie", Cost: 5}, b.Embellishment)
	assert.Equal(t, quote.Line{Name: "Standard", Cost: 0}, b.Finishings)
	assert.Equal(t, quote.Line{Name: "Standard (7-10 jours)", Cost: 4}, b.Delivery)

	assert.Equal(t, quote.Surcharges{}, q.Surcharges)
	assert.True(t, strings.HasPrefix(q.QuoteID, "quote_"))
	assert.Equal(t, garment.TShirt, q.GarmentType)
	assert.Equal(t, "EUR", q.Currency)
	assert.False(t, q.CreatedAt.IsZero())
}

func TestCalculate_Deterministic(t *testing.T) {
	cfg := defaultConfig(t)
	sel := exampleSelection()
	sel.IsCustomSize = true
	sel.IsRushOrder = true
	sel.Fabric = "polyester"

	first, err := Calculate(sel, cfg)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Calculate(sel, cfg)
		require.NoError(t, err)
		assert.Equal(t, first.Pricing, again.Pricing)
		assert.Equal(t, first.Breakdown, again.Breakdown)
	}

	calc := fixedCalculator(cfg)
	a, err := calc.Calculate(sel)
	require.NoError(t, err)
	b, err := calc.Calculate(sel)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCalculate_DiscountMonotonicity(t *testing.T) {
	cfg := defaultConfig(t)
	sel := exampleSelection()

	prevRate := -1.0
	prevEffective := math.Inf(1)
	for qty := 1; qty <= 400; qty++ {
		sel.Quantity = qty
		q, err := Calculate(sel, cfg)
		require.NoError(t, err)

		rate := q.Pricing.QuantityDiscount.Percentage
		effective := q.Pricing.SubtotalAfterDiscount / float64(qty)

		require.GreaterOrEqual(t, rate, prevRate, "discount rate dropped at quantity %d", qty)
		require.LessOrEqual(t, effective, prevEffective+1e-9, "effective unit price rose at quantity %d", qty)
		prevRate, prevEffective = rate, effective
	}
}

func TestCalculate_TierBoundaries(t *testing.T) {
	cfg := defaultConfig(t)
	cases := []struct {
		quantity int
		want     float64
	}{
		{1, 0}, {9, 0}, {10, 0.05}, {24, 0.05}, {25, 0.10}, {49, 0.10},
		{50, 0.15}, {100, 0.20}, {249, 0.20}, {250, 0.25}, {100000, 0.25},
	}
	for _, tc := range cases {
		sel := exampleSelection()
		sel.Quantity = tc.quantity
		q, err := Calculate(sel, cfg)
		require.NoError(t, err)
		assert.Equal(t, tc.want, q.Pricing.QuantityDiscount.Percentage, "quantity=%d", tc.quantity)
	}
}

func TestCalculate_FabricMultiplierScalesWholeUnitCost(t *testing.T) {
	build := func(multiplier float64) *Config {
		return &Config{
			BasePrice: map[garment.Type]float64{garment.TShirt: 15},
			FabricPricing: map[string]FabricOption{
				"test": {Multiplier: multiplier, AdditionalCost: 2},
			},
			ColourwayPricing:     map[string]Option{"c": {AdditionalCost: 1}},
			EmbellishmentPricing: map[string]Option{"e": {AdditionalCost: 5}},
			FinishingsPricing:    map[string]Option{"f": {AdditionalCost: 0.5}},
			PackagingPricing:     map[string]Option{"p": {AdditionalCost: 0.5}},
			DeliveryPricing:      map[string]DeliveryOption{StandardDelivery: {Cost: 4}},
			Taxes:                Taxes{VAT: 0.2},
		}
	}
	sel := quote.Selection{
		GarmentType: garment.TShirt, Fabric: "test", Colourway: "c",
		Embellishment: "e", Finishings: "f", Packaging: "p", Quantity: 1,
	}

	base, err := Calculate(sel, build(1))
	require.NoError(t, err)
	nearlyEqual(t, "unitPrice m=1", base.Pricing.UnitPrice, 24)

	for _, m := range []float64{0.5, 1.25, 2} {
		scaled, err := Calculate(sel, build(m))
		require.NoError(t, err)
		nearlyEqual(t, "unitPrice", scaled.Pricing.UnitPrice, base.Pricing.UnitPrice*m)
		nearlyEqual(t, "fabric multiplier", scaled.Breakdown.Fabric.Multiplier, m)
	}
}

func TestCalculate_SurchargesComposeMultiplicatively(t *testing.T) {
	cfg := defaultConfig(t)
	sel := QuickSelection(garment.TShirt, 1)

	plain, err := Calculate(sel, cfg)
	require.NoError(t, err)
	nearlyEqual(t, "plain unitPrice", plain.Pricing.UnitPrice, 15)

	sel.IsCustomSize = true
	custom, err := Calculate(sel, cfg)
	require.NoError(t, err)
	nearlyEqual(t, "custom unitPrice", custom.Pricing.UnitPrice, 17.25)
	nearlyEqual(t, "customSize surcharge", custom.Surcharges.CustomSize, 0.15)

	sel.IsRushOrder = true
	both, err := Calculate(sel, cfg)
	require.NoError(t, err)
	// 15 * 1.15 * 1.25 = 21.5625, not 15 * 1.40 = 21.00
	nearlyEqual(t, "both unitPrice", both.Pricing.UnitPrice, 21.56)
	nearlyEqual(t, "both subtotal", both.Pricing.Subtotal, 21.56)
	assert.Equal(t, quote.Surcharges{CustomSize: 0.15, RushOrder: 0.25}, both.Surcharges)
}

func TestCalculate_DisabledSurchargeIsIgnored(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.RushOrderUpcharge.Enabled = false

	sel := QuickSelection(garment.TShirt, 1)
	sel.IsRushOrder = true
	q, err := Calculate(sel, cfg)
	require.NoError(t, err)

	nearlyEqual(t, "unitPrice", q.Pricing.UnitPrice, 15)
	assert.Zero(t, q.Surcharges.RushOrder)
}

func TestCalculate_TaxAppliesAfterDiscountAndDelivery(t *testing.T) {
	cfg := defaultConfig(t)
	vat := decimal.NewFromFloat(cfg.Taxes.VAT)

	for _, qty := range []int{1, 12, 25, 60, 130, 300} {
		for _, delivery := range []string{"standard", "express", "pickup"} {
			sel := exampleSelection()
			sel.Quantity = qty
			sel.Delivery = delivery
			q, err := Calculate(sel, cfg)
			require.NoError(t, err)

			want, _ := decimal.NewFromFloat(q.Pricing.SubtotalAfterDiscount).
				Add(decimal.NewFromFloat(q.Pricing.DeliveryCost)).
				Mul(vat).
				Round(2).
				Float64()
			nearlyEqual(t, "taxAmount", q.Pricing.TaxAmount, want)
		}
	}
}

func TestCalculate_UnknownOptionsCostNothing(t *testing.T) {
	cfg := defaultConfig(t)

	empty, err := Calculate(quote.Selection{GarmentType: garment.TShirt, Quantity: 3}, cfg)
	require.NoError(t, err)

	unknown, err := Calculate(quote.Selection{
		GarmentType:   garment.TShirt,
		Fabric:        "silk",
		Colourway:     "rainbow",
		Embellishment: "sequins",
		Finishings:    "gold",
		Packaging:     "crate",
		Quantity:      3,
	}, cfg)
	require.NoError(t, err)

	assert.Equal(t, empty.Pricing, unknown.Pricing)
	nearlyEqual(t, "unitPrice", unknown.Pricing.UnitPrice, 15)
	assert.Equal(t, quote.FabricLine{Name: UnspecifiedName, Cost: 0, Multiplier: 1}, unknown.Breakdown.Fabric)
	assert.Equal(t, quote.Line{Name: UnspecifiedName}, unknown.Breakdown.Colourway)
	assert.Equal(t, quote.Line{Name: UnspecifiedName}, unknown.Breakdown.Embellishment)
	assert.Equal(t, quote.Line{Name: UnspecifiedName}, unknown.Breakdown.Finishings)
	assert.Equal(t, quote.Line{Name: UnspecifiedName}, unknown.Breakdown.Packaging)
}

func TestCalculate_DeliveryFallsBackToStandard(t *testing.T) {
	cfg := defaultConfig(t)
	for _, id := range []string{"", "teleport"} {
		sel := exampleSelection()
		sel.Delivery = id
		q, err := Calculate(sel, cfg)
		require.NoError(t, err)
		nearlyEqual(t, "deliveryCost", q.Pricing.DeliveryCost, 4)
		assert.Equal(t, UnspecifiedName, q.Breakdown.Delivery.Name, "delivery=%q", id)
	}
}

func TestCalculate_GarmentFallbacks(t *testing.T) {
	cfg := defaultConfig(t)

	q, err := Calculate(quote.Selection{GarmentType: "jacket", Quantity: 1}, cfg)
	require.NoError(t, err)
	nearlyEqual(t, "basePrice", q.Pricing.BasePrice, 15)

	q, err = Calculate(quote.Selection{Quantity: 1}, cfg)
	require.NoError(t, err)
	assert.Equal(t, garment.TShirt, q.GarmentType)

	bare := &Config{DeliveryPricing: map[string]DeliveryOption{StandardDelivery: {Cost: 0}}}
	q, err = Calculate(quote.Selection{GarmentType: garment.Hoodie, Quantity: 1}, bare)
	require.NoError(t, err)
	nearlyEqual(t, "basePrice", q.Pricing.BasePrice, FallbackBasePrice)
	assert.Equal(t, DefaultCurrency, q.Currency)

	q, err = Calculate(quote.Selection{GarmentType: garment.Hoodie, Quantity: 1}, cfg)
	require.NoError(t, err)
	nearlyEqual(t, "hoodie basePrice", q.Pricing.BasePrice, 32)
}

func TestCalculate_NoMatchingTierMeansNoDiscount(t *testing.T) {
	upTo := 10
	cfg := &Config{
		BasePrice:         map[garment.Type]float64{garment.TShirt: 10},
		DeliveryPricing:   map[string]DeliveryOption{StandardDelivery: {Cost: 0}},
		QuantityDiscounts: []DiscountTier{{Min: 5, Max: &upTo, Discount: 0.5}},
	}

	q, err := Calculate(quote.Selection{GarmentType: garment.TShirt, Quantity: 2}, cfg)
	require.NoError(t, err)
	assert.Zero(t, q.Pricing.QuantityDiscount.Percentage)
	nearlyEqual(t, "subtotalAfterDiscount", q.Pricing.SubtotalAfterDiscount, 20)
}

func TestCalculate_FailuresAreLabeled(t *testing.T) {
	_, err := Calculate(exampleSelection(), nil)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeCalculation))

	noStandard := &Config{
		BasePrice:       map[garment.Type]float64{garment.TShirt: 15},
		DeliveryPricing: map[string]DeliveryOption{"express": {Cost: 10}},
	}
	q, err := Calculate(quote.Selection{GarmentType: garment.TShirt, Quantity: 1}, noStandard)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeCalculation))
	assert.Equal(t, quote.Quote{}, q)
	assert.Equal(t, "unable to calculate quote", apperr.As(err).Message())
}

func TestCalculate_SizeInfoIsCarriedNotPriced(t *testing.T) {
	cfg := defaultConfig(t)
	tmpl, err := sizing.NewRegistry().Baseline(garment.TShirt)
	require.NoError(t, err)

	sel := exampleSelection()
	withoutSizes, err := Calculate(sel, cfg)
	require.NoError(t, err)
	assert.Equal(t, "custom", withoutSizes.SizeInfo.SelectedFit)

	sel.SelectedFit = "oversized"
	sel.SizeMatrix = sizing.ApplyTemplate(tmpl)
	withSizes, err := Calculate(sel, cfg)
	require.NoError(t, err)

	assert.Equal(t, withoutSizes.Pricing, withSizes.Pricing)
	assert.Equal(t, "oversized", withSizes.SizeInfo.SelectedFit)
	v, ok := withSizes.SizeInfo.SizeData.Get(sizing.M, sizing.ChestWidth)
	require.True(t, ok)
	assert.Equal(t, 56.0, v)
}

func TestQuickSelectionDefaults(t *testing.T) {
	sel := QuickSelection("", 1)
	assert.Equal(t, quote.Selection{
		GarmentType:   garment.TShirt,
		Fabric:        "cotton",
		Colourway:     "single",
		Embellishment: "none",
		Finishings:    "standard",
		Packaging:     "standard",
		Delivery:      "standard",
		Quantity:      1,
	}, sel)

	q, err := Calculate(sel, defaultConfig(t))
	require.NoError(t, err)
	nearlyEqual(t, "subtotal", q.Pricing.Subtotal, 15)
	nearlyEqual(t, "taxAmount", q.Pricing.TaxAmount, 3.8)
	nearlyEqual(t, "totalPrice", q.Pricing.TotalPrice, 22.8)
	assert.Equal(t, "Coton 100%", q.Breakdown.Fabric.Name)
}
