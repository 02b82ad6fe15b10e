// Package quote holds the quote domain types shared by the pricing engine,
// the stores and the HTTP layer.
package quote

import (
	"math"
	"time"

	"github.com/Simplici0/juzely/internal/garment"
	"github.com/Simplici0/juzely/internal/sizing"
)

// Selection is everything the customer picked. It is rebuilt from request
// state for every calculation and is never persisted on its own.
//
// Quantity must be at least 1 before a Selection reaches the engine; the
// engine itself does not clamp it.
type Selection struct {
	GarmentType   garment.Type  `json:"garmentType" validate:"omitempty,oneof=tshirt pull hoodie crewneck longsleeve ziphoodie"`
	Fabric        string        `json:"fabric,omitempty" validate:"omitempty,max=64"`
	Colourway     string        `json:"colourway,omitempty" validate:"omitempty,max=64"`
	Embellishment string        `json:"embellishment,omitempty" validate:"omitempty,max=64"`
	Finishings    string        `json:"finishings,omitempty" validate:"omitempty,max=64"`
	Packaging     string        `json:"packaging,omitempty" validate:"omitempty,max=64"`
	Delivery      string        `json:"delivery,omitempty" validate:"omitempty,max=64"`
	Quantity      int           `json:"quantity" validate:"min=1,max=100000"`
	IsCustomSize  bool          `json:"isCustomSize"`
	IsRushOrder   bool          `json:"isRushOrder"`
	SelectedFit   string        `json:"selectedFit,omitempty" validate:"omitempty,max=32"`
	SizeMatrix    sizing.Matrix `json:"sizeMatrix"`
}

// Quote is a computed price. It is never mutated after creation; a new
// calculation produces a new Quote.
type Quote struct {
	QuoteID     string       `json:"quoteId"`
	GarmentType garment.Type `json:"garmentType"`
	Selections  Selection    `json:"selections"`
	Pricing     Pricing      `json:"pricing"`
	Breakdown   Breakdown    `json:"breakdown"`
	Surcharges  Surcharges   `json:"surcharges"`
	SizeInfo    SizeInfo     `json:"sizeInfo"`
	CreatedAt   time.Time    `json:"createdAt"`
	Currency    string       `json:"currency"`
}

// Pricing money fields are rounded to two decimals.
type Pricing struct {
	BasePrice             float64  `json:"basePrice"`
	UnitPrice             float64  `json:"unitPrice"`
	Quantity              int      `json:"quantity"`
	Subtotal              float64  `json:"subtotal"`
	QuantityDiscount      Discount `json:"quantityDiscount"`
	SubtotalAfterDiscount float64  `json:"subtotalAfterDiscount"`
	DeliveryCost          float64  `json:"deliveryCost"`
	VATRate               float64  `json:"vatRate"`
	TaxAmount             float64  `json:"taxAmount"`
	TotalPrice            float64  `json:"totalPrice"`
}

// TaxRate is the VAT fraction the quote was priced with. Records saved
// before VATRate existed derive it from the taxed amounts.
func (p Pricing) TaxRate() float64 {
	if p.VATRate != 0 {
		return p.VATRate
	}
	base := p.SubtotalAfterDiscount + p.DeliveryCost
	if base <= 0 {
		return 0
	}
	return math.Round(p.TaxAmount/base*1000) / 1000
}

// Discount.Percentage is a fraction (0.10 for 10%).
type Discount struct {
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

type Line struct {
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

type FabricLine struct {
	Name       string  `json:"name"`
	Cost       float64 `json:"cost"`
	Multiplier float64 `json:"multiplier"`
}

type Breakdown struct {
	Fabric        FabricLine `json:"fabric"`
	Colourway     Line       `json:"colourway"`
	Embellishment Line       `json:"embellishment"`
	Finishings    Line       `json:"finishings"`
	Packaging     Line       `json:"packaging"`
	Delivery      Line       `json:"delivery"`
}

// Surcharges are the fractions actually applied; 0 when inactive.
type Surcharges struct {
	CustomSize float64 `json:"customSize"`
	RushOrder  float64 `json:"rushOrder"`
}

// SizeInfo is carried for display and export. It never affects the price.
type SizeInfo struct {
	SelectedFit  string        `json:"selectedFit"`
	IsCustomSize bool          `json:"isCustomSize"`
	SizeData     sizing.Matrix `json:"sizeData"`
}
