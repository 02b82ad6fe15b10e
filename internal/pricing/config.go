package pricing

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/Simplici0/juzely/internal/apperr"
	"github.com/Simplici0/juzely/internal/garment"
	"github.com/Simplici0/juzely/internal/quote"
)

//go:embed pricing-config.json
var defaultConfigJSON []byte

const (
	// DefaultCurrency is used when the document does not name one.
	DefaultCurrency = "EUR"
	// StandardDelivery is charged when a selection names no known delivery option.
	StandardDelivery = "standard"
)

// FabricOption scales the whole accumulated unit cost by Multiplier.
type FabricOption struct {
	Multiplier     float64 `json:"multiplier"`
	AdditionalCost float64 `json:"additionalCost"`
	Name           string  `json:"name"`
}

// Option is a flat per-unit adder.
type Option struct {
	AdditionalCost float64 `json:"additionalCost"`
	Name           string  `json:"name"`
}

type DeliveryOption struct {
	Cost float64 `json:"cost"`
	Name string  `json:"name"`
}

// DiscountTier matches Min <= quantity <= Max. A nil Max is open-ended.
type DiscountTier struct {
	Min      int     `json:"min"`
	Max      *int    `json:"max,omitempty"`
	Discount float64 `json:"discount"`
}

func (t DiscountTier) Contains(quantity int) bool {
	return quantity >= t.Min && (t.Max == nil || quantity <= *t.Max)
}

type Upcharge struct {
	Enabled    bool    `json:"enabled"`
	Percentage float64 `json:"percentage"`
}

type Taxes struct {
	VAT float64 `json:"vat"`
}

// Config is the static pricing document. It is loaded once and never
// mutated afterwards.
type Config struct {
	BasePrice            map[garment.Type]float64  `json:"basePrice"`
	FabricPricing        map[string]FabricOption   `json:"fabricPricing"`
	ColourwayPricing     map[string]Option         `json:"colourwayPricing"`
	EmbellishmentPricing map[string]Option         `json:"embellishmentPricing"`
	FinishingsPricing    map[string]Option         `json:"finishingsPricing"`
	PackagingPricing     map[string]Option         `json:"packagingPricing"`
	DeliveryPricing      map[string]DeliveryOption `json:"deliveryPricing"`
	QuantityDiscounts    []DiscountTier            `json:"quantityDiscounts"`
	CustomSizeUpcharge   Upcharge                  `json:"customSizeUpcharge"`
	RushOrderUpcharge    Upcharge                  `json:"rushOrderUpcharge"`
	Taxes                Taxes                     `json:"taxes"`
	Currency             string                    `json:"currency"`
}

// Default returns the embedded pricing document.
func Default() (*Config, error) {
	return Parse(defaultConfigJSON)
}

// Load reads a pricing document from path. An empty path loads the embedded default.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a pricing document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode pricing config: %w", err)
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	sort.SliceStable(cfg.QuantityDiscounts, func(i, j int) bool {
		return cfg.QuantityDiscounts[i].Min < cfg.QuantityDiscounts[j].Min
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the document shape. Tiers must partition 1..∞ with no gap
// or overlap, and only the last tier may be open-ended.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := c.BasePrice[garment.Default]; !ok {
		errs = append(errs, fmt.Errorf("basePrice: missing %q", garment.Default))
	}
	for g, price := range c.BasePrice {
		if !g.Valid() {
			errs = append(errs, fmt.Errorf("basePrice: unknown garment %q", g))
		}
		if !nonNegative(price) {
			errs = append(errs, fmt.Errorf("basePrice.%s: must be a non-negative number", g))
		}
	}
	for id, f := range c.FabricPricing {
		if !(f.Multiplier > 0) || math.IsInf(f.Multiplier, 0) {
			errs = append(errs, fmt.Errorf("fabricPricing.%s.multiplier: must be positive", id))
		}
		if !nonNegative(f.AdditionalCost) {
			errs = append(errs, fmt.Errorf("fabricPricing.%s.additionalCost: must be a non-negative number", id))
		}
	}
	for section, options := range c.adders() {
		for id, o := range options {
			if !nonNegative(o.AdditionalCost) {
				errs = append(errs, fmt.Errorf("%s.%s.additionalCost: must be a non-negative number", section, id))
			}
		}
	}
	if _, ok := c.DeliveryPricing[StandardDelivery]; !ok {
		errs = append(errs, fmt.Errorf("deliveryPricing: missing %q", StandardDelivery))
	}
	for id, d := range c.DeliveryPricing {
		if !nonNegative(d.Cost) {
			errs = append(errs, fmt.Errorf("deliveryPricing.%s.cost: must be a non-negative number", id))
		}
	}
	errs = append(errs, validateTiers(c.QuantityDiscounts)...)
	if !nonNegative(c.CustomSizeUpcharge.Percentage) {
		errs = append(errs, errors.New("customSizeUpcharge.percentage: must be a non-negative number"))
	}
	if !nonNegative(c.RushOrderUpcharge.Percentage) {
		errs = append(errs, errors.New("rushOrderUpcharge.percentage: must be a non-negative number"))
	}
	if !nonNegative(c.Taxes.VAT) {
		errs = append(errs, errors.New("taxes.vat: must be a non-negative number"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid pricing config: %w", errors.Join(errs...))
	}
	return nil
}

func validateTiers(tiers []DiscountTier) []error {
	if len(tiers) == 0 {
		return []error{errors.New("quantityDiscounts: at least one tier is required")}
	}
	var errs []error
	next := 1
	for i, tier := range tiers {
		if tier.Min != next {
			errs = append(errs, fmt.Errorf("quantityDiscounts[%d]: min %d, want %d", i, tier.Min, next))
		}
		if tier.Discount < 0 || tier.Discount >= 1 || math.IsNaN(tier.Discount) {
			errs = append(errs, fmt.Errorf("quantityDiscounts[%d]: discount must be in [0, 1)", i))
		}
		if tier.Max == nil {
			if i != len(tiers)-1 {
				errs = append(errs, fmt.Errorf("quantityDiscounts[%d]: only the last tier may omit max", i))
			}
			return errs
		}
		if *tier.Max < tier.Min {
			errs = append(errs, fmt.Errorf("quantityDiscounts[%d]: max %d below min %d", i, *tier.Max, tier.Min))
		}
		next = *tier.Max + 1
	}
	return append(errs, errors.New("quantityDiscounts: last tier must omit max"))
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func (c *Config) adders() map[string]map[string]Option {
	return map[string]map[string]Option{
		"colourwayPricing":     c.ColourwayPricing,
		"embellishmentPricing": c.EmbellishmentPricing,
		"finishingsPricing":    c.FinishingsPricing,
		"packagingPricing":     c.PackagingPricing,
	}
}

// ValidateSelection rejects option ids the document does not define. The
// engine itself tolerates unknown ids; this check runs where selections
// enter the system.
func (c *Config) ValidateSelection(sel quote.Selection) error {
	details := map[string]string{}
	if sel.GarmentType != "" {
		if _, ok := c.BasePrice[sel.GarmentType]; !ok {
			details["garmentType"] = "is not priced"
		}
	}
	check := func(field, id string, known bool) {
		if id != "" && !known {
			details[field] = fmt.Sprintf("unknown option %q", id)
		}
	}
	_, ok := c.FabricPricing[sel.Fabric]
	check("fabric", sel.Fabric, ok)
	_, ok = c.ColourwayPricing[sel.Colourway]
	check("colourway", sel.Colourway, ok)
	_, ok = c.EmbellishmentPricing[sel.Embellishment]
	check("embellishment", sel.Embellishment, ok)
	_, ok = c.FinishingsPricing[sel.Finishings]
	check("finishings", sel.Finishings, ok)
	_, ok = c.PackagingPricing[sel.Packaging]
	check("packaging", sel.Packaging, ok)
	_, ok = c.DeliveryPricing[sel.Delivery]
	check("delivery", sel.Delivery, ok)

	if len(details) > 0 {
		return apperr.New(apperr.CodeValidation, "unknown pricing options").WithDetails(details)
	}
	return nil
}

// OptionIDs lists the ids of one section in sorted order, for option pickers.
func (c *Config) OptionIDs(section string) []string {
	var ids []string
	switch section {
	case "fabric":
		for id := range c.FabricPricing {
			ids = append(ids, id)
		}
	case "delivery":
		for id := range c.DeliveryPricing {
			ids = append(ids, id)
		}
	default:
		for id := range c.adders()[section+"Pricing"] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
