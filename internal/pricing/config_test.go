package pricing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/juzely/internal/apperr"
	"github.com/Simplici0/juzely/internal/garment"
	"github.com/Simplici0/juzely/internal/quote"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	for _, g := range garment.All() {
		_, ok := cfg.BasePrice[g]
		assert.True(t, ok, "no base price for %s", g)
	}
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, []string{"blend", "cotton", "cotton_organic", "polyester"}, cfg.OptionIDs("fabric"))
	assert.Equal(t, []string{"express", "overnight", "pickup", "standard"}, cfg.OptionIDs("delivery"))
	assert.Equal(t, []string{"gradient", "multicolor", "single", "two_colors"}, cfg.OptionIDs("colourway"))
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	cfg, err := Load("  ")
	require.NoError(t, err)
	assert.Equal(t, 15.0, cfg.BasePrice[garment.TShirt])
}

func TestLoadFromFile(t *testing.T) {
	doc := `{
		"basePrice": {"tshirt": 12},
		"deliveryPricing": {"standard": {"cost": 3, "name": "Standard"}},
		"quantityDiscounts": [{"min": 20, "discount": 0.1}, {"min": 1, "max": 19, "discount": 0}],
		"taxes": {"vat": 0.055},
		"currency": "CHF"
	}`
	path := filepath.Join(t.TempDir(), "pricing.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "CHF", cfg.Currency)
	require.Len(t, cfg.QuantityDiscounts, 2)
	assert.Equal(t, 1, cfg.QuantityDiscounts[0].Min, "tiers are sorted by min")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read pricing config")
}

func TestParseRejectsBadTiers(t *testing.T) {
	cases := map[string]struct {
		tiers string
		want  string
	}{
		"gap":          {`[{"min":1,"max":9,"discount":0},{"min":11,"discount":0.1}]`, "min 11, want 10"},
		"overlap":      {`[{"min":1,"max":9,"discount":0},{"min":5,"discount":0.1}]`, "min 5, want 10"},
		"not from one": {`[{"min":2,"discount":0}]`, "min 2, want 1"},
		"bounded end":  {`[{"min":1,"max":9,"discount":0}]`, "last tier must omit max"},
		"open middle":  {`[{"min":1,"discount":0},{"min":1,"max":3,"discount":0.1}]`, "only the last tier may omit max"},
		"full rebate":  {`[{"min":1,"discount":1}]`, "discount must be in [0, 1)"},
		"empty":        {`[]`, "at least one tier"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			doc := `{"basePrice":{"tshirt":15},"deliveryPricing":{"standard":{"cost":4}},"quantityDiscounts":` + tc.tiers + `}`
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseRejectsBadShape(t *testing.T) {
	tiers := `"quantityDiscounts":[{"min":1,"discount":0}]`
	cases := map[string]struct {
		doc  string
		want string
	}{
		"no standard delivery": {`{"basePrice":{"tshirt":15},"deliveryPricing":{"express":{"cost":9}},` + tiers + `}`, `missing "standard"`},
		"no tshirt price":      {`{"basePrice":{"hoodie":30},"deliveryPricing":{"standard":{"cost":4}},` + tiers + `}`, `missing "tshirt"`},
		"unknown garment":      {`{"basePrice":{"tshirt":15,"jacket":40},"deliveryPricing":{"standard":{"cost":4}},` + tiers + `}`, `unknown garment "jacket"`},
		"zero multiplier":      {`{"basePrice":{"tshirt":15},"fabricPricing":{"x":{"multiplier":0}},"deliveryPricing":{"standard":{"cost":4}},` + tiers + `}`, "fabricPricing.x.multiplier"},
		"negative adder":       {`{"basePrice":{"tshirt":15},"packagingPricing":{"x":{"additionalCost":-1}},"deliveryPricing":{"standard":{"cost":4}},` + tiers + `}`, "packagingPricing.x.additionalCost"},
		"negative vat":         {`{"basePrice":{"tshirt":15},"deliveryPricing":{"standard":{"cost":4}},"taxes":{"vat":-0.2},` + tiers + `}`, "taxes.vat"},
		"not json":             {`{`, "decode pricing config"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.want), "%q does not mention %q", err.Error(), tc.want)
		})
	}
}

func TestValidateSelection(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	require.NoError(t, cfg.ValidateSelection(QuickSelection(garment.Hoodie, 3)))
	require.NoError(t, cfg.ValidateSelection(quote.Selection{Quantity: 1}), "absent options are allowed")

	err = cfg.ValidateSelection(quote.Selection{
		GarmentType: garment.TShirt,
		Fabric:      "silk",
		Delivery:    "teleport",
		Quantity:    1,
	})
	require.Error(t, err)
	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperr.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{
		"fabric":   `unknown option "silk"`,
		"delivery": `unknown option "teleport"`,
	}, typed.Details())
}
