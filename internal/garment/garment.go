// Package garment defines the closed set of garment types the quoting tool
// knows how to size and price.
package garment

import (
	"fmt"
	"strings"
)

// Type selects a base price and a size-template set.
type Type string

const (
	TShirt     Type = "tshirt"
	Pull       Type = "pull"
	Hoodie     Type = "hoodie"
	Crewneck   Type = "crewneck"
	LongSleeve Type = "longsleeve"
	ZipHoodie  Type = "ziphoodie"
)

// Default is used when a caller has no garment type or an unknown one.
const Default = TShirt

var all = []Type{TShirt, Pull, Hoodie, Crewneck, LongSleeve, ZipHoodie}

var displayNames = map[Type]string{
	TShirt:     "T-Shirt",
	Pull:       "Pull",
	Hoodie:     "Hoodie",
	Crewneck:   "Crewneck",
	LongSleeve: "Long Sleeve",
	ZipHoodie:  "Zip-Hoodie",
}

// All returns every known garment type in display order.
func All() []Type {
	out := make([]Type, len(all))
	copy(out, all)
	return out
}

func (t Type) Valid() bool {
	_, ok := displayNames[t]
	return ok
}

func (t Type) String() string { return string(t) }

// DisplayName returns the human label, or the raw value for unknown types.
func (t Type) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return string(t)
}

// Parse normalizes raw and returns the matching Type.
func Parse(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown garment type %q", raw)
	}
	return t, nil
}
