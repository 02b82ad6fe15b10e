// Package sizing holds the per-garment size charts: immutable fit templates
// and the editable matrix a user derives from them.
package sizing

import (
	"sort"
	"strings"
)

// SizeLabel is a garment size column.
type SizeLabel string

const (
	XXS SizeLabel = "XXS"
	XS  SizeLabel = "XS"
	S   SizeLabel = "S"
	M   SizeLabel = "M"
	L   SizeLabel = "L"
	XL  SizeLabel = "XL"
	XXL SizeLabel = "XXL"
)

var sizeRank = map[SizeLabel]int{XXS: 0, XS: 1, S: 2, M: 3, L: 4, XL: 5, XXL: 6}

// StandardSizes is the XS..XL range most garments use.
var StandardSizes = []SizeLabel{XS, S, M, L, XL}

// ExtendedSizes is the XXS..XXL range.
var ExtendedSizes = []SizeLabel{XXS, XS, S, M, L, XL, XXL}

func (s SizeLabel) Valid() bool {
	_, ok := sizeRank[s]
	return ok
}

// ParseSizeLabel accepts any casing.
func ParseSizeLabel(raw string) (SizeLabel, bool) {
	s := SizeLabel(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// MeasurementKey names one row of a size chart, in centimeters.
type MeasurementKey string

const (
	TotalLength        MeasurementKey = "totalLength"
	ChestWidth         MeasurementKey = "chestWidth"
	BottomWidth        MeasurementKey = "bottomWidth"
	SleeveLength       MeasurementKey = "sleeveLength"
	Armhole            MeasurementKey = "armhole"
	SleeveOpening      MeasurementKey = "sleeveOpening"
	NeckRibLength      MeasurementKey = "neckRibLength"
	NeckOpening        MeasurementKey = "neckOpening"
	ShoulderToShoulder MeasurementKey = "shoulderToShoulder"

	Chest      MeasurementKey = "chest"
	Length     MeasurementKey = "length"
	Sleeve     MeasurementKey = "sleeve"
	HoodHeight MeasurementKey = "hoodHeight"
)

// Measurement describes a chart row for display.
type Measurement struct {
	Key    MeasurementKey `json:"key"`
	Letter string         `json:"letter"`
	Label  string         `json:"label"`
	Unit   string         `json:"unit"`
}

// Fit identifies a garment silhouette preset.
type Fit string

const (
	FitCustom    Fit = "custom"
	FitRegular   Fit = "regular"
	FitSlim      Fit = "slim"
	FitOversized Fit = "oversized"
	FitCropped   Fit = "cropped"
)

// NormalizeFit lowercases and trims a fit name; "Regular" and "regular" are the same fit.
func NormalizeFit(raw string) Fit {
	return Fit(strings.ToLower(strings.TrimSpace(raw)))
}

// FitOption is a fit offered for a garment.
type FitOption struct {
	ID    Fit    `json:"id"`
	Label string `json:"label"`
}

func sortSizes(sizes []SizeLabel) {
	sort.SliceStable(sizes, func(i, j int) bool { return sizeLess(sizes[i], sizes[j]) })
}

func sizeLess(a, b SizeLabel) bool {
	ra, aok := sizeRank[a]
	rb, bok := sizeRank[b]
	switch {
	case aok && bok:
		return ra < rb
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}
