package sizing

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownCell is returned by SetCell for a size or key outside the matrix.
var ErrUnknownCell = errors.New("size matrix has no such cell")

// Bounds is the accepted centimeter range for a cell. The defaults reflect
// human body measurement ranges and are configurable.
type Bounds struct {
	Min float64
	Max float64
}

// DefaultBounds is [0, 200] cm.
var DefaultBounds = Bounds{Min: 0, Max: 200}

// Validate reports whether v is finite and within the bounds.
func (b Bounds) Validate(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= b.Min && v <= b.Max
}

// ValidateRaw parses raw like SetCell does and validates it; input with no
// leading number is invalid.
func (b Bounds) ValidateRaw(raw string) bool {
	v, ok := parseLeadingNumber(raw)
	if !ok {
		return false
	}
	return b.Validate(v)
}

// ValidateCell checks v against DefaultBounds. It never mutates anything;
// callers use it to flag cells for display.
func ValidateCell(v float64) bool {
	return DefaultBounds.Validate(v)
}

// Matrix is the live, editable size chart. The zero value is an empty matrix.
// Operations return new matrices and never modify their input.
type Matrix struct {
	sizes []SizeLabel
	keys  []MeasurementKey
	cells map[SizeLabel]map[MeasurementKey]float64
}

// Cell addresses one value in a matrix.
type Cell struct {
	Size  SizeLabel      `json:"size"`
	Key   MeasurementKey `json:"key"`
	Value float64        `json:"value"`
}

// ApplyTemplate deep-copies a template into a fresh matrix.
func ApplyTemplate(t Template) Matrix {
	m := Matrix{
		sizes: t.Sizes(),
		keys:  t.Keys(),
		cells: make(map[SizeLabel]map[MeasurementKey]float64, len(t.sizes)),
	}
	for _, size := range m.sizes {
		row := make(map[MeasurementKey]float64, len(m.keys))
		for _, key := range m.keys {
			row[key], _ = t.Value(size, key)
		}
		m.cells[size] = row
	}
	return m
}

// SetCell returns a copy of m with one cell replaced by the number rawValue
// starts with. A decimal comma is accepted and trailing text such as a unit is
// ignored, so "72,5 cm" stores 72.5. Input with no leading number, or a
// non-finite one, is stored as 0; use ValidateCell to flag it.
func SetCell(m Matrix, size SizeLabel, key MeasurementKey, rawValue string) (Matrix, error) {
	if !m.Has(size, key) {
		return m, fmt.Errorf("%w: %s/%s", ErrUnknownCell, size, key)
	}
	out := m.Clone()
	out.cells[size][key] = parseCellValue(rawValue)
	return out, nil
}

func parseCellValue(raw string) float64 {
	v, ok := parseLeadingNumber(raw)
	if !ok {
		return 0
	}
	return v
}

// parseLeadingNumber reads the longest [sign]digits[.digits][e[sign]digits]
// prefix of raw, with ',' read as '.'. ok is false when there is no digit or
// the value overflows.
func parseLeadingNumber(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0, false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}

	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ResetAll returns a copy of m with every cell set to 0. Sizes and keys are kept.
func ResetAll(m Matrix) Matrix {
	out := m.Clone()
	for _, row := range out.cells {
		for key := range row {
			row[key] = 0
		}
	}
	return out
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	out := Matrix{
		sizes: append([]SizeLabel(nil), m.sizes...),
		keys:  append([]MeasurementKey(nil), m.keys...),
		cells: make(map[SizeLabel]map[MeasurementKey]float64, len(m.cells)),
	}
	for size, row := range m.cells {
		copied := make(map[MeasurementKey]float64, len(row))
		for key, v := range row {
			copied[key] = v
		}
		out.cells[size] = copied
	}
	return out
}

func (m Matrix) Sizes() []SizeLabel {
	return append([]SizeLabel(nil), m.sizes...)
}

func (m Matrix) Keys() []MeasurementKey {
	return append([]MeasurementKey(nil), m.keys...)
}

func (m Matrix) IsEmpty() bool { return len(m.sizes) == 0 }

func (m Matrix) Has(size SizeLabel, key MeasurementKey) bool {
	row, ok := m.cells[size]
	if !ok {
		return false
	}
	_, ok = row[key]
	return ok
}

// Get returns one cell value.
func (m Matrix) Get(size SizeLabel, key MeasurementKey) (float64, bool) {
	row, ok := m.cells[size]
	if !ok {
		return 0, false
	}
	v, ok := row[key]
	return v, ok
}

// InvalidCells lists cells outside b, in size then key order.
func (m Matrix) InvalidCells(b Bounds) []Cell {
	var out []Cell
	for _, size := range m.sizes {
		for _, key := range m.keys {
			if v := m.cells[size][key]; !b.Validate(v) {
				out = append(out, Cell{Size: size, Key: key, Value: v})
			}
		}
	}
	return out
}

// MarshalJSON encodes the matrix as {"M": {"chest": 98, ...}, ...}.
func (m Matrix) MarshalJSON() ([]byte, error) {
	if m.cells == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.cells)
}

// UnmarshalJSON accepts the MarshalJSON shape. Size labels are ordered by
// garment size, keys alphabetically; missing cells in a ragged document are
// filled with 0 so every size has every key.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw map[SizeLabel]map[MeasurementKey]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode size matrix: %w", err)
	}

	sizes := make([]SizeLabel, 0, len(raw))
	keySet := map[MeasurementKey]struct{}{}
	for size, row := range raw {
		sizes = append(sizes, size)
		for key := range row {
			keySet[key] = struct{}{}
		}
	}
	sortSizes(sizes)

	keys := make([]MeasurementKey, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	cells := make(map[SizeLabel]map[MeasurementKey]float64, len(sizes))
	for _, size := range sizes {
		row := make(map[MeasurementKey]float64, len(keys))
		for _, key := range keys {
			row[key] = raw[size][key]
		}
		cells[size] = row
	}

	*m = Matrix{sizes: sizes, keys: keys, cells: cells}
	return nil
}

// OrderKeys returns a copy whose keys follow order; keys not in order keep
// their relative position after the ordered ones.
func (m Matrix) OrderKeys(order []MeasurementKey) Matrix {
	out := m.Clone()
	present := make(map[MeasurementKey]bool, len(out.keys))
	for _, key := range out.keys {
		present[key] = true
	}
	keys := make([]MeasurementKey, 0, len(out.keys))
	for _, key := range order {
		if present[key] {
			keys = append(keys, key)
			delete(present, key)
		}
	}
	for _, key := range out.keys {
		if present[key] {
			keys = append(keys, key)
		}
	}
	out.keys = keys
	return out
}
