package sizing

import (
	"errors"
	"fmt"

	"github.com/Simplici0/juzely/internal/garment"
)

// ErrTemplateNotFound is returned when a garment has no template for a fit.
var ErrTemplateNotFound = errors.New("size template not found")

// Template is an immutable fit preset: size label -> measurement key -> cm.
// Every size in a template has a value for every key.
type Template struct {
	garment garment.Type
	fit     Fit
	label   string
	sizes   []SizeLabel
	keys    []MeasurementKey
	values  map[SizeLabel]map[MeasurementKey]float64
}

func (t Template) Garment() garment.Type { return t.garment }
func (t Template) Fit() Fit              { return t.fit }
func (t Template) Label() string         { return t.label }

// Sizes returns the template's size labels in chart order.
func (t Template) Sizes() []SizeLabel {
	out := make([]SizeLabel, len(t.sizes))
	copy(out, t.sizes)
	return out
}

// Keys returns the template's measurement keys in display order.
func (t Template) Keys() []MeasurementKey {
	out := make([]MeasurementKey, len(t.keys))
	copy(out, t.keys)
	return out
}

// Value returns the centimeter value for one cell.
func (t Template) Value(size SizeLabel, key MeasurementKey) (float64, bool) {
	row, ok := t.values[size]
	if !ok {
		return 0, false
	}
	v, ok := row[key]
	return v, ok
}

// chart is the baseline data for one garment, plus the fits it offers.
type chart struct {
	measurements []Measurement
	sizes        []SizeLabel
	baseline     map[SizeLabel][]float64 // aligned with measurements
	fits         []fitSpec
}

// fitSpec grades the baseline by a per-key centimeter offset.
type fitSpec struct {
	fit     Fit
	label   string
	offsets map[MeasurementKey]float64
}

// Registry resolves templates by garment and fit.
type Registry struct {
	templates    map[garment.Type]map[Fit]Template
	fits         map[garment.Type][]FitOption
	measurements map[garment.Type][]Measurement
}

// NewRegistry builds every template from the built-in charts.
func NewRegistry() *Registry {
	return newRegistry(builtinCharts())
}

func newRegistry(charts map[garment.Type]chart) *Registry {
	r := &Registry{
		templates:    make(map[garment.Type]map[Fit]Template, len(charts)),
		fits:         make(map[garment.Type][]FitOption, len(charts)),
		measurements: make(map[garment.Type][]Measurement, len(charts)),
	}
	for g, c := range charts {
		keys := make([]MeasurementKey, len(c.measurements))
		for i, m := range c.measurements {
			keys[i] = m.Key
		}

		byFit := make(map[Fit]Template, len(c.fits))
		options := make([]FitOption, 0, len(c.fits))
		for _, spec := range c.fits {
			byFit[spec.fit] = Template{
				garment: g,
				fit:     spec.fit,
				label:   spec.label,
				sizes:   append([]SizeLabel(nil), c.sizes...),
				keys:    keys,
				values:  grade(c, spec.offsets),
			}
			options = append(options, FitOption{ID: spec.fit, Label: spec.label})
		}

		r.templates[g] = byFit
		r.fits[g] = options
		r.measurements[g] = append([]Measurement(nil), c.measurements...)
	}
	return r
}

func grade(c chart, offsets map[MeasurementKey]float64) map[SizeLabel]map[MeasurementKey]float64 {
	values := make(map[SizeLabel]map[MeasurementKey]float64, len(c.sizes))
	for _, size := range c.sizes {
		base := c.baseline[size]
		row := make(map[MeasurementKey]float64, len(c.measurements))
		for i, m := range c.measurements {
			v := base[i] + offsets[m.Key]
			if v < 0 {
				v = 0
			}
			row[m.Key] = v
		}
		values[size] = row
	}
	return values
}

// Get returns the template for a garment and fit name. Fit names are
// case-insensitive. Callers usually fall back to Baseline on error.
func (r *Registry) Get(g garment.Type, fitName string) (Template, error) {
	byFit, ok := r.templates[g]
	if !ok {
		return Template{}, fmt.Errorf("%w: unknown garment %q", ErrTemplateNotFound, g)
	}
	t, ok := byFit[NormalizeFit(fitName)]
	if !ok {
		return Template{}, fmt.Errorf("%w: garment %q has no fit %q", ErrTemplateNotFound, g, fitName)
	}
	return t, nil
}

// Baseline returns the garment's Custom template, the editable starting point.
func (r *Registry) Baseline(g garment.Type) (Template, error) {
	return r.Get(g, string(FitCustom))
}

// GetOrBaseline resolves fitName and falls back to the Custom template.
func (r *Registry) GetOrBaseline(g garment.Type, fitName string) (Template, error) {
	t, err := r.Get(g, fitName)
	if err == nil {
		return t, nil
	}
	return r.Baseline(g)
}

// Fits lists the fits a garment offers, in display order.
func (r *Registry) Fits(g garment.Type) []FitOption {
	return append([]FitOption(nil), r.fits[g]...)
}

// Measurements lists a garment's chart rows, in display order.
func (r *Registry) Measurements(g garment.Type) []Measurement {
	return append([]Measurement(nil), r.measurements[g]...)
}
