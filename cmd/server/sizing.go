package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/juzely/internal/apperr"
	"github.com/Simplici0/juzely/internal/garment"
	"github.com/Simplici0/juzely/internal/sizing"
)

type garmentView struct {
	ID           garment.Type         `json:"id"`
	Name         string               `json:"name"`
	BasePrice    float64              `json:"basePrice"`
	Fits         []sizing.FitOption   `json:"fits"`
	Measurements []sizing.Measurement `json:"measurements"`
}

// matrixView keeps row and column order, which the JSON object loses.
type matrixView struct {
	Sizes        []sizing.SizeLabel      `json:"sizes"`
	Keys         []sizing.MeasurementKey `json:"keys"`
	Matrix       sizing.Matrix           `json:"matrix"`
	InvalidCells []sizing.Cell           `json:"invalidCells"`
}

func (s *server) newMatrixView(m sizing.Matrix) matrixView {
	invalid := m.InvalidCells(s.bounds)
	if invalid == nil {
		invalid = []sizing.Cell{}
	}
	return matrixView{Sizes: m.Sizes(), Keys: m.Keys(), Matrix: m, InvalidCells: invalid}
}

func (s *server) handleGarments(w http.ResponseWriter, r *http.Request) {
	cfg := s.calc.Config()
	out := make([]garmentView, 0, len(garment.All()))
	for _, g := range garment.All() {
		out = append(out, garmentView{
			ID:           g,
			Name:         g.DisplayName(),
			BasePrice:    cfg.BasePrice[g],
			Fits:         s.registry.Fits(g),
			Measurements: s.registry.Measurements(g),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) garmentParam(r *http.Request) (garment.Type, error) {
	g, err := garment.Parse(chi.URLParam(r, "garment"))
	if err != nil {
		return "", apperr.Wrap(apperr.CodeNotFound, err, err.Error())
	}
	return g, nil
}

func (s *server) handleMeasurements(w http.ResponseWriter, r *http.Request) {
	g, err := s.garmentParam(r)
	if err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.registry.Measurements(g))
}

func (s *server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g, err := s.garmentParam(r)
	if err != nil {
		writeError(ctx, s.log, w, err)
		return
	}

	tmpl, err := s.registry.Get(g, chi.URLParam(r, "fit"))
	if err != nil {
		writeError(ctx, s.log, w, apperr.Wrap(apperr.CodeNotFound, err, err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"garmentType": g,
		"fit":         tmpl.Fit(),
		"label":       tmpl.Label(),
		"sizeMatrix":  s.newMatrixView(sizing.ApplyTemplate(tmpl)),
	})
}

type setCellRequest struct {
	Matrix sizing.Matrix   `json:"matrix"`
	Size   string          `json:"size" validate:"required,max=8"`
	Key    string          `json:"key" validate:"required,max=64"`
	Value  json.RawMessage `json:"value"`
}

// rawCellValue accepts both "72.5" and 72.5 so form inputs can be posted verbatim.
func rawCellValue(v json.RawMessage) string {
	var str string
	if err := json.Unmarshal(v, &str); err == nil {
		return str
	}
	return strings.TrimSpace(string(v))
}

func (s *server) handleSetCell(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req setCellRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, s.log, w, err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(ctx, s.log, w, err)
		return
	}

	size := sizing.SizeLabel(strings.TrimSpace(req.Size))
	if parsed, ok := sizing.ParseSizeLabel(req.Size); ok {
		size = parsed
	}
	raw := rawCellValue(req.Value)

	updated, err := sizing.SetCell(req.Matrix, size, sizing.MeasurementKey(strings.TrimSpace(req.Key)), raw)
	if errors.Is(err, sizing.ErrUnknownCell) {
		writeError(ctx, s.log, w, apperr.Wrap(apperr.CodeValidation, err, "unknown size matrix cell").
			WithDetails(map[string]string{"size": req.Size, "key": req.Key}))
		return
	}
	if err != nil {
		writeError(ctx, s.log, w, err)
		return
	}

	valid := s.bounds.ValidateRaw(raw)
	if !valid {
		s.metrics.IncInvalidCell()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      valid,
		"sizeMatrix": s.newMatrixView(updated),
	})
}

type resetMatrixRequest struct {
	Matrix sizing.Matrix `json:"matrix"`
}

func (s *server) handleResetMatrix(w http.ResponseWriter, r *http.Request) {
	var req resetMatrixRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sizeMatrix": s.newMatrixView(sizing.ResetAll(req.Matrix))})
}
