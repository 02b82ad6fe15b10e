package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/juzely/internal/apperr"
	"github.com/Simplici0/juzely/internal/export"
	"github.com/Simplici0/juzely/internal/garment"
	"github.com/Simplici0/juzely/internal/pricing"
	"github.com/Simplici0/juzely/internal/quote"
	"github.com/Simplici0/juzely/internal/store"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout      = "2006-01-02"
)

func (s *server) handlePricingOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.calc.Config())
}

// calculate runs the engine on a boundary-checked selection and records metrics.
func (s *server) calculate(ctx context.Context, sel quote.Selection) (quote.Quote, error) {
	if sel.Quantity < 1 {
		sel.Quantity = 1
	}
	if err := validateStruct(sel); err != nil {
		return quote.Quote{}, err
	}
	if err := s.calc.Config().ValidateSelection(sel); err != nil {
		return quote.Quote{}, err
	}

	start := time.Now()
	q, err := s.calc.Calculate(sel)
	s.metrics.ObserveCalculation(string(sel.GarmentType), time.Since(start), q.Pricing.TotalPrice, err)
	if err != nil {
		return quote.Quote{}, err
	}

	ctx = s.log.WithQuoteID(s.log.WithGarment(ctx, string(q.GarmentType)), q.QuoteID)
	s.log.Debug(s.log.WithField(ctx, "total", q.Pricing.TotalPrice), "quote.calculated")
	return q, nil
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var sel quote.Selection
	if err := decodeJSONBody(r, &sel); err != nil {
		writeError(ctx, s.log, w, err)
		return
	}

	q, err := s.calculate(ctx, sel)
	if err != nil {
		writeError(ctx, s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleQuickQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	g := garment.Default
	if raw := query.Get("garment"); raw != "" {
		parsed, err := garment.Parse(raw)
		if err != nil {
			writeError(ctx, s.log, w, apperr.Wrap(apperr.CodeValidation, err, "invalid garment").
				WithDetails(map[string]string{"garment": err.Error()}))
			return
		}
		g = parsed
	}

	quantity := 1
	if raw := query.Get("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, s.log, w, apperr.Wrap(apperr.CodeValidation, err, "invalid quantity").
				WithDetails(map[string]string{"quantity": "must be an integer"}))
			return
		}
		quantity = n
	}

	q, err := s.calculate(ctx, pricing.QuickSelection(g, quantity))
	if err != nil {
		writeError(ctx, s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type saveQuoteRequest struct {
	Selection quote.Selection `json:"selection"`
	Title     *string         `json:"title,omitempty" validate:"omitempty,max=200"`
	Notes     *string         `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

func (s *server) handleSaveQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveQuoteRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, s.log, w, err)
		return
	}
	if req.Selection.Quantity < 1 {
		req.Selection.Quantity = 1
	}
	if err := validateStruct(req); err != nil {
		writeError(ctx, s.log, w, err)
		return
	}

	q, err := s.calculate(ctx, req.Selection)
	if err != nil {
		writeError(ctx, s.log, w, err)
		return
	}

	now := time.Now()
	rec := quote.NewRecord(q, now)
	quote.Patch{Title: req.Title, Notes: req.Notes}.Apply(&rec, now)

	if err := s.store.SaveRecord(ctx, rec); err != nil {
		writeError(ctx, s.log, w, err)
		return
	}

	ctx = s.log.WithField(ctx, "record_id", rec.ID)
	s.log.Info(ctx, "quote.saved")
	writeJSON(w, http.StatusCreated, rec)
}

func parseDateParam(field, raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperr.Wrap(apperr.CodeValidation, err, "invalid date filter").
			WithDetails(map[string]string{field: "must be YYYY-MM-DD or RFC3339"})
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func criteriaFromQuery(r *http.Request) (store.Criteria, error) {
	query := r.URL.Query()
	var c store.Criteria

	if raw := query.Get("garment"); raw != "" {
		g, err := garment.Parse(raw)
		if err != nil {
			return c, apperr.Wrap(apperr.CodeValidation, err, "invalid garment").
				WithDetails(map[string]string{"garment": err.Error()})
		}
		c.Garment = g
	}
	c.Fit = strings.TrimSpace(query.Get("fit"))
	c.Query = strings.TrimSpace(query.Get("q"))

	var err error
	if c.From, err = parseDateParam("from", query.Get("from"), false); err != nil {
		return c, err
	}
	if c.To, err = parseDateParam("to", query.Get("to"), true); err != nil {
		return c, err
	}
	return c, nil
}

func (s *server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c, err := criteriaFromQuery(r)
	if err != nil {
		writeError(ctx, s.log, w, err)
		return
	}

	var records []quote.Record
	if c.Garment != "" && c.Fit == "" && c.Query == "" && c.From.IsZero() && c.To.IsZero() {
		records, err = s.store.ListByGarmentType(ctx, c.Garment)
	} else {
		records, err = s.store.Search(ctx, c)
	}
	if err != nil {
		writeError(ctx, s.log, w, err)
		return
	}
	if records == nil {
		records = []quote.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *server) handleQuoteStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *server) loadRecord(ctx context.Context, id string) (quote.Record, error) {
	rec, err := s.store.GetByID(ctx, id)
	if errors.Is(err, quote.ErrNotFound) {
		return rec, apperr.Wrap(apperr.CodeNotFound, err, fmt.Sprintf("quote %s not found", id))
	}
	return rec, err
}

func (s *server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	rec, err := s.loadRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) handleUpdateQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var patch quote.Patch
	if err := decodeJSONBody(r, &patch); err != nil {
		writeError(ctx, s.log, w, err)
		return
	}
	if err := validateStruct(patch); err != nil {
		writeError(ctx, s.log, w, err)
		return
	}
	if patch.IsEmpty() {
		writeError(ctx, s.log, w, apperr.New(apperr.CodeValidation, "nothing to update").
			WithDetails(map[string]string{"title": "title or notes is required"}))
		return
	}

	ok, err := s.store.Update(ctx, id, patch)
	if err != nil {
		writeError(ctx, s.log, w, err)
		return
	}
	if !ok {
		writeError(ctx, s.log, w, apperr.New(apperr.CodeNotFound, fmt.Sprintf("quote %s not found", id)))
		return
	}

	rec, err := s.loadRecord(ctx, id)
	if err != nil {
		writeError(ctx, s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) handleDeleteQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		writeError(ctx, s.log, w, err)
		return
	}
	if !ok {
		writeError(ctx, s.log, w, apperr.New(apperr.CodeNotFound, fmt.Sprintf("quote %s not found", id)))
		return
	}

	s.log.Info(s.log.WithField(ctx, "record_id", id), "quote.deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec, err := s.loadRecord(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(ctx, s.log, w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteRecordText(&buf, rec); err != nil {
		writeError(ctx, s.log, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.TextFilename(rec.Quote)))
	_, _ = w.Write(buf.Bytes())
}

func (s *server) handleQuoteXLSX(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec, err := s.loadRecord(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(ctx, s.log, w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, rec, s.registry.Measurements(rec.Quote.GarmentType)); err != nil {
		writeError(ctx, s.log, w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.XLSXFilename(rec)))
	_, _ = w.Write(buf.Bytes())
}
