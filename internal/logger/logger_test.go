package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerCarriesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "juzely", Output: &buf})

	ctx := logg.WithGarment(context.Background(), "tshirt")
	ctx = logg.WithQuoteID(ctx, "quote_1")
	logg.Error(ctx, "quote.save_failed", errors.New("disk full"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "juzely", line["service"])
	assert.Equal(t, "tshirt", line["garment_type"])
	assert.Equal(t, "quote_1", line["quote_id"])
	assert.Equal(t, "disk full", line["error"])
	assert.Equal(t, "error", line["level"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{Output: &buf, Level: zerolog.WarnLevel})

	logg.Info(context.Background(), "ignored")
	assert.Zero(t, buf.Len())

	logg.Warn(context.Background(), "kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}
